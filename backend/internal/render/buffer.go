package render

import "fmt"

// InstanceBuffer - буфер инстансов фиксированной емкости.
// Емкость выбирается по максимальному размеру пула и не меняется;
// каждый кадр перезаписывается только живой префикс, и отрисовка
// использует ровно Live() инстансов, а не всю емкость.
type InstanceBuffer struct {
	capacity int
	data     []InstanceRaw
	live     int
}

// NewInstanceBuffer создает буфер на capacity инстансов
func NewInstanceBuffer(capacity int) *InstanceBuffer {
	return &InstanceBuffer{
		capacity: capacity,
		data:     make([]InstanceRaw, capacity),
	}
}

// Upload записывает живой префикс. Превышение емкости - ошибка
// программирования: буфер обязан вмещать пул целиком.
func (b *InstanceBuffer) Upload(records []InstanceRaw) error {
	if len(records) > b.capacity {
		return fmt.Errorf("instance buffer overflow: %d records, capacity %d", len(records), b.capacity)
	}
	copy(b.data, records)
	b.live = len(records)
	return nil
}

// Live возвращает количество живых инстансов в буфере
func (b *InstanceBuffer) Live() int { return b.live }

// Capacity возвращает емкость буфера
func (b *InstanceBuffer) Capacity() int { return b.capacity }

// Records возвращает живой префикс буфера.
// Срез действителен до следующего Upload.
func (b *InstanceBuffer) Records() []InstanceRaw {
	return b.data[:b.live]
}
