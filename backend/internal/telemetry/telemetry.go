package telemetry

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// FrameSample - телеметрия одного кадра демо
type FrameSample struct {
	Timestamp int64   `json:"timestamp"` // Время в миллисекундах
	Frame     uint64  `json:"frame"`     // Номер кадра
	Delta     float64 `json:"delta"`     // Длительность кадра, секунды
	Bodies    int     `json:"bodies"`    // Всего тел в мире
	Instances int     `json:"instances"` // Живых инстансов
	Awake     int     `json:"awake"`     // Бодрствующих тел
	Contacts  int     `json:"contacts"`  // Контактов за шаг
	Clients   int     `json:"clients"`   // Подключенных клиентов
	Spawned   uint64  `json:"spawned"`   // Всего заспавнено тел
}

// Manager управляет сбором и выводом телеметрии кадров
type Manager struct {
	enabled    bool
	data       []FrameSample
	mutex      sync.RWMutex
	maxEntries int

	// Счетчики для статистики
	frames        uint64
	slowFrames    uint64
	lastPrint     time.Time
	printInterval time.Duration

	// Порог медленного кадра в секундах
	slowThreshold float64

	capture *Capture
}

// NewManager создает новый менеджер телеметрии
func NewManager() *Manager {
	return &Manager{
		enabled:       true,
		data:          make([]FrameSample, 0),
		maxEntries:    200, // Храним последние 200 кадров
		lastPrint:     time.Now(),
		printInterval: 2 * time.Second, // Выводим статистику каждые 2 секунды
		slowThreshold: 1.0 / 30.0,
	}
}

// AttachCapture подключает захват: каждый кадр дополнительно пишется
// в сжатый файл
func (tm *Manager) AttachCapture(c *Capture) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	tm.capture = c
}

// LogFrame записывает телеметрию кадра
func (tm *Manager) LogFrame(sample FrameSample) {
	if !tm.enabled {
		return
	}

	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	sample.Timestamp = time.Now().UnixMilli()
	tm.frames++
	sample.Frame = tm.frames
	if sample.Delta > tm.slowThreshold {
		tm.slowFrames++
	}

	tm.data = append(tm.data, sample)

	// Ограничиваем размер буфера
	if len(tm.data) > tm.maxEntries {
		tm.data = tm.data[1:]
	}

	if tm.capture != nil {
		if err := tm.capture.Write(sample); err != nil {
			log.Printf("[Telemetry] Ошибка записи захвата: %v", err)
		}
	}
}

// PrintSummary выводит сводку телеметрии, не чаще раза в printInterval
func (tm *Manager) PrintSummary() {
	if !tm.enabled {
		return
	}

	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	now := time.Now()
	if now.Sub(tm.lastPrint) < tm.printInterval {
		return
	}
	tm.lastPrint = now

	if len(tm.data) == 0 {
		return
	}

	var sumDelta float64
	for _, s := range tm.data {
		sumDelta += s.Delta
	}
	avg := sumDelta / float64(len(tm.data))
	last := tm.data[len(tm.data)-1]

	log.Println("🔬 [Telemetry] ===== ТЕЛЕМЕТРИЯ КАДРОВ =====")
	log.Printf("📊 [Telemetry] Кадров всего: %d, медленных: %d", tm.frames, tm.slowFrames)
	log.Printf("⏱  [Telemetry] Средний кадр: %.2f мс (~%.1f fps)", avg*1000, 1/avg)
	log.Printf("📈 [Telemetry] Тел: %d, инстансов: %d, бодрствует: %d, контактов: %d",
		last.Bodies, last.Instances, last.Awake, last.Contacts)
	log.Printf("🌐 [Telemetry] Клиентов: %d, заспавнено: %d", last.Clients, last.Spawned)
	log.Println("🔬 [Telemetry] ===================================")
}

// Snapshot возвращает копию последних записей
func (tm *Manager) Snapshot() []FrameSample {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	out := make([]FrameSample, len(tm.data))
	copy(out, tm.data)
	return out
}

// JSON возвращает последние записи в JSON формате
func (tm *Manager) JSON() (string, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	jsonData, err := json.MarshalIndent(tm.data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

// Frames возвращает количество записанных кадров
func (tm *Manager) Frames() uint64 {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	return tm.frames
}

// SetEnabled включает/выключает телеметрию
func (tm *Manager) SetEnabled(enabled bool) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.enabled = enabled
	log.Printf("[Telemetry] Телеметрия %s", map[bool]string{true: "включена", false: "выключена"}[enabled])
}

// Clear очищает накопленные записи
func (tm *Manager) Clear() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.data = make([]FrameSample, 0)
	tm.frames = 0
	tm.slowFrames = 0
	log.Println("[Telemetry] Данные телеметрии очищены")
}
