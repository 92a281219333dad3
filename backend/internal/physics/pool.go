package physics

// Pool - кольцевой пул хэндлов тел фиксированной емкости.
// Пока пул не заполнен, новые тела добавляются в конец; после заполнения
// новое тело вытесняет тело в позиции курсора, и курсор сдвигается по
// кольцу. Вытеснение идет строго в порядке вставки: покоящееся тело
// вытесняется так же, как падающее.
type Pool struct {
	capacity int
	handles  []Handle
	cursor   int
}

// NewPool создает пустой пул на capacity тел
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = 1
	}
	return &Pool{
		capacity: capacity,
		handles:  make([]Handle, 0, capacity),
	}
}

// Insert добавляет хэндл в пул. При переполнении тело в слоте курсора
// полностью удаляется из мира перед перезаписью.
func (p *Pool) Insert(w *World, h Handle) {
	if len(p.handles) < p.capacity {
		p.handles = append(p.handles, h)
		return
	}

	w.RemoveBody(p.handles[p.cursor])
	p.handles[p.cursor] = h
	p.cursor = (p.cursor + 1) % p.capacity
}

// Len возвращает количество живых тел в пуле
func (p *Pool) Len() int { return len(p.handles) }

// Capacity возвращает емкость пула
func (p *Pool) Capacity() int { return p.capacity }

// Handles возвращает копию текущих хэндлов пула (для статистики и тестов)
func (p *Pool) Handles() []Handle {
	out := make([]Handle, len(p.handles))
	copy(out, p.handles)
	return out
}
