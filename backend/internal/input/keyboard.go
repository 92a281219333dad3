package input

import "sync"

// Key - код клавиши в формате KeyboardEvent.code браузерного клиента
type Key string

const (
	KeyW          Key = "KeyW"
	KeyA          Key = "KeyA"
	KeyS          Key = "KeyS"
	KeyD          Key = "KeyD"
	KeyH          Key = "KeyH"
	KeySpace      Key = "Space"
	KeyShiftLeft  Key = "ShiftLeft"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyEscape     Key = "Escape"
)

// KeyboardWatcher отслеживает множество нажатых клавиш.
// События приходят из горутин соединений, чтение идет из кадрового цикла,
// поэтому множество под мьютексом.
type KeyboardWatcher struct {
	mu      sync.RWMutex
	pressed map[Key]struct{}
}

// NewKeyboardWatcher создает пустой наблюдатель клавиатуры
func NewKeyboardWatcher() *KeyboardWatcher {
	return &KeyboardWatcher{
		pressed: make(map[Key]struct{}),
	}
}

// ProcessKey обновляет состояние клавиши по событию нажатия/отпускания
func (kw *KeyboardWatcher) ProcessKey(code Key, down bool) {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	if down {
		kw.pressed[code] = struct{}{}
	} else {
		delete(kw.pressed, code)
	}
}

// IsPressed сообщает, нажата ли клавиша сейчас
func (kw *KeyboardWatcher) IsPressed(code Key) bool {
	kw.mu.RLock()
	defer kw.mu.RUnlock()

	_, ok := kw.pressed[code]
	return ok
}

// Reset отпускает все клавиши (например, при отключении клиента)
func (kw *KeyboardWatcher) Reset() {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	for k := range kw.pressed {
		delete(kw.pressed, k)
	}
}
