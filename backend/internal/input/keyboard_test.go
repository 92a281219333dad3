package input

import (
	"sync"
	"testing"
)

func TestKeyboardWatcher_PressRelease(t *testing.T) {
	kw := NewKeyboardWatcher()

	if kw.IsPressed(KeyW) {
		t.Error("свежий наблюдатель не должен видеть нажатых клавиш")
	}

	kw.ProcessKey(KeyW, true)
	if !kw.IsPressed(KeyW) {
		t.Error("клавиша не зарегистрировалась")
	}
	// Повторное нажатие безвредно
	kw.ProcessKey(KeyW, true)
	if !kw.IsPressed(KeyW) {
		t.Error("повторное нажатие сбросило клавишу")
	}

	kw.ProcessKey(KeyW, false)
	if kw.IsPressed(KeyW) {
		t.Error("клавиша не отпустилась")
	}
	// Отпускание ненажатой клавиши безвредно
	kw.ProcessKey(KeyA, false)
}

func TestKeyboardWatcher_Reset(t *testing.T) {
	kw := NewKeyboardWatcher()
	kw.ProcessKey(KeyW, true)
	kw.ProcessKey(KeySpace, true)

	kw.Reset()
	if kw.IsPressed(KeyW) || kw.IsPressed(KeySpace) {
		t.Error("после сброса все клавиши должны быть отпущены")
	}
}

// События приходят из горутин соединений параллельно с чтением
func TestKeyboardWatcher_Concurrent(t *testing.T) {
	kw := NewKeyboardWatcher()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				kw.ProcessKey(KeyW, j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				kw.IsPressed(KeyW)
			}
		}()
	}
	wg.Wait()
}
