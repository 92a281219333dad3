package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrSurfaceLost - поверхность потеряна или неактуальна, кадр можно
	// повторить после переконфигурации
	ErrSurfaceLost = errors.New("render: поверхность потеряна")

	// ErrOutOfMemory - нехватка памяти на стороне поверхности, состояние
	// невосстановимо
	ErrOutOfMemory = errors.New("render: нехватка памяти поверхности")
)

// ClearColour - цвет очистки кадра
var ClearColour = mgl32.Vec4{0.5, 0.82, 0.98, 1.0}

// Frame - содержимое одного кадра: снимки юниформов и живой префикс
// инстансовых записей
type Frame struct {
	Camera    CameraUniform
	Light     LightUniform
	Clear     mgl32.Vec4
	Instances []InstanceRaw
}

// Surface - место, куда уходят готовые кадры. Acquire может вернуть
// ErrSurfaceLost (кадр пропускается, поверхность переконфигурируется)
// или ErrOutOfMemory (фатально)
type Surface interface {
	// Configure задает размеры поверхности
	Configure(width, height uint32) error

	// Acquire подготавливает поверхность к приему очередного кадра
	Acquire() error

	// Present отдает кадр поверхности
	Present(frame *Frame) error
}

// Targets - вспомогательные буферы кадра, пересоздаются при каждом
// изменении размеров поверхности
type Targets struct {
	Width  uint32
	Height uint32
}

// NewTargets создает буферы под заданный размер
func NewTargets(width, height uint32) *Targets {
	return &Targets{Width: width, Height: height}
}

// Aspect возвращает соотношение сторон
func (t *Targets) Aspect() float32 {
	if t.Height == 0 {
		return 1
	}
	return float32(t.Width) / float32(t.Height)
}
