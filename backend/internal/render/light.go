package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// lightOrbitStep - угол поворота источника света за один кадр, в градусах
const lightOrbitStep float32 = 0.8

// Light - точечный источник света, вращающийся вокруг оси Y
type Light struct {
	Position mgl32.Vec3
	Colour   mgl32.Vec3
}

// LightUniform - данные освещения для выгрузки клиенту
type LightUniform struct {
	Position mgl32.Vec4
	Colour   mgl32.Vec4
}

// NewLight создает источник света со стартовыми параметрами сцены
func NewLight() *Light {
	return &Light{
		Position: mgl32.Vec3{2, 3, 2},
		Colour:   mgl32.Vec3{0.96, 0.68, 1.0},
	}
}

// Update поворачивает источник на фиксированный шаг вокруг Y.
// Расстояние до оси при этом сохраняется.
func (l *Light) Update() {
	rot := mgl32.Rotate3DY(mgl32.DegToRad(lightOrbitStep))
	l.Position = rot.Mul3x1(l.Position)
}

// Uniform возвращает снимок освещения
func (l *Light) Uniform() LightUniform {
	return LightUniform{
		Position: l.Position.Vec4(1),
		Colour:   l.Colour.Vec4(1),
	}
}
