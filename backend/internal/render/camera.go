package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/villuna/tumblin-down/backend/internal/input"
)

const (
	cameraRotationSpeed float32 = 0.03
	cameraMoveSpeed     float32 = 0.1
	halfPi              float32 = math.Pi / 2
)

// Camera - камера от первого лица: позиция глаза плюс горизонтальный
// и вертикальный углы взгляда
type Camera struct {
	Eye mgl32.Vec3

	// HAngle - горизонтальный угол в радианах, [0, 2pi)
	HAngle float32
	// VAngle - вертикальный угол в радианах, зажат около [-pi/2, pi/2]
	VAngle float32

	Up     mgl32.Vec3
	Aspect float32
	FovY   float32
	ZNear  float32
	ZFar   float32
}

// CameraUniform - данные камеры в том виде, в котором они уходят клиенту
type CameraUniform struct {
	Position mgl32.Vec4
	Matrix   mgl32.Mat4
}

// NewCamera создает камеру в заданной точке с пропорциями кадра aspect
func NewCamera(eye mgl32.Vec3, aspect float32) *Camera {
	return &Camera{
		Eye:    eye,
		Up:     mgl32.Vec3{0, 1, 0},
		Aspect: aspect,
		FovY:   45.0,
		ZNear:  0.1,
		ZFar:   100.0,
	}
}

// directionMatrix возвращает матрицу направления взгляда
func (c *Camera) directionMatrix() mgl32.Mat3 {
	return mgl32.Rotate3DY(c.HAngle).Mul3(mgl32.Rotate3DX(c.VAngle))
}

// Matrix строит матрицу вида-проекции
func (c *Camera) Matrix() mgl32.Mat4 {
	direction := c.directionMatrix().Mul3x1(mgl32.Vec3{0, 0, -1})
	target := c.Eye.Add(direction)

	view := mgl32.LookAtV(c.Eye, target, c.Up)
	projection := mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.ZNear, c.ZFar)
	return projection.Mul4(view)
}

// Uniform возвращает снимок камеры для выгрузки
func (c *Camera) Uniform() CameraUniform {
	return CameraUniform{
		Position: c.Eye.Vec4(1),
		Matrix:   c.Matrix(),
	}
}

// Update двигает и поворачивает камеру по текущему состоянию клавиатуры.
// Возвращает true, если камера изменилась и снимок нужно перевыгрузить.
func (c *Camera) Update(keyboard *input.KeyboardWatcher) bool {
	var vdir, hdir, fdir, vrot, hrot float32

	if keyboard.IsPressed(input.KeyA) {
		hdir -= 1
	}
	if keyboard.IsPressed(input.KeyD) {
		hdir += 1
	}
	if keyboard.IsPressed(input.KeyW) {
		fdir -= 1
	}
	if keyboard.IsPressed(input.KeyS) {
		fdir += 1
	}
	if keyboard.IsPressed(input.KeySpace) {
		vdir += 1
	}
	if keyboard.IsPressed(input.KeyShiftLeft) {
		vdir -= 1
	}

	if keyboard.IsPressed(input.KeyArrowLeft) {
		hrot += 1
	}
	if keyboard.IsPressed(input.KeyArrowRight) {
		hrot -= 1
	}
	if keyboard.IsPressed(input.KeyArrowUp) {
		vrot += 1
	}
	if keyboard.IsPressed(input.KeyArrowDown) {
		vrot -= 1
	}

	// Вертикальный угол зажимается чуть уже полупи, чтобы взгляд
	// не вырождался в вертикаль
	c.VAngle = clampf(c.VAngle+vrot*cameraRotationSpeed, -halfPi+0.05, halfPi-0.05)
	c.HAngle = float32(math.Mod(float64(c.HAngle+hrot*cameraRotationSpeed), 2*math.Pi))

	if hdir != 0 || fdir != 0 {
		xzDir := c.directionMatrix().Mul3x1(mgl32.Vec3{hdir, 0, fdir})
		xzMove := mgl32.Vec3{xzDir.X(), 0, xzDir.Z()}.Normalize().Mul(cameraMoveSpeed)
		c.Eye = c.Eye.Add(xzMove)
	}

	if vdir != 0 {
		c.Eye = c.Eye.Add(mgl32.Vec3{0, vdir * cameraMoveSpeed, 0})
	}

	return vrot != 0 || hrot != 0 || hdir != 0 || vdir != 0 || fdir != 0
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
