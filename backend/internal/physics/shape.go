package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Shape описывает геометрию коллайдера в локальных координатах тела
type Shape interface {
	// Volume возвращает объем формы для расчета массы по плотности
	Volume() float32

	// AABB возвращает мировой ограничивающий параллелепипед формы
	AABB(pos mgl32.Vec3, rot mgl32.Quat) (min, max mgl32.Vec3)

	// Proxies возвращает набор капсульных прокси (отрезок + радиус),
	// по которым строятся контакты в узкой фазе
	Proxies() []CapsuleProxy
}

// CapsuleProxy - капсульное приближение формы: отрезок AB с радиусом R.
// Для сферических форм A == B.
type CapsuleProxy struct {
	A, B   mgl32.Vec3
	Radius float32
}

// transformed возвращает прокси, переведенный в другую систему координат
func (p CapsuleProxy) transformed(pos mgl32.Vec3, rot mgl32.Quat) CapsuleProxy {
	return CapsuleProxy{
		A:      rot.Rotate(p.A).Add(pos),
		B:      rot.Rotate(p.B).Add(pos),
		Radius: p.Radius,
	}
}

// Capsule - капсула вдоль локальной оси Y: цилиндр с полувысотой HalfHeight
// и полусферами радиуса Radius на торцах
type Capsule struct {
	HalfHeight float32
	Radius     float32
}

func (c Capsule) Volume() float32 {
	r := float64(c.Radius)
	cyl := math.Pi * r * r * float64(2*c.HalfHeight)
	sph := 4.0 / 3.0 * math.Pi * r * r * r
	return float32(cyl + sph)
}

func (c Capsule) Proxies() []CapsuleProxy {
	return []CapsuleProxy{{
		A:      mgl32.Vec3{0, -c.HalfHeight, 0},
		B:      mgl32.Vec3{0, c.HalfHeight, 0},
		Radius: c.Radius,
	}}
}

func (c Capsule) AABB(pos mgl32.Vec3, rot mgl32.Quat) (mgl32.Vec3, mgl32.Vec3) {
	return proxyAABB(c.Proxies(), pos, rot)
}

// RoundCylinder - цилиндр вдоль локальной оси Y со скругленной кромкой.
// В узкой фазе аппроксимируется капсулой того же габарита.
type RoundCylinder struct {
	HalfHeight float32
	Radius     float32
	Border     float32
}

func (rc RoundCylinder) Volume() float32 {
	r := float64(rc.Radius + rc.Border)
	return float32(math.Pi * r * r * float64(2*(rc.HalfHeight+rc.Border)))
}

func (rc RoundCylinder) Proxies() []CapsuleProxy {
	// Отрезок стягивается так, чтобы полная высота капсулы совпадала
	// с высотой цилиндра вместе с кромкой
	r := rc.Radius + rc.Border
	hh := rc.HalfHeight + rc.Border - r
	if hh < 0 {
		hh = 0
	}
	return []CapsuleProxy{{
		A:      mgl32.Vec3{0, -hh, 0},
		B:      mgl32.Vec3{0, hh, 0},
		Radius: r,
	}}
}

func (rc RoundCylinder) AABB(pos mgl32.Vec3, rot mgl32.Quat) (mgl32.Vec3, mgl32.Vec3) {
	return proxyAABB(rc.Proxies(), pos, rot)
}

// Cuboid - параллелепипед с полуразмерами HalfExtents.
// Используется только для статичной земли.
type Cuboid struct {
	HalfExtents mgl32.Vec3
}

func (c Cuboid) Volume() float32 {
	return 8 * c.HalfExtents.X() * c.HalfExtents.Y() * c.HalfExtents.Z()
}

// Proxies для параллелепипеда не строятся: контакты с землей
// генерируются против верхней полуплоскости
func (c Cuboid) Proxies() []CapsuleProxy { return nil }

func (c Cuboid) AABB(pos mgl32.Vec3, rot mgl32.Quat) (mgl32.Vec3, mgl32.Vec3) {
	// Вращение земли не поддерживается, берем выровненный по осям бокс
	return pos.Sub(c.HalfExtents), pos.Add(c.HalfExtents)
}

// CompoundPart - часть составной формы со смещением относительно общего начала
type CompoundPart struct {
	Offset   mgl32.Vec3
	Rotation mgl32.Quat
	Shape    Shape
}

// Compound - составная форма из нескольких частей
type Compound struct {
	Parts []CompoundPart
}

func (c Compound) Volume() float32 {
	var total float32
	for _, p := range c.Parts {
		total += p.Shape.Volume()
	}
	return total
}

func (c Compound) Proxies() []CapsuleProxy {
	var proxies []CapsuleProxy
	for _, part := range c.Parts {
		for _, p := range part.Shape.Proxies() {
			proxies = append(proxies, p.transformed(part.Offset, part.Rotation))
		}
	}
	return proxies
}

func (c Compound) AABB(pos mgl32.Vec3, rot mgl32.Quat) (mgl32.Vec3, mgl32.Vec3) {
	return proxyAABB(c.Proxies(), pos, rot)
}

// proxyAABB строит мировой AABB по набору капсульных прокси
func proxyAABB(proxies []CapsuleProxy, pos mgl32.Vec3, rot mgl32.Quat) (mgl32.Vec3, mgl32.Vec3) {
	min := mgl32.Vec3{mgl32.MaxValue, mgl32.MaxValue, mgl32.MaxValue}
	max := min.Mul(-1)

	for _, p := range proxies {
		wp := p.transformed(pos, rot)
		for _, end := range []mgl32.Vec3{wp.A, wp.B} {
			for i := 0; i < 3; i++ {
				if end[i]-wp.Radius < min[i] {
					min[i] = end[i] - wp.Radius
				}
				if end[i]+wp.Radius > max[i] {
					max[i] = end[i] + wp.Radius
				}
			}
		}
	}
	return min, max
}
