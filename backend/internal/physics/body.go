package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Handle - уникальный идентификатор тела в мире.
// Хэндлы не переиспользуются: удаленное тело никогда не "воскресает".
type Handle uint64

// BodyType определяет участие тела в динамике
type BodyType int

const (
	// BodyDynamic - тело интегрируется и участвует в разрешении контактов
	BodyDynamic BodyType = iota
	// BodyFixed - тело неподвижно, но сталкивается с динамическими
	BodyFixed
)

// Collider - геометрия, прикрепленная ровно к одному телу.
// После создания неизменяем, меняется только вместе с телом.
type Collider struct {
	Shape       Shape
	Density     float32
	Restitution float32
	Friction    float32
}

// RigidBody - твердое тело: позиция, ориентация и скорости,
// плюс производные массовые характеристики коллайдера
type RigidBody struct {
	handle Handle

	Type BodyType

	// Instanced - попадает ли тело в выгрузку инстансов для отрисовки
	// (земля рисуется отдельно и в инстансы не входит)
	Instanced bool

	Position mgl32.Vec3
	Rotation mgl32.Quat

	LinVel mgl32.Vec3
	AngVel mgl32.Vec3

	Collider *Collider

	// Обратная масса и диагональ обратного тензора инерции в локальных осях.
	// У неподвижных тел нули.
	invMass    float32
	invInertia mgl32.Vec3

	// Состояние сна
	sleeping   bool
	sleepTimer float32

	// Индекс острова на текущем шаге (служебное поле решателя)
	island int
}

// Handle возвращает идентификатор тела
func (rb *RigidBody) Handle() Handle { return rb.handle }

// Sleeping сообщает, спит ли тело
func (rb *RigidBody) Sleeping() bool { return rb.sleeping }

// WakeUp будит тело и сбрасывает таймер сна
func (rb *RigidBody) WakeUp() {
	rb.sleeping = false
	rb.sleepTimer = 0
}

// computeMassProperties вычисляет обратную массу и инерцию по коллайдеру.
// Инерция приближается тензором бокса по локальному AABB формы - для
// демо-сцены из капсульных тел этого достаточно.
func (rb *RigidBody) computeMassProperties() {
	if rb.Type == BodyFixed || rb.Collider == nil {
		rb.invMass = 0
		rb.invInertia = mgl32.Vec3{}
		return
	}

	mass := rb.Collider.Shape.Volume() * rb.Collider.Density
	if mass <= 0 {
		rb.invMass = 0
		rb.invInertia = mgl32.Vec3{}
		return
	}
	rb.invMass = 1 / mass

	min, max := rb.Collider.Shape.AABB(mgl32.Vec3{}, mgl32.QuatIdent())
	ext := max.Sub(min)
	ix := mass / 12 * (ext.Y()*ext.Y() + ext.Z()*ext.Z())
	iy := mass / 12 * (ext.X()*ext.X() + ext.Z()*ext.Z())
	iz := mass / 12 * (ext.X()*ext.X() + ext.Y()*ext.Y())
	rb.invInertia = mgl32.Vec3{1 / ix, 1 / iy, 1 / iz}
}

// applyInvInertia применяет мировой обратный тензор инерции к вектору:
// переводит вектор в локальные оси, масштабирует и возвращает обратно
func (rb *RigidBody) applyInvInertia(v mgl32.Vec3) mgl32.Vec3 {
	local := rb.Rotation.Conjugate().Rotate(v)
	scaled := mgl32.Vec3{
		local.X() * rb.invInertia.X(),
		local.Y() * rb.invInertia.Y(),
		local.Z() * rb.invInertia.Z(),
	}
	return rb.Rotation.Rotate(scaled)
}

// velocityAt возвращает скорость точки тела в мировых координатах
func (rb *RigidBody) velocityAt(point mgl32.Vec3) mgl32.Vec3 {
	r := point.Sub(rb.Position)
	return rb.LinVel.Add(rb.AngVel.Cross(r))
}

// worldProxies возвращает капсульные прокси коллайдера в мировых координатах
func (rb *RigidBody) worldProxies() []CapsuleProxy {
	local := rb.Collider.Shape.Proxies()
	world := make([]CapsuleProxy, len(local))
	for i, p := range local {
		world[i] = p.transformed(rb.Position, rb.Rotation)
	}
	return world
}

// aabb возвращает мировой AABB коллайдера тела
func (rb *RigidBody) aabb() (mgl32.Vec3, mgl32.Vec3) {
	return rb.Collider.Shape.AABB(rb.Position, rb.Rotation)
}
