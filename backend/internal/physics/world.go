package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pose - снимок позы тела для выгрузки в рендер
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// World владеет всеми телами и пошагово продвигает динамику.
// Мир не потокобезопасен: доступ сериализует владелец (оркестратор кадра).
type World struct {
	cfg     *Config
	gravity mgl32.Vec3

	bodies map[Handle]*RigidBody
	// Порядок вставки тел, определяет порядок выгрузки поз
	order []Handle

	nextHandle Handle

	grid *spatialGrid

	// Земля обходит широкую фазу: ее AABB накрыл бы всю сетку
	ground *RigidBody

	dt float32

	// Контактов на последнем подшаге, для телеметрии
	lastContacts int
}

// NewWorld создает пустой мир с заданной конфигурацией
func NewWorld(cfg *Config) *World {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &World{
		cfg:     cfg,
		gravity: mgl32.Vec3{0, cfg.GravityY, 0},
		bodies:  make(map[Handle]*RigidBody),
		grid:    newSpatialGrid(cfg.BroadphaseCellSize),
	}
}

// AddBody вставляет тело с коллайдером в мир и возвращает его хэндл
func (w *World) AddBody(bodyType BodyType, pos mgl32.Vec3, rot mgl32.Quat, collider *Collider, instanced bool) Handle {
	w.nextHandle++
	body := &RigidBody{
		handle:    w.nextHandle,
		Type:      bodyType,
		Instanced: instanced,
		Position:  pos,
		Rotation:  rot.Normalize(),
		Collider:  collider,
	}
	body.computeMassProperties()

	w.bodies[body.handle] = body
	w.order = append(w.order, body.handle)

	if _, ok := collider.Shape.(Cuboid); ok && bodyType == BodyFixed {
		w.ground = body
	}
	return body.handle
}

// RemoveBody полностью удаляет тело из всех структур мира.
// Повторное удаление хэндла - ошибка программирования, а не
// ситуация времени выполнения: мир падает с паникой.
func (w *World) RemoveBody(h Handle) {
	if _, ok := w.bodies[h]; !ok {
		panic(fmt.Sprintf("physics: удаление несуществующего тела %d", h))
	}
	delete(w.bodies, h)

	for i, other := range w.order {
		if other == h {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	if w.ground != nil && w.ground.handle == h {
		w.ground = nil
	}
}

// Body возвращает тело по хэндлу
func (w *World) Body(h Handle) (*RigidBody, bool) {
	body, ok := w.bodies[h]
	return body, ok
}

// Len возвращает количество тел в мире
func (w *World) Len() int { return len(w.bodies) }

// AwakeCount возвращает количество бодрствующих динамических тел
func (w *World) AwakeCount() int {
	n := 0
	for _, body := range w.bodies {
		if body.Type == BodyDynamic && !body.sleeping {
			n++
		}
	}
	return n
}

// ContactCount возвращает число контактов последнего подшага
func (w *World) ContactCount() int { return w.lastContacts }

// Step продвигает динамику ровно на dt секунд: широкая фаза, узкая фаза,
// решатель импульсов, CCD через дробление шага, острова и сон.
// Шаг не возвращает ошибок: при корректных входных данных он не падает,
// а нарушение инвариантов - паника.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	w.dt = dt

	// CCD: быстрые тела дробят шаг, чтобы не пролетать сквозь землю
	substeps := w.substepsFor(dt)
	sub := dt / float32(substeps)
	for i := 0; i < substeps; i++ {
		w.substep(sub)
	}
}

// substepsFor возвращает число подшагов по максимальному смещению тела
func (w *World) substepsFor(dt float32) int {
	var maxSpeed float32
	for _, body := range w.bodies {
		if body.Type != BodyDynamic || body.sleeping {
			continue
		}
		speed := body.LinVel.Len()
		if speed > maxSpeed {
			maxSpeed = speed
		}
	}

	travel := maxSpeed * dt
	if travel <= w.cfg.CcdMaxTravel {
		return 1
	}
	n := int(math.Ceil(float64(travel / w.cfg.CcdMaxTravel)))
	if n > w.cfg.CcdMaxSubsteps {
		n = w.cfg.CcdMaxSubsteps
	}
	return n
}

func (w *World) substep(dt float32) {
	// Интегрирование скоростей: гравитация и затухание
	for _, h := range w.order {
		body := w.bodies[h]
		if body.Type != BodyDynamic || body.sleeping {
			continue
		}
		body.LinVel = body.LinVel.Add(w.gravity.Mul(dt))
		body.LinVel = body.LinVel.Mul(1 / (1 + w.cfg.LinearDamping*dt))
		body.AngVel = body.AngVel.Mul(1 / (1 + w.cfg.AngularDamping*dt))
	}

	contacts := w.findContacts()
	w.lastContacts = len(contacts)

	// Контакт с бодрствующим телом будит спящее
	for _, c := range contacts {
		w.wakeFromContact(c)
	}

	for _, c := range contacts {
		c.prepare(w.cfg, dt)
	}
	for i := 0; i < w.cfg.VelocityIterations; i++ {
		for _, c := range contacts {
			c.solveVelocity()
		}
	}

	// Интегрирование позиций
	for _, h := range w.order {
		body := w.bodies[h]
		if body.Type != BodyDynamic || body.sleeping {
			continue
		}
		body.Position = body.Position.Add(body.LinVel.Mul(dt))
		body.Rotation = integrateRotation(body.Rotation, body.AngVel, dt)
	}

	bodies := w.orderedBodies()
	w.updateSleep(bodies, contacts, dt)
}

// findContacts выполняет широкую и узкую фазы и возвращает контакты шага
func (w *World) findContacts() []*contact {
	var proxied []*RigidBody
	for _, h := range w.order {
		body := w.bodies[h]
		if body == w.ground {
			continue
		}
		proxied = append(proxied, body)
	}

	w.grid.rebuild(proxied)

	var contacts []*contact
	for _, pair := range w.grid.candidatePairs() {
		contacts = append(contacts, collideBodies(pair.a, pair.b)...)
	}

	if w.ground != nil {
		for _, body := range proxied {
			if body.Type != BodyDynamic || body.sleeping {
				continue
			}
			contacts = append(contacts, collideGround(body, w.ground)...)
		}
	}
	return contacts
}

// wakeFromContact будит спящую сторону контакта, если вторая бодрствует
func (w *World) wakeFromContact(c *contact) {
	aActive := c.a.Type == BodyDynamic && !c.a.sleeping
	bActive := c.b.Type == BodyDynamic && !c.b.sleeping
	if aActive && c.b.sleeping {
		c.b.WakeUp()
	}
	if bActive && c.a.sleeping {
		c.a.WakeUp()
	}
}

// orderedBodies возвращает тела в порядке вставки
func (w *World) orderedBodies() []*RigidBody {
	bodies := make([]*RigidBody, 0, len(w.order))
	for _, h := range w.order {
		bodies = append(bodies, w.bodies[h])
	}
	return bodies
}

// InstancedPoses возвращает позы всех инстансируемых тел в порядке вставки.
// Снимок пересобирается заново на каждом кадре: состав пула меняется,
// и инкрементальное обновление не окупается.
func (w *World) InstancedPoses() []Pose {
	poses := make([]Pose, 0, len(w.order))
	for _, h := range w.order {
		body := w.bodies[h]
		if !body.Instanced {
			continue
		}
		poses = append(poses, Pose{Position: body.Position, Rotation: body.Rotation})
	}
	return poses
}

// integrateRotation интегрирует ориентацию по угловой скорости:
// q' = q + dt/2 * (0, w) * q, с нормализацией
func integrateRotation(q mgl32.Quat, omega mgl32.Vec3, dt float32) mgl32.Quat {
	dq := mgl32.Quat{W: 0, V: omega}.Mul(q).Scale(dt / 2)
	return q.Add(dq).Normalize()
}
