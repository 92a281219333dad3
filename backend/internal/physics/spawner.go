package physics

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Границы зоны спавна: тела появляются на фиксированной высоте
// в ограниченном горизонтальном диапазоне
const (
	spawnMinX float32 = -20.0
	spawnMaxX float32 = 20.0
	spawnY    float32 = 10.0
	spawnMinZ float32 = -50.0
	spawnMaxZ float32 = 0.0
)

// Spawner накапливает время кадров и спавнит тело, когда накопленное
// время пересекает интервал. Таймер сбрасывается в ноль, а не на остаток:
// при редких больших кадрах темп спавна может проседать ниже номинала.
type Spawner struct {
	interval float32
	timer    float32
	rng      *rand.Rand

	// Счетчик заспавненных тел для статистики
	spawned uint64
}

// NewSpawner создает спавнер с заданным интервалом.
// rng может быть nil, тогда используется глобальный источник.
func NewSpawner(interval float32, rng *rand.Rand) *Spawner {
	return &Spawner{interval: interval, rng: rng}
}

// Update накапливает dt и при пересечении интервала спавнит ровно одно
// тело в пул. Несколько пересечений интервала одним кадром не
// засчитываются отдельно: за вызов происходит не больше одного спавна.
func (s *Spawner) Update(w *World, pool *Pool, dt float32) {
	s.timer += dt

	if s.timer >= s.interval {
		s.timer = 0
		s.Spawn(w, pool)
	}
}

// Spawn создает падающее тело со случайной позицией и ориентацией
// и вставляет его в пул
func (s *Spawner) Spawn(w *World, pool *Pool) Handle {
	pos := mgl32.Vec3{
		spawnMinX + s.randFloat()*(spawnMaxX-spawnMinX),
		spawnY,
		spawnMinZ + s.randFloat()*(spawnMaxZ-spawnMinZ),
	}
	rot := s.randomRotation()

	h := w.AddBody(BodyDynamic, pos, rot, FigureCollider(), true)
	pool.Insert(w, h)
	s.spawned++
	return h
}

// Spawned возвращает количество тел, созданных спавнером
func (s *Spawner) Spawned() uint64 { return s.spawned }

// randomRotation возвращает ориентацию из равномерно случайных углов
// Эйлера, каждый в [0, 2pi)
func (s *Spawner) randomRotation() mgl32.Quat {
	twoPi := float32(2 * math.Pi)
	return mgl32.AnglesToQuat(
		s.randFloat()*twoPi,
		s.randFloat()*twoPi,
		s.randFloat()*twoPi,
		mgl32.XYZ,
	)
}

func (s *Spawner) randFloat() float32 {
	if s.rng != nil {
		return s.rng.Float32()
	}
	return rand.Float32()
}

// FigureCollider возвращает составной коллайдер фигурки: скругленный
// цилиндр (голова), повернутый на pi/2 вокруг X, плюс капсула (тело).
// Смещения частей заданы относительно общего начала модели.
func FigureCollider() *Collider {
	head := CompoundPart{
		Offset:   mgl32.Vec3{0, 1.1, 0},
		Rotation: mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{1, 0, 0}),
		Shape:    RoundCylinder{HalfHeight: 0.4, Radius: 0.95, Border: 0.5},
	}
	body := CompoundPart{
		Offset:   mgl32.Vec3{0, 3.35, -0.1},
		Rotation: mgl32.QuatIdent(),
		Shape:    Capsule{HalfHeight: 0.7, Radius: 0.65},
	}

	cfg := GetConfig()
	return &Collider{
		Shape:       Compound{Parts: []CompoundPart{head, body}},
		Density:     1.0,
		Restitution: cfg.Restitution,
		Friction:    cfg.Friction,
	}
}

// GroundCollider возвращает коллайдер земли: широкий плоский
// параллелепипед, создается один раз и никогда не удаляется
func GroundCollider() *Collider {
	cfg := GetConfig()
	return &Collider{
		Shape:       Cuboid{HalfExtents: mgl32.Vec3{1000, 0.1, 1000}},
		Density:     1.0,
		Restitution: cfg.GroundRestitution,
		Friction:    cfg.Friction,
	}
}
