package physics

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Simulation - фасад физического ядра: мир, кольцевой пул падающих тел
// и спавнер. Создается в состоянии "мир готов, тел из пула еще нет":
// земля и неподвижная фигурка-образец добавляются сразу.
type Simulation struct {
	world   *World
	pool    *Pool
	spawner *Spawner
}

// NewSimulation собирает симуляцию по конфигурации.
// rng может быть nil (глобальный источник случайности).
func NewSimulation(cfg *Config, rng *rand.Rand) *Simulation {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	world := NewWorld(cfg)

	// Земля: статичная, не инстансируется - рисуется отдельным мешем
	world.AddBody(BodyFixed, mgl32.Vec3{}, mgl32.QuatIdent(), GroundCollider(), false)

	// Неподвижная фигурка-образец в начале координат, входит в инстансы
	world.AddBody(BodyFixed, mgl32.Vec3{}, mgl32.QuatIdent(), FigureCollider(), true)

	return &Simulation{
		world:   world,
		pool:    NewPool(cfg.PoolCapacity),
		spawner: NewSpawner(cfg.SpawnInterval, rng),
	}
}

// Update продвигает симуляцию на dt секунд: сначала таймер спавна,
// затем полный шаг динамики с переменным шагом по времени.
// Переменный шаг жертвует детерминизмом ради простоты.
func (s *Simulation) Update(dt float32) {
	s.spawner.Update(s.world, s.pool, dt)
	s.world.Step(dt)
}

// Poses возвращает позы всех инстансируемых тел: пул плюс
// фигурка-образец, земля не входит
func (s *Simulation) Poses() []Pose {
	return s.world.InstancedPoses()
}

// NumInstances возвращает текущее количество инстансов для отрисовки
func (s *Simulation) NumInstances() int {
	return s.pool.Len() + 1
}

// World возвращает физический мир
func (s *Simulation) World() *World { return s.world }

// Pool возвращает пул падающих тел
func (s *Simulation) Pool() *Pool { return s.pool }

// Spawner возвращает спавнер
func (s *Simulation) Spawner() *Spawner { return s.spawner }
