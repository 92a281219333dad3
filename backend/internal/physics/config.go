package physics

import "sync"

// Config содержит настройки динамики мира
type Config struct {
	// GravityY - ускорение свободного падения по оси Y
	GravityY float32

	// SpawnInterval - интервал спавна падающих тел, в секундах
	SpawnInterval float32

	// PoolCapacity - максимальное количество живых тел в пуле
	PoolCapacity int

	// Restitution - коэффициент восстановления (отскока) для падающих тел
	Restitution float32

	// GroundRestitution - коэффициент упругости для земли
	GroundRestitution float32

	// Friction - трение для контактов
	Friction float32

	// LinearDamping - затухание линейного движения
	LinearDamping float32

	// AngularDamping - затухание углового движения
	AngularDamping float32

	// VelocityIterations - количество итераций решателя импульсов
	VelocityIterations int

	// Baumgarte - коэффициент позиционной коррекции
	Baumgarte float32

	// ContactSlop - допустимая глубина проникновения без коррекции
	ContactSlop float32

	// RestitutionThreshold - минимальная нормальная скорость для отскока
	RestitutionThreshold float32

	// SleepLinearThreshold - порог линейной скорости для засыпания
	SleepLinearThreshold float32

	// SleepAngularThreshold - порог угловой скорости для засыпания
	SleepAngularThreshold float32

	// SleepTime - время ниже порогов, после которого остров засыпает
	SleepTime float32

	// CcdMaxTravel - максимальное смещение тела за подшаг
	// (непрерывное обнаружение столкновений через дробление шага)
	CcdMaxTravel float32

	// CcdMaxSubsteps - предел количества подшагов за один кадр
	CcdMaxSubsteps int

	// BroadphaseCellSize - размер ячейки пространственной сетки
	BroadphaseCellSize float32
}

var (
	globalConfig *Config
	configMutex  sync.RWMutex
)

// DefaultConfig возвращает конфигурацию по умолчанию.
// Значения гравитации, интервала спавна, упругости и размера пула
// соответствуют параметрам демо-сцены.
func DefaultConfig() *Config {
	return &Config{
		GravityY:              -9.81,
		SpawnInterval:         3.157 / 16.0,
		PoolCapacity:          1000,
		Restitution:           0.8,
		GroundRestitution:     0.0,
		Friction:              0.4,
		LinearDamping:         0.0,
		AngularDamping:        0.05,
		VelocityIterations:    8,
		Baumgarte:             0.2,
		ContactSlop:           0.005,
		RestitutionThreshold:  1.0,
		SleepLinearThreshold:  0.05,
		SleepAngularThreshold: 0.08,
		SleepTime:             0.5,
		CcdMaxTravel:          0.5,
		CcdMaxSubsteps:        4,
		BroadphaseCellSize:    6.0,
	}
}

// GetConfig возвращает копию текущей конфигурации физики
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	config := *globalConfig
	return &config
}

// SetConfig устанавливает новую конфигурацию физики
func SetConfig(config *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()

	newConfig := *config
	globalConfig = &newConfig
}
