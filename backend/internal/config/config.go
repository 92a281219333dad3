// Package config отвечает за конфигурацию сервера демо: адрес, пути
// к ресурсам и настройки симуляции. Файл в формате yaml, отсутствие
// файла - не ошибка, работают значения по умолчанию.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/villuna/tumblin-down/backend/internal/physics"
)

// Config - конфигурация сервера
type Config struct {
	// Listen - адрес http-сервера
	Listen string `yaml:"listen"`

	// SiteDir - каталог статики клиента
	SiteDir string `yaml:"site_dir"`

	// AssetDir - каталог ресурсов: модели, текстуры, звук
	AssetDir string `yaml:"asset_dir"`

	// ModelPath - путь к модели фигурки относительно AssetDir
	ModelPath string `yaml:"model_path"`

	// MusicPath - путь к фоновой дорожке относительно AssetDir
	MusicPath string `yaml:"music_path"`

	// TickRate - частота игрового цикла, тиков в секунду
	TickRate int `yaml:"tick_rate"`

	// Telemetry - путь к файлу захвата телеметрии, пусто - захват выключен
	Telemetry string `yaml:"telemetry"`

	// Physics - настройки физического ядра
	Physics PhysicsConfig `yaml:"physics"`
}

// PhysicsConfig - переопределяемая часть настроек симуляции.
// Нулевые значения означают "оставить по умолчанию".
type PhysicsConfig struct {
	PoolCapacity  int     `yaml:"pool_capacity"`
	SpawnInterval float32 `yaml:"spawn_interval"`
	GravityY      float32 `yaml:"gravity_y"`
	Restitution   float32 `yaml:"restitution"`
	Friction      float32 `yaml:"friction"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Listen:    ":8080",
		SiteDir:   "site",
		AssetDir:  "assets",
		ModelPath: "obj/woman.obj",
		MusicPath: "tumblin_down.ogg",
		TickRate:  60,
	}
}

// Load читает конфигурацию из yaml-файла поверх значений по умолчанию.
// Пустой путь или отсутствующий файл возвращают умолчания.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: ошибка чтения %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: ошибка разбора %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: неверная конфигурация %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate должен быть положительным, получено %d", c.TickRate)
	}
	if c.Physics.PoolCapacity < 0 {
		return fmt.Errorf("pool_capacity не может быть отрицательным, получено %d", c.Physics.PoolCapacity)
	}
	if c.Physics.SpawnInterval < 0 {
		return fmt.Errorf("spawn_interval не может быть отрицательным, получено %v", c.Physics.SpawnInterval)
	}
	return nil
}

// TickDuration возвращает длительность одного тика цикла
func (c *Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// PhysicsConfig собирает конфигурацию физики: умолчания ядра плюс
// переопределения из файла
func (c *Config) PhysicsConfig() *physics.Config {
	p := physics.DefaultConfig()
	if c.Physics.PoolCapacity > 0 {
		p.PoolCapacity = c.Physics.PoolCapacity
	}
	if c.Physics.SpawnInterval > 0 {
		p.SpawnInterval = c.Physics.SpawnInterval
	}
	if c.Physics.GravityY != 0 {
		p.GravityY = c.Physics.GravityY
	}
	if c.Physics.Restitution > 0 {
		p.Restitution = c.Physics.Restitution
	}
	if c.Physics.Friction > 0 {
		p.Friction = c.Physics.Friction
	}
	return p
}
