package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("отсутствующий файл не должен быть ошибкой: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.TickRate != 60 {
		t.Errorf("умолчания не применились: %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	text := `
listen: ":9090"
tick_rate: 30
physics:
  pool_capacity: 50
  spawn_interval: 0.5
`
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("ошибка загрузки: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.TickDuration() != time.Second/30 {
		t.Errorf("tick duration = %v", cfg.TickDuration())
	}
	// Не тронутые файлом поля сохраняют умолчания
	if cfg.SiteDir != "site" {
		t.Errorf("site_dir = %q", cfg.SiteDir)
	}

	p := cfg.PhysicsConfig()
	if p.PoolCapacity != 50 {
		t.Errorf("pool capacity = %d", p.PoolCapacity)
	}
	if p.SpawnInterval != 0.5 {
		t.Errorf("spawn interval = %v", p.SpawnInterval)
	}
	// Не переопределенные параметры физики остаются по умолчанию
	if p.GravityY != -9.81 {
		t.Errorf("gravity = %v", p.GravityY)
	}
}

func TestLoad_InvalidTickRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tick_rate: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("отрицательная частота тиков должна быть ошибкой")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("битый yaml должен быть ошибкой")
	}
}
