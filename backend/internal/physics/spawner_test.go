package physics

import (
	"math/rand"
	"testing"
)

func newSpawnerFixture(interval float32) (*World, *Pool, *Spawner) {
	cfg := DefaultConfig()
	cfg.SpawnInterval = interval
	w := NewWorld(cfg)
	return w, NewPool(cfg.PoolCapacity), NewSpawner(interval, rand.New(rand.NewSource(42)))
}

func TestSpawner_CrossingTriggersExactlyOnce(t *testing.T) {
	// Спавн происходит ровно на том вызове, где накопленная сумма
	// впервые пересекает интервал, и не раньше
	w, pool, spawner := newSpawnerFixture(1.0)

	deltas := []float32{0.3, 0.3, 0.3}
	for i, dt := range deltas {
		spawner.Update(w, pool, dt)
		if spawner.Spawned() != 0 {
			t.Fatalf("call %d: spawned too early (sum %.2f < 1.0)", i+1, float32(i+1)*0.3)
		}
	}

	spawner.Update(w, pool, 0.3) // сумма 1.2, пересечение
	if spawner.Spawned() != 1 {
		t.Errorf("spawned = %d, want 1", spawner.Spawned())
	}
}

func TestSpawner_LargeDeltaSpawnsOnce(t *testing.T) {
	// Граничный случай: один dt больше интервала в несколько раз
	// дает ровно один спавн, кратные пересечения не засчитываются
	w, pool, spawner := newSpawnerFixture(0.2)

	spawner.Update(w, pool, 1.0) // пять интервалов за один кадр
	if spawner.Spawned() != 1 {
		t.Errorf("spawned = %d, want 1 (single spawn per update)", spawner.Spawned())
	}
}

func TestSpawner_TimerResetsToZero(t *testing.T) {
	// Таймер сбрасывается в ноль, а не на остаток: после пересечения
	// с избытком следующий спавн требует полный интервал заново
	w, pool, spawner := newSpawnerFixture(0.2)

	spawner.Update(w, pool, 0.3) // спавн, избыток 0.1 отброшен
	if spawner.Spawned() != 1 {
		t.Fatalf("spawned = %d, want 1", spawner.Spawned())
	}

	spawner.Update(w, pool, 0.15) // было бы 0.25 при переносе остатка
	if spawner.Spawned() != 1 {
		t.Errorf("spawned = %d, want still 1: timer must reset to zero", spawner.Spawned())
	}

	spawner.Update(w, pool, 0.05) // теперь ровно 0.2
	if spawner.Spawned() != 2 {
		t.Errorf("spawned = %d, want 2", spawner.Spawned())
	}
}

func TestSpawner_SpawnPositionBounds(t *testing.T) {
	// Позиции спавна лежат в заданной зоне: фиксированная высота,
	// ограниченный горизонтальный диапазон
	w, pool, spawner := newSpawnerFixture(0.1)

	for i := 0; i < 50; i++ {
		h := spawner.Spawn(w, pool)
		body, ok := w.Body(h)
		if !ok {
			t.Fatalf("spawned body %d not found in world", h)
		}

		p := body.Position
		if p.Y() != spawnY {
			t.Errorf("spawn %d: y = %f, want %f", i, p.Y(), spawnY)
		}
		if p.X() < spawnMinX || p.X() >= spawnMaxX {
			t.Errorf("spawn %d: x = %f out of [%f, %f)", i, p.X(), spawnMinX, spawnMaxX)
		}
		if p.Z() < spawnMinZ || p.Z() >= spawnMaxZ {
			t.Errorf("spawn %d: z = %f out of [%f, %f)", i, p.Z(), spawnMinZ, spawnMaxZ)
		}

		// Кватернион ориентации должен быть единичным
		if l := body.Rotation.Len(); l < 0.999 || l > 1.001 {
			t.Errorf("spawn %d: rotation not normalized, |q| = %f", i, l)
		}
	}
}
