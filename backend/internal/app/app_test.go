package app

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/villuna/tumblin-down/backend/internal/input"
	"github.com/villuna/tumblin-down/backend/internal/physics"
	"github.com/villuna/tumblin-down/backend/internal/render"
	"github.com/villuna/tumblin-down/backend/internal/telemetry"
)

// fakeSurface - поверхность для тестов с программируемыми ошибками
type fakeSurface struct {
	mu         sync.Mutex
	configures int
	acquires   int
	presents   int

	acquireErr error
	presentErr error
}

func (s *fakeSurface) Configure(w, h uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configures++
	return nil
}

func (s *fakeSurface) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquires++
	return s.acquireErr
}

func (s *fakeSurface) Present(frame *render.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presents++
	return s.presentErr
}

func writeAppAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	if err := os.WriteFile(filepath.Join(dir, "figure.obj"), []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}

	// Минимальный wav: PCM 16 бит, моно
	var wav bytes.Buffer
	wav.WriteString("RIFF")
	binary.Write(&wav, binary.LittleEndian, uint32(36+8))
	wav.WriteString("WAVE")
	wav.WriteString("fmt ")
	binary.Write(&wav, binary.LittleEndian, uint32(16))
	binary.Write(&wav, binary.LittleEndian, uint16(1))
	binary.Write(&wav, binary.LittleEndian, uint16(1))
	binary.Write(&wav, binary.LittleEndian, uint32(44100))
	binary.Write(&wav, binary.LittleEndian, uint32(44100*2))
	binary.Write(&wav, binary.LittleEndian, uint16(2))
	binary.Write(&wav, binary.LittleEndian, uint16(16))
	wav.WriteString("data")
	binary.Write(&wav, binary.LittleEndian, uint32(8))
	wav.Write(make([]byte, 8))
	if err := os.WriteFile(filepath.Join(dir, "track.wav"), wav.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func newTestApp(t *testing.T, surface render.Surface) *App {
	t.Helper()
	dir := writeAppAssets(t)
	cfg := physics.DefaultConfig()
	cfg.PoolCapacity = 5

	a, err := New(Options{
		Physics:   cfg,
		AssetDir:  dir,
		ModelPath: "figure.obj",
		MusicPath: "track.wav",
		Width:     640,
		Height:    480,
	}, surface)
	if err != nil {
		t.Fatalf("ошибка сборки приложения: %v", err)
	}
	return a
}

// waitPlaying гоняет Update, пока фоновая загрузка не завершится
func waitPlaying(t *testing.T, a *App) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for a.State() != StatePlaying {
		if time.Now().After(deadline) {
			t.Fatal("загрузка не завершилась за отведенное время")
		}
		if err := a.Update(0.001); err != nil {
			t.Fatalf("ошибка кадра во время загрузки: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestApp_StateFlipsToPlaying(t *testing.T) {
	a := newTestApp(t, &fakeSurface{})

	if a.State() != StateLoading {
		t.Fatalf("свежее приложение должно грузиться, состояние %v", a.State())
	}
	waitPlaying(t, a)

	if a.Assets() == nil {
		t.Fatal("после перехода ресурсы должны быть на месте")
	}
	// Переход одноразовый: дальнейшие кадры состояние не трогают
	for i := 0; i < 10; i++ {
		if err := a.Update(0.016); err != nil {
			t.Fatal(err)
		}
	}
	if a.State() != StatePlaying {
		t.Errorf("состояние откатилось: %v", a.State())
	}
}

// Пока ресурсы грузятся, симуляция обязана стоять: таймер спавна
// не накапливает время загрузки
func TestApp_LoadingHoldsSimulation(t *testing.T) {
	// Канал без отправителя: загрузка никогда не завершается
	a := &App{
		logger:   log.New(os.Stdout, "[App] ", log.LstdFlags),
		state:    StateLoading,
		sim:      physics.NewSimulation(physics.DefaultConfig(), nil),
		keyboard: input.NewKeyboardWatcher(),
		camera:   render.NewCamera(mgl32.Vec3{0, 2, 6}, 1),
		light:    render.NewLight(),
		buffer:   render.NewInstanceBuffer(8),
		surface:  &fakeSurface{},
		targets:  render.NewTargets(640, 480),
		telem:    telemetry.NewManager(),
		loadCh:   make(chan loadResult),
	}

	for i := 0; i < 100; i++ {
		if err := a.Update(10.0); err != nil {
			t.Fatal(err)
		}
	}
	if got := a.sim.Spawner().Spawned(); got != 0 {
		t.Errorf("во время загрузки заспавнено %d тел", got)
	}
}

func TestApp_UpdateAdvancesSimulation(t *testing.T) {
	a := newTestApp(t, &fakeSurface{})
	waitPlaying(t, a)

	interval := physics.DefaultConfig().SpawnInterval
	steps := int(interval/0.016) + 2
	for i := 0; i < steps; i++ {
		if err := a.Update(0.016); err != nil {
			t.Fatal(err)
		}
	}
	if a.Simulation().Spawner().Spawned() == 0 {
		t.Error("за интервал спавна не появилось ни одного тела")
	}
	if a.Telemetry().Frames() == 0 {
		t.Error("телеметрия кадров не пишется")
	}
}

func TestApp_ResizeZeroIgnored(t *testing.T) {
	surface := &fakeSurface{}
	a := newTestApp(t, surface)

	before := surface.configures
	a.Resize(0, 480)
	a.Resize(640, 0)
	if surface.configures != before {
		t.Error("нулевые размеры не должны переконфигурировать поверхность")
	}

	a.Resize(800, 600)
	if surface.configures != before+1 {
		t.Error("ненулевые размеры должны переконфигурировать поверхность")
	}
	if a.targets.Width != 800 || a.targets.Height != 600 {
		t.Errorf("буферы не пересозданы: %dx%d", a.targets.Width, a.targets.Height)
	}
}

func TestApp_SurfaceLostSkipsFrame(t *testing.T) {
	surface := &fakeSurface{acquireErr: render.ErrSurfaceLost}
	a := newTestApp(t, surface)
	waitPlaying(t, a)

	before := surface.configures
	if err := a.RenderFrame(); err != nil {
		t.Fatalf("потеря поверхности не должна быть фатальной: %v", err)
	}
	if surface.configures != before+1 {
		t.Error("потеря поверхности должна вызывать переконфигурацию")
	}
	if surface.presents != 0 {
		t.Error("кадр после потери поверхности должен пропускаться")
	}
}

func TestApp_OutOfMemoryFatal(t *testing.T) {
	surface := &fakeSurface{presentErr: render.ErrOutOfMemory}
	a := newTestApp(t, surface)
	waitPlaying(t, a)

	if err := a.RenderFrame(); err == nil {
		t.Error("нехватка памяти поверхности должна быть фатальной")
	}
}

func TestApp_GenericSurfaceErrorSkipped(t *testing.T) {
	surface := &fakeSurface{presentErr: errors.New("временный сбой")}
	a := newTestApp(t, surface)
	waitPlaying(t, a)

	if err := a.RenderFrame(); err != nil {
		t.Errorf("прочие ошибки поверхности должны только пропускать кадр: %v", err)
	}
}

func TestApp_EscapeQuits(t *testing.T) {
	a := newTestApp(t, &fakeSurface{})
	waitPlaying(t, a)

	a.ProcessKey(string(input.KeyEscape), true)
	if err := a.Update(0.016); !errors.Is(err, ErrQuit) {
		t.Errorf("после Escape ожидался ErrQuit, получено %v", err)
	}
}

func TestApp_MissingAssetsFatal(t *testing.T) {
	cfg := physics.DefaultConfig()
	a, err := New(Options{
		Physics:   cfg,
		AssetDir:  t.TempDir(),
		ModelPath: "nope.obj",
		MusicPath: "nope.ogg",
	}, &fakeSurface{})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := a.Update(0.001); err != nil {
			return // ошибка загрузки дошла до кадра
		}
		if time.Now().After(deadline) {
			t.Fatal("ошибка загрузки так и не всплыла")
		}
		time.Sleep(time.Millisecond)
	}
}
