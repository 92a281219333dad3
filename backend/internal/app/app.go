// Package app собирает демо в целое: состояние загрузки, оркестрация
// кадра и игровой цикл.
package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/villuna/tumblin-down/backend/internal/asset"
	"github.com/villuna/tumblin-down/backend/internal/audio"
	"github.com/villuna/tumblin-down/backend/internal/input"
	"github.com/villuna/tumblin-down/backend/internal/physics"
	"github.com/villuna/tumblin-down/backend/internal/render"
	"github.com/villuna/tumblin-down/backend/internal/telemetry"
)

// ErrQuit возвращается из кадра, когда пользователь попросил выход
var ErrQuit = errors.New("app: запрошен выход")

// Options - параметры сборки приложения
type Options struct {
	Physics   *physics.Config
	AssetDir  string
	ModelPath string
	MusicPath string

	// Width, Height - начальные размеры поверхности
	Width  uint32
	Height uint32
}

// App - оркестратор кадра. Владеет симуляцией, камерой, светом,
// буфером инстансов и поверхностью; все внешние события (ввод,
// изменение размеров) сериализуются мьютексом.
type App struct {
	mu     sync.Mutex
	logger *log.Logger

	state LoadState

	sim      *physics.Simulation
	keyboard *input.KeyboardWatcher
	camera   *render.Camera
	light    *render.Light
	buffer   *render.InstanceBuffer

	surface render.Surface
	targets *render.Targets

	player *audio.Player
	telem  *telemetry.Manager

	loadCh <-chan loadResult
	assets *Assets

	quit bool
}

// New собирает приложение и запускает фоновую загрузку ресурсов
func New(opts Options, surface render.Surface) (*App, error) {
	if opts.Physics == nil {
		opts.Physics = physics.DefaultConfig()
	}
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = 1280, 720
	}

	if err := surface.Configure(opts.Width, opts.Height); err != nil {
		return nil, fmt.Errorf("app: ошибка конфигурации поверхности: %w", err)
	}

	targets := render.NewTargets(opts.Width, opts.Height)
	sim := physics.NewSimulation(opts.Physics, nil)

	a := &App{
		logger:   log.New(os.Stdout, "[App] ", log.LstdFlags),
		state:    StateLoading,
		sim:      sim,
		keyboard: input.NewKeyboardWatcher(),
		camera:   render.NewCamera(mgl32.Vec3{0, 2, 6}, targets.Aspect()),
		light:    render.NewLight(),
		// Емкость буфера: пул целиком плюс фигурка-образец
		buffer:  render.NewInstanceBuffer(opts.Physics.PoolCapacity + 1),
		surface: surface,
		targets: targets,
		player:  audio.NewPlayer(),
		telem:   telemetry.NewManager(),
		loadCh:  startLoad(asset.NewLoader(opts.AssetDir), opts.ModelPath, opts.MusicPath),
	}
	a.logger.Println("Приложение собрано, загрузка ресурсов запущена")
	return a, nil
}

// State возвращает текущую фазу приложения
func (a *App) State() LoadState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Assets возвращает загруженные ресурсы, nil пока идет загрузка
func (a *App) Assets() *Assets {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.assets
}

// Telemetry возвращает менеджер телеметрии
func (a *App) Telemetry() *telemetry.Manager { return a.telem }

// Simulation возвращает физическую симуляцию
func (a *App) Simulation() *physics.Simulation { return a.sim }

// ProcessKey обрабатывает событие клавиатуры от клиента
func (a *App) ProcessKey(code string, down bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := input.Key(code)
	wasPressed := a.keyboard.IsPressed(key)
	a.keyboard.ProcessKey(key, down)

	// Действия по фронту нажатия, не по удержанию
	if !down || wasPressed {
		return
	}
	switch key {
	case input.KeyEscape:
		a.logger.Println("Запрошен выход")
		a.quit = true
	case input.KeyH:
		a.player.Toggle()
	}
}

// Resize меняет размеры поверхности. Нулевые размеры приходят от
// свернутых окон и молча игнорируются; вспомогательные буферы
// пересоздаются под новый размер.
func (a *App) Resize(width, height uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if width == 0 || height == 0 {
		return
	}
	if err := a.surface.Configure(width, height); err != nil {
		a.logger.Printf("Ошибка переконфигурации поверхности: %v", err)
		return
	}
	a.targets = render.NewTargets(width, height)
	a.camera.Aspect = a.targets.Aspect()
	a.logger.Printf("Поверхность переконфигурирована: %dx%d", width, height)
}

// pollLoader неблокирующе проверяет результат фоновой загрузки.
// Ошибка загрузки фатальна: без ресурсов демо не имеет смысла.
func (a *App) pollLoader() error {
	select {
	case res := <-a.loadCh:
		if res.err != nil {
			return res.err
		}
		a.assets = res.assets
		a.state = StatePlaying
		a.logger.Printf("Ресурсы загружены: %d мешей, %d материалов",
			len(res.assets.Model.Meshes), len(res.assets.Model.Materials))

		// Звук не критичен: на безголовом сервере динамика может не быть
		if err := a.player.Install(res.assets.Sound); err != nil {
			a.logger.Printf("Звук недоступен: %v", err)
		}
	default:
	}
	return nil
}

// Update продвигает приложение на dt секунд. Во время загрузки
// симуляция стоит: таймер спавна не накапливает время.
func (a *App) Update(dt float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.quit {
		return ErrQuit
	}

	if a.state == StateLoading {
		if err := a.pollLoader(); err != nil {
			return err
		}
		if a.state == StateLoading {
			return nil
		}
	}

	// Порядок кадра фиксирован: камера и свет, затем физика,
	// затем выгрузка инстансов
	a.camera.Update(a.keyboard)
	a.light.Update()
	a.sim.Update(dt)

	if err := a.buffer.Upload(render.Extract(a.sim)); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	a.telem.LogFrame(telemetry.FrameSample{
		Delta:     float64(dt),
		Bodies:    a.sim.World().Len(),
		Instances: a.sim.NumInstances(),
		Awake:     a.sim.World().AwakeCount(),
		Contacts:  a.sim.World().ContactCount(),
		Spawned:   a.sim.Spawner().Spawned(),
	})
	return nil
}

// RenderFrame отдает текущий кадр поверхности. Потеря поверхности -
// переконфигурация и пропуск кадра; нехватка памяти - фатальная ошибка;
// прочие ошибки логируются, и кадр пропускается.
func (a *App) RenderFrame() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.surface.Acquire(); err != nil {
		return a.classifySurfaceErr(err)
	}

	frame := &render.Frame{
		Camera:    a.camera.Uniform(),
		Light:     a.light.Uniform(),
		Clear:     render.ClearColour,
		Instances: a.buffer.Records(),
	}
	if err := a.surface.Present(frame); err != nil {
		return a.classifySurfaceErr(err)
	}
	return nil
}

func (a *App) classifySurfaceErr(err error) error {
	switch {
	case errors.Is(err, render.ErrSurfaceLost):
		// Пересоздаем поверхность с текущими размерами и пропускаем кадр
		if cerr := a.surface.Configure(a.targets.Width, a.targets.Height); cerr != nil {
			a.logger.Printf("Ошибка восстановления поверхности: %v", cerr)
		}
		return nil
	case errors.Is(err, render.ErrOutOfMemory):
		return fmt.Errorf("app: фатальная ошибка поверхности: %w", err)
	default:
		a.logger.Printf("Кадр пропущен: %v", err)
		return nil
	}
}
