package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/villuna/tumblin-down/backend/internal/app"
	"github.com/villuna/tumblin-down/backend/internal/config"
	"github.com/villuna/tumblin-down/backend/internal/render"
	"github.com/villuna/tumblin-down/backend/internal/telemetry"
	"github.com/villuna/tumblin-down/backend/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	if err := run(cfg); err != nil && err != context.Canceled {
		log.Fatalf("Сервер остановлен с ошибкой: %v", err)
	}
	log.Println("Сервер остановлен")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Приложение и сервер ссылаются друг на друга: сервер шлет события
	// ввода приложению, поверхность приложения рассылает кадры через
	// сервер. Разрываем цикл поздней привязкой приемника.
	sink := &appSink{}
	server := ws.NewServer(sink, cfg.PhysicsConfig().PoolCapacity, clearColour(), func() string {
		if sink.app == nil {
			return app.StateLoading.String()
		}
		return sink.app.State().String()
	})

	demo, err := app.New(app.Options{
		Physics:   cfg.PhysicsConfig(),
		AssetDir:  cfg.AssetDir,
		ModelPath: cfg.ModelPath,
		MusicPath: cfg.MusicPath,
	}, ws.NewRemoteSurface(server))
	if err != nil {
		return err
	}
	sink.app = demo

	if cfg.Telemetry != "" {
		capture, err := telemetry.NewCapture(cfg.Telemetry)
		if err != nil {
			return err
		}
		defer capture.Close()
		demo.Telemetry().AttachCapture(capture)
		log.Printf("Захват телеметрии: %s", cfg.Telemetry)
	}

	// Настройка HTTP маршрутов
	http.HandleFunc("/ws", server.HandleWS)
	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := demo.Telemetry().JSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(stats))
	})

	if _, err := os.Stat(cfg.SiteDir); os.IsNotExist(err) {
		log.Printf("Warning: каталог статики %s не существует", cfg.SiteDir)
	}
	fs := http.FileServer(http.Dir(cfg.SiteDir))
	http.Handle("/", http.StripPrefix("/", fs))

	httpServer := &http.Server{Addr: cfg.Listen}
	go func() {
		log.Printf("Сервер слушает на %s, статика из %s", cfg.Listen, cfg.SiteDir)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Ошибка HTTP сервера: %v", err)
		}
	}()
	defer httpServer.Shutdown(context.Background())

	// Уведомляем клиентов о переходе из загрузки в демо
	go watchState(ctx, demo, server)

	return demo.Run(ctx, cfg.TickDuration())
}

// appSink переправляет события управления в приложение.
// До конца сборки приложения события молча отбрасываются.
type appSink struct {
	app *app.App
}

func (s *appSink) ProcessKey(code string, down bool) {
	if s.app != nil {
		s.app.ProcessKey(code, down)
	}
}

func (s *appSink) Resize(width, height uint32) {
	if s.app != nil {
		s.app.Resize(width, height)
	}
}

// watchState рассылает клиентам смену фазы приложения
func watchState(ctx context.Context, demo *app.App, server *ws.Server) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	last := demo.State()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state := demo.State()
			if state != last {
				last = state
				server.BroadcastState(state.String())
				log.Printf("Фаза приложения: %s", state)
			}
		}
	}
}

func clearColour() [4]float32 {
	c := render.ClearColour
	return [4]float32{c.X(), c.Y(), c.Z(), c.W()}
}
