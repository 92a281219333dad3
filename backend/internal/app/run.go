package app

import (
	"context"
	"errors"
	"time"
)

// Run крутит игровой цикл с заданной длительностью тика до отмены
// контекста, запроса выхода или фатальной ошибки. Шаг симуляции -
// реальное время между тиками, а не номинальная длительность:
// при просадках демо не замедляется.
func (a *App) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.logger.Println("Цикл остановлен")
			return ctx.Err()

		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now

			if err := a.Update(dt); err != nil {
				if errors.Is(err, ErrQuit) {
					a.logger.Println("Цикл завершен по запросу выхода")
					return nil
				}
				return err
			}
			if err := a.RenderFrame(); err != nil {
				return err
			}
			a.telem.PrintSummary()
		}
	}
}
