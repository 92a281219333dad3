package app

// LoadState - фаза жизни приложения. Переход ровно один и только
// в одну сторону: из загрузки в демо.
type LoadState int

const (
	// StateLoading - ресурсы еще грузятся, симуляция стоит
	StateLoading LoadState = iota
	// StatePlaying - ресурсы на месте, демо идет
	StatePlaying
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}
