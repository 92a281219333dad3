package ws

// Константы для WebSocket сообщений
const (
	// Типы сообщений
	MessageTypeInit   = "init"   // Параметры сцены при подключении
	MessageTypeState  = "state"  // Смена фазы приложения
	MessageTypeInput  = "input"  // Событие клавиатуры от клиента
	MessageTypeResize = "resize" // Изменение размеров окна клиента
	MessageTypePing   = "ping"   // Пинг для измерения задержки
	MessageTypePong   = "pong"   // Ответ на пинг
	MessageTypeInfo   = "info"   // Информационное сообщение
)

// InitMessage - параметры сцены, уходят клиенту сразу после подключения
type InitMessage struct {
	Type         string     `json:"type"`
	State        string     `json:"state"`
	PoolCapacity int        `json:"pool_capacity"`
	ClearColour  [4]float32 `json:"clear_colour"`
	ServerTime   int64      `json:"server_time"`
}

// StateMessage - уведомление о смене фазы приложения
type StateMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// InputMessage - событие клавиатуры: код клавиши по KeyboardEvent.code
// и флаг нажатия
type InputMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
	Down bool   `json:"down"`
}

// ResizeMessage - новые размеры окна клиента
type ResizeMessage struct {
	Type   string `json:"type"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// PongMessage - ответ на пинг
type PongMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
	ServerTime int64   `json:"server_time"`
}

// InfoMessage - информационное сообщение от сервера
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
