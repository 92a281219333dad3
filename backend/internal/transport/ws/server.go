package ws

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Sink принимает события управления от клиентов
type Sink interface {
	// ProcessKey обрабатывает событие клавиатуры
	ProcessKey(code string, down bool)

	// Resize обрабатывает изменение размеров окна клиента
	Resize(width, height uint32)
}

// Server раздает кадры демо по WebSocket и маршрутизирует входящие
// контрольные сообщения в Sink
type Server struct {
	upgrader websocket.Upgrader
	sink     Sink
	logger   *log.Logger

	handlers map[string]func(*SafeWriter, map[string]interface{}) error

	clients   map[*SafeWriter]bool // Для хранения активных клиентов
	clientsMu sync.Mutex           // Мьютекс для безопасного доступа к списку клиентов

	poolCapacity int
	clearColour  [4]float32
	stateFn      func() string
}

// NewServer создает сервер. stateFn сообщает текущую фазу приложения
// для приветственного сообщения новым клиентам.
func NewServer(sink Sink, poolCapacity int, clearColour [4]float32, stateFn func() string) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sink:         sink,
		logger:       log.New(log.Writer(), "[WS] ", log.LstdFlags),
		clients:      make(map[*SafeWriter]bool),
		poolCapacity: poolCapacity,
		clearColour:  clearColour,
		stateFn:      stateFn,
	}
	s.registerHandlers()
	return s
}

// registerHandlers регистрирует обработчики сообщений
func (s *Server) registerHandlers() {
	s.handlers = map[string]func(*SafeWriter, map[string]interface{}) error{
		MessageTypeInput: func(conn *SafeWriter, message map[string]interface{}) error {
			code, ok := message["code"].(string)
			if !ok {
				return fmt.Errorf("неверный формат кода клавиши")
			}
			down, _ := message["down"].(bool)
			s.sink.ProcessKey(code, down)
			return nil
		},

		MessageTypeResize: func(conn *SafeWriter, message map[string]interface{}) error {
			width, ok1 := message["width"].(float64)
			height, ok2 := message["height"].(float64)
			if !ok1 || !ok2 || width < 0 || height < 0 {
				return fmt.Errorf("неверный формат размеров")
			}
			s.sink.Resize(uint32(width), uint32(height))
			return nil
		},

		MessageTypePing: func(conn *SafeWriter, message map[string]interface{}) error {
			clientTime, _ := message["client_time"].(float64)
			return conn.WriteJSON(PongMessage{
				Type:       MessageTypePong,
				ClientTime: clientTime,
				ServerTime: time.Now().UnixMilli(),
			})
		},
	}
}

// HandleWS обрабатывает WebSocket соединения
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("Ошибка при установке WebSocket соединения: %v", err)
		return
	}

	client := NewSafeWriter(conn)

	// Добавляем клиента в список
	s.clientsMu.Lock()
	s.clients[client] = true
	total := len(s.clients)
	s.clientsMu.Unlock()
	s.logger.Printf("Клиент подключен (%s), всего: %d", r.RemoteAddr, total)

	defer func() {
		// Удаляем клиента из списка при закрытии соединения
		s.clientsMu.Lock()
		delete(s.clients, client)
		total := len(s.clients)
		s.clientsMu.Unlock()
		conn.Close()
		s.logger.Printf("Клиент отключен, всего: %d", total)
	}()

	// Приветственное сообщение с параметрами сцены
	if err := client.WriteJSON(InitMessage{
		Type:         MessageTypeInit,
		State:        s.stateFn(),
		PoolCapacity: s.poolCapacity,
		ClearColour:  s.clearColour,
		ServerTime:   time.Now().UnixMilli(),
	}); err != nil {
		s.logger.Printf("Ошибка приветственного сообщения: %v", err)
		return
	}

	// Обрабатываем входящие сообщения
	for {
		var message map[string]interface{}
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("Ошибка при чтении сообщения: %v", err)
			}
			return
		}

		messageType, ok := message["type"].(string)
		if !ok {
			s.logger.Printf("Получено сообщение без типа: %v", message)
			continue
		}

		handler, ok := s.handlers[messageType]
		if !ok {
			s.logger.Printf("Нет обработчика для типа сообщения: %s", messageType)
			continue
		}
		if err := handler(client, message); err != nil {
			s.logger.Printf("Ошибка обработки сообщения типа %s: %v", messageType, err)
		}
	}
}

// ClientCount возвращает количество подключенных клиентов
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// BroadcastBinary отправляет бинарное сообщение всем клиентам
func (s *Server) BroadcastBinary(data []byte) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for client := range s.clients {
		if err := client.WriteBinary(data); err != nil {
			s.logger.Printf("Ошибка при отправке кадра клиенту: %v", err)
		}
	}
}

// BroadcastState уведомляет всех клиентов о смене фазы приложения
func (s *Server) BroadcastState(state string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(StateMessage{Type: MessageTypeState, State: state}); err != nil {
			s.logger.Printf("Ошибка при отправке состояния клиенту: %v", err)
		}
	}
}
