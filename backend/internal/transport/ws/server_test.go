package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"github.com/villuna/tumblin-down/backend/internal/render"
)

// recordSink запоминает события управления для проверок
type recordSink struct {
	mu      sync.Mutex
	keys    []string
	downs   []bool
	resizes [][2]uint32
}

func (s *recordSink) ProcessKey(code string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, code)
	s.downs = append(s.downs, down)
}

func (s *recordSink) Resize(width, height uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizes = append(s.resizes, [2]uint32{width, height})
}

func (s *recordSink) lastKey() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.keys) == 0 {
		return "", false
	}
	return s.keys[len(s.keys)-1], s.downs[len(s.downs)-1]
}

func newTestServer(t *testing.T, sink Sink) (*Server, *websocket.Conn) {
	t.Helper()

	server := NewServer(sink, 1000, [4]float32{0.5, 0.82, 0.98, 1}, func() string { return "loading" })
	httpServer := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	t.Cleanup(httpServer.Close)

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("ошибка подключения: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return server, conn
}

func TestServer_InitMessage(t *testing.T) {
	_, conn := newTestServer(t, &recordSink{})

	var init InitMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&init); err != nil {
		t.Fatalf("ошибка чтения приветствия: %v", err)
	}
	if init.Type != MessageTypeInit {
		t.Errorf("тип приветствия %q", init.Type)
	}
	if init.PoolCapacity != 1000 {
		t.Errorf("емкость пула в приветствии %d", init.PoolCapacity)
	}
	if init.State != "loading" {
		t.Errorf("фаза в приветствии %q", init.State)
	}
}

func TestServer_InputRouted(t *testing.T) {
	sink := &recordSink{}
	_, conn := newTestServer(t, sink)

	if err := conn.WriteJSON(InputMessage{Type: MessageTypeInput, Code: "KeyW", Down: true}); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		code, down := sink.lastKey()
		return code == "KeyW" && down
	}, "событие клавиатуры не дошло до приемника")
}

func TestServer_ResizeRouted(t *testing.T) {
	sink := &recordSink{}
	_, conn := newTestServer(t, sink)

	if err := conn.WriteJSON(ResizeMessage{Type: MessageTypeResize, Width: 800, Height: 600}); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.resizes) == 1 && sink.resizes[0] == [2]uint32{800, 600}
	}, "изменение размеров не дошло до приемника")
}

func TestServer_PingPong(t *testing.T) {
	_, conn := newTestServer(t, &recordSink{})

	// Пропускаем приветствие
	var init InitMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&init); err != nil {
		t.Fatal(err)
	}

	if err := conn.WriteJSON(map[string]interface{}{"type": MessageTypePing, "client_time": 123.0}); err != nil {
		t.Fatal(err)
	}

	var pong PongMessage
	if err := conn.ReadJSON(&pong); err != nil {
		t.Fatalf("ошибка чтения pong: %v", err)
	}
	if pong.Type != MessageTypePong || pong.ClientTime != 123.0 {
		t.Errorf("неверный pong: %+v", pong)
	}
}

func TestServer_UnknownMessageIgnored(t *testing.T) {
	sink := &recordSink{}
	server, conn := newTestServer(t, sink)

	if err := conn.WriteJSON(map[string]interface{}{"type": "wat"}); err != nil {
		t.Fatal(err)
	}
	// Соединение обязано пережить незнакомое сообщение
	if err := conn.WriteJSON(InputMessage{Type: MessageTypeInput, Code: "KeyA", Down: true}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		code, _ := sink.lastKey()
		return code == "KeyA"
	}, "соединение не пережило незнакомое сообщение")

	if server.ClientCount() != 1 {
		t.Errorf("клиентов %d, ожидался 1", server.ClientCount())
	}
}

func TestRemoteSurface_NoClientsLost(t *testing.T) {
	server := NewServer(&recordSink{}, 10, [4]float32{}, func() string { return "playing" })
	surface := NewRemoteSurface(server)

	if err := surface.Configure(640, 480); err != nil {
		t.Fatal(err)
	}
	if err := surface.Acquire(); !errors.Is(err, render.ErrSurfaceLost) {
		t.Errorf("без клиентов ожидался ErrSurfaceLost, получено %v", err)
	}
}

func TestRemoteSurface_BroadcastsFrame(t *testing.T) {
	sink := &recordSink{}
	server, conn := newTestServer(t, sink)
	surface := NewRemoteSurface(server)

	// Пропускаем приветствие
	var init InitMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&init); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return server.ClientCount() == 1 }, "клиент не зарегистрировался")
	if err := surface.Acquire(); err != nil {
		t.Fatalf("с клиентом Acquire должен проходить: %v", err)
	}

	frame := &render.Frame{
		Camera: render.CameraUniform{Position: mgl32.Vec4{0, 2, 6, 1}, Matrix: mgl32.Ident4()},
		Light:  render.LightUniform{Position: mgl32.Vec4{2, 3, 2, 1}, Colour: mgl32.Vec4{0.96, 0.68, 1, 1}},
		Clear:  mgl32.Vec4{0.5, 0.82, 0.98, 1},
		Instances: []render.InstanceRaw{
			{Model: mgl32.Ident4(), Rotation: mgl32.Ident3()},
		},
	}
	if err := surface.Present(frame); err != nil {
		t.Fatal(err)
	}

	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("кадр не дошел до клиента: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Fatalf("кадр должен быть бинарным сообщением, тип %d", msgType)
	}
	decoded, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("кадр не декодируется: %v", err)
	}
	if len(decoded.Instances) != 1 {
		t.Errorf("инстансов в кадре %d", len(decoded.Instances))
	}
	if decoded.Camera.Position != frame.Camera.Position {
		t.Errorf("позиция камеры исказилась: %v", decoded.Camera.Position)
	}
}

// waitFor опрашивает условие с таймаутом: события приходят из горутины чтения
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// проверка, что json-теги сообщений совместимы с клиентской стороной
func TestMessages_WireFormat(t *testing.T) {
	data, err := json.Marshal(InputMessage{Type: MessageTypeInput, Code: "KeyW", Down: true})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"input","code":"KeyW","down":true}`
	if string(data) != want {
		t.Errorf("формат input: %s", data)
	}
}
