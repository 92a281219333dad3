package ws

import (
	"sync"

	"github.com/villuna/tumblin-down/backend/internal/render"
)

// RemoteSurface - поверхность, живущая в браузерах клиентов: кадр
// кодируется в бинарное сообщение и рассылается всем подключенным.
// Без клиентов поверхность считается потерянной, и кадр пропускается.
type RemoteSurface struct {
	mu     sync.Mutex
	server *Server

	width  uint32
	height uint32
}

var _ render.Surface = (*RemoteSurface)(nil)

// NewRemoteSurface создает поверхность поверх сервера
func NewRemoteSurface(server *Server) *RemoteSurface {
	return &RemoteSurface{server: server}
}

// Configure запоминает размеры поверхности
func (s *RemoteSurface) Configure(width, height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	return nil
}

// Size возвращает текущие размеры поверхности
func (s *RemoteSurface) Size() (uint32, uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Acquire проверяет, что кадр есть кому показывать
func (s *RemoteSurface) Acquire() error {
	if s.server.ClientCount() == 0 {
		return render.ErrSurfaceLost
	}
	return nil
}

// Present кодирует кадр и рассылает его клиентам
func (s *RemoteSurface) Present(frame *render.Frame) error {
	data, err := EncodeFrame(frame)
	if err != nil {
		return err
	}
	s.server.BroadcastBinary(data)
	return nil
}
