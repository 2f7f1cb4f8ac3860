package http

import (
	"sync"
	"sync/atomic"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// wsSession adapts one websocket connection to service.Session.
// Writes are serialized; fiber's websocket connection does not allow
// concurrent writers.
type wsSession struct {
	id     string
	conn   *websocket.Conn
	mu     sync.Mutex
	closed atomic.Bool
}

func newWSSession(conn *websocket.Conn) *wsSession {
	return &wsSession{
		id:   uuid.NewString(),
		conn: conn,
	}
}

func (s *wsSession) ID() string { return s.id }

func (s *wsSession) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.closed.Store(true)
		return err
	}
	return nil
}

func (s *wsSession) Closed() bool { return s.closed.Load() }

func (s *wsSession) markClosed() { s.closed.Store(true) }
