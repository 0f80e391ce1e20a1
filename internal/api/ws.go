package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/model"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongReply = "pong"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSubscriber adapts a websocket connection to the bus. Writes are
// serialized: the bus broadcasts from the scheduler goroutine while the
// read loop replies to pings.
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSubscriber) Send(ev model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteJSON(ev)
}

func (s *wsSubscriber) writeText(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &wsSubscriber{conn: conn}
	s.bus.Subscribe(sub)
	zap.L().Info("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	defer func() {
		s.bus.Unsubscribe(sub)
		conn.Close()
		zap.L().Info("websocket client disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType == websocket.TextMessage && string(data) == "ping" {
			if err := sub.writeText(wsPongReply); err != nil {
				return
			}
		}
	}
}
