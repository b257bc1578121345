package console

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamarketings/Operator/internal/models"
	"github.com/iamarketings/Operator/internal/store"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Frame is one message of the live feed. Calls is set on "calls" frames and
// Change on "store" frames.
type Frame struct {
	Type   string        `json:"type"`
	Calls  []models.Call `json:"calls,omitempty"`
	Change *store.Change `json:"change,omitempty"`
}

func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	calls, stopCalls := s.sim.Subscribe(8)
	defer stopCalls()
	changes, stopChanges := s.store.Subscribe(32)
	defer stopChanges()

	closed := make(chan struct{})
	go readPump(conn, closed)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := writeFrame(conn, Frame{Type: "calls", Calls: s.sim.Calls()}); err != nil {
		return
	}
	for {
		var err error
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case c := <-calls:
			err = writeFrame(conn, Frame{Type: "calls", Calls: c})
		case ch := <-changes:
			err = writeFrame(conn, Frame{Type: "store", Change: &ch})
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			s.logger.Debug("live feed closed", "error", err)
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}

// readPump discards client messages and closes done when the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
