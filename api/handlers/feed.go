package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lokmitra/case-api/models"
)

// Feed pushes case lifecycle events to connected dashboards so they do not
// have to poll /api/get-cases
type Feed struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

// NewFeed creates an empty feed hub
func NewFeed() *Feed {
	return &Feed{
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			// the API is open, same policy as the rest of the surface
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler upgrades the connection and keeps it subscribed until it closes
func (f *Feed) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("failed to upgrade case feed connection", "error", err)
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	f.mu.Unlock()
	zap.S().Debugw("case feed client connected", "remote", conn.RemoteAddr().String())

	// drain inbound frames; the feed is one-way
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				f.drop(conn)
				return
			}
		}
	}()
}

// Broadcast sends the event to every connected client, dropping the ones
// that fail
func (f *Feed) Broadcast(event string, c models.Case) {
	msg := models.CaseEvent{Event: event, CaseData: c}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteJSON(msg); err != nil {
			zap.S().Debugw("dropping case feed client", "error", err)
			delete(f.conns, conn)
			conn.Close()
		}
	}
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conns[conn]; ok {
		delete(f.conns, conn)
		conn.Close()
	}
}
