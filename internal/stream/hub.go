// Package stream publishes wave height snapshots to websocket clients and
// collects the droplets they request.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait       = 2 * time.Second
	requestCapacity = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub tracks connected clients. Broadcast may be called from one goroutine
// while ServeHTTP handles connections on others.
type Hub struct {
	mesh     []byte
	requests chan Disturbance
	log      *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub prepares a hub that greets each client with m.
func NewHub(m MeshMessage, log *slog.Logger) (*Hub, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		mesh:     payload,
		requests: make(chan Disturbance, requestCapacity),
		log:      log,
		clients:  make(map[*websocket.Conn]*sync.Mutex),
	}, nil
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	connMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteMessage(websocket.TextMessage, h.mesh)
	connMu.Unlock()
	if err != nil {
		h.log.Warn("sending mesh failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = connMu
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()
	h.log.Info("client connected", "remote", r.RemoteAddr)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("websocket read failed", "remote", r.RemoteAddr, "err", err)
			}
			break
		}
		switch msg.Type {
		case "disturb":
			select {
			case h.requests <- msg.Disturbance:
			default:
				h.log.Warn("dropping disturbance, queue full", "row", msg.Row, "col", msg.Col)
			}
		default:
			h.log.Debug("ignoring client message", "type", msg.Type)
		}
	}
	h.log.Info("client disconnected", "remote", r.RemoteAddr)
}

// Broadcast sends a binary frame to every client. Clients that fail are
// closed and forgotten.
func (h *Hub) Broadcast(frame []byte) {
	var failed []*websocket.Conn
	h.mu.RLock()
	for conn, connMu := range h.clients {
		connMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.BinaryMessage, frame)
		connMu.Unlock()
		if err != nil {
			h.log.Warn("websocket write failed", "remote", conn.RemoteAddr(), "err", err)
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}
}

// Clients reports how many clients are connected.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Drain hands every queued disturbance to apply without blocking.
func (h *Hub) Drain(apply func(Disturbance)) int {
	n := 0
	for {
		select {
		case d := <-h.requests:
			apply(d)
			n++
		default:
			return n
		}
	}
}
