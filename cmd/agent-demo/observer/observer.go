// Package observer is an operator-facing websocket surface for watching
// a Controller's ticks: a hub fanning out one-way broadcasts of
// automaton snapshots, one writer goroutine per connection.
package observer

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"goap-runtime/internal/goap"
	"goap-runtime/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Snapshot is the JSON shape broadcast to connected observers after
// every Controller.Step.
type Snapshot struct {
	Agent    string     `json:"agent"`
	Phase    string     `json:"phase"`
	Goal     string     `json:"goal,omitempty"`
	Plan     []string   `json:"plan,omitempty"`
	StepIdx  int        `json:"step_index"`
	World    goap.State `json:"world"`
	SensedAt time.Time  `json:"sensed_at"`
}

// Hub fans out Snapshots to every connected websocket client.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan Snapshot
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast pushes snapshot to every currently connected client,
// dropping it for any client whose send buffer is full rather than
// blocking the controller's tick loop.
func (h *Hub) Broadcast(snapshot Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- snapshot:
		default:
			log.Warn().Msg("observer: dropping snapshot for slow client")
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("observer: websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan Snapshot, 16)}
	h.register(c)

	go func() {
		defer func() {
			h.unregister(c)
			_ = conn.Close()
		}()
		for snapshot := range c.send {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		}
	}()

	// Observers are read-only; drain and discard any inbound frames so
	// control frames are processed and a client close is detected
	// promptly.
	go func() {
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Router builds the chi mux for the observer surface: /healthz and /ws,
// with permissive CORS for local tooling, matching cmd/game-server's
// cors.Handler wiring. Returned as chi.Router (not bare http.Handler) so
// callers can mount additional routes, as cmd/agent-demo does for its
// /storm and /clear demo-control endpoints.
func (h *Hub) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))
	r.Use(logging.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", h.serveWS)
	return r
}

// SnapshotJSON is a convenience for logging/debugging a snapshot outside
// the websocket path.
func SnapshotJSON(s Snapshot) string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}
