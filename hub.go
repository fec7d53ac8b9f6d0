package arena

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub tracks connected clients by player id and implements Sink for a game.
// Snapshots go out as msgpack binary frames, everything else as JSON text.
type Hub struct {
	log *slog.Logger

	mu         sync.RWMutex
	clients    map[EntityID]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates an empty hub. Run must be started before clients attach.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:        log,
		clients:    make(map[EntityID]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
		ipConns:    make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events until ctx is done
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, c := range h.clients {
				delete(h.clients, id)
				close(c.send)
			}
			h.mu.Unlock()
			h.drain()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.playerID] = c
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.playerID]; ok && cur == c {
				delete(h.clients, c.playerID)
				close(c.send)
			}
			h.mu.Unlock()
			c.game.RemovePlayer(c.playerID)
			h.log.Info("client disconnected", "player", c.playerID, "addr", c.remoteAddr)
		}
	}
}

// drain settles clients still queued when Run stops
func (h *Hub) drain() {
	for {
		select {
		case c := <-h.register:
			close(c.send)
		case c := <-h.unregister:
			c.game.RemovePlayer(c.playerID)
		default:
			return
		}
	}
}

// attach hands c to Run. It reports false once the hub has stopped.
func (h *Hub) attach(c *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// detach hands c back to Run, or drops its player directly when Run has
// already returned.
func (h *Hub) detach(c *Client) {
	select {
	case <-h.done:
		c.game.RemovePlayer(c.playerID)
		return
	default:
	}
	select {
	case h.unregister <- c:
	case <-h.done:
		c.game.RemovePlayer(c.playerID)
	}
}

// encode marshals an envelope once for any number of recipients
func (h *Hub) encode(env Envelope) (data []byte, binary bool, ok bool) {
	var err error
	if env.T == MsgState {
		data, err = msgpack.Marshal(env)
		binary = true
	} else {
		data, err = json.Marshal(env)
	}
	if err != nil {
		h.log.Error("encode failed", "type", env.T, "err", err)
		return nil, false, false
	}
	return data, binary, true
}

// Send delivers an envelope to one player, if connected
func (h *Hub) Send(recipient EntityID, env Envelope) {
	h.mu.RLock()
	c, ok := h.clients[recipient]
	h.mu.RUnlock()
	if !ok {
		return
	}
	data, binary, ok := h.encode(env)
	if !ok {
		return
	}
	c.deliver(data, binary)
}

// Broadcast delivers an envelope to every connected player
func (h *Hub) Broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}
	data, binary, ok := h.encode(env)
	if !ok {
		return
	}
	for _, c := range h.clients {
		c.deliver(data, binary)
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
