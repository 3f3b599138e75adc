package websocket

import (
	"sync"

	"go.uber.org/zap"
)

const (
	// DefaultMaxClients is the maximum number of concurrent stream clients
	DefaultMaxClients = 10000
)

// Hub tracks the open search streams
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// done signals the Run goroutine to exit
	done     chan struct{}
	stopOnce sync.Once

	maxClients int

	logger *zap.Logger
}

// NewHub creates a new Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		maxClients: DefaultMaxClients,
		logger:     logger,
	}
}

// Run runs the hub event loop. It exits when Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= h.maxClients {
				h.mu.Unlock()
				h.logger.Warn("max clients reached, rejecting connection",
					zap.Int("max_clients", h.maxClients))
				client.close()
				continue
			}
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered",
				zap.String("session", client.session.ID()),
				zap.Int("total_clients", h.ClientCount()))

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.close()
			h.logger.Debug("client unregistered",
				zap.String("session", client.session.ID()),
				zap.Int("total_clients", h.ClientCount()))
		}
	}
}

// Register adds a client, or closes it when the hub is stopped
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

// Unregister removes a client and closes it
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client and stops the event loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
