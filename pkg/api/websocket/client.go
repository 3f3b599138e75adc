package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/navigation"
	"github.com/0xmhha/explorer-search/pkg/search"
	"github.com/0xmhha/explorer-search/pkg/types"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client streams the views of one search session over a connection
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *search.Session
	send    chan []byte
	updates <-chan struct{}
	stop    func()

	done      chan struct{}
	closeOnce sync.Once

	logger *zap.Logger
}

// NewClient creates a client for session
func NewClient(hub *Hub, conn *websocket.Conn, session *search.Session, logger *zap.Logger) *Client {
	updates, stop := session.Updates()
	return &Client{
		hub:     hub,
		conn:    conn,
		session: session,
		send:    make(chan []byte, 64),
		updates: updates,
		stop:    stop,
		done:    make(chan struct{}),
		logger:  logger.With(zap.String("session", session.ID())),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ReadPump handles requests from the peer until the connection fails
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		c.handleMessage(message)
	}
}

// WritePump writes queued frames and pings until the client closes
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Watch pushes the session view whenever it may have changed
func (c *Client) Watch() {
	defer c.stop()

	for {
		select {
		case <-c.updates:
			c.sendView(c.session.View())
		case <-c.done:
			return
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError("invalid message format")
		return
	}

	switch msg.Type {
	case MessageSearch:
		c.handleSearch(msg.Payload)
	case MessagePing:
		c.sendMessage(Message{Type: MessagePong})
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *Client) handleSearch(payload json.RawMessage) {
	var req SearchRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.sendError("invalid search request")
		return
	}

	st := navigation.State{Query: req.Query, Networks: req.Networks, Page: req.Page}
	if req.Tab != "" {
		kind, err := types.ParseKind(req.Tab)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		st.Tab = kind
	}
	c.search(st)
}

func (c *Client) search(st navigation.State) {
	view, err := c.session.Update(st)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendView(view)
}

func (c *Client) sendView(view search.View) {
	payload, err := json.Marshal(view)
	if err != nil {
		c.logger.Error("failed to marshal view", zap.Error(err))
		return
	}
	c.sendMessage(Message{Type: MessageView, Payload: payload})
}

func (c *Client) sendError(errMsg string) {
	payload, _ := json.Marshal(ErrorMessage{Error: errMsg})
	c.sendMessage(Message{Type: MessageError, Payload: payload})
}

func (c *Client) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.logger.Warn("client send buffer full, dropping message")
	}
}
