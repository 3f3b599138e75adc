package websocket

import (
	"encoding/json"

	"github.com/0xmhha/explorer-search/pkg/search"
)

// Message types
const (
	// client to server
	MessageSearch = "search"
	MessagePing   = "ping"

	// server to client
	MessageView  = "view"
	MessageError = "error"
	MessagePong  = "pong"
)

// Message is the envelope of every frame
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SearchRequest changes what the session searches
type SearchRequest struct {
	Query    string   `json:"query"`
	Networks []string `json:"networks,omitempty"`
	Tab      string   `json:"tab,omitempty"`
	Page     int      `json:"page,omitempty"`
}

// ErrorMessage reports a rejected request
type ErrorMessage struct {
	Error string `json:"error"`
}

// Sessions hands out search sessions by id. *search.Store satisfies it.
type Sessions interface {
	GetOrCreate(id string) (*search.Session, bool)
}
