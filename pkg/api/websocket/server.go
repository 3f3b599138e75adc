// Package websocket streams search session views to browsers.
package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/navigation"
)

// Server upgrades search stream requests
type Server struct {
	hub      *Hub
	sessions Sessions
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewServer creates a stream server. allowedOrigins may contain "*".
func NewServer(sessions Sessions, allowedOrigins []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := NewHub(logger)
	go hub.Run()

	return &Server{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		logger: logger,
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeHTTP upgrades the connection and attaches it to the session named by
// the "session" parameter. A "query" parameter starts a search right away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st, err := navigation.Parse(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	session, _ := s.sessions.GetOrCreate(r.URL.Query().Get("session"))
	client := NewClient(s.hub, conn, session, s.logger)
	s.hub.Register(client)

	go client.WritePump()
	go client.Watch()

	if st.Query != "" {
		client.search(st)
	} else {
		client.sendView(session.View())
	}

	go client.ReadPump()

	s.logger.Debug("new search stream",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("session", session.ID()))
}

// Hub returns the underlying hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Stop closes every stream
func (s *Server) Stop() {
	s.hub.Stop()
}
