package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/navigation"
	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/search"
)

// SessionHeader carries the session id of a search response
const SessionHeader = "X-Search-Session"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleSearch runs the search described by the URL in the caller's
// session and answers with the view once every kind has settled, or right
// away when wait=false.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	st, err := navigation.Parse(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, created := s.deps.Sessions.GetOrCreate(values.Get("session"))
	view, err := sess.Update(st)
	if err != nil {
		if created {
			s.deps.Sessions.Delete(sess.ID())
		}
		writeError(w, statusFor(err), err)
		return
	}

	if values.Get("wait") != "false" {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.WaitTimeout)
		defer cancel()

		view, err = sess.Wait(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.DeadlineExceeded):
			s.logger.Warn("search did not settle in time",
				zap.String("session", sess.ID()),
				zap.String("query", st.Query),
				zap.Duration("timeout", s.config.WaitTimeout))
		default:
			// client went away
			return
		}
	}

	w.Header().Set(SessionHeader, sess.ID())
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteSession ends a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")
	if _, err := s.deps.Sessions.Get(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.deps.Sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleNetworks lists the selectable networks, or every network with all=true
func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	list := s.deps.Networks.ListSelectable()
	if r.URL.Query().Get("all") == "true" {
		list = s.deps.Networks.List()
	}
	if list == nil {
		list = []*network.Network{}
	}
	writeJSON(w, http.StatusOK, list)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrMalformedQuery),
		errors.Is(err, search.ErrNoNetworks),
		errors.Is(err, navigation.ErrInvalidTab),
		errors.Is(err, navigation.ErrInvalidPage):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
