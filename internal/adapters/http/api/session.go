package api

import (
	"errors"
	"net/http"

	"github.com/okian/gamerec/internal/adapters/backend"
	"github.com/okian/gamerec/internal/domain/model"
)

type sessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user,omitempty"`
}

func newSessionResponse(u model.User, ok bool) sessionResponse {
	if !ok {
		return sessionResponse{}
	}
	return sessionResponse{Authenticated: true, User: &u}
}

// handleGetSession handles GET /api/session.
func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newSessionResponse(s.deps.CurrentUser()))
}

// handleLogin handles POST /api/session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.deps.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(u, true))
}

// handleRegister handles POST /api/session/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.deps.Register(r.Context(), req)
	if err != nil {
		var se *backend.StatusError
		if errors.As(err, &se) && se.Code == http.StatusConflict {
			writeError(w, http.StatusConflict, "conflict", errors.New("email or username already registered"))
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(u, true))
}

// handleLogout handles DELETE /api/session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
