package api

import (
	"net/http"

	"github.com/okian/gamerec/internal/domain/model"
)

// handleHome handles GET /api/home.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := s.deps.Home(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// handleSearch handles GET /api/games/search?q=&genre=&platform=&min_rating=&max_price=&sort_by=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	f := model.ParseSearchFilters(r.URL.Query())
	if err := s.validate.Struct(f); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}
	games, err := s.deps.Search(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// handleGame handles GET /api/games/{id}.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	g, err := s.deps.GameDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleToggleLike handles POST /api/games/{id}/like.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	g, err := s.deps.ToggleLike(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
