package api

import (
	"net/http"

	"github.com/okian/gamerec/internal/domain/model"
)

// handleFavorites handles GET /api/profile/favorites.
func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	games, err := s.deps.Favorites(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// handleUpdateProfile handles PUT /api/profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileUpdate
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.deps.UpdateProfile(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleMyRatings handles GET /api/profile/ratings.
func (s *Server) handleMyRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.deps.MyRatings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}
