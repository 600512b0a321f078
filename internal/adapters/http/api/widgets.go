package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/internal/rating"
)

// ratingRequest is the body of the preview and rating routes. Range
// checks are the widget's: an out-of-range rating is answered with the
// "invalid" outcome, a preview out of range is ignored.
type ratingRequest struct {
	Rating *model.Score `json:"rating" validate:"required"`
}

type selectResponse struct {
	Outcome rating.Outcome    `json:"outcome"`
	State   model.WidgetState `json:"state"`
}

func (s *Server) widget(w http.ResponseWriter, r *http.Request) (*rating.Widget, bool) {
	wd, ok := s.deps.Widget(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrUnknownWidget)
		return nil, false
	}
	return wd, true
}

// handleMountWidget handles PUT /api/widgets/{id}.
func (s *Server) handleMountWidget(w http.ResponseWriter, r *http.Request) {
	wd, err := s.deps.MountWidget(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, rating.ErrEmptySubject) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wd.State())
}

// handleGetWidget handles GET /api/widgets/{id}.
func (s *Server) handleGetWidget(w http.ResponseWriter, r *http.Request) {
	wd, ok := s.widget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wd.State())
}

// handleUnmountWidget handles DELETE /api/widgets/{id}.
func (s *Server) handleUnmountWidget(w http.ResponseWriter, r *http.Request) {
	if !s.deps.UnmountWidget(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "not_found", ErrUnknownWidget)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetPreview handles PUT /api/widgets/{id}/preview.
func (s *Server) handleSetPreview(w http.ResponseWriter, r *http.Request) {
	wd, ok := s.widget(w, r)
	if !ok {
		return
	}
	var req ratingRequest
	if !s.decode(w, r, &req) {
		return
	}
	wd.SetPreview(*req.Rating)
	writeJSON(w, http.StatusOK, wd.State())
}

// handleClearPreview handles DELETE /api/widgets/{id}/preview.
func (s *Server) handleClearPreview(w http.ResponseWriter, r *http.Request) {
	wd, ok := s.widget(w, r)
	if !ok {
		return
	}
	wd.ClearPreview()
	writeJSON(w, http.StatusOK, wd.State())
}

// handleSelectRating handles POST /api/widgets/{id}/rating. It always
// answers 200; the outcome tells whether the rating was committed.
func (s *Server) handleSelectRating(w http.ResponseWriter, r *http.Request) {
	wd, ok := s.widget(w, r)
	if !ok {
		return
	}
	var req ratingRequest
	if !s.decode(w, r, &req) {
		return
	}
	out := wd.Select(r.Context(), *req.Rating)
	writeJSON(w, http.StatusOK, selectResponse{Outcome: out, State: wd.State()})
}

// handleRecommendations handles GET /api/recommendations.
func (s *Server) handleRecommendations(w http.ResponseWriter, _ *http.Request) {
	recs, err := s.deps.Recommendations()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
