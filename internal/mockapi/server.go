// Package mockapi is an in-memory stand-in for the remote game
// recommendation API, used for local development and end-to-end tests.
package mockapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/pkg/logger"
)

const listLimit = 10

// Server serves the mock API under /api.
type Server struct {
	secret   []byte
	cost     int
	now      func() time.Time
	validate *validator.Validate
	catalog  *catalog
	logger   logger.Logger

	failRatings atomic.Bool
	rateCalls   atomic.Int64
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithClock replaces time.Now for token issuing and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGames replaces the seeded catalog.
func WithGames(games []model.Game) Option {
	return func(s *Server) {
		s.catalog = newCatalog(games)
	}
}

// New returns a mock API signing tokens with secret.
func New(secret string, opts ...Option) *Server {
	s := &Server{
		secret:   []byte(secret),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		catalog:  newCatalog(seedGames()),
		logger:   logger.Get().Named("mockapi"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailRatings makes POST /games/{id}/rate answer 503 while on.
func (s *Server) FailRatings(on bool) { s.failRatings.Store(on) }

// RatingCalls returns the number of rate requests received.
func (s *Server) RatingCalls() int64 { return s.rateCalls.Load() }

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.identify)
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.With(requireUser).Get("/auth/me", s.handleMe)

		r.Route("/games", func(r chi.Router) {
			r.With(requireUser).Get("/recommended", s.handleList(s.catalog.recommended))
			r.Get("/popular", s.handleList(s.catalog.popular))
			r.Get("/new", s.handleList(s.catalog.newest))
			r.Get("/search", s.handleSearch)
			r.Get("/{id}", s.handleGame)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/{id}/rate", s.handleRate)
				r.Post("/{id}/like", s.handleLike(true))
				r.Delete("/{id}/like", s.handleLike(false))
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/favorites", s.handleFavorites)
			r.Get("/ratings", s.handleRatings)
			r.Put("/profile", s.handleProfile)
		})
	})
	return r
}

type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detail{Detail: msg})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err == nil {
		err = json.Unmarshal(body, dst)
	}
	if err == nil {
		err = s.validate.Struct(dst)
	}
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, errUnknownGame.Error())
		return 0, false
	}
	return id, true
}

func (s *Server) authResult(w http.ResponseWriter, status int, u model.User) {
	token, err := s.issue(u.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, status, model.AuthResult{AccessToken: token, User: u})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if !s.decode(w, r, &req) {
		return
	}
	hash, err := hashPassword(req.Password, s.cost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	u, err := s.catalog.addUser(model.User{Username: req.Username, Email: req.Email, FullName: req.FullName}, hash)
	if err != nil {
		writeDetail(w, http.StatusConflict, err.Error())
		return
	}
	s.logger.Info(r.Context(), "account registered", logger.Rater(u.RaterID()))
	s.authResult(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if !s.decode(w, r, &req) {
		return
	}
	u, hash, ok := s.catalog.userByEmail(req.Email)
	if !ok || !checkPassword(hash, req.Password) {
		writeDetail(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}
	s.authResult(w, http.StatusOK, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := s.catalog.user(callerID(r))
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleList(list func(uid int64, limit int) []model.Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, list(callerID(r), listLimit))
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	f := model.ParseSearchFilters(r.URL.Query())
	if err := s.validate.Struct(f); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.search(callerID(r), f))
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	g, err := s.catalog.game(id, callerID(r))
	if err != nil {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type rateRequest struct {
	Rating model.Score `json:"rating" validate:"min=1,max=5"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	s.rateCalls.Add(1)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if s.failRatings.Load() {
		writeDetail(w, http.StatusServiceUnavailable, "rating service unavailable")
		return
	}
	var req rateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.catalog.rate(callerID(r), id, req.Rating); err != nil {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "rating saved", "game_id": id, "rating": req.Rating})
}

func (s *Server) handleLike(liked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := s.catalog.setLiked(callerID(r), id, liked); err != nil {
			writeDetail(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"game_id": id, "is_liked": liked})
	}
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.favorites(callerID(r)))
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.ratings(callerID(r)))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileUpdate
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.catalog.updateUser(callerID(r), req)
	switch {
	case errors.Is(err, errDuplicate):
		writeDetail(w, http.StatusConflict, err.Error())
	case err != nil:
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		writeJSON(w, http.StatusOK, u)
	}
}
