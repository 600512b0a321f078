// Package api exposes a gamerec instance over HTTP: the session, the
// catalog pages, the rating widgets and the recommendation panel.
package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/okian/gamerec/internal/adapters/http/swagger"
	service "github.com/okian/gamerec/internal/app"
	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/internal/rating"
	"github.com/okian/gamerec/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	StatsProvider

	Login(ctx context.Context, c model.Credentials) (model.User, error)
	Register(ctx context.Context, r model.Registration) (model.User, error)
	Logout(ctx context.Context)
	CurrentUser() (model.User, bool)

	Home(ctx context.Context) (service.Home, error)
	Search(ctx context.Context, f model.SearchFilters) ([]model.Game, error)
	GameDetail(ctx context.Context, id int64) (model.Game, error)
	ToggleLike(ctx context.Context, id int64) (model.Game, error)

	MountWidget(ctx context.Context, subject string) (*rating.Widget, error)
	Widget(subject string) (*rating.Widget, bool)
	UnmountWidget(subject string) bool
	Recommendations() (service.Recommendations, error)

	Favorites(ctx context.Context) ([]model.Game, error)
	UpdateProfile(ctx context.Context, p model.ProfileUpdate) (model.User, error)
	MyRatings(ctx context.Context) ([]model.UserRating, error)
}

// Server wires HTTP routes for the gamerec API.
type Server struct {
	deps     Dependencies
	validate *validator.Validate
	origins  []string
	logger   logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins that may call the API.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		origins:       []string{"http://localhost:3000"},
		logger:        logger.Get().Named("api"),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(MetricsMiddleware)

	s.Register(r)
	return r
}

// Register attaches all routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", s.healthHandler.MetricsHandler())
	r.Get("/stats", s.statsHandler.HandleStats)
	swagger.Register(r)

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/", s.handleLogin)
			r.Delete("/", s.handleLogout)
			r.Post("/register", s.handleRegister)
		})

		r.Get("/home", s.handleHome)
		r.Route("/games", func(r chi.Router) {
			r.Get("/search", s.handleSearch)
			r.Get("/{id}", s.handleGame)
			r.Post("/{id}/like", s.handleToggleLike)
		})

		r.Route("/widgets/{id}", func(r chi.Router) {
			r.Put("/", s.handleMountWidget)
			r.Get("/", s.handleGetWidget)
			r.Delete("/", s.handleUnmountWidget)
			r.Put("/preview", s.handleSetPreview)
			r.Delete("/preview", s.handleClearPreview)
			r.Post("/rating", s.handleSelectRating)
		})
		r.Get("/recommendations", s.handleRecommendations)

		r.Route("/profile", func(r chi.Router) {
			r.Put("/", s.handleUpdateProfile)
			r.Get("/favorites", s.handleFavorites)
			r.Get("/ratings", s.handleMyRatings)
		})
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads a JSON body into dst and validates it. It writes the 400
// itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMalformedBody)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return false
	}
	return true
}

func gameID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrBadGameID
	}
	return id, nil
}
