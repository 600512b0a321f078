// Package service is the application layer of a gamerec instance: it owns
// the session, the mounted rating widgets and the recommendation panel,
// and serves the catalog pages the HTTP API exposes.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/okian/gamerec/internal/adapters/eventbus"
	"github.com/okian/gamerec/internal/adapters/kvstore"
	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/internal/rating"
	"github.com/okian/gamerec/internal/recommend"
	"github.com/okian/gamerec/internal/session"
	"github.com/okian/gamerec/pkg/logger"
)

// Backend is the part of the remote API the service uses.
type Backend interface {
	rating.Submitter
	recommend.Fetcher

	Register(ctx context.Context, r model.Registration) (model.AuthResult, error)
	Login(ctx context.Context, c model.Credentials) (model.AuthResult, error)
	Popular(ctx context.Context) ([]model.Game, error)
	Newest(ctx context.Context) ([]model.Game, error)
	Search(ctx context.Context, f model.SearchFilters) ([]model.Game, error)
	Game(ctx context.Context, id int64) (model.Game, error)
	Like(ctx context.Context, id int64) error
	Unlike(ctx context.Context, id int64) error
	Favorites(ctx context.Context) ([]model.Game, error)
	UpdateProfile(ctx context.Context, p model.ProfileUpdate) (model.User, error)
	Ratings(ctx context.Context) ([]model.UserRating, error)
}

// Home is the landing page.
type Home struct {
	Recommended []model.Game `json:"recommended"`
	Popular     []model.Game `json:"popular"`
	New         []model.Game `json:"new"`
}

// Recommendations is the recommendation panel as the page shows it.
type Recommendations struct {
	Items     []model.Game `json:"items"`
	Refreshes int          `json:"refreshes"`
	Mounted   bool         `json:"mounted"`
}

// Service wires the client runtime together.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store   kvstore.Store
	backend Backend
	bus     *eventbus.Bus
	session *session.Session

	// Mounted components
	panel   *recommend.Panel
	widgets map[string]*rating.Widget

	// State
	started  bool
	signouts conc.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the client key-value store. Defaults to a memory store.
func WithStore(store kvstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithBackend sets the remote API client. Required.
func WithBackend(b Backend) Option {
	return func(s *Service) {
		if b != nil {
			s.backend = b
		}
	}
}

// WithBus sets the notification bus. Defaults to a private bus.
func WithBus(b *eventbus.Bus) Option {
	return func(s *Service) {
		if b != nil {
			s.bus = b
		}
	}
}

// WithSession sets the session. Defaults to a session over the store.
func WithSession(sess *session.Session) Option {
	return func(s *Service) {
		if sess != nil {
			s.session = sess
		}
	}
}

// New constructs a Service. Collaborators not given as options get defaults.
func New(opts ...Option) *Service {
	s := &Service{widgets: make(map[string]*rating.Widget)}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = kvstore.NewMemoryStore()
	}
	if s.bus == nil {
		s.bus = eventbus.New()
	}
	if s.session == nil {
		s.session = session.New(s.store)
	}
	return s
}

// Start mounts the recommendation panel.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.backend == nil {
		return ErrNoBackend
	}

	s.logger.Info(ctx, "starting gamerec service...")
	s.panel = recommend.New(s.backend, s.bus, s.session)
	s.panel.Mount(ctx)
	s.started = true

	s.logger.Info(ctx, "gamerec service started",
		logger.Bool("authenticated", s.session.Authenticated()),
		logger.Int("recommendations", len(s.panel.Items())),
	)
	return nil
}

// Stop unmounts every widget and the panel.
func (s *Service) Stop() {
	s.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping gamerec service...")

	for subject, w := range s.widgets {
		w.Unmount()
		delete(s.widgets, subject)
	}
	s.panel.Unmount()
	s.started = false

	s.logger.Info(context.Background(), "gamerec service stopped")
}

// Session returns the session of this instance.
func (s *Service) Session() *session.Session { return s.session }

// Bus returns the notification bus of this instance.
func (s *Service) Bus() *eventbus.Bus { return s.bus }

// Panel returns the recommendation panel, or nil before Start.
func (s *Service) Panel() *recommend.Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panel
}

// Recommendations returns the panel's current items.
func (s *Service) Recommendations() (Recommendations, error) {
	panel := s.Panel()
	if panel == nil {
		return Recommendations{}, ErrNotStarted
	}
	items := panel.Items()
	if items == nil {
		items = []model.Game{}
	}
	return Recommendations{Items: items, Refreshes: panel.Refreshes(), Mounted: panel.Mounted()}, nil
}

// Authentication.

// Login signs in and remounts what depends on who is signed in.
func (s *Service) Login(ctx context.Context, c model.Credentials) (model.User, error) {
	res, err := s.backend.Login(ctx, c)
	if err != nil {
		return model.User{}, fmt.Errorf("login: %w", err)
	}
	return s.establish(ctx, res)
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, r model.Registration) (model.User, error) {
	res, err := s.backend.Register(ctx, r)
	if err != nil {
		return model.User{}, fmt.Errorf("register: %w", err)
	}
	return s.establish(ctx, res)
}

func (s *Service) establish(ctx context.Context, res model.AuthResult) (model.User, error) {
	if err := s.session.Establish(ctx, res); err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.widgets {
		w.Mount(ctx)
	}
	if s.started {
		s.panel.Unmount()
		s.panel.Mount(ctx)
	}
	return res.User, nil
}

// Logout clears the session and unmounts every widget and the panel.
func (s *Service) Logout(ctx context.Context) {
	s.session.Clear(ctx)
	s.signedOut(ctx)
}

// Unauthorized handles a token the backend rejected. The session is
// cleared at once; widgets and panel are torn down in the background since
// the rejected call may be the panel's own fetch.
func (s *Service) Unauthorized(ctx context.Context) {
	s.session.Clear(ctx)
	s.logger.Warn(ctx, "token rejected, signing out")

	bg := context.WithoutCancel(ctx)
	s.signouts.Go(func() { s.signedOut(bg) })
}

// Wait blocks until background sign-outs started by Unauthorized finished.
func (s *Service) Wait() { s.signouts.Wait() }

// signedOut unmounts what depends on the signed-in user, unless someone
// signed in again in the meantime.
func (s *Service) signedOut(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Authenticated() {
		return
	}
	for subject, w := range s.widgets {
		w.Unmount()
		delete(s.widgets, subject)
	}
	if s.started {
		s.panel.Unmount()
	}
	s.logger.Debug(ctx, "signed out")
}

// CurrentUser returns the signed-in user.
func (s *Service) CurrentUser() (model.User, bool) {
	return s.session.User()
}

// Rating widgets.

// MountWidget mounts the rating widget of subject, or returns the one
// already mounted.
func (s *Service) MountWidget(ctx context.Context, subject string) (*rating.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	if w, ok := s.widgets[subject]; ok {
		return w, nil
	}
	w, err := rating.New(subject, rating.Deps{
		Submitter: s.backend,
		Store:     s.store,
		Events:    s.bus,
		Identity:  s.session,
	})
	if err != nil {
		return nil, err
	}
	w.Mount(ctx)
	s.widgets[subject] = w
	return w, nil
}

// Widget returns the mounted widget of subject.
func (s *Service) Widget(subject string) (*rating.Widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.widgets[subject]
	return w, ok
}

// UnmountWidget unmounts the widget of subject. It reports whether one was mounted.
func (s *Service) UnmountWidget(subject string) bool {
	s.mu.Lock()
	w, ok := s.widgets[subject]
	delete(s.widgets, subject)
	s.mu.Unlock()

	if ok {
		w.Unmount()
	}
	return ok
}

// Widgets returns the states of all mounted widgets ordered by subject.
func (s *Service) Widgets() []model.WidgetState {
	s.mu.RLock()
	states := make([]model.WidgetState, 0, len(s.widgets))
	for _, w := range s.widgets {
		states = append(states, w.State())
	}
	s.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool { return states[i].SubjectID < states[j].SubjectID })
	return states
}

// Catalog.

// Home returns the landing page. The recommendations are the panel's
// current items. A popular or new list the backend fails to serve is
// replaced by the demo catalog.
func (s *Service) Home(ctx context.Context) (Home, error) {
	panel := s.Panel()
	if panel == nil {
		return Home{}, ErrNotStarted
	}
	home := Home{Recommended: panel.Items()}
	if home.Recommended == nil {
		home.Recommended = []model.Game{}
	}

	var err error
	if home.Popular, err = s.backend.Popular(ctx); err != nil {
		s.logger.Warn(ctx, "fetch popular games, showing demo catalog", logger.Error(err))
		home.Popular = demoGames()
	}
	if home.New, err = s.backend.Newest(ctx); err != nil {
		s.logger.Warn(ctx, "fetch new games, showing demo catalog", logger.Error(err))
		home.New = demoGames()
	}
	for _, list := range []*[]model.Game{&home.Popular, &home.New} {
		if *list == nil {
			*list = []model.Game{}
		}
	}
	return home, nil
}

// Search runs a catalog search. When the backend fails the demo catalog
// is returned instead.
func (s *Service) Search(ctx context.Context, f model.SearchFilters) ([]model.Game, error) {
	games, err := s.backend.Search(ctx, f)
	if err != nil {
		s.logger.Warn(ctx, "search games, showing demo catalog", logger.Error(err))
		return demoGames(), nil
	}
	return games, nil
}

// GameDetail returns one game.
func (s *Service) GameDetail(ctx context.Context, id int64) (model.Game, error) {
	return s.backend.Game(ctx, id)
}

// ToggleLike likes or unlikes the game depending on its current state and
// returns the game as it is after the backend accepted the change.
func (s *Service) ToggleLike(ctx context.Context, id int64) (model.Game, error) {
	if !s.session.Authenticated() {
		return model.Game{}, ErrAnonymous
	}
	g, err := s.backend.Game(ctx, id)
	if err != nil {
		return model.Game{}, err
	}
	if g.IsLiked {
		if err := s.backend.Unlike(ctx, id); err != nil {
			return model.Game{}, fmt.Errorf("unlike game %d: %w", id, err)
		}
		g.IsLiked = false
		g.Likes--
	} else {
		if err := s.backend.Like(ctx, id); err != nil {
			return model.Game{}, fmt.Errorf("like game %d: %w", id, err)
		}
		g.IsLiked = true
		g.Likes++
	}
	s.logger.Debug(ctx, "like toggled",
		logger.Subject(g.SubjectID()),
		logger.Bool("liked", g.IsLiked),
	)
	return g, nil
}

// Profile.

// Favorites lists the games the signed-in user liked.
func (s *Service) Favorites(ctx context.Context) ([]model.Game, error) {
	if !s.session.Authenticated() {
		return nil, ErrAnonymous
	}
	return s.backend.Favorites(ctx)
}

// UpdateProfile saves the profile and keeps the session user current.
func (s *Service) UpdateProfile(ctx context.Context, p model.ProfileUpdate) (model.User, error) {
	if !s.session.Authenticated() {
		return model.User{}, ErrAnonymous
	}
	u, err := s.backend.UpdateProfile(ctx, p)
	if err != nil {
		return model.User{}, err
	}
	s.session.SetUser(ctx, u)
	return u, nil
}

// MyRatings lists the signed-in user's ratings as the backend knows them.
func (s *Service) MyRatings(ctx context.Context) ([]model.UserRating, error) {
	if !s.session.Authenticated() {
		return nil, ErrAnonymous
	}
	return s.backend.Ratings(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"authenticated": s.session.Authenticated(),
		"widgets":       len(s.widgets),
		"subscribers":   s.bus.Len(),
	}
	if s.started {
		stats["panelMounted"] = s.panel.Mounted()
		stats["panelItems"] = len(s.panel.Items())
		stats["panelRefreshes"] = s.panel.Refreshes()
	}
	return stats
}
