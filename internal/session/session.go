// Package session holds the signed-in user and bearer token of this client
// instance and persists them in the client key-value store.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/okian/gamerec/internal/adapters/kvstore"
	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/pkg/logger"
)

// Store keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Errors returned by Establish.
var (
	ErrNoToken = errors.New("session: empty access token")
	ErrNoRater = errors.New("session: user without email")
)

// Session is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
	user  model.User

	store  kvstore.Store
	logger logger.Logger
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an anonymous session backed by store.
func New(store kvstore.Store, opts ...Option) *Session {
	s := &Session{store: store, logger: logger.Get().Named("session")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads a persisted session. A missing or corrupt entry leaves
// the session anonymous; store failures are logged and never returned.
func (s *Session) Restore(ctx context.Context) {
	token, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Warn(ctx, "restore session token", logger.Error(err))
		}
		return
	}
	raw, err := s.store.Get(ctx, UserKey)
	if err != nil {
		s.logger.Warn(ctx, "restore session user", logger.Error(err))
		return
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || strings.TrimSpace(token) == "" || u.RaterID() == "" {
		s.logger.Warn(ctx, "discarding corrupt persisted session")
		return
	}

	s.mu.Lock()
	s.token, s.user = token, u
	s.mu.Unlock()
	s.logger.Info(ctx, "session restored", logger.Rater(u.RaterID()))
}

// Establish adopts the result of a login or registration and persists it.
// Persistence failures are logged; the in-memory session is still set.
// A user without email is rejected since ratings are cached under it.
func (s *Session) Establish(ctx context.Context, r model.AuthResult) error {
	if r.AccessToken == "" {
		return ErrNoToken
	}
	if r.User.RaterID() == "" {
		return ErrNoRater
	}
	s.mu.Lock()
	s.token, s.user = r.AccessToken, r.User
	s.mu.Unlock()

	if err := s.store.Set(ctx, TokenKey, r.AccessToken); err != nil {
		s.logger.Warn(ctx, "persist session token", logger.Error(err))
	}
	s.persistUser(ctx, r.User)
	s.logger.Info(ctx, "session established", logger.Rater(r.User.RaterID()))
	return nil
}

// SetUser replaces the signed-in user, e.g. after a profile update.
// It does nothing for an anonymous session or a user without email.
func (s *Session) SetUser(ctx context.Context, u model.User) {
	if u.RaterID() == "" {
		s.logger.Warn(ctx, "ignoring session user without email")
		return
	}
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.user = u
	s.mu.Unlock()
	s.persistUser(ctx, u)
}

func (s *Session) persistUser(ctx context.Context, u model.User) {
	raw, err := json.Marshal(u)
	if err != nil {
		s.logger.Error(ctx, "encode session user", logger.Error(err))
		return
	}
	if err := s.store.Set(ctx, UserKey, string(raw)); err != nil {
		s.logger.Warn(ctx, "persist session user", logger.Error(err))
	}
}

// Clear drops the session from memory and from the store.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	was := s.user.RaterID()
	s.token, s.user = "", model.User{}
	s.mu.Unlock()

	for _, key := range []string{TokenKey, UserKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "delete persisted session", logger.String("key", key), logger.Error(err))
		}
	}
	if was != "" {
		s.logger.Info(ctx, "session cleared", logger.Rater(was))
	}
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Rater is the signed-in user's rating identity, or "".
func (s *Session) Rater() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return ""
	}
	return s.user.RaterID()
}

// User returns the signed-in user and whether there is one.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != ""
}

// Token returns the bearer token, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
