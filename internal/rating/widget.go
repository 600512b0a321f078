// Package rating implements the star rating widget: its interaction state,
// the pessimistic submission to the backend, the local cache mirror and the
// change notification.
package rating

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/gamerec/internal/adapters/eventbus"
	"github.com/okian/gamerec/internal/adapters/kvstore"
	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/pkg/logger"
	"github.com/okian/gamerec/pkg/metrics"
)

// Submitter sends a rating to the backend.
type Submitter interface {
	SubmitRating(ctx context.Context, subjectID string, value model.Score) error
}

// Identity answers who is acting, read on every call.
type Identity interface {
	Authenticated() bool
	Rater() string
}

// Deps are the collaborators a widget needs.
type Deps struct {
	Submitter Submitter
	Store     kvstore.Store
	Events    eventbus.Publisher
	Identity  Identity
}

func (d Deps) validate() error {
	switch {
	case d.Submitter == nil:
		return errors.New("rating: nil submitter")
	case d.Store == nil:
		return errors.New("rating: nil store")
	case d.Events == nil:
		return errors.New("rating: nil publisher")
	case d.Identity == nil:
		return errors.New("rating: nil identity")
	}
	return nil
}

// ErrEmptySubject is returned by New for a blank subject id.
var ErrEmptySubject = errors.New("rating: empty subject id")

// Widget is the rating control of one subject. It is safe for concurrent
// use; the mutex is never held while the backend is called.
type Widget struct {
	subject string
	deps    Deps
	logger  logger.Logger

	mu         sync.Mutex
	current    model.Score
	preview    model.Score
	submitting bool
	mounted    bool
}

// Option applies a configuration option to the Widget.
type Option func(*Widget)

// WithLogger sets the widget logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// New builds an unmounted widget for subject.
func New(subject string, deps Deps, opts ...Option) (*Widget, error) {
	if subject == "" {
		return nil, ErrEmptySubject
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	w := &Widget{
		subject: subject,
		deps:    deps,
		logger:  logger.Get().Named("rating"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.Subject(subject))
	return w, nil
}

// Subject returns the rated subject id.
func (w *Widget) Subject() string { return w.subject }

// Mount initialises the committed value from the local cache. The cached
// value is a hint: it is not checked against the backend.
func (w *Widget) Mount(ctx context.Context) {
	current := w.cached(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.mounted {
		metrics.AddMountedWidgets(1)
	}
	w.mounted = true
	w.current = current
	w.preview = model.Unrated
}

func (w *Widget) cached(ctx context.Context) model.Score {
	rater := w.deps.Identity.Rater()
	if !w.deps.Identity.Authenticated() || rater == "" {
		return model.Unrated
	}
	key := kvstore.RatingKey(rater, w.subject)
	raw, err := w.deps.Store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			w.logger.Warn(ctx, "read cached rating", logger.String("key", key), logger.Error(err))
		}
		return model.Unrated
	}
	v, ok := model.ParseScore(raw)
	if !ok {
		w.logger.Warn(ctx, "ignoring unparsable cached rating", logger.String("key", key), logger.String("value", raw))
	}
	return v
}

// Select submits candidate as the acting user's rating. It never fails
// the caller; the Outcome says what happened.
func (w *Widget) Select(ctx context.Context, candidate model.Score) Outcome {
	outcome := w.selectRating(ctx, candidate)
	metrics.RecordRatingOutcome(outcome.String())
	return outcome
}

func (w *Widget) selectRating(ctx context.Context, candidate model.Score) Outcome {
	if !candidate.Valid() {
		w.logger.Error(ctx, "rating out of range", logger.Int("value", int(candidate)))
		return OutcomeInvalid
	}
	// Without a rater the cache key would be shared by every such user.
	rater := w.deps.Identity.Rater()
	if !w.deps.Identity.Authenticated() || rater == "" {
		return OutcomeAnonymous
	}

	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return OutcomeDiscarded
	}
	if w.submitting {
		w.mu.Unlock()
		return OutcomeBusy
	}
	w.submitting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	// The call outlives a cancelled caller; only the client timeout bounds it.
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	err := w.deps.Submitter.SubmitRating(ctx, w.subject, candidate)
	metrics.RecordRatingLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		w.logger.Warn(ctx, "rating submission failed",
			logger.Rater(rater),
			logger.Int("value", int(candidate)),
			logger.Error(err),
		)
		return OutcomeFailed
	}

	w.mu.Lock()
	mounted := w.mounted
	if mounted {
		w.current = candidate
	}
	w.mu.Unlock()

	key := kvstore.RatingKey(rater, w.subject)
	if err := w.deps.Store.Set(ctx, key, candidate.String()); err != nil {
		w.logger.Warn(ctx, "cache rating", logger.String("key", key), logger.Error(err))
	}
	w.deps.Events.Publish(ctx, model.NewRatingChanged(w.subject, candidate))

	w.logger.Info(ctx, "rating committed",
		logger.Rater(rater),
		logger.Int("value", int(candidate)),
		logger.Bool("mounted", mounted),
	)
	if !mounted {
		return OutcomeDiscarded
	}
	return OutcomeCommitted
}

// SetPreview shows v as a hover preview. Invalid values are ignored, as is
// any call while submitting or unmounted.
func (w *Widget) SetPreview(v model.Score) {
	if !v.Valid() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting || !w.mounted {
		return
	}
	w.preview = v
}

// ClearPreview removes the hover preview.
func (w *Widget) ClearPreview() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting || !w.mounted {
		return
	}
	w.preview = model.Unrated
}

// Stars reports which of the five positions render filled.
func (w *Widget) Stars() [5]bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fill(w.current, w.preview)
}

func fill(current, preview model.Score) [5]bool {
	var stars [5]bool
	shown := current
	if preview > model.Unrated {
		shown = preview
	}
	for p := range stars {
		stars[p] = model.Score(p+1) <= shown
	}
	return stars
}

// State returns a snapshot of the interaction state.
func (w *Widget) State() model.WidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return model.WidgetState{
		SubjectID:  w.subject,
		Current:    w.current,
		Preview:    w.preview,
		Submitting: w.submitting,
		Stars:      fill(w.current, w.preview),
	}
}

// Mounted reports whether the widget is mounted.
func (w *Widget) Mounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mounted
}

// Unmount detaches the widget. A submission in flight still completes but
// no longer changes the widget.
func (w *Widget) Unmount() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.mounted {
		return
	}
	w.mounted = false
	w.preview = model.Unrated
	metrics.AddMountedWidgets(-1)
}
