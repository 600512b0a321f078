// Package recommend implements the recommendation panel, which refetches
// the signed-in user's recommendations whenever any rating changes.
package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/okian/gamerec/internal/adapters/eventbus"
	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/pkg/logger"
	"github.com/okian/gamerec/pkg/metrics"
)

// Fetcher loads the recommendation set.
type Fetcher interface {
	Recommended(ctx context.Context) ([]model.Game, error)
}

// Identity answers whether a user is signed in.
type Identity interface {
	Authenticated() bool
}

// Panel shows the recommendations of the signed-in user.
type Panel struct {
	fetcher  Fetcher
	events   eventbus.Subscriber
	identity Identity
	logger   logger.Logger

	mu      sync.Mutex
	items   []model.Game
	mounted bool
	gen     uint64 // bumped on every mount and unmount
	started uint64 // sequence of the last fetch started
	applied uint64 // sequence of the last fetch whose result is shown
	sub     *eventbus.Subscription
	ctx     context.Context

	refreshes int
	inflight  conc.WaitGroup
}

// Option applies a configuration option to the Panel.
type Option func(*Panel)

// WithLogger sets the panel logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Panel) {
		if l != nil {
			p.logger = l
		}
	}
}

// New builds an unmounted panel.
func New(fetcher Fetcher, events eventbus.Subscriber, identity Identity, opts ...Option) *Panel {
	p := &Panel{
		fetcher:  fetcher,
		events:   events,
		identity: identity,
		logger:   logger.Get().Named("recommend"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mount fetches the recommendations and listens for rating changes until
// Unmount. Anonymous users get an empty panel that neither fetches nor
// listens. The initial fetch completes before Mount returns.
func (p *Panel) Mount(ctx context.Context) {
	if !p.identity.Authenticated() {
		p.mu.Lock()
		p.items = nil
		p.mu.Unlock()
		metrics.UpdatePanelItems(0)
		return
	}

	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = true
	p.gen++
	p.ctx = context.WithoutCancel(ctx)
	p.sub = p.events.Subscribe(p.onRatingChanged)
	seq, gen := p.begin()
	p.mu.Unlock()

	p.logger.Debug(ctx, "panel mounted")
	p.recoverFetch(p.ctx, seq, gen)
}

func (p *Panel) onRatingChanged(ctx context.Context, e model.RatingChanged) {
	p.mu.Lock()
	if !p.mounted {
		p.mu.Unlock()
		return
	}
	seq, gen := p.begin()
	fctx := p.ctx
	// Registered under the lock so Unmount's wait covers it.
	p.inflight.Go(func() { p.recoverFetch(fctx, seq, gen) })
	p.mu.Unlock()

	p.logger.Debug(ctx, "rating changed, refetching",
		logger.String("event_id", e.ID),
		logger.Subject(e.SubjectID),
	)
}

// begin reserves the next fetch sequence. Callers hold p.mu.
func (p *Panel) begin() (seq, gen uint64) {
	p.started++
	p.refreshes++
	return p.started, p.gen
}

// recoverFetch runs one fetch. A panicking fetcher is logged and counts
// as a fetch that returned nothing.
func (p *Panel) recoverFetch(ctx context.Context, seq, gen uint64) {
	var c panics.Catcher
	c.Try(func() { p.fetch(ctx, seq, gen) })
	if r := c.Recovered(); r != nil {
		p.logger.Error(ctx, "recommendation fetch panicked",
			logger.String("panic", r.String()),
		)
		p.apply(seq, gen, nil)
	}
}

func (p *Panel) fetch(ctx context.Context, seq, gen uint64) {
	start := time.Now()
	items, err := p.fetcher.Recommended(ctx)
	metrics.RecordPanelFetch(float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		p.logger.Warn(ctx, "fetch recommendations", logger.Error(err))
		items = nil
	}
	p.apply(seq, gen, items)
}

// apply shows items unless a later mount, unmount or fetch superseded them.
func (p *Panel) apply(seq, gen uint64, items []model.Game) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted || gen != p.gen || seq < p.applied {
		return
	}
	p.applied = seq
	p.items = items
	metrics.UpdatePanelItems(len(items))
}

// Unmount stops listening and waits for refetches in flight. Their
// results are dropped.
func (p *Panel) Unmount() {
	p.mu.Lock()
	if !p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = false
	p.gen++
	sub := p.sub
	p.sub = nil
	p.items = nil
	p.mu.Unlock()

	sub.Unsubscribe()
	p.Wait()
	metrics.UpdatePanelItems(0)
}

// Wait blocks until refetches started so far have finished.
func (p *Panel) Wait() { p.inflight.Wait() }

// Items returns the recommendations currently shown.
func (p *Panel) Items() []model.Game {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Game(nil), p.items...)
}

// Refreshes returns the number of fetches issued since construction.
func (p *Panel) Refreshes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshes
}

// Mounted reports whether the panel is mounted.
func (p *Panel) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}
