package rating_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/gamerec/internal/adapters/eventbus"
	"github.com/okian/gamerec/internal/adapters/kvstore"
	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/internal/rating"
	"github.com/okian/gamerec/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

type identity struct {
	mu    sync.Mutex
	rater string
}

func (i *identity) Authenticated() bool { return i.Rater() != "" }

func (i *identity) Rater() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.rater
}

func (i *identity) set(rater string) {
	i.mu.Lock()
	i.rater = rater
	i.mu.Unlock()
}

// noRater holds a token but no email.
type noRater struct{}

func (noRater) Authenticated() bool { return true }
func (noRater) Rater() string       { return "" }

// submitter records calls. When gate is set each call blocks until a
// value is sent on it; started is signalled as a call begins.
type submitter struct {
	calls   atomic.Int32
	err     error
	gate    chan struct{}
	started chan struct{}
	ctxErr  atomic.Value
}

func (s *submitter) SubmitRating(ctx context.Context, _ string, _ model.Score) error {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	if err := ctx.Err(); err != nil {
		s.ctxErr.Store(err)
	}
	return s.err
}

type fixture struct {
	who    *identity
	remote *submitter
	store  *kvstore.MemoryStore
	bus    *eventbus.Bus
	events []model.RatingChanged
	evMu   sync.Mutex
	widget *rating.Widget
}

func newFixture(rater, subject string) *fixture {
	f := &fixture{
		who:    &identity{rater: rater},
		remote: &submitter{},
		store:  kvstore.NewMemoryStore(),
		bus:    eventbus.New(eventbus.WithLogger(logger.Nop())),
	}
	f.bus.Subscribe(func(_ context.Context, e model.RatingChanged) {
		f.evMu.Lock()
		f.events = append(f.events, e)
		f.evMu.Unlock()
	})
	w, err := rating.New(subject, rating.Deps{
		Submitter: f.remote,
		Store:     f.store,
		Events:    f.bus,
		Identity:  f.who,
	}, rating.WithLogger(logger.Nop()))
	if err != nil {
		panic(err)
	}
	f.widget = w
	return f
}

func (f *fixture) published() []model.RatingChanged {
	f.evMu.Lock()
	defer f.evMu.Unlock()
	return append([]model.RatingChanged(nil), f.events...)
}

func (f *fixture) cached(rater, subject string) (string, error) {
	return f.store.Get(context.Background(), kvstore.RatingKey(rater, subject))
}

func TestNew(t *testing.T) {
	Convey("Given widget construction", t, func() {
		f := newFixture("u1", "g42")

		Convey("Then a blank subject is rejected", func() {
			_, err := rating.New("", rating.Deps{Submitter: f.remote, Store: f.store, Events: f.bus, Identity: f.who})
			So(err, ShouldEqual, rating.ErrEmptySubject)
		})

		Convey("Then missing collaborators are rejected", func() {
			_, err := rating.New("g42", rating.Deps{Store: f.store, Events: f.bus, Identity: f.who})
			So(err, ShouldNotBeNil)
			_, err = rating.New("g42", rating.Deps{Submitter: f.remote, Events: f.bus, Identity: f.who})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSelectCommits(t *testing.T) {
	ctx := context.Background()

	Convey("Given rater u1 on subject g42", t, func() {
		f := newFixture("u1", "g42")
		f.widget.Mount(ctx)

		Convey("When 4 is selected and the backend accepts it", func() {
			out := f.widget.Select(ctx, 4)

			Convey("Then the value is committed, cached and announced once", func() {
				So(out, ShouldEqual, rating.OutcomeCommitted)
				So(f.widget.State().Current, ShouldEqual, model.Score(4))
				v, err := f.store.Get(ctx, "rating_u1_g42")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "4")
				events := f.published()
				So(len(events), ShouldEqual, 1)
				So(events[0].SubjectID, ShouldEqual, "g42")
				So(events[0].Value, ShouldEqual, model.Score(4))
				So(f.remote.calls.Load(), ShouldEqual, int32(1))
				So(f.widget.State().Submitting, ShouldBeFalse)
			})
		})

		Convey("When the same value is selected twice", func() {
			So(f.widget.Select(ctx, 3), ShouldEqual, rating.OutcomeCommitted)
			So(f.widget.Select(ctx, 3), ShouldEqual, rating.OutcomeCommitted)

			Convey("Then both calls notify and the cache holds the value", func() {
				So(f.widget.State().Current, ShouldEqual, model.Score(3))
				v, _ := f.cached("u1", "g42")
				So(v, ShouldEqual, "3")
				So(len(f.published()), ShouldEqual, 2)
				So(f.remote.calls.Load(), ShouldEqual, int32(2))
			})
		})

		Convey("When a subscriber reads the cache on notification", func() {
			var seen string
			f.bus.Subscribe(func(_ context.Context, e model.RatingChanged) {
				seen, _ = f.cached("u1", e.SubjectID)
			})
			f.widget.Select(ctx, 5)

			Convey("Then the cache already holds the new value", func() {
				So(seen, ShouldEqual, "5")
			})
		})

		Convey("When the caller's context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			out := f.widget.Select(cctx, 2)

			Convey("Then the submission is not cancelled", func() {
				So(out, ShouldEqual, rating.OutcomeCommitted)
				So(f.remote.ctxErr.Load(), ShouldBeNil)
			})
		})

		Convey("When the cache cannot be written", func() {
			f.store.FailSets(true)
			out := f.widget.Select(ctx, 4)

			Convey("Then the rating still commits and is announced", func() {
				So(out, ShouldEqual, rating.OutcomeCommitted)
				So(f.widget.State().Current, ShouldEqual, model.Score(4))
				So(len(f.published()), ShouldEqual, 1)
			})
		})
	})
}

func TestSelectIgnored(t *testing.T) {
	ctx := context.Background()

	Convey("Given an anonymous user", t, func() {
		f := newFixture("", "g42")
		f.widget.Mount(ctx)
		out := f.widget.Select(ctx, 4)

		Convey("Then nothing happens", func() {
			So(out, ShouldEqual, rating.OutcomeAnonymous)
			So(f.widget.State().Current, ShouldEqual, model.Unrated)
			So(f.remote.calls.Load(), ShouldEqual, int32(0))
			So(f.store.Len(), ShouldEqual, 0)
			So(len(f.published()), ShouldEqual, 0)
		})
	})

	Convey("Given a signed-in user without rater identity", t, func() {
		remote := &submitter{}
		store := kvstore.NewMemoryStore()
		So(store.Set(ctx, kvstore.RatingKey("", "g42"), "5"), ShouldBeNil)
		w, err := rating.New("g42", rating.Deps{
			Submitter: remote,
			Store:     store,
			Events:    eventbus.New(eventbus.WithLogger(logger.Nop())),
			Identity:  noRater{},
		}, rating.WithLogger(logger.Nop()))
		So(err, ShouldBeNil)
		w.Mount(ctx)

		Convey("Then it is treated as anonymous", func() {
			So(w.State().Current, ShouldEqual, model.Unrated)
			So(w.Select(ctx, 4), ShouldEqual, rating.OutcomeAnonymous)
			So(remote.calls.Load(), ShouldEqual, int32(0))
			So(store.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given an out-of-range value", t, func() {
		f := newFixture("u1", "g42")
		f.widget.Mount(ctx)

		Convey("Then it is rejected without a call", func() {
			So(f.widget.Select(ctx, 0), ShouldEqual, rating.OutcomeInvalid)
			So(f.widget.Select(ctx, 6), ShouldEqual, rating.OutcomeInvalid)
			So(f.remote.calls.Load(), ShouldEqual, int32(0))
		})
	})

	Convey("Given a widget that was never mounted", t, func() {
		f := newFixture("u1", "g42")

		Convey("Then selections are discarded without a call", func() {
			So(f.widget.Select(ctx, 3), ShouldEqual, rating.OutcomeDiscarded)
			So(f.remote.calls.Load(), ShouldEqual, int32(0))
		})
	})
}

func TestSelectFailure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a committed rating of 2 and a failing backend", t, func() {
		f := newFixture("u1", "g42")
		f.widget.Mount(ctx)
		So(f.widget.Select(ctx, 2), ShouldEqual, rating.OutcomeCommitted)
		f.remote.err = errors.New("503")

		Convey("When 5 is selected", func() {
			out := f.widget.Select(ctx, 5)

			Convey("Then the committed value and cache are unchanged", func() {
				So(out, ShouldEqual, rating.OutcomeFailed)
				st := f.widget.State()
				So(st.Current, ShouldEqual, model.Score(2))
				So(st.Submitting, ShouldBeFalse)
				v, _ := f.cached("u1", "g42")
				So(v, ShouldEqual, "2")
				So(len(f.published()), ShouldEqual, 1)
			})

			Convey("Then the next selection is accepted", func() {
				f.remote.err = nil
				So(f.widget.Select(ctx, 5), ShouldEqual, rating.OutcomeCommitted)
				So(f.widget.State().Current, ShouldEqual, model.Score(5))
			})
		})
	})
}

func TestSelectWhileSubmitting(t *testing.T) {
	ctx := context.Background()

	Convey("Given a submission held in flight", t, func() {
		f := newFixture("u1", "g42")
		f.remote.gate = make(chan struct{})
		f.remote.started = make(chan struct{}, 1)
		f.widget.Mount(ctx)
		f.widget.SetPreview(2)

		first := make(chan rating.Outcome, 1)
		go func() { first <- f.widget.Select(ctx, 4) }()
		<-f.remote.started

		Convey("When more values are selected and previewed", func() {
			outs := []rating.Outcome{f.widget.Select(ctx, 1), f.widget.Select(ctx, 5)}
			f.widget.SetPreview(5)
			f.widget.ClearPreview()
			st := f.widget.State()
			close(f.remote.gate)

			Convey("Then only the first selection is acted upon", func() {
				So(outs, ShouldResemble, []rating.Outcome{rating.OutcomeBusy, rating.OutcomeBusy})
				So(st.Submitting, ShouldBeTrue)
				So(st.Current, ShouldEqual, model.Unrated)
				So(st.Preview, ShouldEqual, model.Score(2))
				So(<-first, ShouldEqual, rating.OutcomeCommitted)
				So(f.remote.calls.Load(), ShouldEqual, int32(1))
				So(f.widget.State().Current, ShouldEqual, model.Score(4))
				So(len(f.published()), ShouldEqual, 1)
			})
		})

		Convey("When the widget unmounts before the backend answers", func() {
			f.widget.Unmount()
			close(f.remote.gate)
			out := <-first

			Convey("Then the result does not touch the widget but is cached and announced", func() {
				So(out, ShouldEqual, rating.OutcomeDiscarded)
				So(f.widget.Mounted(), ShouldBeFalse)
				So(f.widget.State().Current, ShouldEqual, model.Unrated)
				v, err := f.cached("u1", "g42")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "4")
				So(len(f.published()), ShouldEqual, 1)
			})
		})
	})

	Convey("Given many goroutines selecting at once", t, func() {
		f := newFixture("u1", "g42")
		f.remote.gate = make(chan struct{})
		f.remote.started = make(chan struct{}, 16)
		f.widget.Mount(ctx)

		const n = 16
		outs := make(chan rating.Outcome, n)
		for i := 0; i < n; i++ {
			go func(v int) {
				outs <- f.widget.Select(ctx, model.Score(v%5+1))
			}(i)
		}
		// One call holds the gate; every other one must come back busy.
		busy := 0
		for i := 0; i < n-1; i++ {
			if <-outs == rating.OutcomeBusy {
				busy++
			}
		}
		close(f.remote.gate)
		last := <-outs

		Convey("Then exactly one reaches the backend", func() {
			So(busy, ShouldEqual, n-1)
			So(last, ShouldEqual, rating.OutcomeCommitted)
			So(f.remote.calls.Load(), ShouldEqual, int32(1))
		})
	})
}

func TestMount(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cached rating of 3 for u1 on g42", t, func() {
		f := newFixture("u1", "g42")
		So(f.store.Set(ctx, "rating_u1_g42", "3"), ShouldBeNil)

		Convey("When the widget mounts", func() {
			f.widget.Mount(ctx)

			Convey("Then it shows 3 without calling the backend", func() {
				So(f.widget.State().Current, ShouldEqual, model.Score(3))
				So(f.remote.calls.Load(), ShouldEqual, int32(0))
			})
		})

		Convey("When another rater mounts the same subject", func() {
			f.who.set("u2")
			f.widget.Mount(ctx)

			Convey("Then it starts unrated", func() {
				So(f.widget.State().Current, ShouldEqual, model.Unrated)
			})
		})

		Convey("When nobody is signed in", func() {
			f.who.set("")
			f.widget.Mount(ctx)

			Convey("Then the cache is not consulted", func() {
				So(f.widget.State().Current, ShouldEqual, model.Unrated)
			})
		})

		Convey("When the store cannot be read", func() {
			f.store.FailGets(true)
			f.widget.Mount(ctx)

			Convey("Then it starts unrated", func() {
				So(f.widget.State().Current, ShouldEqual, model.Unrated)
			})
		})
	})

	Convey("Given a corrupt cached value", t, func() {
		f := newFixture("u1", "g42")
		So(f.store.Set(ctx, "rating_u1_g42", "eleven"), ShouldBeNil)
		f.widget.Mount(ctx)

		Convey("Then it starts unrated", func() {
			So(f.widget.State().Current, ShouldEqual, model.Unrated)
		})
	})
}

func TestStars(t *testing.T) {
	ctx := context.Background()

	Convey("Given a committed value of 2", t, func() {
		f := newFixture("u1", "g42")
		So(f.store.Set(ctx, "rating_u1_g42", "2"), ShouldBeNil)
		f.widget.Mount(ctx)

		Convey("When previewing 4", func() {
			f.widget.SetPreview(4)

			Convey("Then positions one to four are filled", func() {
				So(f.widget.Stars(), ShouldResemble, [5]bool{true, true, true, true, false})
				So(f.widget.State().Current, ShouldEqual, model.Score(2))
			})

			Convey("Then clearing the preview shows the committed value", func() {
				f.widget.ClearPreview()
				So(f.widget.Stars(), ShouldResemble, [5]bool{true, true, false, false, false})
			})
		})

		Convey("When previewing an invalid value", func() {
			f.widget.SetPreview(9)

			Convey("Then it is ignored", func() {
				So(f.widget.State().Preview, ShouldEqual, model.Unrated)
			})
		})

		Convey("When previewing lower than the committed value", func() {
			f.widget.SetPreview(1)

			Convey("Then the preview wins", func() {
				So(f.widget.Stars(), ShouldResemble, [5]bool{true, false, false, false, false})
			})
		})
	})
}

func TestOutcomeString(t *testing.T) {
	Convey("Given outcomes", t, func() {
		So(rating.OutcomeCommitted.String(), ShouldEqual, "committed")
		So(rating.OutcomeDiscarded.String(), ShouldEqual, "discarded")
		So(rating.Outcome(42).String(), ShouldEqual, "unknown")
		b, err := rating.OutcomeBusy.MarshalText()
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, "busy")
	})
}
