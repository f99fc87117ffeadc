// Package refresh recomputes the portfolio on demand and on a schedule.
//
// The core engine is a pure function of the bot's logs. Refresher owns the when:
// every run loads a fresh dataset, computes a Result and publishes it, unless a newer
// run has already published, in which case the older Result is discarded.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/etnz/dcadash"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// LoadFunc fetches the complete input of a computation.
type LoadFunc func(ctx context.Context) (*dcadash.Dataset, error)

// Result is the outcome of one refresh.
type Result struct {
	ID         uuid.UUID            `json:"id"`
	Generation uint64               `json:"generation"`
	At         time.Time            `json:"at"`
	Portfolio  *dcadash.Portfolio   `json:"portfolio,omitempty"`
	Series     []dcadash.ChartPoint `json:"series"`
	Skipped    int                  `json:"skipped_lines"`
	Error      string               `json:"error,omitempty"`

	// Err is the failure of the run: a *dcadash.FetchError, dcadash.ErrEmptyLog or
	// a context error.
	Err error `json:"-" msgpack:"-"`
	// Dataset is the input of the run, nil when loading failed.
	Dataset *dcadash.Dataset `json:"-" msgpack:"-"`
}

// Refresher computes Results and publishes the most recent one.
type Refresher struct {
	load LoadFunc
	now  func() time.Time
	log  zerolog.Logger
	cron *cron.Cron

	mu        sync.Mutex
	gen       uint64 // last started run
	published uint64 // generation of latest
	latest    *Result
	subs      map[int]chan Result
	nextSub   int
}

// New returns a Refresher computing results from load.
func New(load LoadFunc, log zerolog.Logger) *Refresher {
	return &Refresher{
		load: load,
		now:  time.Now,
		log:  log.With().Str("component", "refresh").Logger(),
		subs: make(map[int]chan Result),
	}
}

// WithClock sets the clock used to value the portfolio, for tests.
func (r *Refresher) WithClock(now func() time.Time) *Refresher {
	r.now = now
	return r
}

// Refresh runs a computation now. It returns the result and whether it was published;
// a result is not published when a more recent run has published first.
func (r *Refresher) Refresh(ctx context.Context) (*Result, bool) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	res := r.compute(ctx, gen)
	return res, r.publish(res)
}

func (r *Refresher) compute(ctx context.Context, gen uint64) *Result {
	res := &Result{ID: uuid.New(), Generation: gen, Series: []dcadash.ChartPoint{}}
	ds, err := r.load(ctx)
	res.At = r.now().UTC()
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		return res
	}
	res.Dataset = ds
	res.Skipped = len(ds.ParseErrors)
	res.Series = ds.Series()
	res.Portfolio, err = ds.Portfolio(res.At)
	if err != nil {
		res.Err = err
		res.Error = err.Error()
	}
	return res
}

func (r *Refresher) publish(res *Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Generation < r.published {
		r.log.Debug().Uint64("generation", res.Generation).Uint64("published", r.published).Msg("discarding superseded refresh")
		return false
	}
	if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
		r.log.Debug().Err(res.Err).Uint64("generation", res.Generation).Msg("discarding cancelled refresh")
		return false
	}
	r.published = res.Generation
	r.latest = res

	var ev *zerolog.Event
	if res.Err != nil && !errors.Is(res.Err, dcadash.ErrEmptyLog) {
		ev = r.log.Error().Err(res.Err)
	} else {
		ev = r.log.Info()
	}
	ev.Str("id", res.ID.String()).Uint64("generation", res.Generation).Int("points", len(res.Series)).Int("skipped", res.Skipped).Msg("refresh published")

	for id, ch := range r.subs {
		select {
		case ch <- *res:
		default:
			r.log.Warn().Int("subscriber", id).Msg("subscriber is lagging, dropping refresh")
		}
	}
	return true
}

// Latest returns the last published result, nil if none.
func (r *Refresher) Latest() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Subscribe returns a channel receiving every published result and a function to
// unsubscribe. A subscriber that does not keep up misses results.
func (r *Refresher) Subscribe() (<-chan Result, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	ch := make(chan Result, 4)
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs, id)
			close(ch)
		})
	}
}

// Start refreshes on schedule, in cron syntax or "@every <duration>", until Stop.
func (r *Refresher) Start(schedule string) error {
	r.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := r.cron.AddFunc(schedule, func() {
		r.Refresh(context.Background())
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info().Str("schedule", schedule).Msg("scheduler started")
	return nil
}

// Stop stops the schedule and waits for a running refresh to complete.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.log.Info().Msg("scheduler stopped")
}
