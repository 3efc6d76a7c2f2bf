// Package refresh drives the periodic catalog reload: one fetch in flight
// at a time, ticks dropped under load, and the latest outcome always
// available on a single-slot channel.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/painelhub/painelcore/internal/common/apperrors"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

const defaultInterval = 3 * time.Second

var (
	// ErrAlreadyStarted rejects a second Start on a running scheduler.
	ErrAlreadyStarted apperrors.Error = apperrors.New("refresh scheduler already started")

	// ErrStopped rejects Start on a scheduler that has been stopped.
	// Schedulers are not restartable; build a new one.
	ErrStopped apperrors.Error = apperrors.New("refresh scheduler stopped")
)

// Fetcher loads the principal catalog view. The catalog service satisfies it.
type Fetcher interface {
	ListPrincipal(ctx context.Context) ([]models.Product, error)
}

// State reports what the scheduler is doing right now.
type State int

const (
	StateIdle State = iota
	StateFetchInFlight
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchInFlight:
		return "fetch-in-flight"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Cycle is the outcome of one fetch: the snapshot, what changed since the
// previous successful snapshot, and timing. Err is set on failed fetches,
// which carry the previous snapshot and no diff. The snapshot doubles as
// the scheduler's diff baseline; consumers must treat it as read-only.
type Cycle struct {
	ID       string
	Seq      uint64
	Products []models.Product
	Diff     []Change
	Started  time.Time
	Elapsed  time.Duration
	Err      error
}

// ticker is the clock seam; tests substitute a hand-driven one.
type ticker interface {
	Chan() <-chan time.Time
	Stop()
	Reset(time.Duration)
}

type wallTicker struct{ *time.Ticker }

func (t wallTicker) Chan() <-chan time.Time { return t.C }

func newWallTicker(d time.Duration) ticker { return wallTicker{time.NewTicker(d)} }

// Option configures a Scheduler before Start.
type Option func(*Scheduler)

// WithInterval overrides the tick interval. Non-positive values keep the
// default.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithVirtualEntries appends entries that never hit storage (admin
// shortcuts) to every successful snapshot.
func WithVirtualEntries(entries []models.Product) Option {
	return func(s *Scheduler) { s.virtual = entries }
}

// withTickerFactory lets tests drive the clock by hand.
func withTickerFactory(f func(time.Duration) ticker) Option {
	return func(s *Scheduler) { s.newTicker = f }
}

// Scheduler periodically reloads the catalog through a Fetcher and delivers
// each outcome as a Cycle. At most one fetch is ever in flight: ticks that
// land during a fetch are dropped, not queued.
type Scheduler struct {
	fetcher   Fetcher
	interval  time.Duration
	virtual   []models.Product
	newTicker func(time.Duration) ticker

	cycles  chan Cycle
	dropped atomic.Int64

	mu          sync.Mutex
	started     bool
	stopped     bool
	paused      bool
	inFlight    bool
	seq         uint64
	snapshot    []models.Product
	hasSnapshot bool
	loopCtx     context.Context
	cancel      context.CancelFunc
	tick        ticker

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New builds a stopped scheduler around fetcher.
func New(fetcher Fetcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:   fetcher,
		interval:  defaultInterval,
		newTicker: newWallTicker,
		cycles:    make(chan Cycle, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the loop and dispatches the first fetch immediately, before
// the first tick. ctx bounds every fetch; canceling it halts the loop, but
// Stop must still be called to release the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	s.loopCtx, s.cancel = context.WithCancel(ctx)
	s.tick = s.newTicker(s.interval)

	s.dispatchLocked()

	s.wg.Add(1)
	go s.loop(s.loopCtx, s.tick.Chan())

	log.Ctx(ctx).Debug().Dur("interval", s.interval).Msg("refresh scheduler started")
	return nil
}

// Cycles returns the delivery channel. Single consumer; the channel holds at
// most the latest undrained cycle and closes after Stop.
func (s *Scheduler) Cycles() <-chan Cycle { return s.cycles }

// State reports the current lifecycle state. Paused wins over an in-flight
// fetch that is still finishing.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.paused:
		return StatePaused
	case s.inFlight:
		return StateFetchInFlight
	default:
		return StateIdle
	}
}

// DroppedTicks counts ticks skipped because a fetch was already in flight.
func (s *Scheduler) DroppedTicks() int64 { return s.dropped.Load() }

// Pause stops the ticker. An in-flight fetch still completes and delivers;
// no new fetch starts until Resume.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.stopped || s.paused {
		return
	}
	s.paused = true
	s.tick.Stop()
	log.Ctx(s.loopCtx).Debug().Msg("refresh paused")
}

// Resume restarts the ticker and fetches immediately rather than waiting out
// a full interval. If a pre-pause fetch is somehow still in flight it counts
// as the immediate one.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.stopped || !s.paused {
		return
	}
	s.paused = false
	s.tick.Reset(s.interval)
	log.Ctx(s.loopCtx).Debug().Msg("refresh resumed")
	if !s.inFlight {
		s.dispatchLocked()
	}
}

// Stop cancels the loop and any in-flight fetch, waits for both to exit and
// closes the cycle channel. Idempotent; safe to call mid-flight, where the
// fetch result is dropped.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		cancel := s.cancel
		if s.tick != nil {
			s.tick.Stop()
		}
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
		close(s.cycles)
	})
}

func (s *Scheduler) loop(ctx context.Context, tickC <-chan time.Time) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tickC:
			s.onTick()
		}
	}
}

func (s *Scheduler) onTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.paused {
		// Stale tick from a ticker stopped moments ago.
		return
	}
	if s.inFlight {
		n := s.dropped.Add(1)
		log.Ctx(s.loopCtx).Debug().Int64("dropped_total", n).Msg("refresh tick dropped, fetch already in flight")
		return
	}
	s.dispatchLocked()
}

// dispatchLocked starts the fetch worker. Callers hold mu and have ruled out
// an in-flight fetch and a stopped scheduler.
func (s *Scheduler) dispatchLocked() {
	s.inFlight = true
	s.seq++
	s.wg.Add(1)
	go s.fetch(s.loopCtx, s.seq)
}

func (s *Scheduler) fetch(ctx context.Context, seq uint64) {
	defer s.wg.Done()

	started := time.Now()
	products, err := s.fetcher.ListPrincipal(ctx)

	cycle := Cycle{
		ID:      uuid.NewString(),
		Seq:     seq,
		Started: started,
		Elapsed: time.Since(started),
		Err:     err,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		// Fresh slice every cycle: the fetcher's result may be shared with
		// coalesced callers and the previous snapshot is the diff baseline.
		snapshot := make([]models.Product, 0, len(products)+len(s.virtual))
		snapshot = append(snapshot, products...)
		snapshot = append(snapshot, s.virtual...)
		if s.hasSnapshot {
			cycle.Diff = diffSnapshots(s.snapshot, snapshot)
		}
		s.snapshot = snapshot
		s.hasSnapshot = true
		cycle.Products = snapshot
	} else {
		cycle.Products = s.snapshot
		log.Ctx(ctx).Warn().Err(err).Uint64("seq", seq).Msg("catalog refresh failed")
	}

	s.inFlight = false
	if s.stopped || ctx.Err() != nil {
		// Raced with Stop; the consumer is gone.
		return
	}
	s.publishLocked(cycle)
}

// publishLocked delivers latest-wins: a still-undrained cycle is evicted so
// the worker never blocks on a slow consumer. Callers hold mu and have
// checked stopped, which keeps delivery order equal to completion order and
// every send ahead of the close in Stop.
func (s *Scheduler) publishLocked(c Cycle) {
	for {
		select {
		case s.cycles <- c:
			return
		default:
		}
		select {
		case stale := <-s.cycles:
			log.Ctx(s.loopCtx).Debug().Uint64("seq", stale.Seq).Msg("unread refresh cycle replaced")
		default:
		}
	}
}
