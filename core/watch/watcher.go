package watch

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/caspool/sdk-go/core/logging"
	"github.com/caspool/sdk-go/core/restapi"
	"github.com/caspool/sdk-go/core/types"
)

// Poll intervals for the globally shared snapshots.
const (
	PoolStatsInterval    = 30 * time.Second
	CurrentRoundInterval = 10 * time.Second
)

// FetchFunc loads one snapshot of T.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Watcher repeatedly fetches a snapshot and exposes the latest
// {data, loading, error} triple. Start fires one immediate fetch and then
// repeats on the interval until Stop; an interval of zero fetches once and
// never repeats. A failed fetch keeps the previous data and records the
// error; the next tick retries naturally.
type Watcher[T any] struct {
	fetch    FetchFunc[T]
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	data     T
	hasData  bool
	loading  bool
	err      error
	onUpdate func(T, error)

	started bool
	cancel  context.CancelFunc
	sched   gocron.Scheduler
}

// NewWatcher creates a watcher over fetch. It does nothing until Start.
func NewWatcher[T any](fetch FetchFunc[T], interval time.Duration) *Watcher[T] {
	return &Watcher[T]{
		fetch:    fetch,
		interval: interval,
		logger:   logging.Logger,
	}
}

// OnUpdate registers a callback invoked after every fetch with its result.
// Must be called before Start.
func (w *Watcher[T]) OnUpdate(fn func(data T, err error)) {
	w.mu.Lock()
	w.onUpdate = fn
	w.mu.Unlock()
}

// Start performs the initial fetch and schedules the repeats. A watcher
// can be started once.
func (w *Watcher[T]) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("watcher already started")
	}
	w.started = true
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	w.refresh(ctx)

	if w.interval <= 0 {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "failed to create poll scheduler")
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.refresh(ctx) }),
	); err != nil {
		return errors.Wrap(err, "failed to schedule poll job")
	}
	sched.Start()

	w.mu.Lock()
	w.sched = sched
	w.mu.Unlock()
	return nil
}

// Stop cancels the schedule and any in-flight fetch context. Always call
// it on teardown.
func (w *Watcher[T]) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	sched := w.sched
	w.cancel = nil
	w.sched = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			w.logger.Debug("poll scheduler shutdown failed", zap.Error(err))
		}
	}
}

// Snapshot returns the latest data, whether a fetch is in flight, and the
// last fetch error.
func (w *Watcher[T]) Snapshot() (T, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data, w.loading, w.err
}

// HasData reports whether at least one fetch has succeeded.
func (w *Watcher[T]) HasData() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hasData
}

func (w *Watcher[T]) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	w.loading = true
	w.mu.Unlock()

	data, err := w.fetch(ctx)

	w.mu.Lock()
	w.loading = false
	if err != nil {
		w.err = err
	} else {
		w.data = data
		w.hasData = true
		w.err = nil
	}
	cb := w.onUpdate
	w.mu.Unlock()

	if cb != nil {
		cb(data, err)
	}
}

// NewPoolStatsWatcher polls the aggregate pool snapshot every 30 seconds.
func NewPoolStatsWatcher(pool *restapi.PoolAPI) *Watcher[*types.PoolStats] {
	return NewWatcher(pool.GetStats, PoolStatsInterval)
}

// NewCurrentRoundWatcher polls the in-progress round every 10 seconds to
// keep the draw countdown fresh.
func NewCurrentRoundWatcher(pool *restapi.PoolAPI) *Watcher[*types.CurrentRound] {
	return NewWatcher(pool.GetCurrentRound, CurrentRoundInterval)
}
