package watch

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
)

// Remaining is a live countdown breakdown. Total is the remaining
// duration, never negative.
type Remaining struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Total   time.Duration
}

// Expired reports whether the target has passed.
func (r Remaining) Expired() bool {
	return r.Total <= 0
}

// RemainingUntil computes the countdown parts from now to target,
// clamping at zero once the target has passed.
func RemainingUntil(target, now time.Time) Remaining {
	diff := target.Sub(now)
	if diff < 0 {
		diff = 0
	}
	return Remaining{
		Days:    int(diff / (24 * time.Hour)),
		Hours:   int((diff % (24 * time.Hour)) / time.Hour),
		Minutes: int((diff % time.Hour) / time.Minute),
		Seconds: int((diff % time.Minute) / time.Second),
		Total:   diff,
	}
}

// Countdown recomputes the time remaining to a fixed target once per
// second. It performs no network I/O.
type Countdown struct {
	target time.Time

	mu      sync.Mutex
	current Remaining
	onTick  func(Remaining)
	started bool
	cancel  context.CancelFunc
	sched   gocron.Scheduler
}

// NewCountdown creates a countdown toward target. It does not tick until
// Start.
func NewCountdown(target time.Time) *Countdown {
	return &Countdown{
		target:  target,
		current: RemainingUntil(target, time.Now()),
	}
}

// OnTick registers a callback invoked with every recomputed breakdown.
// Must be called before Start.
func (c *Countdown) OnTick(fn func(Remaining)) {
	c.mu.Lock()
	c.onTick = fn
	c.mu.Unlock()
}

// Start computes immediately and then once per second until Stop.
func (c *Countdown) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("countdown already started")
	}
	c.started = true
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.tick()

	sched, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "failed to create countdown scheduler")
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(time.Second),
		gocron.NewTask(c.tick),
	); err != nil {
		return errors.Wrap(err, "failed to schedule countdown tick")
	}
	sched.Start()

	c.mu.Lock()
	c.sched = sched
	c.mu.Unlock()

	// Stop cancels ctx, so this exits on teardown even when the caller's
	// context is never cancelled.
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

// Stop halts the ticking. Always call it on teardown.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	sched := c.sched
	c.cancel = nil
	c.sched = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if sched != nil {
		_ = sched.Shutdown()
	}
}

// Current returns the latest breakdown.
func (c *Countdown) Current() Remaining {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Countdown) tick() {
	next := RemainingUntil(c.target, time.Now())
	c.mu.Lock()
	c.current = next
	cb := c.onTick
	c.mu.Unlock()
	if cb != nil {
		cb(next)
	}
}
