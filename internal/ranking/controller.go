package ranking

import (
	"context"
	"sync"
	"time"
)

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime clock.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State is the controller's externally visible state.
type State int

const (
	Idle State = iota
	Scheduled
	InFlight
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case InFlight:
		return "in-flight"
	default:
		return "idle"
	}
}

// RunFunc performs one ranking call.
type RunFunc func(ctx context.Context) error

// Controller debounces rank requests and keeps at most one call in flight.
//
// RequestRank (re)starts the debounce timer. When the timer fires and no
// call is running, the run function is invoked; if a call is already
// running the request is dropped, not queued. The in-flight flag is cleared
// when the call returns, whatever the outcome.
type Controller struct {
	delay time.Duration
	sched Scheduler
	run   RunFunc

	onDone func(error)
	onDrop func()

	mu       sync.Mutex
	timer    Timer
	gen      uint64
	inFlight bool
	closed   bool
	dropped  int

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnDone registers a callback invoked after every completed call.
func WithOnDone(fn func(error)) Option {
	return func(c *Controller) { c.onDone = fn }
}

// WithOnDrop registers a callback invoked when a fired request is dropped
// because a call was still in flight.
func WithOnDrop(fn func()) Option {
	return func(c *Controller) { c.onDrop = fn }
}

// NewController creates a controller. A nil sched uses RealScheduler.
func NewController(delay time.Duration, sched Scheduler, run RunFunc, opts ...Option) *Controller {
	if sched == nil {
		sched = RealScheduler{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		delay:  delay,
		sched:  sched,
		run:    run,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RequestRank cancels any pending timer and schedules a new one.
func (c *Controller) RequestRank() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.sched.AfterFunc(c.delay, func() { c.fire(gen) })
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.inFlight {
		c.dropped++
		onDrop := c.onDrop
		c.mu.Unlock()
		if onDrop != nil {
			onDrop()
		}
		return
	}
	c.inFlight = true
	ctx := c.ctx
	c.mu.Unlock()

	err := c.invoke(ctx)
	if c.onDone != nil {
		c.onDone(err)
	}
}

func (c *Controller) invoke(ctx context.Context) error {
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()
	return c.run(ctx)
}

// State reports InFlight while a call runs, otherwise Scheduled while a
// timer is pending, otherwise Idle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.inFlight:
		return InFlight
	case c.timer != nil:
		return Scheduled
	default:
		return Idle
	}
}

// Pending reports whether a timer is waiting to fire.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Dropped returns how many fired requests were discarded.
func (c *Controller) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Close stops the pending timer and cancels the context of a running call.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.cancel()
}
