// Package timergate implements id-keyed throttling and debouncing on top of
// a delay primitive.
//
// Throttle is leading-edge: the first call for an id runs immediately and
// opens a suppression window; calls inside the window are dropped. Debounce
// is trailing-edge: every call replaces the pending one for its id, and only
// the last call runs, delay after it was made.
//
// Each id has its own timeline. A Gate is an explicit value; callers that
// need shared throttling share the Gate.
package timergate

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brianly1003/breve/internal/domain/ports"
	"github.com/brianly1003/breve/internal/scheduler"
	"github.com/brianly1003/breve/internal/sync"
)

// Func is the callable a gate invokes with (scope, args).
type Func = ports.Callback

// entry is one open throttle window or pending debounce call. gen tells a
// timer apart from the one that replaced it.
type entry struct {
	handle ports.Handle
	gen    uint64
}

// Gate holds throttle and debounce state.
type Gate struct {
	scheduler ports.Scheduler
	logger    zerolog.Logger

	mu        sync.Mutex
	throttles map[string]*entry
	debounces map[string]*entry
	gen       uint64
	stopped   bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// New creates a gate on s. A nil scheduler means the wall clock.
func New(s ports.Scheduler, opts ...Option) *Gate {
	if s == nil {
		s = scheduler.New(nil)
	}
	g := &Gate{
		scheduler: s,
		logger:    log.With().Str("component", "timergate").Logger(),
		throttles: make(map[string]*entry),
		debounces: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Throttle calls fn(scope, args) now unless id has an open window, then
// opens a window of delay. Calls made while the window is open are dropped.
// If fn panics no window is opened and the panic propagates.
func (g *Gate) Throttle(id string, fn Func, scope any, delay time.Duration, args any) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	if _, ok := g.throttles[id]; ok {
		g.mu.Unlock()
		g.logger.Debug().Str("id", id).Msg("throttled call dropped")
		return
	}
	g.gen++
	gen := g.gen
	// Reserve the id while fn runs so concurrent callers are dropped too.
	g.throttles[id] = &entry{gen: gen}
	g.mu.Unlock()

	done := false
	defer func() {
		if !done {
			g.closeWindow(id, gen)
		}
	}()
	if fn != nil {
		fn(scope, args)
	}
	done = true

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.throttles[id]
	if !ok || e.gen != gen {
		// Reset or Stop ran while fn was executing.
		return
	}
	e.handle = g.scheduler.Schedule(func() {
		g.closeWindow(id, gen)
	}, delay)
}

// Debounce schedules fn(scope, args) after delay, cancelling and replacing
// any call still pending for id. The id is cleared just before fn runs.
func (g *Gate) Debounce(id string, fn Func, scope any, delay time.Duration, args any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	if existing, ok := g.debounces[id]; ok {
		g.scheduler.Cancel(existing.handle)
		g.logger.Debug().Str("id", id).Msg("debounced call replaced")
	}

	g.gen++
	gen := g.gen
	e := &entry{gen: gen}
	g.debounces[id] = e
	e.handle = g.scheduler.Schedule(func() {
		g.fire(id, gen, fn, scope, args)
	}, delay)
}

// fire runs a debounced call if it is still the current one for id.
func (g *Gate) fire(id string, gen uint64, fn Func, scope any, args any) {
	g.mu.Lock()
	e, ok := g.debounces[id]
	if !ok || e.gen != gen {
		g.mu.Unlock()
		return
	}
	delete(g.debounces, id)
	g.mu.Unlock()

	if fn != nil {
		fn(scope, args)
	}
}

// closeWindow ends id's throttle window if it is still window gen.
func (g *Gate) closeWindow(id string, gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, ok := g.throttles[id]; ok && e.gen == gen {
		delete(g.throttles, id)
	}
}

// Throttled reports whether id has an open suppression window.
func (g *Gate) Throttled(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.throttles[id]
	return ok
}

// Pending reports whether id has a debounced call waiting to run.
func (g *Gate) Pending(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.debounces[id]
	return ok
}

// Reset cancels every timer and clears all state. The gate stays usable.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clear()
}

// Stop cancels every timer. Later calls are ignored.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopped = true
	g.clear()
}

// clear cancels all timers. Caller holds mu.
func (g *Gate) clear() {
	for _, e := range g.throttles {
		g.scheduler.Cancel(e.handle)
	}
	for _, e := range g.debounces {
		g.scheduler.Cancel(e.handle)
	}
	g.throttles = make(map[string]*entry)
	g.debounces = make(map[string]*entry)
}

var _ ports.Gate = (*Gate)(nil)
