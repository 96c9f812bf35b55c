// Package scheduler provides the delay primitive the timer gate and frame
// requests are built on.
package scheduler

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/brianly1003/breve/internal/domain/ports"
)

// FrameInterval is the delay used when a frame is requested.
const FrameInterval = time.Second / 60

// Scheduler runs callbacks after a delay on an injectable clock.
type Scheduler struct {
	clock clock.Clock
}

// New creates a scheduler on c. A nil clock means the wall clock.
func New(c clock.Clock) *Scheduler {
	if c == nil {
		c = clock.New()
	}
	return &Scheduler{clock: c}
}

// Schedule runs fn once after delay. Negative delays are treated as zero.
func (s *Scheduler) Schedule(fn func(), delay time.Duration) ports.Handle {
	if delay < 0 {
		delay = 0
	}
	return s.clock.AfterFunc(delay, fn)
}

// Cancel stops a scheduled callback.
func (s *Scheduler) Cancel(h ports.Handle) {
	if h == nil {
		return
	}
	h.Stop()
}

// RequestFrame schedules fn for the next frame.
func (s *Scheduler) RequestFrame(fn func()) ports.Handle {
	return s.Schedule(fn, FrameInterval)
}

// CancelFrame cancels a frame request.
func (s *Scheduler) CancelFrame(h ports.Handle) {
	s.Cancel(h)
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

var _ ports.Scheduler = (*Scheduler)(nil)
