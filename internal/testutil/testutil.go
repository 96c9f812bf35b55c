// Package testutil provides shared test utilities and fakes for breve tests.
package testutil

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianly1003/breve/internal/domain/ports"
)

// Call is one recorded callback invocation.
type Call struct {
	Label string
	Scope any
	Args  any
}

// Recorder records callback invocations in call order.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates a new recorder.
func NewRecorder() *Recorder {
	return &Recorder{calls: make([]Call, 0)}
}

// Callback returns a callback that records its invocations under label.
func (r *Recorder) Callback(label string) ports.Callback {
	return func(scope any, args any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, Call{Label: label, Scope: scope, Args: args})
	}
}

// Calls returns all recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Call, len(r.calls))
	copy(result, r.calls)
	return result
}

// Labels returns the labels of all recorded calls.
func (r *Recorder) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		result = append(result, c.Label)
	}
	return result
}

// Count returns the number of recorded calls.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Reset removes all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}

// ManualScheduler implements ports.Scheduler on a virtual clock that only
// moves when Advance is called. Callbacks run synchronously inside Advance.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the timer if it has not fired.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule registers fn to run once the virtual clock passes delay.
func (m *ManualScheduler) Schedule(fn func(), delay time.Duration) ports.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if delay < 0 {
		delay = 0
	}
	m.seq++
	t := &manualTimer{s: m, due: m.now + delay, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Cancel stops h.
func (m *ManualScheduler) Cancel(h ports.Handle) {
	if h == nil {
		return
	}
	h.Stop()
}

// Advance moves the clock forward by d, running due callbacks in due order.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		next.fired = true
		m.now = next.due
		m.mu.Unlock()

		next.fn()
	}
}

// nextDue returns the earliest active timer due at or before target.
// Caller holds mu.
func (m *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	var best *manualTimer
	active := m.timers[:0]
	for _, t := range m.timers {
		if t.stopped || t.fired {
			continue
		}
		active = append(active, t)
		if t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	m.timers = active
	return best
}

// Pending returns the number of timers that have neither fired nor stopped.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Elapsed returns the virtual time elapsed since creation.
func (m *ManualScheduler) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Ensure ManualScheduler implements ports.Scheduler.
var _ ports.Scheduler = (*ManualScheduler)(nil)

// AssertEqual is a simple equality assertion helper.
func AssertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// AssertTrue asserts that a condition is true.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Errorf("%s: expected true, got false", msg)
	}
}

// AssertFalse asserts that a condition is false.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Errorf("%s: expected false, got true", msg)
	}
}

// AssertNoError asserts that an error is nil.
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: unexpected error: %v", msg, err)
	}
}

// AssertError asserts that an error is not nil.
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected error, got nil", msg)
	}
}

// AssertContains checks if a string contains a substring.
func AssertContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("%s: string %q does not contain %q", msg, s, substr)
	}
}

// AssertStrings checks two string slices for equality.
func AssertStrings(t *testing.T, expected, actual []string, msg string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
		return
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("%s: expected %v, got %v", msg, expected, actual)
			return
		}
	}
}

// RecoverPanic runs fn and returns the recovered panic value, or nil.
func RecoverPanic(fn func()) (v any) {
	defer func() {
		v = recover()
	}()
	fn()
	return nil
}
