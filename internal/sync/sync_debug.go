//go:build deadlock

// Package sync provides mutex types that can be swapped for deadlock detection.
// Built with -tags deadlock, Mutex and RWMutex come from go-deadlock so a hub
// callback that re-enters a locked hub is reported instead of hanging.
package sync

import (
	"os"
	"sync"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Mutex is a mutual exclusion lock with deadlock detection.
type Mutex = deadlock.Mutex

// RWMutex is a reader/writer mutual exclusion lock with deadlock detection.
type RWMutex = deadlock.RWMutex

// WaitGroup is the standard sync.WaitGroup.
type WaitGroup = sync.WaitGroup

// Once is the standard sync.Once.
type Once = sync.Once

// DetectionEnabled reports whether mutexes are instrumented.
func DetectionEnabled() bool {
	return !deadlock.Opts.Disable
}

func init() {
	deadlock.Opts.DeadlockTimeout = 30 * time.Second

	// BREVE_NO_DEADLOCK_DETECT turns the instrumentation off without a rebuild.
	if os.Getenv("BREVE_NO_DEADLOCK_DETECT") != "" {
		deadlock.Opts.Disable = true
		return
	}

	deadlock.Opts.PrintAllCurrentGoroutines = true
}
