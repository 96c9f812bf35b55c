//go:build !deadlock

// Package sync provides mutex types that can be swapped for deadlock detection.
// The default build uses the standard sync package; build with -tags deadlock
// to use go-deadlock instead.
package sync

import "sync"

// Mutex is the standard sync.Mutex.
type Mutex = sync.Mutex

// RWMutex is the standard sync.RWMutex.
type RWMutex = sync.RWMutex

// WaitGroup is the standard sync.WaitGroup.
type WaitGroup = sync.WaitGroup

// Once is the standard sync.Once.
type Once = sync.Once

// DetectionEnabled reports whether mutexes are instrumented.
func DetectionEnabled() bool {
	return false
}
