package hub

import (
	"sort"

	"github.com/brianly1003/breve/internal/sync"
)

// KeyFunc extracts the filter key from a delivery's args.
type KeyFunc func(args any) string

// Filter wraps a callback and forwards only deliveries whose key is allowed.
// Deliveries with an empty key are always forwarded.
// If no keys are allowed, all deliveries are forwarded.
type Filter struct {
	inner Callback
	key   KeyFunc
	keys  map[string]bool // Set of keys to forward
	mu    sync.RWMutex
}

// NewFilter creates a new filter around inner.
func NewFilter(inner Callback, key KeyFunc) *Filter {
	return &Filter{
		inner: inner,
		key:   key,
		keys:  make(map[string]bool),
	}
}

// Callback returns the filtering callback to subscribe with.
func (f *Filter) Callback() Callback {
	return func(scope any, args any) {
		if !f.shouldForward(args) {
			return
		}
		f.inner(scope, args)
	}
}

// Allow adds key to the filter.
func (f *Filter) Allow(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = true
}

// Disallow removes key from the filter.
func (f *Filter) Disallow(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
}

// AllowAll clears the filter, forwarding all deliveries.
func (f *Filter) AllowAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = make(map[string]bool)
}

// AllowedKeys returns the sorted allowed keys.
func (f *Filter) AllowedKeys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]string, 0, len(f.keys))
	for k := range f.keys {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// IsFiltering returns true if at least one key is allowed.
func (f *Filter) IsFiltering() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.keys) > 0
}

func (f *Filter) shouldForward(args any) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.keys) == 0 || f.key == nil {
		return true
	}

	key := f.key(args)
	if key == "" {
		return true
	}
	return f.keys[key]
}
