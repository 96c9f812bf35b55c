// Package token generates opaque subscription tokens.
package token

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// UUID returns a random 36-character hyphenated identifier.
func UUID() string {
	return uuid.NewString()
}

// UUIDSource is the default token source.
type UUIDSource struct{}

// Token returns a fresh UUID string.
func (UUIDSource) Token() string {
	return UUID()
}

// Sequence hands out predictable tokens: prefix-1, prefix-2, ...
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

// NewSequence creates a sequence token source.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Token returns the next token in the sequence.
func (s *Sequence) Token() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.next.Add(1))
}
