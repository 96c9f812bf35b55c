package hub

import (
	"github.com/rs/zerolog"

	"github.com/brianly1003/breve/internal/domain"
	"github.com/brianly1003/breve/internal/sync"
)

// Delivery is one callback invocation captured by a ChannelSink.
type Delivery struct {
	Event string
	Scope any
	Args  any
}

// ChannelSink forwards deliveries to a buffered channel.
type ChannelSink struct {
	send   chan Delivery
	done   chan struct{}
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewChannelSink creates a new channel-backed sink.
func NewChannelSink(bufferSize int, logger zerolog.Logger) *ChannelSink {
	return &ChannelSink{
		send:   make(chan Delivery, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Listen returns a callback that forwards event's deliveries to the sink.
// Deliveries that cannot be queued are dropped with a warning.
func (s *ChannelSink) Listen(event string) Callback {
	return func(scope any, args any) {
		if err := s.Deliver(Delivery{Event: event, Scope: scope, Args: args}); err != nil {
			s.logger.Warn().
				Str("event", event).
				Err(err).
				Msg("delivery dropped")
		}
	}
}

// Deliver queues d without blocking.
func (s *ChannelSink) Deliver(d Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSinkClosed
	}

	select {
	case s.send <- d:
		return nil
	default:
		// Channel full, reader is too slow
		return domain.ErrSinkFull
	}
}

// Close closes the sink.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	close(s.send)
	return nil
}

// Done returns a channel that's closed when the sink is closed.
func (s *ChannelSink) Done() <-chan struct{} {
	return s.done
}

// Deliveries returns the channel to receive deliveries from.
func (s *ChannelSink) Deliveries() <-chan Delivery {
	return s.send
}

// NewLogSink returns a callback that logs every delivery of event.
func NewLogSink(logger zerolog.Logger, event string) Callback {
	return func(scope any, args any) {
		logger.Info().
			Str("event", event).
			Interface("args", args).
			Msg("event delivered")
	}
}
