// Package hub implements the named-event publish/subscribe registry.
package hub

import (
	"slices"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brianly1003/breve/internal/compose"
	"github.com/brianly1003/breve/internal/domain/ports"
	"github.com/brianly1003/breve/internal/sync"
	"github.com/brianly1003/breve/internal/token"
)

// Method names exposed by Methods and copied by MixInto.
const (
	MethodPublish        = "publish"
	MethodSubscribe      = "subscribe"
	MethodUnsubscribe    = "unsubscribe"
	MethodUnsubscribeAll = "unsubscribeAll"
)

// Callback is invoked for every publish of a subscribed event.
type Callback = ports.Callback

// Listener is one subscription.
type Listener struct {
	Callback Callback
	Scope    any
	Token    string
}

// Hub dispatches published events to the listeners of that event.
type Hub struct {
	// owner is passed as scope to listeners subscribed without one
	owner any

	tokens ports.TokenSource
	logger zerolog.Logger

	// mu protects listeners
	mu sync.RWMutex

	// listeners maps event name to subscriptions in insertion order.
	// nil until first use, and again after UnsubscribeAll("").
	listeners map[string][]*Listener
}

// Option configures a Hub.
type Option func(*Hub)

// WithOwner sets the default callback scope.
func WithOwner(owner any) Option {
	return func(h *Hub) {
		h.owner = owner
	}
}

// WithTokenSource replaces the UUID token source.
func WithTokenSource(ts ports.TokenSource) Option {
	return func(h *Hub) {
		if ts != nil {
			h.tokens = ts
		}
	}
}

// WithLogger sets the hub's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// New creates a new Hub. Without WithOwner the hub is its own default scope.
func New(opts ...Option) *Hub {
	h := &Hub{
		tokens: token.UUIDSource{},
		logger: log.With().Str("component", "hub").Logger(),
	}
	h.owner = h
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MakeObservable returns a hub whose callbacks default to target as scope.
// The target holds or embeds the returned hub.
func MakeObservable(target any, opts ...Option) *Hub {
	return New(append([]Option{WithOwner(target)}, opts...)...)
}

// registry returns the listener map, creating it if needed. Caller holds mu.
func (h *Hub) registry() map[string][]*Listener {
	if h.listeners == nil {
		h.listeners = make(map[string][]*Listener)
	}
	return h.listeners
}

// Subscribe registers cb for event and returns its token.
func (h *Hub) Subscribe(event string, cb Callback, scope any) string {
	tok := h.tokens.Token()

	h.mu.Lock()
	reg := h.registry()
	reg[event] = append(reg[event], &Listener{
		Callback: cb,
		Scope:    scope,
		Token:    tok,
	})
	count := len(reg[event])
	h.mu.Unlock()

	h.logger.Trace().
		Str("event", event).
		Str("token", tok).
		Int("listeners", count).
		Msg("listener subscribed")

	return tok
}

// Publish calls every listener of event, most recently subscribed first.
// args is handed to each callback as is. A panicking callback stops the
// remaining calls and the panic reaches the caller.
func (h *Hub) Publish(event string, args any) {
	h.mu.RLock()
	list := slices.Clone(h.listeners[event])
	h.mu.RUnlock()

	if len(list) == 0 {
		return
	}

	h.logger.Trace().
		Str("event", event).
		Int("listeners", len(list)).
		Msg("event published")

	for i := len(list) - 1; i >= 0; i-- {
		l := list[i]
		if l.Callback == nil {
			continue
		}
		scope := l.Scope
		if scope == nil {
			scope = h.owner
		}
		l.Callback(scope, args)
	}
}

// Unsubscribe removes the newest listener of event holding token. An empty
// token removes every listener of event. Unknown tokens are ignored.
func (h *Hub) Unsubscribe(event, tok string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	reg := h.registry()
	list, ok := reg[event]
	if !ok {
		reg[event] = []*Listener{}
	}

	if tok == "" {
		reg[event] = []*Listener{}
		h.logger.Trace().Str("event", event).Msg("event listeners cleared")
		return
	}

	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Token == tok {
			reg[event] = slices.Delete(list, i, i+1)
			h.logger.Trace().
				Str("event", event).
				Str("token", tok).
				Msg("listener unsubscribed")
			return
		}
	}
}

// UnsubscribeAll resets the listeners of event. With an empty event the
// whole registry is dropped.
func (h *Hub) UnsubscribeAll(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if event != "" {
		h.registry()[event] = []*Listener{}
		return
	}
	h.listeners = nil
	h.logger.Trace().Msg("all listeners cleared")
}

// ListenerCount returns the number of listeners of event.
func (h *Hub) ListenerCount(event string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[event])
}

// Tokens returns the tokens of event's listeners in subscription order.
func (h *Hub) Tokens(event string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := h.listeners[event]
	result := make([]string, 0, len(list))
	for _, l := range list {
		result = append(result, l.Token)
	}
	return result
}

// Events returns the sorted names of events that have a listener list,
// including emptied ones.
func (h *Hub) Events() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]string, 0, len(h.listeners))
	for name := range h.listeners {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Owner returns the default callback scope.
func (h *Hub) Owner() any {
	return h.owner
}

// Methods returns the four hub operations as a method table.
func (h *Hub) Methods() compose.MethodTable {
	return compose.MethodTable{
		MethodPublish:        h.Publish,
		MethodSubscribe:      h.Subscribe,
		MethodUnsubscribe:    h.Unsubscribe,
		MethodUnsubscribeAll: h.UnsubscribeAll,
	}
}

// MixInto copies the four hub operations onto target.
func (h *Hub) MixInto(target compose.MethodTable) error {
	return compose.Mixin(target, h.Methods(),
		MethodPublish, MethodSubscribe, MethodUnsubscribe, MethodUnsubscribeAll)
}

var _ ports.Observable = (*Hub)(nil)
