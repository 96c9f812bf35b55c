package ports

import "time"

// Callback is invoked for each published event. scope is the listener's
// scope, or the hub's owner when the listener was subscribed without one.
type Callback func(scope any, args any)

// Observable defines the publish/subscribe contract.
type Observable interface {
	// Subscribe registers cb for event and returns a token for later removal.
	Subscribe(event string, cb Callback, scope any) string

	// Publish invokes every listener of event, most recently subscribed first.
	Publish(event string, args any)

	// Unsubscribe removes the listener holding token. An empty token removes
	// every listener of event.
	Unsubscribe(event, token string)

	// UnsubscribeAll resets event's listeners, or the whole registry when
	// event is empty.
	UnsubscribeAll(event string)
}

// TokenSource produces subscription tokens.
type TokenSource interface {
	// Token returns a string that is unique with high probability.
	Token() string
}

// Handle identifies a scheduled callback.
type Handle interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the callback before it fired.
	Stop() bool
}

// Scheduler is the delay primitive timers are built on.
type Scheduler interface {
	// Schedule runs fn once, no earlier than delay from now, unless the
	// returned handle is cancelled first.
	Schedule(fn func(), delay time.Duration) Handle

	// Cancel stops a scheduled callback. Cancelling a nil or fired handle is
	// a no-op.
	Cancel(h Handle)
}

// Gate defines id-keyed throttle and debounce scheduling.
type Gate interface {
	// Throttle calls fn now unless id is inside an open suppression window.
	Throttle(id string, fn Callback, scope any, delay time.Duration, args any)

	// Debounce schedules fn after delay, replacing any pending call for id.
	Debounce(id string, fn Callback, scope any, delay time.Duration, args any)

	// Stop cancels every pending timer.
	Stop()
}
