package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brianly1003/breve/internal/compose"
	"github.com/brianly1003/breve/internal/console"
	"github.com/brianly1003/breve/internal/hub"
	"github.com/brianly1003/breve/internal/scheduler"
	"github.com/brianly1003/breve/internal/timergate"
	"github.com/brianly1003/breve/internal/token"
)

var demoDelay time.Duration

// demoCmd walks through the hub, gate and composition helpers.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show the hub, gates and mixins at work",
	Long: `Run a short scripted walkthrough:

  1. subscribe two listeners and publish (newest listener runs first)
  2. unsubscribe one by token
  3. mix the hub operations into a method table and call through it
  4. extend a class and resolve an inherited method
  5. throttle and debounce a burst of calls
  6. request an animation frame`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout(), demoDelay)
	},
}

func init() {
	demoCmd.Flags().DurationVar(&demoDelay, "delay", 50*time.Millisecond, "throttle and debounce delay")
}

// widget is the owner of the demo hub; listeners without a scope get it.
type widget struct {
	*hub.Hub
	name string
}

func runDemo(out io.Writer, delay time.Duration) error {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:          out,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	})
	con := console.New(&logger)

	// 1. Publish order and default scope.
	w := &widget{name: "demo-widget"}
	w.Hub = hub.MakeObservable(w,
		hub.WithTokenSource(token.NewSequence("sub")),
		hub.WithLogger(zerolog.Nop()),
	)

	listener := func(label string) hub.Callback {
		return func(scope any, args any) {
			owner := "?"
			if s, ok := scope.(*widget); ok {
				owner = s.name
			}
			con.Info("received", "listener", label, "scope", owner, "args", args)
		}
	}
	first := w.Subscribe("tick", listener("first"), nil)
	w.Subscribe("tick", listener("second"), nil)
	con.Info("publish tick", "listeners", w.ListenerCount("tick"))
	w.Publish("tick", 1)

	// 2. Token unsubscribe.
	w.Unsubscribe("tick", first)
	con.Info("unsubscribed", "token", first, "remaining", w.Tokens("tick"))
	w.Publish("tick", 2)

	// 3. Method table mixin.
	table := compose.MethodTable{}
	if err := w.MixInto(table); err != nil {
		return fmt.Errorf("mixin: %w", err)
	}
	publish, ok := table[hub.MethodPublish].(func(string, any))
	con.Assert(ok, "publish missing from method table")
	if ok {
		publish("tick", 3)
	}

	// 4. Class delegation.
	emitter := compose.NewClass("Emitter", w.Methods())
	button, err := compose.Extend(compose.NewClass("Button", compose.MethodTable{
		"label": func() string { return "OK" },
	}), emitter)
	if err != nil {
		return fmt.Errorf("extend: %w", err)
	}
	inst := button.New()
	_, inherited := inst.Lookup(hub.MethodSubscribe)
	con.Info("class", "name", button.Name, "instanceOf", emitter.Name, "is", inst.InstanceOf(emitter),
		"inherits", hub.MethodSubscribe, "found", inherited)

	// 5. Throttle and debounce.
	sched := scheduler.New(nil)
	gate := timergate.New(sched, timergate.WithLogger(zerolog.Nop()))
	defer gate.Stop()

	for i := 1; i <= 3; i++ {
		gate.Throttle("save", func(_ any, args any) {
			con.Info("throttled call ran", "call", args)
		}, nil, delay, i)
	}

	done := make(chan struct{})
	for i := 1; i <= 3; i++ {
		gate.Debounce("search", func(_ any, args any) {
			con.Info("debounced call ran", "call", args)
			close(done)
		}, nil, delay, i)
	}
	if err := wait(done, delay+time.Second); err != nil {
		return fmt.Errorf("debounce: %w", err)
	}

	// 6. Animation frame.
	frame := make(chan struct{})
	start := sched.Now()
	sched.RequestFrame(func() { close(frame) })
	if err := wait(frame, time.Second); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	con.Info("frame", "after", sched.Now().Sub(start).Round(time.Millisecond))

	w.UnsubscribeAll("")
	con.Info("done", "events", w.Events())
	return nil
}

func wait(ch <-chan struct{}, timeout time.Duration) error {
	select {
	case <-ch:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s", timeout)
	}
}
