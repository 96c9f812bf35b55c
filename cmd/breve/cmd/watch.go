package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brianly1003/breve/internal/adapters/watcher"
	"github.com/brianly1003/breve/internal/domain/events"
	"github.com/brianly1003/breve/internal/hub"
	"github.com/brianly1003/breve/internal/scheduler"
	"github.com/brianly1003/breve/internal/timergate"
)

var (
	watchPath      string
	watchOnly      []string
	watchDebounce  time.Duration
	watchHeartbeat time.Duration
	watchBuffer    int
)

// watchCmd streams file changes through the hub.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream debounced file changes",
	Long: `Watch a directory and print every file change after it settles.

Raw file system events are coalesced per path by the debounce gate and
published on the hub as "file_changed". Rapid bursts of writes to one file
show up as a single line.

Examples:
  breve watch                          # Watch watcher.path (default: cwd)
  breve watch --path ./src
  breve watch --only created,deleted   # Filter by change type
  breve watch --debounce 500ms
  breve watch --heartbeat 10s          # Log a heartbeat while idle`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchPath, "path", "", "directory to watch (overrides watcher.path)")
	watchCmd.Flags().StringSliceVar(&watchOnly, "only", nil, "change types to show: created, modified, deleted, renamed")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "debounce delay (overrides gate.debounce_ms)")
	watchCmd.Flags().DurationVar(&watchHeartbeat, "heartbeat", 0, "heartbeat interval, 0 disables")
	watchCmd.Flags().IntVar(&watchBuffer, "buffer", 256, "pending change buffer size")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(cfg)

	path := cfg.Watcher.Path
	if watchPath != "" {
		path = watchPath
	}
	debounce := cfg.Gate.DebounceDelay()
	if watchDebounce > 0 {
		debounce = watchDebounce
	}
	for _, change := range watchOnly {
		if !validChangeType(change) {
			return fmt.Errorf("unknown change type %q", change)
		}
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	out := newWatchLogger(cmd.OutOrStdout(), level)

	eventHub := hub.New(hub.WithLogger(log.With().Str("component", "hub").Logger()))
	defer eventHub.UnsubscribeAll("")

	sched := scheduler.New(nil)
	gate := timergate.New(sched, timergate.WithLogger(log.With().Str("component", "timergate").Logger()))
	defer gate.Stop()

	sink := hub.NewChannelSink(watchBuffer, log.Logger)
	defer sink.Close()

	filter := hub.NewFilter(sink.Listen(events.FileChanged), events.ChangeKey)
	for _, change := range watchOnly {
		filter.Allow(change)
	}
	eventHub.Subscribe(events.FileChanged, filter.Callback(), nil)
	eventHub.Subscribe(events.Heartbeat, hub.NewLogSink(log.Logger, events.Heartbeat), nil)

	w := watcher.New(path, eventHub, gate,
		watcher.WithDebounce(debounce),
		watcher.WithIgnorePatterns(cfg.Watcher.IgnorePatterns),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	if watchHeartbeat > 0 {
		go publishHeartbeats(ctx, eventHub, watchHeartbeat)
	}

	out.Info("watching", "path", path, "debounce", debounce)
	if filter.IsFiltering() {
		out.Info("filtering", "only", filter.AllowedKeys())
	}

	total := 0
	for {
		select {
		case sig := <-sigChan:
			out.Info("stopping", "signal", sig.String(), "changes", total)
			return nil
		case <-ctx.Done():
			return nil
		case d := <-sink.Deliveries():
			total++
			printChange(out, d)
			// Running totals at most once per throttle window.
			gate.Throttle("watch:summary", func(_ any, args any) {
				out.Debug("changes so far", "total", args)
			}, nil, cfg.Gate.ThrottleDelay(), total)
		}
	}
}

func newWatchLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// printChange writes one file_changed delivery as a log line.
func printChange(out *slog.Logger, d hub.Delivery) {
	e, ok := d.Args.(*events.BaseEvent)
	if !ok {
		return
	}
	p, ok := e.Payload.(events.FileChangedPayload)
	if !ok {
		return
	}

	attrs := []any{"path", p.Path}
	switch p.Change {
	case events.FileChangeRenamed:
		attrs = append(attrs, "from", p.OldPath)
	case events.FileChangeDeleted:
	default:
		attrs = append(attrs, "size", p.Size)
	}
	out.Info(string(p.Change), attrs...)
}

func publishHeartbeats(ctx context.Context, h *hub.Hub, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var seq int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq++
			h.Publish(events.Heartbeat, events.NewHeartbeatEvent(seq))
		}
	}
}

func validChangeType(s string) bool {
	switch events.FileChangeType(s) {
	case events.FileChangeCreated, events.FileChangeModified,
		events.FileChangeDeleted, events.FileChangeRenamed:
		return true
	}
	return false
}
