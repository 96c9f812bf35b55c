package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/brianly1003/breve/internal/domain/events"
	"github.com/brianly1003/breve/internal/hub"
	"github.com/brianly1003/breve/internal/testutil"
	"github.com/brianly1003/breve/internal/timergate"
)

type recordingHub struct {
	*hub.Hub

	mu     sync.Mutex
	events []*events.BaseEvent
}

func newRecordingHub() *recordingHub {
	r := &recordingHub{Hub: hub.New(hub.WithLogger(zerolog.Nop()))}
	r.Subscribe(events.FileChanged, func(_ any, args any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, args.(*events.BaseEvent))
	}, nil)
	return r
}

func (r *recordingHub) payloads() []events.FileChangedPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.FileChangedPayload, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Payload.(events.FileChangedPayload))
	}
	return out
}

func (r *recordingHub) requireSinglePayload(t *testing.T) events.FileChangedPayload {
	t.Helper()
	got := r.payloads()
	if len(got) != 1 {
		t.Fatalf("event count = %d, want 1 (%v)", len(got), got)
	}
	return got[0]
}

// newTestWatcher returns a watcher on a manual scheduler and mock clock,
// marked running without starting fsnotify.
func newTestWatcher(t *testing.T, root string) (*Watcher, *recordingHub, *testutil.ManualScheduler, *clock.Mock) {
	t.Helper()
	rh := newRecordingHub()
	sched := testutil.NewManualScheduler()
	gate := timergate.New(sched, timergate.WithLogger(zerolog.Nop()))
	mock := clock.NewMock()

	w := New(root, rh, gate,
		WithDebounce(50*time.Millisecond),
		WithIgnorePatterns([]string{".git", "*.swp"}),
		WithClock(mock),
		WithLogger(zerolog.Nop()),
	)
	w.running = true
	return w, rh, sched, mock
}

func fsEvent(root, rel string, op fsnotify.Op) fsnotify.Event {
	return fsnotify.Event{Name: filepath.Join(root, rel), Op: op}
}

func TestHandleDebouncedEventPublishesFileChanged(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "file.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	w, rh, _, _ := newTestWatcher(t, root)
	w.handleDebouncedEvent("file.txt", events.FileChangeCreated)

	p := rh.requireSinglePayload(t)
	if p.Path != "file.txt" || p.Change != events.FileChangeCreated {
		t.Fatalf("payload = %+v, want created file.txt", p)
	}
	if p.Size != 5 {
		t.Errorf("size = %d, want 5", p.Size)
	}
}

func TestHandleDebouncedRenameMatchesPendingRename(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "new.txt"), []byte("content"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	w, rh, _, mock := newTestWatcher(t, root)
	w.pendingRenames["."] = pendingRename{oldPath: "old.txt", timestamp: mock.Now()}

	w.handleDebouncedEvent("new.txt", events.FileChangeCreated)

	p := rh.requireSinglePayload(t)
	if p.Change != events.FileChangeRenamed {
		t.Fatalf("change = %q, want %q", p.Change, events.FileChangeRenamed)
	}
	if p.OldPath != "old.txt" || p.Path != "new.txt" {
		t.Fatalf("rename payload = old:%q new:%q, want old:%q new:%q", p.OldPath, p.Path, "old.txt", "new.txt")
	}
}

func TestHandleDebouncedCreateAfterStaleRename(t *testing.T) {
	root := t.TempDir()
	w, rh, _, mock := newTestWatcher(t, root)
	w.pendingRenames["."] = pendingRename{oldPath: "old.txt", timestamp: mock.Now()}

	mock.Add(2 * time.Second)
	w.handleDebouncedEvent("new.txt", events.FileChangeCreated)

	p := rh.requireSinglePayload(t)
	if p.Change != events.FileChangeCreated {
		t.Fatalf("change = %q, want created", p.Change)
	}
	if _, ok := w.pendingRenames["."]; ok {
		t.Error("stale pending rename should be cleared")
	}
}

func TestProcessStalePendingRenames(t *testing.T) {
	w, rh, _, mock := newTestWatcher(t, t.TempDir())
	w.pendingRenames["a"] = pendingRename{oldPath: "a/gone.txt", timestamp: mock.Now()}

	w.processStalePendingRenames()
	if len(rh.payloads()) != 0 {
		t.Fatal("fresh rename should not be reported")
	}

	mock.Add(1500 * time.Millisecond)
	w.processStalePendingRenames()

	p := rh.requireSinglePayload(t)
	if p.Path != "a/gone.txt" || p.Change != events.FileChangeDeleted {
		t.Fatalf("payload = %+v, want deleted a/gone.txt", p)
	}
}

func TestHandleEventDebouncesPerPath(t *testing.T) {
	root := t.TempDir()
	w, rh, sched, _ := newTestWatcher(t, root)

	w.handleEvent(fsEvent(root, "a.txt", fsnotify.Create))
	sched.Advance(10 * time.Millisecond)
	w.handleEvent(fsEvent(root, "a.txt", fsnotify.Write))
	w.handleEvent(fsEvent(root, "b.txt", fsnotify.Write))

	sched.Advance(49 * time.Millisecond)
	if n := len(rh.payloads()); n != 0 {
		t.Fatalf("event count before delay = %d, want 0", n)
	}

	sched.Advance(time.Millisecond)
	got := rh.payloads()
	if len(got) != 2 {
		t.Fatalf("event count = %d, want 2 (%v)", len(got), got)
	}
	if got[0].Path != "a.txt" || got[0].Change != events.FileChangeCreated {
		t.Errorf("first = %+v, want a.txt created (create then write)", got[0])
	}
	if got[1].Path != "b.txt" || got[1].Change != events.FileChangeModified {
		t.Errorf("second = %+v, want b.txt modified", got[1])
	}
}

func TestHandleEventDeleteWins(t *testing.T) {
	root := t.TempDir()
	w, rh, sched, _ := newTestWatcher(t, root)

	w.handleEvent(fsEvent(root, "a.txt", fsnotify.Write))
	w.handleEvent(fsEvent(root, "a.txt", fsnotify.Remove))
	sched.Advance(time.Second)

	p := rh.requireSinglePayload(t)
	if p.Change != events.FileChangeDeleted {
		t.Errorf("change = %q, want deleted", p.Change)
	}
}

func TestHandleEventIgnored(t *testing.T) {
	root := t.TempDir()
	w, rh, sched, _ := newTestWatcher(t, root)

	w.handleEvent(fsEvent(root, ".git/index", fsnotify.Write))
	w.handleEvent(fsEvent(root, "main.go.swp", fsnotify.Write))
	w.handleEvent(fsEvent(root, "main.go", fsnotify.Chmod))
	sched.Advance(time.Second)

	if n := len(rh.payloads()); n != 0 {
		t.Errorf("event count = %d, want 0", n)
	}
	if sched.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", sched.Pending())
	}
}

func TestHandleEventRenameThenCreate(t *testing.T) {
	root := t.TempDir()
	w, rh, sched, _ := newTestWatcher(t, root)

	w.handleEvent(fsEvent(root, "dir/old.txt", fsnotify.Rename))
	w.handleEvent(fsEvent(root, "dir/new.txt", fsnotify.Create))
	sched.Advance(time.Second)

	p := rh.requireSinglePayload(t)
	if p.Change != events.FileChangeRenamed || p.OldPath != filepath.Join("dir", "old.txt") {
		t.Errorf("payload = %+v, want rename from dir/old.txt", p)
	}
}

func TestStopDropsPendingChanges(t *testing.T) {
	root := t.TempDir()
	w, rh, sched, _ := newTestWatcher(t, root)

	w.handleEvent(fsEvent(root, "a.txt", fsnotify.Write))
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	sched.Advance(time.Second)

	if n := len(rh.payloads()); n != 0 {
		t.Errorf("event count after Stop = %d, want 0", n)
	}
}

func TestIgnorePatterns(t *testing.T) {
	w := New(t.TempDir(), newRecordingHub(), timergate.New(testutil.NewManualScheduler()),
		WithLogger(zerolog.Nop()))

	tests := []struct {
		path string
		want bool
	}{
		{"src/main.go", false},
		{"node_modules/x/index.js", true},
		{"notes.tmp", true},
	}

	w.AddIgnorePattern("node_modules")
	w.AddIgnorePattern("*.tmp")
	w.AddIgnorePattern("dist")
	w.RemoveIgnorePattern("dist")

	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if w.shouldIgnore("dist/app.js") {
		t.Error("removed pattern should no longer match")
	}
}

func TestSplitPath(t *testing.T) {
	got := splitPath(filepath.Join("a", "b", "c.txt"))
	testutil.AssertStrings(t, []string{"a", "b", "c.txt"}, got, "splitPath")
}

func TestStartPublishesChanges(t *testing.T) {
	root := t.TempDir()
	h := hub.New(hub.WithLogger(zerolog.Nop()))
	gate := timergate.New(nil, timergate.WithLogger(zerolog.Nop()))
	defer gate.Stop()

	sink := hub.NewChannelSink(16, zerolog.Nop())
	defer sink.Close()
	h.Subscribe(events.FileChanged, sink.Listen(events.FileChanged), nil)

	w := New(root, h, gate, WithDebounce(20*time.Millisecond), WithLogger(zerolog.Nop()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()
	if !w.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if err := w.Start(ctx); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	select {
	case d := <-sink.Deliveries():
		e := d.Args.(*events.BaseEvent)
		p := e.Payload.(events.FileChangedPayload)
		if p.Path != "hello.txt" {
			t.Errorf("path = %q, want hello.txt", p.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no file_changed event received")
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
