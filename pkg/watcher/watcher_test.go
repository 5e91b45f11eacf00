package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/0xmhha/smartreadme/pkg/logger"
)

func isZip(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}

func newTestWatcher(t *testing.T, dir string) Watcher {
	t.Helper()

	w, err := New(Config{
		DebounceInterval: 50 * time.Millisecond,
		Accept:           isZip,
	}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := w.Start(ctx, dir); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return w
}

func waitEvent(t *testing.T, w Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()

	select {
	case ev := <-w.Events():
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestNew(t *testing.T) {
	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w == nil {
		t.Fatal("New() returned nil watcher")
	}
	if closeErr := w.Close(); closeErr != nil {
		t.Errorf("Close() error = %v", closeErr)
	}
}

func TestStartInvalidPath(t *testing.T) {
	tmpDir := t.TempDir()

	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if startErr := w.Start(context.Background(), filepath.Join(tmpDir, "missing")); !errors.Is(startErr, ErrInvalidPath) {
		t.Errorf("Start() error = %v, want ErrInvalidPath", startErr)
	}

	file := filepath.Join(tmpDir, "plain.zip")
	if err := os.WriteFile(file, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if startErr := w.Start(context.Background(), file); !errors.Is(startErr, ErrInvalidPath) {
		t.Errorf("Start() on a file error = %v, want ErrInvalidPath", startErr)
	}
}

func TestStartAlreadyStarted(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir)

	if startErr := w.Start(context.Background(), tmpDir); startErr != ErrAlreadyStarted {
		t.Errorf("Start() error = %v, want ErrAlreadyStarted", startErr)
	}
}

func TestArchiveCreate(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir)

	archive := filepath.Join(tmpDir, "myproj.zip")
	if err := os.WriteFile(archive, []byte("PK"), 0600); err != nil {
		t.Fatal(err)
	}

	ev, ok := waitEvent(t, w, 2*time.Second)
	if !ok {
		t.Fatal("timeout waiting for archive event")
	}
	if filepath.Base(ev.Path) != "myproj.zip" {
		t.Errorf("event path = %s, want myproj.zip", ev.Path)
	}
	if ev.Op != OpCreate {
		t.Errorf("event op = %v, want CREATE", ev.Op)
	}
}

func TestArchiveMovedIn(t *testing.T) {
	outside := t.TempDir()
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir)

	src := filepath.Join(outside, "moved.zip")
	if err := os.WriteFile(src, []byte("PK"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(src, filepath.Join(tmpDir, "moved.zip")); err != nil {
		t.Fatal(err)
	}

	ev, ok := waitEvent(t, w, 2*time.Second)
	if !ok {
		t.Fatal("timeout waiting for moved archive")
	}
	if filepath.Base(ev.Path) != "moved.zip" {
		t.Errorf("event path = %s, want moved.zip", ev.Path)
	}
}

func TestDebouncing(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir)

	archive := filepath.Join(tmpDir, "big.zip")
	f, err := os.Create(archive) // nolint:gosec
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.WriteString("chunk"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if _, ok := waitEvent(t, w, 2*time.Second); !ok {
		t.Fatal("timeout waiting for debounced event")
	}
	if ev, ok := waitEvent(t, w, 200*time.Millisecond); ok {
		t.Errorf("got extra event %+v, want a single coalesced event", ev)
	}
}

func TestNonArchivesIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir)

	for _, name := range []string{"notes.txt", ".hidden.zip", "partial.zip.part"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	if ev, ok := waitEvent(t, w, 300*time.Millisecond); ok {
		t.Errorf("got event for ignored file: %s", ev.Path)
	}
}

func TestRemovedBeforeSettling(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir)

	archive := filepath.Join(tmpDir, "short.zip")
	if err := os.WriteFile(archive, []byte("PK"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(archive); err != nil {
		t.Fatal(err)
	}

	if ev, ok := waitEvent(t, w, 300*time.Millisecond); ok {
		t.Errorf("got event for removed archive: %s", ev.Path)
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{Op(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %s, want %s", tt.op, got, tt.want)
		}
	}
}

func TestStopNotStarted(t *testing.T) {
	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if stopErr := w.Stop(); stopErr != ErrNotStarted {
		t.Errorf("Stop() error = %v, want ErrNotStarted", stopErr)
	}
}

func TestCloseTwice(t *testing.T) {
	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestStartAfterClose(t *testing.T) {
	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if startErr := w.Start(context.Background(), t.TempDir()); startErr != ErrWatcherClosed {
		t.Errorf("Start() error = %v, want ErrWatcherClosed", startErr)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandHome("~/drop"); got != filepath.Join(home, "drop") {
		t.Errorf("expandHome(~/drop) = %s", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome(/abs) = %s", got)
	}
}
