package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

// snapshotFile writes an initial snapshot into a fresh directory.
func snapshotFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// changeFlag records onChange calls from the debouncer goroutine.
type changeFlag struct {
	mu      sync.Mutex
	changed bool
}

func (c *changeFlag) set() {
	c.mu.Lock()
	c.changed = true
	c.mu.Unlock()
}

func (c *changeFlag) get() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

func startWatcher(t *testing.T, path string, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(path, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	path := snapshotFile(t)
	var flag changeFlag
	startWatcher(t, path,
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(flag.set),
	)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`[{"id": 1, "parent": 0, "text": "a"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if !flag.get() {
		t.Error("expected change to be detected")
	}
}

// TestWatcher_DetectsAtomicReplace verifies a temp-file-and-rename save is
// seen even though the original inode goes away.
func TestWatcher_DetectsAtomicReplace(t *testing.T) {
	path := snapshotFile(t)
	w := startWatcher(t, path, WithDebounceDuration(50*time.Millisecond))

	time.Sleep(100 * time.Millisecond)
	tmp := path + ".tmp-1"
	if err := os.WriteFile(tmp, []byte(`[{"id": "x", "parent": "0", "text": "b"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changed():
	case <-time.After(time.Second):
		t.Error("timeout waiting for change after rename")
	}
}

func TestWatcher_PollingFallback(t *testing.T) {
	path := snapshotFile(t)
	var flag changeFlag
	w := startWatcher(t, path,
		WithDebounceDuration(50*time.Millisecond),
		WithPollInterval(100*time.Millisecond),
		WithForcePoll(true),
		WithOnChange(flag.set),
	)

	if !w.IsPolling() {
		t.Error("expected watcher to be in polling mode")
	}

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`[{"id": 2, "parent": 0, "text": "polled"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if !flag.get() {
		t.Error("expected change to be detected via polling")
	}
}

func TestWatcher_ChangedChannel(t *testing.T) {
	path := snapshotFile(t)
	w := startWatcher(t, path,
		WithDebounceDuration(50*time.Millisecond),
		WithPollInterval(100*time.Millisecond),
		WithForcePoll(true),
	)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte(`[{"id": 3, "parent": 0, "text": "new"}]`), 0o644)
	}()

	select {
	case <-w.Changed():
	case <-time.After(500 * time.Millisecond):
		t.Error("timeout waiting for change notification")
	}
}

// TestWatcher_ContextCancel verifies cancelling the start context ends
// watching without an explicit Stop.
func TestWatcher_ContextCancel(t *testing.T) {
	path := snapshotFile(t)
	var flag changeFlag
	w, err := New(path,
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
		WithOnChange(flag.set),
	)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	cancel()
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`[{"id": 4, "parent": 0, "text": "late"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if flag.get() {
		t.Error("change reported after the context was cancelled")
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv(EnvForcePoll, "1")

	w := startWatcher(t, snapshotFile(t),
		WithDebounceDuration(10*time.Millisecond),
		WithPollInterval(25*time.Millisecond),
	)
	if !w.IsPolling() {
		t.Fatalf("expected watcher to be in polling mode when %s is set", EnvForcePoll)
	}
}

func TestWatcher_RemoteFilesystem_UsesPolling(t *testing.T) {
	orig := detectFilesystemTypeFunc
	detectFilesystemTypeFunc = func(string) FilesystemType { return FSTypeNFS }
	t.Cleanup(func() { detectFilesystemTypeFunc = orig })

	w := startWatcher(t, snapshotFile(t),
		WithDebounceDuration(10*time.Millisecond),
		WithPollInterval(25*time.Millisecond),
	)
	if !w.IsPolling() {
		t.Fatal("expected watcher to use polling on remote filesystem")
	}
	if got := w.FilesystemType(); got != FSTypeNFS {
		t.Fatalf("expected filesystem type %v, got %v", FSTypeNFS, got)
	}
}

func TestWatcher_FileRemoved(t *testing.T) {
	path := snapshotFile(t)

	var (
		errMu    sync.Mutex
		gotError error
	)
	startWatcher(t, path,
		WithDebounceDuration(50*time.Millisecond),
		WithPollInterval(100*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			errMu.Lock()
			gotError = err
			errMu.Unlock()
		}),
	)

	time.Sleep(50 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	errMu.Lock()
	defer errMu.Unlock()
	if gotError != ErrFileRemoved {
		t.Errorf("expected ErrFileRemoved, got %v", gotError)
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w, err := New(snapshotFile(t))
	if err != nil {
		t.Fatal(err)
	}

	if w.IsStarted() {
		t.Error("watcher should not be started initially")
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !w.IsStarted() {
		t.Error("watcher should be started after Start()")
	}
	if err := w.Start(context.Background()); err != ErrAlreadyStarted {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	w.Stop()
	if w.IsStarted() {
		t.Error("watcher should not be started after Stop()")
	}
	// Double stop should be safe
	w.Stop()

	// A stopped watcher can be started again.
	if err := w.Start(context.Background()); err != nil {
		t.Errorf("restart: %v", err)
	}
	w.Stop()
}

func TestWatcher_PathAndInterval(t *testing.T) {
	path := snapshotFile(t)
	w, err := New(path, WithPollInterval(500*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	absPath, _ := filepath.Abs(path)
	if w.Path() != absPath {
		t.Errorf("expected path %s, got %s", absPath, w.Path())
	}
	if got := w.PollInterval(); got != 500*time.Millisecond {
		t.Errorf("expected poll interval 500ms, got %v", got)
	}
}

func TestFilesystemType_String(t *testing.T) {
	tests := []struct {
		fsType   FilesystemType
		expected string
	}{
		{FSTypeUnknown, "unknown"},
		{FSTypeLocal, "local"},
		{FSTypeNFS, "nfs"},
		{FSTypeSMB, "smb"},
		{FSTypeSSHFS, "sshfs"},
		{FSTypeFUSE, "fuse"},
		{FilesystemType(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.fsType.String(); got != tc.expected {
			t.Errorf("FilesystemType(%d).String() = %q, expected %q", tc.fsType, got, tc.expected)
		}
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"y", true},
		{"on", true},
		{" ON ", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"", false},
		{"invalid", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("TEST_ENV_BOOL", tc.value)
			if got := envBool("TEST_ENV_BOOL"); got != tc.expected {
				t.Errorf("envBool(%q) = %v, expected %v", tc.value, got, tc.expected)
			}
		})
	}
}

func TestDetectFilesystemType(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("DetectFilesystemType(\"\") = %v, expected FSTypeUnknown", got)
	}

	var seen []string
	orig := detectFilesystemTypeFunc
	detectFilesystemTypeFunc = func(p string) FilesystemType {
		seen = append(seen, p)
		return FSTypeLocal
	}
	t.Cleanup(func() { detectFilesystemTypeFunc = orig })

	dir := t.TempDir()
	if got := DetectFilesystemType(filepath.Join(dir, "missing", "tree.json")); got != FSTypeLocal {
		t.Errorf("got %v", got)
	}
	if len(seen) != 1 || seen[0] != dir {
		t.Errorf("classified %v, want the nearest existing parent %s", seen, dir)
	}
}
