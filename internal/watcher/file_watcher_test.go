package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with valid directories
// - NewFileWatcher returns error with invalid directory
// - Single file change fires callback after debounce
// - Rapid changes to several files are batched, deduplicated and sorted
// - Extension filtering and the path filter drop unwanted files
// - Pause/Resume behavior (accumulate during pause, fire on resume)
// - Files in directories created after Start are reported
// - Stop() is idempotent and works without Start

const testDebounce = 50 * time.Millisecond

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestWatcher(t *testing.T, dir string, opts ...Option) FileWatcher {
	t.Helper()
	opts = append([]Option{WithDebounce(testDebounce), WithLogger(quietLogger())}, opts...)
	w, err := NewFileWatcher([]string{dir}, []string{".py"}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// collector gathers callback batches.
type collector struct {
	mu      sync.Mutex
	batches [][]string
	ch      chan struct{}
}

func newCollector() *collector {
	return &collector{ch: make(chan struct{}, 16)}
}

func (c *collector) callback(files []string) {
	c.mu.Lock()
	c.batches = append(c.batches, files)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *collector) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(3 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[len(c.batches)-1]
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"})
	require.NoError(t, err)
	require.NotNil(t, w)
	require.NoError(t, w.Stop())
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nonexistent")}, []string{".py"})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_BatchesAndSorts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, WithDebounce(200*time.Millisecond))
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(100 * time.Millisecond)

	b := filepath.Join(dir, "b.py")
	a := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(b, []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(a, []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("x = 2\n"), 0644))

	assert.Equal(t, []string{a, b}, c.wait(t))
	assert.Equal(t, 1, c.count())
}

func TestFileWatcher_Filtering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, WithFilter(func(path string) bool {
		return !strings.HasPrefix(filepath.Base(path), "test_")
	}))
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("#"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_app.py"), []byte("x = 1\n"), 0644))
	keep := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(keep, []byte("x = 1\n"), 0644))

	assert.Equal(t, []string{keep}, c.wait(t))
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(100 * time.Millisecond)

	w.Pause()
	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	// Well past the debounce period, nothing fires while paused.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, c.count())

	w.Resume()
	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "mod.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	assert.Contains(t, c.wait(t), file)
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"}, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	started, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"}, WithLogger(quietLogger()))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, started.Start(ctx, func([]string) {}))
	cancel()
	require.NoError(t, started.Stop())
}
