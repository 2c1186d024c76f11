package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with valid directories
// - NewFileWatcher returns error with invalid directory
// - Zero debounce falls back to the default
// - Single file change fires callback after debounce
// - Multiple file changes are batched into one sorted callback
// - Debouncing works (rapid changes coalesced into single callback)
// - Pause/Resume behavior (accumulate during pause, fire on resume)
// - File deleted triggers callback
// - Directory added triggers recursive watch
// - Skipped directories are not watched
// - Extension filtering and Filter predicate
// - Stop() is idempotent and context cancellation stops the loop
// - No goroutines leak (goleak in TestMain)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var jsExtensions = []string{".js", ".ts"}

// recorder collects callback batches.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
	called  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{called: make(chan struct{}, 10)}
}

func (r *recorder) callback(files []string) {
	r.mu.Lock()
	r.batches = append(r.batches, files)
	r.mu.Unlock()
	r.called <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
}

func (r *recorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func startWatcher(t *testing.T, dir string, opts Options) (*recorder, FileWatcher) {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = 100 * time.Millisecond
	}
	if opts.Extensions == nil {
		opts.Extensions = jsExtensions
	}

	w, err := NewFileWatcher([]string{dir}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	rec := newRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))

	// Wait for watcher to initialize
	time.Sleep(50 * time.Millisecond)
	return rec, w
}

// Test: NewFileWatcher creates watcher successfully with valid directories
func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{Extensions: jsExtensions})
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.Equal(t, DefaultDebounce, w.(*fileWatcher).debounceTime)
	require.NoError(t, w.Stop())
}

// Test: NewFileWatcher returns error with invalid directory
func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	nonexistent := filepath.Join(t.TempDir(), "nonexistent")

	w, err := NewFileWatcher([]string{nonexistent}, Options{})
	assert.Error(t, err)
	assert.Nil(t, w)
}

// Test: Single file change fires callback after debounce
func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	rec, _ := startWatcher(t, tempDir, Options{})

	testFile := filepath.Join(tempDir, "user.js")
	require.NoError(t, os.WriteFile(testFile, []byte("User.find();"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{testFile}, rec.last())
}

// Test: Multiple file changes are batched into one sorted callback
func TestFileWatcher_MultipleFileChanges(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	rec, _ := startWatcher(t, tempDir, Options{Debounce: 200 * time.Millisecond})

	file3 := filepath.Join(tempDir, "c.ts")
	file1 := filepath.Join(tempDir, "a.js")
	file2 := filepath.Join(tempDir, "b.js")

	require.NoError(t, os.WriteFile(file3, []byte("x"), 0644))
	time.Sleep(20 * time.Millisecond) // Less than debounce time
	require.NoError(t, os.WriteFile(file1, []byte("x"), 0644))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(file2, []byte("x"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{file1, file2, file3}, rec.last())
}

// Test: Debouncing works (rapid changes coalesced into single callback)
func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	rec, _ := startWatcher(t, tempDir, Options{Debounce: 200 * time.Millisecond})

	testFile := filepath.Join(tempDir, "model.js")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(testFile, []byte(strings.Repeat("v", i+1)), 0644))
		time.Sleep(30 * time.Millisecond)
	}

	rec.wait(t)

	// Give a potential second callback time to arrive
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, []string{testFile}, rec.last())
}

// Test: Pause/Resume behavior (accumulate during pause, fire on resume)
func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	rec, w := startWatcher(t, tempDir, Options{})

	w.Pause()

	testFile := filepath.Join(tempDir, "paused.js")
	require.NoError(t, os.WriteFile(testFile, []byte("x"), 0644))

	// Debounce expires while paused: nothing fires
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, rec.count())

	w.Resume()
	rec.wait(t)
	assert.Equal(t, []string{testFile}, rec.last())
}

// Test: File deleted triggers callback
func TestFileWatcher_FileDeleted(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "gone.ts")
	require.NoError(t, os.WriteFile(testFile, []byte("x"), 0644))

	rec, _ := startWatcher(t, tempDir, Options{})

	require.NoError(t, os.Remove(testFile))

	rec.wait(t)
	assert.Contains(t, rec.last(), testFile)
}

// Test: Directory added triggers recursive watch
func TestFileWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	rec, _ := startWatcher(t, tempDir, Options{})

	newDir := filepath.Join(tempDir, "models")
	require.NoError(t, os.Mkdir(newDir, 0755))

	// Let the watcher register the new directory before writing into it
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(newDir, "User.js")
	require.NoError(t, os.WriteFile(testFile, []byte("x"), 0644))

	rec.wait(t)
	assert.Contains(t, rec.last(), testFile)
}

// Test: Skipped directories are not watched
func TestFileWatcher_SkipDir(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	skipped := filepath.Join(tempDir, "node_modules")
	require.NoError(t, os.Mkdir(skipped, 0755))

	rec, _ := startWatcher(t, tempDir, Options{
		SkipDir: func(path string) bool { return filepath.Base(path) == "node_modules" },
	})

	require.NoError(t, os.WriteFile(filepath.Join(skipped, "lib.js"), []byte("x"), 0644))
	time.Sleep(50 * time.Millisecond)
	watched := filepath.Join(tempDir, "app.js")
	require.NoError(t, os.WriteFile(watched, []byte("x"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{watched}, rec.last())
}

// Test: Extension filtering and Filter predicate
func TestFileWatcher_Filtering(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	rec, _ := startWatcher(t, tempDir, Options{
		Filter: func(path string) bool { return !strings.HasSuffix(path, ".test.js") },
	})

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "user.test.js"), []byte("x"), 0644))
	kept := filepath.Join(tempDir, "user.js")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{kept}, rec.last())
}

// Test: Stop() is idempotent and safe to call concurrently
func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), func([]string) {}))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Stop()
		}()
	}
	wg.Wait()
}

// Test: Stop() before Start() closes cleanly
func TestFileWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}

// Test: Context cancellation stops the event loop
func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func([]string) {}))

	cancel()

	select {
	case <-w.(*fileWatcher).doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("watch loop did not exit after cancel")
	}
	require.NoError(t, w.Stop())
}
