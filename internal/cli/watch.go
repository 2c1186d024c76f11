package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/modelguard/internal/checker"
	"github.com/mvp-joe/modelguard/internal/config"
	"github.com/mvp-joe/modelguard/internal/discovery"
	"github.com/mvp-joe/modelguard/internal/report"
	"github.com/mvp-joe/modelguard/internal/watcher"
)

// watchSession re-checks changed files for check --watch.
type watchSession struct {
	ctx      context.Context
	checker  *checker.Checker
	fd       *discovery.FileDiscovery
	reporter report.Reporter
	opts     checkOptions
	stdout   io.Writer
	stderr   io.Writer
	log      *logrus.Logger
	watcher  watcher.FileWatcher
	writes   *selfWrites
	mu       sync.Mutex // serializes change batches
}

// newWatchSession creates the watcher and starts it paused. Changes seen
// before run are delivered when it resumes.
func newWatchSession(ctx context.Context, c *checker.Checker, cfg *config.Config, fd *discovery.FileDiscovery, reporter report.Reporter, opts checkOptions, stdout, stderr io.Writer, logger *logrus.Logger) (*watchSession, error) {
	w, err := watcher.NewFileWatcher([]string{fd.RootDir()}, watcher.Options{
		Debounce:   cfg.Debounce(),
		Extensions: cfg.SourceExtensions(),
		Filter:     fd.Matches,
		SkipDir:    fd.Ignored,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	s := &watchSession{
		ctx:      ctx,
		checker:  c,
		fd:       fd,
		reporter: reporter,
		opts:     opts,
		stdout:   stdout,
		stderr:   stderr,
		log:      logger,
		watcher:  w,
		writes:   newSelfWrites(),
	}

	w.Pause()
	if err := w.Start(ctx, s.onChange); err != nil {
		w.Stop()
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	return s, nil
}

// selfWrites returns the session's write record, or nil without a session.
func (s *watchSession) selfWrites() *selfWrites {
	if s == nil {
		return nil
	}
	return s.writes
}

// run resumes the watcher and blocks until the session context is cancelled.
func (s *watchSession) run() {
	if !s.opts.quiet {
		fmt.Fprintf(s.stderr, "Watching %s for changes (Ctrl+C to stop)\n", s.fd.RootDir())
	}
	s.watcher.Resume()
	<-s.ctx.Done()
}

func (s *watchSession) close() {
	if err := s.watcher.Stop(); err != nil {
		s.log.WithError(err).Warn("failed to stop watcher")
	}
}

// onChange re-checks a batch of changed files, skipping files whose content
// is exactly what the fixer last wrote.
func (s *watchSession) onChange(files []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files = s.writes.filter(files)
	if len(files) == 0 {
		return
	}

	results := recheckFiles(s.ctx, s.checker, files, s.log)
	if s.opts.fix {
		if err := fixResults(s.ctx, s.checker, results, s.fd.RootDir(), s.opts.quiet, s.stderr, s.writes); err != nil {
			s.log.WithError(err).Warn("fix failed")
		}
	}
	if err := s.reporter.Write(s.stdout, report.New(results)); err != nil {
		s.log.WithError(err).Warn("failed to write report")
	}
	s.log.WithField("open_findings", s.checker.Store().Total()).Debug("waiting for changes")
}

// recheckFiles checks changed files, dropping deleted ones from the store.
func recheckFiles(ctx context.Context, c *checker.Checker, files []string, logger *logrus.Logger) []checker.Result {
	results := make([]checker.Result, 0, len(files))
	for _, file := range files {
		result, err := c.CheckFile(ctx, file)
		if errors.Is(err, fs.ErrNotExist) {
			c.Store().Delete(file)
			logger.WithField("file", file).Debug("file removed")
			continue
		}
		if err != nil {
			logger.WithError(err).WithField("file", file).Warn("check failed")
			continue
		}
		results = append(results, result)
	}
	return results
}

// selfWrites remembers a digest of the content the fixer wrote to each file,
// so the watcher events caused by those writes can be told apart from edits.
type selfWrites struct {
	mu      sync.Mutex
	digests map[string]uint64
}

func newSelfWrites() *selfWrites {
	return &selfWrites{digests: make(map[string]uint64)}
}

// record notes that content was written to path. A nil receiver ignores it.
func (w *selfWrites) record(path, content string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.digests[cleanPath(path)] = xxhash.Sum64String(content)
}

// filter drops files whose current content still matches the recorded write.
// A file that changed since, or cannot be read, is kept and forgotten.
func (w *selfWrites) filter(files []string) []string {
	if w == nil {
		return files
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := files[:0:0]
	for _, file := range files {
		key := cleanPath(file)
		digest, ok := w.digests[key]
		if !ok {
			kept = append(kept, file)
			continue
		}

		content, err := os.ReadFile(file)
		if err == nil && xxhash.Sum64(content) == digest {
			continue
		}
		delete(w.digests, key)
		kept = append(kept, file)
	}
	return kept
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
