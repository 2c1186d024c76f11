// Package checker is the host layer around the scan core: it applies the
// size gate, memoizes scans, tracks findings per document and writes fixes.
package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/maypok86/otter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/modelguard/internal/config"
	"github.com/mvp-joe/modelguard/internal/parsers"
	"github.com/mvp-joe/modelguard/internal/scan"
)

var (
	// ErrFileTooLarge indicates the size gate rejected a document
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrNoFindings indicates there is nothing to fix for the requested identifier
	ErrNoFindings = errors.New("no findings to fix")
)

// memoCapacity bounds the number of memoized scan results.
const memoCapacity = 4096

// Result is the outcome of checking one document.
type Result struct {
	Document   string         `json:"file"`
	Findings   []scan.Finding `json:"findings"`
	Skipped    bool           `json:"skipped,omitempty"`
	SkipReason string         `json:"skip_reason,omitempty"`
}

// Checker runs scans on behalf of the CLI, watcher and MCP server.
// It is safe for concurrent use.
type Checker struct {
	cfg         *config.Config
	scanner     *scan.Scanner
	fingerprint string
	store       *DiagnosticStore
	memo        otter.Cache[uint64, []scan.Finding]
	log         *logrus.Logger
	writeMu     sync.Mutex
}

// New creates a Checker from configuration. A nil logger discards output.
func New(cfg *config.Config, logger *logrus.Logger) (*Checker, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	opts := cfg.ScanOptions()
	if cfg.Check.Binder == config.BinderAST {
		opts.Binder = parsers.NewASTBinder(parsers.DialectTSX)
	}

	scanner, err := scan.NewScanner(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	memo, err := otter.MustBuilder[uint64, []scan.Finding](memoCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create scan cache: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"mode":   opts.Mode,
		"binder": cfg.Check.Binder,
	}).Debug("checker initialized")

	return &Checker{
		cfg:         cfg,
		scanner:     scanner,
		fingerprint: scanner.Options().Fingerprint(),
		store:       NewDiagnosticStore(),
		memo:        memo,
		log:         logger,
	}, nil
}

// Close releases the scan cache.
func (c *Checker) Close() {
	c.memo.Close()
}

// Store returns the per-document finding store.
func (c *Checker) Store() *DiagnosticStore {
	return c.store
}

// tooLarge applies the size gate to a byte length.
func (c *Checker) tooLarge(size int64) bool {
	return c.cfg.Host.SkipLargeFiles && size > c.cfg.Host.MaxFileSizeBytes
}

func (c *Checker) skipped(doc string, size int64) Result {
	c.store.Delete(doc)
	c.log.WithFields(logrus.Fields{
		"file":  doc,
		"bytes": size,
		"limit": c.cfg.Host.MaxFileSizeBytes,
	}).Debug("skipping large file")
	return Result{
		Document:   doc,
		Skipped:    true,
		SkipReason: fmt.Sprintf("%s (%d > %d bytes)", ErrFileTooLarge, size, c.cfg.Host.MaxFileSizeBytes),
	}
}

// CheckText scans a text snapshot for doc and replaces doc's findings in the store.
func (c *Checker) CheckText(doc, text string) Result {
	if c.tooLarge(int64(len(text))) {
		return c.skipped(doc, int64(len(text)))
	}

	findings := c.scan(text)
	c.store.Replace(doc, findings)

	return Result{Document: doc, Findings: findings}
}

// scan runs the core scan through the memo cache.
func (c *Checker) scan(text string) []scan.Finding {
	key := c.memoKey(text)
	if cached, ok := c.memo.Get(key); ok {
		return append([]scan.Finding(nil), cached...)
	}

	findings := c.scanner.Scan(text)
	c.memo.Set(key, findings)
	return append([]scan.Finding(nil), findings...)
}

func (c *Checker) memoKey(text string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(c.fingerprint)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(text)
	return d.Sum64()
}

// CheckFile reads path and checks its contents. Files over the size limit
// are skipped without being read.
func (c *Checker) CheckFile(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if c.tooLarge(info.Size()) {
		return c.skipped(path, info.Size()), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result := c.CheckText(path, string(content))
	c.log.WithFields(logrus.Fields{
		"file":     path,
		"findings": len(result.Findings),
	}).Debug("checked file")
	return result, nil
}

// CheckFiles checks paths concurrently using up to host.workers goroutines.
// Results are returned in input order. onDone, when set, is called once per
// file as it completes; calls are serialized.
func (c *Checker) CheckFiles(ctx context.Context, paths []string, onDone func(Result)) ([]Result, error) {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.cfg.Host.Workers, 1))

	var doneMu sync.Mutex
	for i, path := range paths {
		g.Go(func() error {
			result, err := c.CheckFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = result

			if onDone != nil {
				doneMu.Lock()
				onDone(result)
				doneMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
