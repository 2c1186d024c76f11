package checker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/modelguard/internal/config"
)

// Test Plan for Checker:
// - CheckText scans and records findings in the store
// - A clean rescan clears the document's findings
// - Size gate skips oversized text and files, dropping stale findings
// - Disabled size gate scans everything
// - Memoized scans return equal, independent results
// - CheckFile reads from disk, errors on missing files
// - CheckFiles keeps input order and calls onDone once per file
// - Cancelled context stops CheckFiles
// - Binder "ast" picks up multi-line imports

const unboundUser = "async function f() {\n  await User.updateOne({}, {});\n}\n"

func newChecker(t *testing.T, mutate func(*config.Config)) *Checker {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, config.Validate(cfg))

	c, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCheckText_RecordsFindings(t *testing.T) {
	t.Parallel()

	c := newChecker(t, nil)

	result := c.CheckText("doc.js", unboundUser)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "User", result.Findings[0].Identifier)
	assert.False(t, result.Skipped)

	stored, ok := c.Store().Get("doc.js")
	require.True(t, ok)
	assert.Equal(t, result.Findings, stored)

	// Test: clean rescan replaces prior findings
	result = c.CheckText("doc.js", "import User from './models/User';\n"+unboundUser)
	assert.Empty(t, result.Findings)
	_, ok = c.Store().Get("doc.js")
	assert.False(t, ok)
}

func TestCheckText_SizeGate(t *testing.T) {
	t.Parallel()

	c := newChecker(t, func(cfg *config.Config) {
		cfg.Host.MaxFileSizeBytes = 64
	})

	c.CheckText("doc.js", "User.find();")
	require.Equal(t, 1, c.Store().Total())

	big := unboundUser + strings.Repeat("// padding\n", 10)
	result := c.CheckText("doc.js", big)

	assert.True(t, result.Skipped)
	assert.Contains(t, result.SkipReason, "file exceeds size limit")
	assert.Empty(t, result.Findings)
	// stale findings from the smaller snapshot are dropped
	assert.Equal(t, 0, c.Store().Total())
}

func TestCheckText_SizeGateDisabled(t *testing.T) {
	t.Parallel()

	c := newChecker(t, func(cfg *config.Config) {
		cfg.Host.SkipLargeFiles = false
		cfg.Host.MaxFileSizeBytes = 1
	})

	result := c.CheckText("doc.js", unboundUser)
	assert.False(t, result.Skipped)
	assert.Len(t, result.Findings, 1)
}

func TestCheckText_MemoizedResultsAreIndependent(t *testing.T) {
	t.Parallel()

	c := newChecker(t, nil)

	first := c.CheckText("a.js", unboundUser)
	second := c.CheckText("b.js", unboundUser)
	assert.Equal(t, first.Findings, second.Findings)

	first.Findings[0].Identifier = "Mutated"
	third := c.CheckText("c.js", unboundUser)
	assert.Equal(t, "User", third.Findings[0].Identifier)
}

func TestCheckFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newChecker(t, func(cfg *config.Config) {
		cfg.Host.MaxFileSizeBytes = 200
	})

	path := writeFile(t, dir, "service.js", unboundUser)
	result, err := c.CheckFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, result.Document)
	assert.Len(t, result.Findings, 1)

	// Test: oversized file is skipped
	big := writeFile(t, dir, "big.js", strings.Repeat("User.find();\n", 50))
	result, err = c.CheckFile(context.Background(), big)
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	// Test: missing file is an error
	_, err = c.CheckFile(context.Background(), filepath.Join(dir, "missing.js"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCheckFiles_OrderAndCallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newChecker(t, func(cfg *config.Config) {
		cfg.Host.Workers = 2
	})

	paths := []string{
		writeFile(t, dir, "a.js", "User.find();\n"),
		writeFile(t, dir, "b.js", "import Post from './models/Post';\nPost.find();\n"),
		writeFile(t, dir, "c.js", "Order.create();\nTag.count();\n"),
		writeFile(t, dir, "d.js", ""),
	}

	var mu sync.Mutex
	var done []string
	results, err := c.CheckFiles(context.Background(), paths, func(r Result) {
		mu.Lock()
		done = append(done, r.Document)
		mu.Unlock()
	})
	require.NoError(t, err)

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Document)
	}
	assert.Len(t, results[0].Findings, 1)
	assert.Empty(t, results[1].Findings)
	assert.Len(t, results[2].Findings, 2)
	assert.Empty(t, results[3].Findings)

	assert.ElementsMatch(t, paths, done)
	assert.Equal(t, 3, c.Store().Total())
}

func TestCheckFiles_CancelledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newChecker(t, nil)
	path := writeFile(t, dir, "a.js", "User.find();\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CheckFiles(ctx, []string{path}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckFiles_MissingFileFails(t *testing.T) {
	t.Parallel()

	c := newChecker(t, nil)
	_, err := c.CheckFiles(context.Background(), []string{filepath.Join(t.TempDir(), "nope.js")}, nil)
	assert.Error(t, err)
}

func TestNew_ASTBinder(t *testing.T) {
	t.Parallel()

	text := "import {\n  User,\n} from './models';\nUser.find();\n"

	line := newChecker(t, nil)
	assert.Len(t, line.CheckText("doc.ts", text).Findings, 1)

	ast := newChecker(t, func(cfg *config.Config) {
		cfg.Check.Binder = config.BinderAST
	})
	assert.Empty(t, ast.CheckText("doc.ts", text).Findings)
}
