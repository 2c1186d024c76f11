package checker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/modelguard/internal/config"
)

// Test Plan for Fixer:
// - FixText with an identifier inserts exactly one import
// - FixText for an identifier without a finding returns ErrNoFindings
// - FixText with no identifier imports each distinct name once, in first-use order
// - FixText on clean text returns ErrNoFindings
// - FixFile writes the file, preserves mode and clears stored findings
// - Dry run leaves the file and store untouched
// - FixAll resolves every finding in a file
// - Oversized files are refused with ErrFileTooLarge
// - PreviewFix reports the insertion without writing

func TestFixText_SingleIdentifier(t *testing.T) {
	t.Parallel()

	c := newChecker(t, nil)
	text := "import A from 'a';\nUser.find();\nPost.find();\n"

	outcome, err := c.FixText(text, "User")
	require.NoError(t, err)

	assert.Equal(t, "import A from 'a';\nimport User from \"./models/User\";\nUser.find();\nPost.find();\n", outcome.Content)
	require.Len(t, outcome.Applied, 1)
	assert.Equal(t, 1, outcome.Applied[0].Line)
	require.Len(t, outcome.Remaining, 1)
	assert.Equal(t, "Post", outcome.Remaining[0].Identifier)
}

func TestFixText_NoFindingForIdentifier(t *testing.T) {
	t.Parallel()

	c := newChecker(t, nil)

	_, err := c.FixText("User.find();\n", "Ghost")
	assert.ErrorIs(t, err, ErrNoFindings)

	_, err = c.FixText("const x = 1;\n", "")
	assert.ErrorIs(t, err, ErrNoFindings)
}

func TestFixText_AllIdentifiers(t *testing.T) {
	t.Parallel()

	c := newChecker(t, nil)
	text := "Post.find();\nUser.find();\nPost.create();\n"

	outcome, err := c.FixText(text, "")
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 2)
	assert.Equal(t, "Post", outcome.Applied[0].Target)
	assert.Equal(t, "User", outcome.Applied[1].Target)
	assert.Empty(t, outcome.Remaining)
	assert.Equal(t,
		"import Post from \"./models/Post\";\nimport User from \"./models/User\";\nPost.find();\nUser.find();\nPost.create();\n",
		outcome.Content)
}

func TestFixFile_WritesAndRescans(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newChecker(t, nil)
	path := filepath.Join(dir, "service.js")
	require.NoError(t, os.WriteFile(path, []byte(unboundUser), 0600))

	_, err := c.CheckFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Store().Total())

	outcome, err := c.FixFile(context.Background(), path, "User")
	require.NoError(t, err)
	assert.True(t, outcome.Written)
	assert.Empty(t, outcome.Remaining)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "import User from \"./models/User\";\n"+unboundUser, string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.Equal(t, 0, c.Store().Total())

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFixFile_DryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newChecker(t, nil)
	path := writeFile(t, dir, "service.js", unboundUser)

	outcome, err := c.FixFile(context.Background(), path, "User", WithDryRun())
	require.NoError(t, err)
	assert.False(t, outcome.Written)
	assert.Contains(t, outcome.Content, "import User from")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unboundUser, string(content))
}

func TestFixAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newChecker(t, nil)
	path := writeFile(t, dir, "service.ts", "import x from 'x';\n\nUser.find();\nOrder.aggregate([]);\nUser.count();\n")

	outcome, err := c.FixAll(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, outcome.Applied, 2)
	assert.Empty(t, outcome.Remaining)

	result, err := c.CheckFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, result.Findings)
}

func TestFixFile_TooLarge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newChecker(t, func(cfg *config.Config) {
		cfg.Host.MaxFileSizeBytes = 10
	})
	path := writeFile(t, dir, "big.js", unboundUser)

	_, err := c.FixFile(context.Background(), path, "User")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = c.FixText(unboundUser, "User")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestPreviewFix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newChecker(t, nil)
	path := writeFile(t, dir, "service.js", "import A from 'a';\n"+unboundUser)

	fix, err := c.PreviewFix(path, "User")
	require.NoError(t, err)
	assert.Equal(t, 1, fix.Line)
	assert.Equal(t, "import User from \"./models/User\";\n", fix.Text)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "import A from 'a';\n"+unboundUser, string(content))

	_, err = c.PreviewFix(filepath.Join(dir, "missing.js"), "User")
	assert.Error(t, err)
}
