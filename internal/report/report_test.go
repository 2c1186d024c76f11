package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/modelguard/internal/checker"
	"github.com/mvp-joe/modelguard/internal/scan"
)

// Test Plan for Reporters:
// - New assigns a valid UUID run ID; counters sum findings, files, skips
// - Text output uses 1-based path:line:col with severity[code] and a summary
// - Text output prints each finding's own severity
// - Text output for a clean run prints a success line, nothing when quiet
// - Text output shows fix previews when a previewer is set
// - JSON output carries run_id, files, 0-based findings, skipped, total
// - JSON output attaches fix previews and omits failed ones
// - Paths are made relative to BaseDir
// - ForFormat rejects unknown formats

func sampleFinding(id string, line, col int) scan.Finding {
	return scan.Finding{
		UsageSite: scan.UsageSite{
			Identifier:  id,
			Method:      "find",
			Line:        line,
			StartColumn: col,
			EndColumn:   col + len(id),
		},
		Code:     scan.DiagnosticCode,
		Message:  scan.MissingImportMessage(id),
		Severity: scan.SeverityWarning,
	}
}

func sampleReport(base string) *Report {
	return New([]checker.Result{
		{Document: filepath.Join(base, "src", "user.js"), Findings: []scan.Finding{sampleFinding("User", 1, 8)}},
		{Document: filepath.Join(base, "src", "clean.js")},
		{Document: filepath.Join(base, "big.js"), Skipped: true, SkipReason: "file exceeds size limit"},
	})
}

func TestReport_Counters(t *testing.T) {
	t.Parallel()

	r := sampleReport("/repo")

	_, err := uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.NotEqual(t, r.RunID, New(nil).RunID)

	assert.Equal(t, 1, r.Total())
	assert.Equal(t, 1, r.FilesWithFindings())
	assert.Equal(t, 1, r.Skipped())
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(Options{BaseDir: base}).Write(&buf, sampleReport(base)))

	assert.Equal(t,
		"src/user.js:2:9: warning[missing-model-import] Model 'User' is not imported. Please import the model before using it.\n"+
			"\n1 problem in 1 file (3 checked, 1 skipped)\n",
		buf.String())
}

func TestTextReporter_Severity(t *testing.T) {
	t.Parallel()

	f := sampleFinding("User", 0, 0)
	f.Severity = scan.SeverityError
	r := New([]checker.Result{{Document: "a.js", Findings: []scan.Finding{f}}})

	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(Options{}).Write(&buf, r))
	assert.Contains(t, buf.String(), "a.js:1:1: error[missing-model-import] ")
}

func TestTextReporter_CleanRun(t *testing.T) {
	t.Parallel()

	r := New([]checker.Result{{Document: "a.js"}, {Document: "b.js"}})

	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(Options{}).Write(&buf, r))
	assert.Equal(t, "✓ no missing model imports in 2 files\n", buf.String())

	buf.Reset()
	require.NoError(t, NewTextReporter(Options{Quiet: true}).Write(&buf, r))
	assert.Empty(t, buf.String())
}

func TestTextReporter_Preview(t *testing.T) {
	t.Parallel()

	preview := func(doc, id string) (scan.FixAction, error) {
		return scan.FixAction{Target: id, Line: 3, Text: "import " + id + " from \"./models/" + id + "\";\n"}, nil
	}

	var buf bytes.Buffer
	r := New([]checker.Result{{Document: "a.js", Findings: []scan.Finding{sampleFinding("User", 0, 0)}}})
	require.NoError(t, NewTextReporter(Options{Preview: preview}).Write(&buf, r))

	assert.Contains(t, buf.String(), "  fix: insert at line 4: import User from \"./models/User\";\n")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	var buf bytes.Buffer
	r := sampleReport(base)
	require.NoError(t, NewJSONReporter(Options{BaseDir: base}).Write(&buf, r))

	var out Output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, r.RunID, out.RunID)
	assert.Equal(t, 3, out.Files)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Findings, 1)
	assert.Equal(t, FindingJSON{
		File:        "src/user.js",
		Line:        1,
		StartColumn: 8,
		EndColumn:   12,
		Identifier:  "User",
		Method:      "find",
		Code:        "missing-model-import",
		Message:     "Model 'User' is not imported. Please import the model before using it.",
		Severity:    scan.SeverityWarning,
	}, out.Findings[0])
	assert.Equal(t, []SkippedJSON{{File: "big.js", Reason: "file exceeds size limit"}}, out.Skipped)
}

func TestJSONReporter_EmptyFindingsIsArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(Options{}).Write(&buf, New(nil)))
	assert.Contains(t, buf.String(), `"findings": []`)
}

func TestJSONReporter_Preview(t *testing.T) {
	t.Parallel()

	preview := func(doc, id string) (scan.FixAction, error) {
		if id == "Ghost" {
			return scan.FixAction{}, errors.New("no fix")
		}
		return scan.FixAction{Target: id, Line: 0, Text: "import " + id + " from \"./models/" + id + "\";\n"}, nil
	}

	r := New([]checker.Result{{
		Document: "a.js",
		Findings: []scan.Finding{sampleFinding("User", 0, 0), sampleFinding("Ghost", 1, 0)},
	}})
	out := NewJSONReporter(Options{Preview: preview}).Build(r)

	require.Len(t, out.Findings, 2)
	require.NotNil(t, out.Findings[0].Fix)
	assert.Equal(t, "User", out.Findings[0].Fix.Target)
	assert.Nil(t, out.Findings[1].Fix)
}

func TestForFormat(t *testing.T) {
	t.Parallel()

	r, err := ForFormat("", Options{})
	require.NoError(t, err)
	assert.IsType(t, &TextReporter{}, r)

	r, err = ForFormat("json", Options{})
	require.NoError(t, err)
	assert.IsType(t, &JSONReporter{}, r)

	_, err = ForFormat("sarif", Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
