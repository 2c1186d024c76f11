// Package report renders check results as text or JSON.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mvp-joe/modelguard/internal/checker"
	"github.com/mvp-joe/modelguard/internal/scan"
)

// ErrUnknownFormat indicates an unsupported output format
var ErrUnknownFormat = errors.New("unknown output format")

const (
	FormatText = "text"
	FormatJSON = "json"
)

// FixPreviewer returns the fix that would be applied for identifier in doc.
type FixPreviewer func(doc, identifier string) (scan.FixAction, error)

// Report is one run's worth of results.
type Report struct {
	RunID   string
	Results []checker.Result
}

// New creates a report with a fresh run ID.
func New(results []checker.Result) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Results: results,
	}
}

// Total returns the number of findings.
func (r *Report) Total() int {
	total := 0
	for _, res := range r.Results {
		total += len(res.Findings)
	}
	return total
}

// FilesWithFindings returns how many documents have at least one finding.
func (r *Report) FilesWithFindings() int {
	n := 0
	for _, res := range r.Results {
		if len(res.Findings) > 0 {
			n++
		}
	}
	return n
}

// Skipped returns how many documents the size gate skipped.
func (r *Report) Skipped() int {
	n := 0
	for _, res := range r.Results {
		if res.Skipped {
			n++
		}
	}
	return n
}

// Options configures a Reporter.
type Options struct {
	// Color enables ANSI colour in text output.
	Color bool
	// Quiet suppresses output for a clean run.
	Quiet bool
	// BaseDir makes printed paths relative when set.
	BaseDir string
	// Preview attaches a fix preview to each finding when set.
	Preview FixPreviewer
}

// Reporter writes a report to w.
type Reporter interface {
	Write(w io.Writer, r *Report) error
}

// ForFormat returns the reporter for a format name.
func ForFormat(format string, opts Options) (Reporter, error) {
	switch format {
	case "", FormatText:
		return NewTextReporter(opts), nil
	case FormatJSON:
		return NewJSONReporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: text, json)", ErrUnknownFormat, format)
	}
}

// displayPath returns doc relative to base when possible.
func displayPath(base, doc string) string {
	if base == "" || !filepath.IsAbs(doc) {
		return filepath.ToSlash(doc)
	}
	rel, err := filepath.Rel(base, doc)
	if err != nil || len(rel) >= 2 && rel[:2] == ".." {
		return filepath.ToSlash(doc)
	}
	return filepath.ToSlash(rel)
}
