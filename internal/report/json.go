package report

import (
	"encoding/json"
	"io"

	"github.com/mvp-joe/modelguard/internal/scan"
)

// FindingJSON is one finding in JSON output. Line and columns are 0-based.
type FindingJSON struct {
	File        string          `json:"file"`
	Line        int             `json:"line"`
	StartColumn int             `json:"start_column"`
	EndColumn   int             `json:"end_column"`
	Identifier  string          `json:"identifier"`
	Method      string          `json:"method"`
	Code        string          `json:"code"`
	Message     string          `json:"message"`
	Severity    scan.Severity   `json:"severity"`
	Fix         *scan.FixAction `json:"fix,omitempty"`
}

// SkippedJSON is a document the size gate skipped.
type SkippedJSON struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Output is the root of JSON output.
type Output struct {
	RunID    string        `json:"run_id"`
	Files    int           `json:"files"`
	Findings []FindingJSON `json:"findings"`
	Skipped  []SkippedJSON `json:"skipped,omitempty"`
	Total    int           `json:"total"`
}

// JSONReporter writes an indented Output document.
type JSONReporter struct {
	opts Options
}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{opts: opts}
}

// Build assembles the output structure without serializing it.
func (j *JSONReporter) Build(r *Report) Output {
	out := Output{
		RunID:    r.RunID,
		Files:    len(r.Results),
		Findings: []FindingJSON{},
	}

	for _, res := range r.Results {
		path := displayPath(j.opts.BaseDir, res.Document)
		if res.Skipped {
			out.Skipped = append(out.Skipped, SkippedJSON{File: path, Reason: res.SkipReason})
			continue
		}

		for _, f := range res.Findings {
			entry := FindingJSON{
				File:        path,
				Line:        f.Line,
				StartColumn: f.StartColumn,
				EndColumn:   f.EndColumn,
				Identifier:  f.Identifier,
				Method:      f.Method,
				Code:        f.Code,
				Message:     f.Message,
				Severity:    f.Severity,
			}
			if j.opts.Preview != nil {
				if fix, err := j.opts.Preview(res.Document, f.Identifier); err == nil {
					entry.Fix = &fix
				}
			}
			out.Findings = append(out.Findings, entry)
		}
	}

	out.Total = len(out.Findings)
	return out
}

// Write implements Reporter. Quiet has no effect on JSON output.
func (j *JSONReporter) Write(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.Build(r))
}
