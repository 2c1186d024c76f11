package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/mvp-joe/modelguard/internal/scan"
)

// TextReporter prints one line per finding (1-based line:col) followed by a
// summary:
//
//	src/user.js:2:9: warning[missing-model-import] Model 'User' is not imported. ...
type TextReporter struct {
	opts      Options
	pathColor *color.Color
	sevColors map[scan.Severity]*color.Color
	codeColor *color.Color
	fixColor  *color.Color
	okColor   *color.Color
}

// NewTextReporter creates a text reporter.
func NewTextReporter(opts Options) *TextReporter {
	r := &TextReporter{
		opts:      opts,
		pathColor: color.New(color.Bold),
		sevColors: map[scan.Severity]*color.Color{
			scan.SeverityError:   color.New(color.FgRed, color.Bold),
			scan.SeverityWarning: color.New(color.FgYellow, color.Bold),
			scan.SeverityInfo:    color.New(color.FgBlue, color.Bold),
		},
		codeColor: color.New(color.FgCyan),
		fixColor:  color.New(color.FgGreen),
		okColor:   color.New(color.FgGreen, color.Bold),
	}
	colors := []*color.Color{r.pathColor, r.codeColor, r.fixColor, r.okColor}
	for _, c := range r.sevColors {
		colors = append(colors, c)
	}
	for _, c := range colors {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Write implements Reporter.
func (t *TextReporter) Write(w io.Writer, r *Report) error {
	total := r.Total()
	if total == 0 && t.opts.Quiet {
		return nil
	}

	for _, res := range r.Results {
		path := displayPath(t.opts.BaseDir, res.Document)
		for _, f := range res.Findings {
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s %s\n",
				t.pathColor.Sprint(path),
				f.Line+1, f.StartColumn+1,
				t.severityColor(f.Severity).Sprintf("%s[%s]", f.Severity, t.codeColor.Sprint(f.Code)),
				f.Message,
			); err != nil {
				return err
			}

			if t.opts.Preview == nil {
				continue
			}
			fix, err := t.opts.Preview(res.Document, f.Identifier)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "  %s insert at line %d: %s",
				t.fixColor.Sprint("fix:"), fix.Line+1, fix.Text); err != nil {
				return err
			}
		}
	}

	return t.writeSummary(w, r, total)
}

func (t *TextReporter) severityColor(sev scan.Severity) *color.Color {
	if c, ok := t.sevColors[sev]; ok {
		return c
	}
	return t.sevColors[scan.SeverityWarning]
}

func (t *TextReporter) writeSummary(w io.Writer, r *Report, total int) error {
	skipped := ""
	if n := r.Skipped(); n > 0 {
		skipped = fmt.Sprintf(", %d skipped", n)
	}

	if total == 0 {
		_, err := fmt.Fprintf(w, "%s no missing model imports in %d %s%s\n",
			t.okColor.Sprint("✓"), len(r.Results), plural(len(r.Results), "file", "files"), skipped)
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d %s in %d %s (%d checked%s)\n",
		total, plural(total, "problem", "problems"),
		r.FilesWithFindings(), plural(r.FilesWithFindings(), "file", "files"),
		len(r.Results), skipped)
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
