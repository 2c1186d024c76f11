package scan

import (
	"fmt"
	"strings"
)

// DiagnosticCode is the stable code attached to every unresolved model usage.
const DiagnosticCode = "missing-model-import"

// Severity mirrors the editor diagnostic severities a host may render.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity resolves a case-insensitive severity name. Empty means warning.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case "":
		return SeverityWarning, nil
	case SeverityError, SeverityWarning, SeverityInfo:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// SourceLine is a 0-indexed line of raw text plus its comment classification.
type SourceLine struct {
	Index          int
	Text           string
	InCommentBlock bool // true if the line must be excluded from scanning
}

// BindingSet is the set of names a file binds through import/require syntax.
type BindingSet map[string]struct{}

// Add records name as bound. Empty names are ignored.
func (b BindingSet) Add(name string) {
	if name == "" {
		return
	}
	b[name] = struct{}{}
}

// Has reports whether name is bound.
func (b BindingSet) Has(name string) bool {
	_, ok := b[name]
	return ok
}

// UsageSite is a candidate `Identifier.method` occurrence.
// StartColumn/EndColumn span exactly the identifier token, not the method.
type UsageSite struct {
	Identifier  string `json:"identifier"`
	Method      string `json:"method"`
	Line        int    `json:"line"`
	StartColumn int    `json:"start_column"`
	EndColumn   int    `json:"end_column"`
}

// Position is a 0-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a half-open [Start, End) source span on a single line.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Finding is a UsageSite whose identifier was not bound at scan time.
type Finding struct {
	UsageSite
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Range returns the span of the offending identifier.
func (f Finding) Range() Range {
	return Range{
		Start: Position{Line: f.Line, Column: f.StartColumn},
		End:   Position{Line: f.Line, Column: f.EndColumn},
	}
}

// String formats the finding as line:col (1-based) for human output.
func (f Finding) String() string {
	return fmt.Sprintf("%d:%d: %s", f.Line+1, f.StartColumn+1, f.Message)
}

// FixAction is a single text insertion that imports Target.
// Column is always 0. FixActions are never persisted: they are recomputed
// from the current text every time a fix is requested.
type FixAction struct {
	Target string `json:"target"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

// Title is a short label suitable for quick-fix menus.
func (a FixAction) Title() string {
	return fmt.Sprintf("Import model '%s'", a.Target)
}
