package scan

import (
	"fmt"
	"sort"
	"strings"
)

// Options configures a Scanner. In ModeAllowlist only ModelMethods is used; in
// ModeOpen only BuiltinExclusions is used.
type Options struct {
	Mode              Mode
	ModelMethods      []string
	BuiltinExclusions []string

	// Severity is attached to every finding. Empty means SeverityWarning.
	Severity Severity

	// Binder overrides the default LineBinder.
	Binder Binder
}

// DefaultOptions returns allowlist mode with the default method list.
func DefaultOptions() Options {
	return Options{
		Mode:              ModeAllowlist,
		ModelMethods:      append([]string(nil), DefaultModelMethods...),
		BuiltinExclusions: append([]string(nil), DefaultBuiltinExclusions...),
		Severity:          SeverityWarning,
	}
}

// Fingerprint is a stable string identifying the matching behaviour of opts.
// Two option sets with equal fingerprints produce identical findings.
func (o Options) Fingerprint() string {
	var b strings.Builder
	b.WriteString(string(o.Mode))
	b.WriteByte('|')
	switch o.Mode {
	case ModeOpen:
		b.WriteString(strings.Join(sortedCopy(o.BuiltinExclusions), ","))
	default:
		b.WriteString(strings.Join(o.ModelMethods, ","))
	}
	b.WriteByte('|')
	b.WriteString(string(o.Severity))
	b.WriteByte('|')
	fmt.Fprintf(&b, "%T", o.Binder)
	return b.String()
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// Scanner runs the full pipeline: bind, find usages, reconcile.
// A Scanner holds no per-scan state and is safe for concurrent use.
type Scanner struct {
	binder Binder
	usages *UsageScanner
	opts   Options
}

// NewScanner builds a Scanner from opts.
func NewScanner(opts Options) (*Scanner, error) {
	var matcher Matcher
	switch opts.Mode {
	case ModeAllowlist, "":
		opts.Mode = ModeAllowlist
		matcher = NewAllowlistMatcher(opts.ModelMethods)
	case ModeOpen:
		matcher = NewOpenMatcher(opts.BuiltinExclusions)
	default:
		return nil, fmt.Errorf("unknown scan mode %q", opts.Mode)
	}

	severity, err := ParseSeverity(string(opts.Severity))
	if err != nil {
		return nil, err
	}
	opts.Severity = severity

	binder := opts.Binder
	if binder == nil {
		binder = NewLineBinder()
	}

	return &Scanner{
		binder: binder,
		usages: NewUsageScanner(matcher),
		opts:   opts,
	}, nil
}

// Options returns the options the scanner was built with.
func (s *Scanner) Options() Options {
	return s.opts
}

// Scan returns the unresolved model usages in text, in source order.
func (s *Scanner) Scan(text string) []Finding {
	bound := s.binder.Bind(text)
	findings := Reconcile(s.usages.FindUsages(text), bound)
	if s.opts.Severity != SeverityWarning {
		for i := range findings {
			findings[i].Severity = s.opts.Severity
		}
	}
	return findings
}

// Bindings exposes the binder's view of text.
func (s *Scanner) Bindings(text string) BindingSet {
	return s.binder.Bind(text)
}

// SynthesizeFix is a convenience wrapper around the package-level SynthesizeFix.
func (s *Scanner) SynthesizeFix(text, target string) FixAction {
	return SynthesizeFix(text, target)
}
