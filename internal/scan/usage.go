package scan

import (
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Mode selects how method names are matched.
type Mode string

const (
	// ModeAllowlist matches only methods from a closed list.
	ModeAllowlist Mode = "allowlist"
	// ModeOpen matches any method on a capitalized identifier, minus built-in globals.
	ModeOpen Mode = "open"
)

const modelIdentPattern = `[A-Z][A-Za-z0-9_]*`

// LineMatch is one raw match within a single line, in byte offsets.
type LineMatch struct {
	Identifier string
	Method     string
	Start      int // byte offset of the identifier
	End        int
}

// Matcher finds candidate `Identifier.method` sites within one line.
// Matches are returned left to right and never overlap.
type Matcher interface {
	Match(line string) []LineMatch
}

// allowlistMatcher matches methods from a closed list as whole words.
type allowlistMatcher struct {
	re *regexp.Regexp // nil when the list is empty
}

// NewAllowlistMatcher builds a matcher for the given method names.
// An empty list yields a matcher that never matches.
func NewAllowlistMatcher(methods []string) Matcher {
	alts := make([]string, 0, len(methods))
	seen := make(map[string]bool, len(methods))
	for _, m := range methods {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		alts = append(alts, regexp.QuoteMeta(m))
	}
	if len(alts) == 0 {
		return &allowlistMatcher{}
	}

	re := regexp.MustCompile(`\b(` + modelIdentPattern + `)\.(` + strings.Join(alts, "|") + `)\b`)
	return &allowlistMatcher{re: re}
}

func (m *allowlistMatcher) Match(line string) []LineMatch {
	if m.re == nil {
		return nil
	}
	return collectMatches(m.re, line, nil)
}

// openMatcher matches any method, skipping identifiers in the exclusion set.
type openMatcher struct {
	re       *regexp.Regexp
	excluded map[string]bool
}

var openMatchRe = regexp.MustCompile(`\b(` + modelIdentPattern + `)\.([A-Za-z_$][\w$]*)`)

// NewOpenMatcher builds a catch-all matcher. Identifiers listed in exclusions
// (built-in globals such as Math or JSON) never match.
func NewOpenMatcher(exclusions []string) Matcher {
	excluded := make(map[string]bool, len(exclusions))
	for _, name := range exclusions {
		if name = strings.TrimSpace(name); name != "" {
			excluded[name] = true
		}
	}
	return &openMatcher{re: openMatchRe, excluded: excluded}
}

func (m *openMatcher) Match(line string) []LineMatch {
	return collectMatches(m.re, line, m.excluded)
}

func collectMatches(re *regexp.Regexp, line string, excluded map[string]bool) []LineMatch {
	idx := re.FindAllStringSubmatchIndex(line, -1)
	if len(idx) == 0 {
		return nil
	}

	matches := make([]LineMatch, 0, len(idx))
	for _, loc := range idx {
		ident := line[loc[2]:loc[3]]
		if excluded[ident] {
			continue
		}
		matches = append(matches, LineMatch{
			Identifier: ident,
			Method:     line[loc[4]:loc[5]],
			Start:      loc[2],
			End:        loc[3],
		})
	}
	return matches
}

// UsageScanner finds candidate model usages in a file.
type UsageScanner struct {
	matcher Matcher
}

// NewUsageScanner returns a scanner that reports sites accepted by matcher.
func NewUsageScanner(matcher Matcher) *UsageScanner {
	return &UsageScanner{matcher: matcher}
}

// FindUsages returns usage sites in discovery order (line-major, then left to
// right). Comment lines and import/require lines are skipped.
func (s *UsageScanner) FindUsages(text string) []UsageSite {
	var sites []UsageSite
	for _, line := range ClassifyLines(SplitLines(text)) {
		if line.InCommentBlock {
			continue
		}
		trimmed := strings.TrimSpace(line.Text)
		if IsImportLine(trimmed) || IsRequireLine(trimmed) {
			continue
		}

		for _, m := range s.matcher.Match(line.Text) {
			start := utf16Column(line.Text, m.Start)
			sites = append(sites, UsageSite{
				Identifier:  m.Identifier,
				Method:      m.Method,
				Line:        line.Index,
				StartColumn: start,
				EndColumn:   start + utf16Len(m.Identifier),
			})
		}
	}
	return sites
}

// utf16Column converts a byte offset within line to a UTF-16 code unit column.
func utf16Column(line string, byteOffset int) int {
	return utf16Len(line[:byteOffset])
}

func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
