package scan

import (
	"regexp"
	"strings"
)

// Binder extracts the names a file binds through import/require syntax.
// Implementations must be pure: the same text always yields the same set.
type Binder interface {
	Bind(text string) BindingSet
}

const identPattern = `[A-Za-z_$][\w$]*`

var (
	identRe = regexp.MustCompile(`^` + identPattern + `$`)

	// import User from './models/User'
	// import User, { a } from '...'
	defaultImportRe = regexp.MustCompile(`\bimport\s+(?:type\s+)?(` + identPattern + `)\s*(?:,\s*(?:\{[^}]*\}|\*\s*as\s+` + identPattern + `)\s*)?from\s*['"]`)

	// import { A, B as C } from '...'
	namedImportRe = regexp.MustCompile(`\bimport\s+(?:type\s+)?(?:` + identPattern + `\s*,\s*)?\{([^}]*)\}\s*from\s*['"]`)

	// import * as Models from '...'
	namespaceImportRe = regexp.MustCompile(`\bimport\s+(?:` + identPattern + `\s*,\s*)?\*\s*as\s+(` + identPattern + `)\s+from\s*['"]`)

	// const User = require('./models/User')
	requireSingleRe = regexp.MustCompile(`\b(?:const|let|var)\s+(` + identPattern + `)\s*=\s*require\s*\(`)

	// const { A, B: C } = require('./models')
	requireDestructuredRe = regexp.MustCompile(`\b(?:const|let|var)\s*\{([^}]*)\}\s*=\s*require\s*\(`)

	// Line-level classification shared by the scanner and the fix synthesizer.
	importLineRe  = regexp.MustCompile(`^import\b`)
	requireLineRe = regexp.MustCompile(`^(?:const|let|var)\s+.+?=\s*require\s*\(`)
)

// LineBinder is the line-oriented Binder. Statements split across lines are
// invisible to it.
type LineBinder struct{}

// NewLineBinder returns the default line-oriented binder.
func NewLineBinder() *LineBinder {
	return &LineBinder{}
}

// Bind returns every name bound by a recognized import or require form on a
// non-comment line. Binding is file-wide: position is irrelevant.
func (b *LineBinder) Bind(text string) BindingSet {
	bound := make(BindingSet)
	for _, line := range ClassifyLines(SplitLines(text)) {
		if line.InCommentBlock {
			continue
		}
		bindLine(line.Text, bound)
	}
	return bound
}

// bindLine applies each recognized form once to a single line.
func bindLine(line string, bound BindingSet) {
	if m := defaultImportRe.FindStringSubmatch(line); m != nil {
		bound.Add(m[1])
	}
	if m := namedImportRe.FindStringSubmatch(line); m != nil {
		bindEntries(m[1], " as ", bound)
	}
	if m := namespaceImportRe.FindStringSubmatch(line); m != nil {
		bound.Add(m[1])
	}
	if m := requireSingleRe.FindStringSubmatch(line); m != nil {
		bound.Add(m[1])
	}
	if m := requireDestructuredRe.FindStringSubmatch(line); m != nil {
		bindEntries(m[1], ":", bound)
	}
}

// bindEntries splits a brace list ("A, B as C" or "A, B: C") and binds the
// local name of each entry: the rename when present, otherwise the name itself.
func bindEntries(list, renameSep string, bound BindingSet) {
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		// Destructuring defaults: { A = fallback }
		if idx := strings.Index(entry, "="); idx >= 0 {
			entry = strings.TrimSpace(entry[:idx])
		}
		entry = strings.TrimPrefix(entry, "...")
		entry = strings.TrimPrefix(entry, "type ")

		left, right, renamed := strings.Cut(entry, renameSep)
		if renameSep == " as " && !renamed {
			// tolerate tabs or repeated spaces around "as"
			if fields := strings.Fields(entry); len(fields) == 3 && fields[1] == "as" {
				left, right, renamed = fields[0], fields[2], true
			}
		}

		if renamed {
			addIdent(strings.TrimSpace(right), bound)
			continue
		}
		addIdent(strings.TrimSpace(left), bound)
	}
}

func addIdent(name string, bound BindingSet) {
	if identRe.MatchString(name) {
		bound.Add(name)
	}
}

// IsImportLine reports whether trimmed starts an ES import statement.
func IsImportLine(trimmed string) bool {
	return importLineRe.MatchString(trimmed)
}

// IsRequireLine reports whether trimmed is a CommonJS require assignment.
func IsRequireLine(trimmed string) bool {
	return requireLineRe.MatchString(trimmed)
}
