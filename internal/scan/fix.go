package scan

import (
	"fmt"
	"strings"
)

// ModelsDir is the fixed directory every synthesized import points into.
const ModelsDir = "./models"

// ImportStatement returns the canonical statement that imports name, including
// the trailing newline. The terminator is always "\n", so a fix in a CRLF file
// leaves that one line LF-terminated.
func ImportStatement(name string) string {
	return fmt.Sprintf("import %s from \"%s/%s\";\n", name, ModelsDir, name)
}

// SynthesizeFix computes where to insert an import for target and what to
// insert. It always produces a default-style import from ./models/<target>.
func SynthesizeFix(text, target string) FixAction {
	return FixAction{
		Target: target,
		Line:   InsertionLine(text),
		Column: 0,
		Text:   ImportStatement(target),
	}
}

// InsertionLine returns the line right after the last import/require line that
// precedes the first real code line, or 0 when the file has no import/require
// lines. Blank and comment lines never freeze the scan.
func InsertionLine(text string) int {
	lastImport := -1
	for _, line := range ClassifyLines(SplitLines(text)) {
		trimmed := strings.TrimSpace(line.Text)
		if line.InCommentBlock || trimmed == "" {
			continue
		}
		if IsImportLine(trimmed) || IsRequireLine(trimmed) {
			lastImport = line.Index
			continue
		}
		if lastImport >= 0 {
			break
		}
	}
	return lastImport + 1
}

// Apply returns text with the fix inserted. When the insertion line is past
// the last line of a file lacking a trailing newline, a newline is added first
// so the statement starts on its own line.
func (a FixAction) Apply(text string) string {
	offset, ok := lineOffset(text, a.Line)
	if !ok {
		if text != "" && !strings.HasSuffix(text, "\n") {
			return text + "\n" + a.Text
		}
		return text + a.Text
	}
	offset += a.Column
	return text[:offset] + a.Text + text[offset:]
}

// lineOffset returns the byte offset where line starts. ok is false when the
// text has fewer lines.
func lineOffset(text string, line int) (int, bool) {
	if line <= 0 {
		return 0, true
	}
	offset := 0
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text), false
		}
		offset += nl + 1
	}
	if offset >= len(text) {
		return len(text), false
	}
	return offset, true
}
