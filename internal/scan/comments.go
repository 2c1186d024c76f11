package scan

import "strings"

const (
	lineCommentToken  = "//"
	blockCommentOpen  = "/*"
	blockCommentClose = "*/"
)

// CommentTracker classifies lines as code or comment, one line at a time.
// The zero value starts outside any block comment.
//
// A line that contains the block-open token is treated as fully commented even
// when code follows a closing token on the same line.
type CommentTracker struct {
	insideBlock bool
}

// Next classifies line and advances the tracker. It returns true when the line
// must be excluded from semantic scanning.
func (t *CommentTracker) Next(line string) bool {
	trimmed := strings.TrimSpace(line)

	if !t.insideBlock && strings.Contains(trimmed, blockCommentOpen) {
		t.insideBlock = true
	}

	if t.insideBlock {
		// The closing line itself is still excluded.
		if strings.Contains(trimmed, blockCommentClose) {
			t.insideBlock = false
		}
		return true
	}

	return strings.HasPrefix(trimmed, lineCommentToken)
}

// InsideBlock reports whether the tracker is currently inside an unterminated
// block comment.
func (t *CommentTracker) InsideBlock() bool {
	return t.insideBlock
}

// ClassifyLines folds a fresh CommentTracker over lines.
func ClassifyLines(lines []string) []SourceLine {
	var tracker CommentTracker
	out := make([]SourceLine, len(lines))
	for i, line := range lines {
		out[i] = SourceLine{
			Index:          i,
			Text:           line,
			InCommentBlock: tracker.Next(line),
		}
	}
	return out
}

// SplitLines splits text on \n, dropping a trailing \r from each line so CRLF
// files produce the same columns as LF files.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
