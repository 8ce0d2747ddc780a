package parser

import "strings"

// Batch is one GO-delimited slice of T-SQL text, carrying its 1-based start
// line for absolute error reporting (spec §4.1 "Batch splitting").
type Batch struct {
	Text      string
	StartLine int
}

// SplitBatches splits text on GO (case-insensitive, on its own line, with
// an optional trailing semicolon). Splitting is comment-aware: a GO token
// that appears inside a block or line comment never splits the batch — the
// teacher's regex-based database/mssql/parser.go split is not comment-aware,
// so this is reimplemented as a tiny hand-rolled scanner instead of a
// regexp.
func SplitBatches(text string) []Batch {
	lines := strings.Split(text, "\n")

	var batches []Batch
	var cur []string
	curStart := 1
	inBlockComment := false

	flush := func(endLineExclusive int) {
		joined := strings.Join(cur, "\n")
		if strings.TrimSpace(joined) != "" {
			batches = append(batches, Batch{Text: joined, StartLine: curStart})
		}
		cur = nil
		curStart = endLineExclusive
	}

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		if !inBlockComment && isGoLine(trimmed) {
			flush(lineNo + 1)
			continue
		}

		cur = append(cur, line)
		inBlockComment = updateBlockCommentState(line, inBlockComment)
	}
	flush(len(lines) + 1)

	return batches
}

// isGoLine reports whether a trimmed line is exactly a GO batch separator,
// case-insensitive, with an optional trailing semicolon, and not itself a
// line starting a comment.
func isGoLine(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "--") {
		return false
	}
	body := strings.TrimSuffix(trimmed, ";")
	body = strings.TrimSpace(body)
	return strings.EqualFold(body, "GO")
}

// updateBlockCommentState scans a single line (outside of string literals,
// which never contain a GO separator that matters here) tracking whether a
// /* */ block comment is open at the end of the line.
func updateBlockCommentState(line string, inBlockComment bool) bool {
	i := 0
	for i < len(line) {
		if inBlockComment {
			if idx := strings.Index(line[i:], "*/"); idx >= 0 {
				i += idx + 2
				inBlockComment = false
				continue
			}
			return true
		}
		if strings.HasPrefix(line[i:], "--") {
			return false
		}
		if strings.HasPrefix(line[i:], "/*") {
			i += 2
			inBlockComment = true
			continue
		}
		i++
	}
	return inBlockComment
}
