package parser

import "strings"

// Cursor is a non-owning view over a shared token slice, used by every
// fallback recognizer. It is cheap to copy (a slice header and an int), so
// a recognizer that wants to "try, then backtrack on failure" just copies
// the cursor before attempting and discards the copy on failure — this is
// the Go analogue of the teacher's non-owning parser objects over a shared
// token buffer (spec §9).
type Cursor struct {
	toks []Token
	pos  int
}

// NewCursor wraps a token slice for a fresh parse attempt.
func NewCursor(toks []Token) *Cursor { return &Cursor{toks: toks} }

// Done reports whether the cursor is at or past the end of the stream.
func (c *Cursor) Done() bool { return c.pos >= len(c.toks) }

// Peek returns the token at the cursor without consuming it.
func (c *Cursor) Peek() Token {
	if c.Done() {
		return Token{Kind: EOF}
	}
	return c.toks[c.pos]
}

// PeekAt returns the token `n` positions ahead without consuming anything.
func (c *Cursor) PeekAt(n int) Token {
	idx := c.pos + n
	if idx < 0 || idx >= len(c.toks) {
		return Token{Kind: EOF}
	}
	return c.toks[idx]
}

// Next consumes and returns the current token.
func (c *Cursor) Next() Token {
	t := c.Peek()
	if !c.Done() {
		c.pos++
	}
	return t
}

// Mark returns a resumable position, for backtracking.
func (c *Cursor) Mark() int { return c.pos }

// Reset rewinds the cursor to a previously marked position.
func (c *Cursor) Reset(mark int) { c.pos = mark }

// CheckKeyword reports (without consuming) whether the current token is the
// given keyword, case-insensitively.
func (c *Cursor) CheckKeyword(kw string) bool {
	t := c.Peek()
	return (t.Kind == Keyword || t.Kind == Ident) && strings.EqualFold(t.Value, kw)
}

// CheckKeywordAt reports whether the token `n` ahead matches kw.
func (c *Cursor) CheckKeywordAt(n int, kw string) bool {
	t := c.PeekAt(n)
	return (t.Kind == Keyword || t.Kind == Ident) && strings.EqualFold(t.Value, kw)
}

// ConsumeKeyword consumes the current token if it matches kw, returning
// whether it did.
func (c *Cursor) ConsumeKeyword(kw string) bool {
	if c.CheckKeyword(kw) {
		c.Next()
		return true
	}
	return false
}

// ConsumeKeywords consumes a run of keywords in order, all-or-nothing.
func (c *Cursor) ConsumeKeywords(kws ...string) bool {
	mark := c.Mark()
	for _, kw := range kws {
		if !c.ConsumeKeyword(kw) {
			c.Reset(mark)
			return false
		}
	}
	return true
}

// CheckPunct reports whether the current token is the given punctuation.
func (c *Cursor) CheckPunct(p string) bool {
	t := c.Peek()
	return t.Kind == Punct && t.Text == p
}

// ConsumePunct consumes the current token if it is punctuation p.
func (c *Cursor) ConsumePunct(p string) bool {
	if c.CheckPunct(p) {
		c.Next()
		return true
	}
	return false
}

// ParseIdentifier consumes one identifier-ish token (Ident, QuotedIdent or Keyword)
// and returns its unbracketed value. Per spec §3.5 "Name canonicality,"
// callers always receive the unbracketed form.
func (c *Cursor) ParseIdentifier() (string, bool) {
	t := c.Peek()
	if t.Kind == Ident || t.Kind == QuotedIdent || t.Kind == Keyword {
		c.Next()
		return t.Value, true
	}
	return "", false
}

// QualifiedName is a possibly-multipart dotted identifier, e.g. [dbo].[T].
type QualifiedName struct {
	Parts []string
}

// Last returns the final (unqualified) part.
func (q QualifiedName) Last() string {
	if len(q.Parts) == 0 {
		return ""
	}
	return q.Parts[len(q.Parts)-1]
}

// SchemaAndName splits a qualified name into (schema, name) using
// defaultSchema when only one part was given.
func (q QualifiedName) SchemaAndName(defaultSchema string) (string, string) {
	switch len(q.Parts) {
	case 0:
		return defaultSchema, ""
	case 1:
		return defaultSchema, q.Parts[0]
	default:
		return q.Parts[len(q.Parts)-2], q.Parts[len(q.Parts)-1]
	}
}

// ParseSchemaQualifiedName consumes `ident(.ident)*`.
func (c *Cursor) ParseSchemaQualifiedName() (QualifiedName, bool) {
	first, ok := c.ParseIdentifier()
	if !ok {
		return QualifiedName{}, false
	}
	parts := []string{first}
	for c.CheckPunct(".") {
		c.Next()
		next, ok := c.ParseIdentifier()
		if !ok {
			break
		}
		parts = append(parts, next)
	}
	return QualifiedName{Parts: parts}, true
}

// SkipParenthesized consumes a balanced parenthesized group starting at '(' ,
// returning the tokens strictly inside the parens (not including them).
func (c *Cursor) SkipParenthesized() ([]Token, bool) {
	if !c.ConsumePunct("(") {
		return nil, false
	}
	depth := 1
	start := c.pos
	for !c.Done() {
		if c.CheckPunct("(") {
			depth++
		} else if c.CheckPunct(")") {
			depth--
			if depth == 0 {
				inner := c.toks[start:c.pos]
				c.Next() // consume closing ')'
				return inner, true
			}
		}
		c.Next()
	}
	return nil, false
}

// SplitTopLevelCommas splits a token slice on commas that are not nested
// inside parentheses, used by the CREATE TABLE fallback (spec §4.1 step 10)
// to separate column/constraint definitions.
func SplitTopLevelCommas(toks []Token) [][]Token {
	var groups [][]Token
	var cur []Token
	depth := 0
	for _, t := range toks {
		if t.Kind == Punct && t.Text == "(" {
			depth++
		} else if t.Kind == Punct && t.Text == ")" {
			depth--
		}
		if t.Kind == Punct && t.Text == "," && depth == 0 {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// TokenText reconstructs a best-effort source rendering of a token run,
// single-space separated. It renders the expression text the parser keeps
// (CHECK and DEFAULT bodies, computed-column expressions, index filter
// predicates, partition boundaries, type arguments), so that text does not
// keep the source's original spacing.
func TokenText(toks []Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
