package parser

import "strings"

// ViewNode is the standard-path result for CREATE VIEW / CREATE OR ALTER
// VIEW. The SELECT body is kept verbatim (RawBody) since this pipeline does
// not implement a full SELECT grammar — component D's query-dependency
// extraction works off RawBody with the same lightweight scan the original
// implementation uses (spec §4.4.6).
type ViewNode struct {
	Schema         string
	Name           string
	RawBody        string
	SchemaBinding  bool
	WithCheckOption bool
	ColumnNames    []string
}

// ParseCreateView parses `CREATE [OR ALTER] VIEW schema.name [(cols)]
// [WITH options] AS <select> [WITH CHECK OPTION]`.
func ParseCreateView(toks []Token, fullText string) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("CREATE") {
		return nil, false
	}
	c.ConsumeKeywords("OR", "ALTER")
	if !c.ConsumeKeyword("VIEW") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	schema, name := qn.SchemaAndName("dbo")

	node := ViewNode{Schema: schema, Name: name}
	if c.CheckPunct("(") {
		inner, _ := c.SkipParenthesized()
		node.ColumnNames = extractIdentifiers(inner)
	}

	if c.ConsumeKeyword("WITH") {
	optionsLoop:
		for {
			switch {
			case c.ConsumeKeyword("SCHEMABINDING"):
				node.SchemaBinding = true
			case c.ConsumePunct(","):
			default:
				break optionsLoop
			}
		}
	}

	if !c.ConsumeKeyword("AS") {
		return nil, false
	}

	// Everything after AS to the end (minus a trailing WITH CHECK OPTION) is
	// the query body, taken verbatim from fullText to preserve formatting.
	asTok := c.Peek()
	body := fullText
	if idx := findTokenOffset(fullText, asTok); idx >= 0 {
		body = fullText[idx:]
	}
	if strings.Contains(strings.ToUpper(body), "WITH CHECK OPTION") {
		node.WithCheckOption = true
		upperBody := strings.ToUpper(body)
		if i := strings.LastIndex(upperBody, "WITH CHECK OPTION"); i >= 0 {
			body = body[:i]
		}
	}
	node.RawBody = strings.TrimSpace(body)

	return ASTNode{Kind: "CreateView", Node: node}, true
}

// findTokenOffset locates a token's starting byte offset inside fullText by
// its recorded Pos, which is only valid when fullText is the exact string
// that produced the token stream.
func findTokenOffset(fullText string, t Token) int {
	if t.Pos >= 0 && t.Pos <= len(fullText) {
		return t.Pos
	}
	return -1
}
