package parser

import "strings"

// FunctionKind distinguishes the three CREATE FUNCTION return shapes (spec
// §4.1 step 4).
type FunctionKind int

const (
	ScalarFunction FunctionKind = iota
	InlineTableValuedFunction
	MultiStatementTableValuedFunction
)

// FunctionNode is CREATE/ALTER FUNCTION, with Kind determined from the
// RETURNS clause shape: `RETURNS @t TABLE (...)` is multi-statement,
// `RETURNS TABLE AS RETURN (<select>)` is inline, anything else is scalar.
type FunctionNode struct {
	Schema     string
	Name       string
	Parameters []ProcedureParam
	Kind       FunctionKind
	ReturnType string
	RawBody    string
}

func ParseCreateFunction(toks []Token, fullText string) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("CREATE") && !c.ConsumeKeyword("ALTER") {
		return nil, false
	}
	c.ConsumeKeywords("OR", "ALTER")
	if !c.ConsumeKeyword("FUNCTION") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node := FunctionNode{}
	node.Schema, node.Name = qn.SchemaAndName("dbo")

	paramToks, ok := c.SkipParenthesized()
	if !ok {
		return nil, false
	}
	node.Parameters = parseProcParams(paramToks)

	if !c.ConsumeKeyword("RETURNS") {
		return nil, false
	}

	switch {
	case c.Peek().Kind == LocalVar:
		tableVar := c.Next().Text
		if !c.ConsumeKeyword("TABLE") {
			return nil, false
		}
		node.Kind = MultiStatementTableValuedFunction
		node.ReturnType = tableVar + " TABLE"
	case c.ConsumeKeyword("TABLE"):
		node.Kind = InlineTableValuedFunction
		node.ReturnType = "TABLE"
	default:
		node.Kind = ScalarFunction
		tn, _ := c.ParseIdentifier()
		node.ReturnType = tn
		if c.CheckPunct("(") {
			inner, _ := c.SkipParenthesized()
			node.ReturnType += "(" + TokenText(inner) + ")"
		}
	}

	// Skip WITH (...) options before AS, if present.
	if c.ConsumeKeyword("WITH") {
		if c.CheckPunct("(") {
			c.SkipParenthesized()
		} else {
			for !c.Done() && !c.CheckKeyword("AS") {
				c.Next()
			}
		}
	}

	if !c.ConsumeKeyword("AS") {
		return nil, false
	}
	asTok := c.Peek()
	if idx := findTokenOffset(fullText, asTok); idx >= 0 {
		node.RawBody = strings.TrimSpace(fullText[idx:])
	}

	return ASTNode{Kind: "CreateFunction", Node: node}, true
}
