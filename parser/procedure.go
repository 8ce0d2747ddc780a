package parser

import "strings"

// ProcedureNode is CREATE/ALTER [OR ALTER] PROCEDURE, with parameters
// parsed but the body kept verbatim (spec §4.1 step 3).
type ProcedureNode struct {
	Schema             string
	Name               string
	Parameters         []ProcedureParam
	RawBody            string
	NativelyCompiled   bool
	SchemaBinding      bool
}

type ProcedureParam struct {
	Name     string
	TypeName string
	Default  string
	Output   bool
}

// ParseCreateProcedure parses `CREATE|ALTER [OR ALTER] PROC[EDURE]
// schema.name [(@p1 type = default OUTPUT, ...)] [WITH options] AS <body>`.
func ParseCreateProcedure(toks []Token, fullText string) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("CREATE") && !c.ConsumeKeyword("ALTER") {
		return nil, false
	}
	c.ConsumeKeywords("OR", "ALTER")
	if !c.ConsumeKeyword("PROCEDURE") && !c.ConsumeKeyword("PROC") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node := ProcedureNode{}
	node.Schema, node.Name = qn.SchemaAndName("dbo")

	hasParens := c.CheckPunct("(")
	var paramToks []Token
	if hasParens {
		paramToks, _ = c.SkipParenthesized()
	} else {
		for !c.Done() && !c.CheckKeyword("WITH") && !c.CheckKeyword("AS") {
			paramToks = append(paramToks, c.Next())
		}
	}
	node.Parameters = parseProcParams(paramToks)

	if c.ConsumeKeyword("WITH") {
	optLoop:
		for {
			switch {
			case c.ConsumeKeyword("SCHEMABINDING"):
				node.SchemaBinding = true
			case c.ConsumeKeywords("NATIVE_COMPILATION"):
				node.NativelyCompiled = true
			case c.ConsumePunct(","):
			default:
				break optLoop
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

	return ASTNode{Kind: "CreateProcedure", Node: node}, true
}

func parseProcParams(toks []Token) []ProcedureParam {
	var params []ProcedureParam
	for _, group := range SplitTopLevelCommas(toks) {
		gc := NewCursor(group)
		if gc.Peek().Kind != LocalVar {
			continue
		}
		p := ProcedureParam{Name: gc.Next().Text}
		if tn, ok := gc.ParseIdentifier(); ok {
			p.TypeName = tn
			if gc.CheckPunct("(") {
				inner, _ := gc.SkipParenthesized()
				p.TypeName += "(" + TokenText(inner) + ")"
			}
		}
		if gc.ConsumePunct("=") {
			p.Default = parseDefaultExpression(gc)
		}
		if gc.ConsumeKeyword("OUTPUT") || gc.ConsumeKeyword("OUT") {
			p.Output = true
		}
		params = append(params, p)
	}
	return params
}
