package parser

import "strings"

// TriggerNode is CREATE/ALTER TRIGGER ... ON table FOR events AS <body>
// (spec §4.1 step 14, a fallback recognizer since DML trigger bodies are
// arbitrary procedural T-SQL that the standard path does not attempt).
type TriggerNode struct {
	Schema     string
	Name       string
	TableSchema string
	TableName  string
	Events     []string // INSERT, UPDATE, DELETE
	InsteadOf  bool
	RawBody    string
}

func ParseCreateTrigger(toks []Token, fullText string) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("CREATE") && !c.ConsumeKeyword("ALTER") {
		return nil, false
	}
	c.ConsumeKeywords("OR", "ALTER")
	if !c.ConsumeKeyword("TRIGGER") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node := TriggerNode{}
	node.Schema, node.Name = qn.SchemaAndName("dbo")

	if !c.ConsumeKeyword("ON") {
		return nil, false
	}
	tqn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node.TableSchema, node.TableName = tqn.SchemaAndName("dbo")

	switch {
	case c.ConsumeKeyword("INSTEAD"):
		c.ConsumeKeyword("OF")
		node.InsteadOf = true
	case c.ConsumeKeyword("FOR"):
	case c.ConsumeKeyword("AFTER"):
	}

eventsLoop:
	for {
		switch {
		case c.ConsumeKeyword("INSERT"):
			node.Events = append(node.Events, "Insert")
		case c.ConsumeKeyword("UPDATE"):
			node.Events = append(node.Events, "Update")
		case c.ConsumeKeyword("DELETE"):
			node.Events = append(node.Events, "Delete")
		case c.ConsumePunct(","):
		default:
			break eventsLoop
		}
	}

	if c.ConsumeKeyword("WITH") {
		if c.CheckPunct("(") {
			c.SkipParenthesized()
		}
	}

	if !c.ConsumeKeyword("AS") {
		return nil, false
	}
	asTok := c.Peek()
	if idx := findTokenOffset(fullText, asTok); idx >= 0 {
		node.RawBody = strings.TrimSpace(fullText[idx:])
	}

	return FallbackNode{Recognizer: "Trigger", Node: node}, true
}
