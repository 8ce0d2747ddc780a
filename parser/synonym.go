package parser

// SynonymNode is CREATE SYNONYM name FOR base_object (spec §4.1 step 16).
type SynonymNode struct {
	Schema      string
	Name        string
	BaseSchema  string
	BaseObject  string
}

func ParseCreateSynonym(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("CREATE", "SYNONYM") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node := SynonymNode{}
	node.Schema, node.Name = qn.SchemaAndName("dbo")

	if !c.ConsumeKeyword("FOR") {
		return nil, false
	}
	bqn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node.BaseSchema, node.BaseObject = bqn.SchemaAndName("dbo")

	return FallbackNode{Recognizer: "Synonym", Node: node}, true
}
