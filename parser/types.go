package parser

// UserDefinedTypeNode covers both CREATE TYPE shapes (spec §4.1 step 12):
// a scalar alias type (`CREATE TYPE name FROM basetype(args) [NULL|NOT
// NULL]`) and a table type (`CREATE TYPE name AS TABLE (...)`).
type UserDefinedTypeNode struct {
	Schema      string
	Name        string
	IsTableType bool

	// Scalar type fields.
	BaseType string
	Length   *int
	Precision *int
	Scale    *int
	Nullable bool

	// Table type fields.
	Columns     []ColumnDef
	Constraints []TableConstraint
}

func ParseCreateType(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("CREATE", "TYPE") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node := UserDefinedTypeNode{Nullable: true}
	node.Schema, node.Name = qn.SchemaAndName("dbo")

	if c.ConsumeKeywords("AS", "TABLE") {
		node.IsTableType = true
		inner, ok := c.SkipParenthesized()
		if !ok {
			return nil, false
		}
		for _, group := range SplitTopLevelCommas(inner) {
			if tc, ok := ParseTableConstraint(group); ok {
				node.Constraints = append(node.Constraints, *tc)
				continue
			}
			if col, ok := ParseColumnOrComputed(group); ok {
				node.Columns = append(node.Columns, *col)
			}
		}
		return FallbackNode{Recognizer: "TableType", Node: node}, true
	}

	if !c.ConsumeKeyword("FROM") {
		return nil, false
	}
	baseCol := &ColumnDef{}
	tn, ok := c.ParseIdentifier()
	if !ok {
		return nil, false
	}
	node.BaseType = tn
	if c.CheckPunct("(") {
		inner, _ := c.SkipParenthesized()
		parseTypeArgs(inner, baseCol)
		node.Length = baseCol.Length
		node.Precision = baseCol.Precision
		node.Scale = baseCol.Scale
	}
	for !c.Done() {
		switch {
		case c.ConsumeKeyword("NOT"):
			c.ConsumeKeyword("NULL")
			node.Nullable = false
		case c.ConsumeKeyword("NULL"):
			node.Nullable = true
		default:
			c.Next()
		}
	}

	return FallbackNode{Recognizer: "ScalarType", Node: node}, true
}
