package parser

// ParseCreateTableFallback handles CREATE TABLE bodies the standard path in
// table.go rejected outright (a group inside the parens that is neither a
// column nor a constraint — e.g. a graph NODE/EDGE marker, an index hint,
// or a comma-less bare PRIMARY KEY/UNIQUE clause sitting directly after a
// column without a separating comma, which some generated DDL omits).
func ParseCreateTableFallback(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("CREATE", "TABLE") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	schema, name := qn.SchemaAndName("dbo")

	inner, ok := c.SkipParenthesized()
	if !ok {
		return nil, false
	}

	node := CreateTableNode{Schema: schema, Name: name}
	for _, group := range SplitTopLevelCommas(inner) {
		if len(group) == 0 {
			continue
		}
		if tc, ok := ParseTableConstraint(group); ok {
			node.Constraints = append(node.Constraints, *tc)
			continue
		}
		if col, ok := ParseColumnOrComputed(group); ok {
			node.Columns = append(node.Columns, *col)
			continue
		}
		// Anything left over (graph NODE/EDGE, an index hint clause) is
		// dropped from the structured shape but the table itself is still
		// captured, matching the "best-effort partial capture" stance spec
		// §4.1 takes for its fallback layer.
	}

	return FallbackNode{Recognizer: "TableFallback", Node: node}, true
}

// parseAlterViewFallback handles ALTER VIEW statements, which the standard
// view.go path does not take (ParseCreateView requires a leading CREATE).
// It keeps the whole statement as raw text.
func parseAlterViewFallback(toks []Token, fullText string) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("ALTER") {
		return nil, false
	}
	if !c.ConsumeKeyword("VIEW") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	schema, name := qn.SchemaAndName("dbo")
	return FallbackNode{Recognizer: "AlterView", Node: ViewNode{
		Schema: schema, Name: name, RawBody: fullText,
	}}, true
}

// AlterTableAddConstraintNode is `ALTER TABLE t ADD CONSTRAINT ...`.
type AlterTableAddConstraintNode struct {
	Schema, Table string
	Constraint    TableConstraint
}

// AlterTableAddColumnNode is `ALTER TABLE t ADD <column definition>`.
type AlterTableAddColumnNode struct {
	Schema, Table string
	Column        ColumnDef
}

// AlterTableRawNode is any other ALTER TABLE shape, kept only by object
// reference since the body isn't modeled further.
type AlterTableRawNode struct {
	Schema, Table string
}

// parseAlterTableAddConstraint handles `ALTER TABLE t ADD CONSTRAINT ...`
// and falls through to a raw ALTER TABLE capture for anything else under
// ALTER TABLE that SwitchPartition didn't already claim.
func parseAlterTableAddConstraint(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("ALTER", "TABLE") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	schema, table := qn.SchemaAndName("dbo")

	if c.ConsumeKeyword("ADD") {
		rest := toks[c.Mark():]
		if tc, ok := ParseTableConstraint(rest); ok {
			return FallbackNode{Recognizer: "AlterTableAddConstraint", Node: AlterTableAddConstraintNode{schema, table, *tc}}, true
		}
		// ADD <column definition>
		if col, ok := ParseColumnOrComputed(rest); ok {
			return FallbackNode{Recognizer: "AlterTableAddColumn", Node: AlterTableAddColumnNode{schema, table, *col}}, true
		}
	}

	return FallbackNode{Recognizer: "AlterTableRaw", Node: AlterTableRawNode{schema, table}}, true
}
