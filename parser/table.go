package parser

// CreateTableNode is the table shape produced by both ParseCreateTable and
// ParseCreateTableFallback: columns and table-level constraints in source
// order. Table options after the parentheses other than SYSTEM_VERSIONING
// are not recorded.
type CreateTableNode struct {
	Schema      string
	Name        string
	Columns     []ColumnDef
	Constraints []TableConstraint
}

// TemporalTableNode extends CreateTableNode with the system-versioning
// overlay (spec's supplemented "temporal tables" feature): PERIOD FOR
// SYSTEM_TIME plus WITH (SYSTEM_VERSIONING = ON (HISTORY_TABLE = ...)).
type TemporalTableNode struct {
	CreateTableNode
	PeriodStartColumn string
	PeriodEndColumn   string
	HistorySchema     string
	HistoryTable      string
}

// ParseCreateTable parses a `CREATE TABLE schema.name (...)` batch. It
// returns an ASTNode for the regular shape, a "TemporalTable" FallbackNode
// when a PERIOD FOR SYSTEM_TIME group or a SYSTEM_VERSIONING option is
// present, and (nil, false) when a group inside the parentheses is neither
// a column nor a constraint, which leaves the batch to the fallback table.
func ParseCreateTable(toks []Token) (StatementBody, bool) {
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
	var periodStart, periodEnd string
	for _, group := range SplitTopLevelCommas(inner) {
		if len(group) == 0 {
			continue
		}
		gc := NewCursor(group)
		if gc.ConsumeKeywords("PERIOD", "FOR", "SYSTEM_TIME") {
			if pinner, ok := gc.SkipParenthesized(); ok {
				names := extractIdentifiers(pinner)
				if len(names) == 2 {
					periodStart, periodEnd = names[0], names[1]
				}
			}
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
		// A group the shared grammar can't place at all (e.g. an index
		// hint clause, a graph NODE/EDGE marker) forces the fallback path.
		return nil, false
	}

	historySchema, historyTable, systemVersioned := parseTableOptions(c)
	if periodStart != "" && systemVersioned {
		return FallbackNode{Recognizer: "TemporalTable", Node: TemporalTableNode{
			CreateTableNode:   node,
			PeriodStartColumn: periodStart,
			PeriodEndColumn:   periodEnd,
			HistorySchema:     historySchema,
			HistoryTable:      historyTable,
		}}, true
	}
	if periodStart != "" || systemVersioned {
		// Partial temporal markers (only one of the period and
		// SYSTEM_VERSIONING): still a TemporalTable node, so the period
		// columns are kept; no history table is recorded.
		return FallbackNode{Recognizer: "TemporalTable", Node: TemporalTableNode{
			CreateTableNode:   node,
			PeriodStartColumn: periodStart,
			PeriodEndColumn:   periodEnd,
		}}, true
	}

	return ASTNode{Kind: "CreateTable", Node: node}, true
}

func parseTableOptions(c *Cursor) (historySchema, historyTable string, systemVersioned bool) {
	if !c.ConsumeKeyword("WITH") {
		return "", "", false
	}
	inner, ok := c.SkipParenthesized()
	if !ok {
		return "", "", false
	}
	for _, group := range SplitTopLevelCommas(inner) {
		gc := NewCursor(group)
		if gc.ConsumeKeywords("SYSTEM_VERSIONING", "=", "ON") {
			systemVersioned = true
			if hinner, ok := gc.SkipParenthesized(); ok {
				hc := NewCursor(hinner)
				if hc.ConsumeKeywords("HISTORY_TABLE", "=") {
					qn, _ := hc.ParseSchemaQualifiedName()
					historySchema, historyTable = qn.SchemaAndName("dbo")
				}
			}
		}
	}
	return historySchema, historyTable, systemVersioned
}

func extractIdentifiers(toks []Token) []string {
	var out []string
	for _, t := range toks {
		if t.Kind == Ident || t.Kind == QuotedIdent || t.Kind == Keyword {
			out = append(out, t.Value)
		}
	}
	return out
}
