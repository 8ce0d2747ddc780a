package parser

// TableConstraint is a table-level constraint parsed from a top-level-comma
// group inside a CREATE TABLE body: CONSTRAINT name PRIMARY KEY/UNIQUE/
// FOREIGN KEY/CHECK, or the comma-less bare form without CONSTRAINT (spec
// §4.1 step 10, "constraint keywords that never take a leading comma").
type TableConstraint struct {
	Name     string
	Kind     string // "PrimaryKey", "Unique", "ForeignKey", "Check"
	Clustered bool // only meaningful for PrimaryKey/Unique; true unless NONCLUSTERED given
	Columns  []IndexKeyColumn
	RefTable   string
	RefSchema  string
	RefColumns []string
	OnDelete   string
	OnUpdate   string
	CheckExpr  string
}

// IndexKeyColumn is one column inside a key-column list, optionally with a
// sort direction.
type IndexKeyColumn struct {
	Name string
	Desc bool
}

// ParseTableConstraint attempts to parse one table-level constraint group.
// It returns ok=false if the tokens don't start with CONSTRAINT or one of
// the bare constraint keywords, so the caller can fall back to treating the
// group as a column definition.
func ParseTableConstraint(toks []Token) (*TableConstraint, bool) {
	c := NewCursor(toks)
	tc := &TableConstraint{Clustered: true}

	if c.ConsumeKeyword("CONSTRAINT") {
		name, _ := c.ParseIdentifier()
		tc.Name = name
	}

	switch {
	case c.ConsumeKeywords("PRIMARY", "KEY"):
		tc.Kind = "PrimaryKey"
	case c.ConsumeKeyword("UNIQUE"):
		tc.Kind = "Unique"
	case c.ConsumeKeywords("FOREIGN", "KEY"):
		tc.Kind = "ForeignKey"
	case c.ConsumeKeyword("CHECK"):
		tc.Kind = "Check"
		inner, ok := c.SkipParenthesized()
		if !ok {
			return nil, false
		}
		tc.CheckExpr = "(" + TokenText(inner) + ")"
		return tc, true
	default:
		return nil, false
	}

	switch tc.Kind {
	case "PrimaryKey", "Unique":
		if c.ConsumeKeyword("NONCLUSTERED") {
			tc.Clustered = false
		} else {
			c.ConsumeKeyword("CLUSTERED")
		}
		inner, ok := c.SkipParenthesized()
		if !ok {
			return nil, false
		}
		tc.Columns = parseKeyColumnList(inner)
		// WITH (options) and ON [filegroup] are accepted but not modeled;
		// the constraint keeps only its key list and clustering.
		skipTrailingIndexOptions(c)

	case "ForeignKey":
		inner, ok := c.SkipParenthesized()
		if !ok {
			return nil, false
		}
		for _, t := range inner {
			if t.Kind == Ident || t.Kind == QuotedIdent || t.Kind == Keyword {
				tc.Columns = append(tc.Columns, IndexKeyColumn{Name: t.Value})
			}
		}
		if c.ConsumeKeywords("REFERENCES") {
			qn, _ := c.ParseSchemaQualifiedName()
			tc.RefSchema, tc.RefTable = qn.SchemaAndName("dbo")
			if refInner, ok := c.SkipParenthesized(); ok {
				for _, t := range refInner {
					if t.Kind == Ident || t.Kind == QuotedIdent || t.Kind == Keyword {
						tc.RefColumns = append(tc.RefColumns, t.Value)
					}
				}
			}
		}
		for {
			if c.ConsumeKeywords("ON", "DELETE") {
				tc.OnDelete = parseReferentialAction(c)
				continue
			}
			if c.ConsumeKeywords("ON", "UPDATE") {
				tc.OnUpdate = parseReferentialAction(c)
				continue
			}
			break
		}
	}

	return tc, true
}

func parseReferentialAction(c *Cursor) string {
	switch {
	case c.ConsumeKeywords("CASCADE"):
		return "Cascade"
	case c.ConsumeKeywords("SET", "NULL"):
		return "SetNull"
	case c.ConsumeKeywords("SET", "DEFAULT"):
		return "SetDefault"
	case c.ConsumeKeywords("NO", "ACTION"):
		return "NoAction"
	}
	return "NoAction"
}

func parseKeyColumnList(inner []Token) []IndexKeyColumn {
	var cols []IndexKeyColumn
	for _, group := range SplitTopLevelCommas(inner) {
		gc := NewCursor(group)
		name, ok := gc.ParseIdentifier()
		if !ok {
			continue
		}
		kc := IndexKeyColumn{Name: name}
		if gc.ConsumeKeyword("DESC") {
			kc.Desc = true
		} else {
			gc.ConsumeKeyword("ASC")
		}
		cols = append(cols, kc)
	}
	return cols
}

// skipTrailingIndexOptions consumes a trailing WITH (...) options group
// and/or ON filegroup/partition-scheme clause, without extracting them.
// Index options are extracted only for CREATE INDEX, by applyIndexOptions
// in index.go.
func skipTrailingIndexOptions(c *Cursor) {
	if c.ConsumeKeyword("WITH") {
		c.SkipParenthesized()
	}
	if c.ConsumeKeyword("ON") {
		c.ParseIdentifier()
		if c.CheckPunct("(") {
			c.SkipParenthesized()
		}
	}
}
