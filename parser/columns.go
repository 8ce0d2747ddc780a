package parser

import "strings"

// ColumnDef is the parser-side column shape produced by the shared
// column-definition sub-grammar (spec §4.1), before it is lifted into a
// model.Column by the builder. It is reused by the AST path, the CREATE
// TABLE fallback, the table-type fallback, and temporal-table overlay
// extraction — one grammar, several callers.
type ColumnDef struct {
	Name       string
	TypeName   string
	Length     *int // nil = unspecified, -1 = MAX
	Precision  *int
	Scale      *int
	Collation  string

	// Nullability: nil = implicit (neither NULL nor NOT NULL given),
	// true = explicit NOT NULL, false = explicit NULL.
	NotNull *bool

	IsIdentity        bool
	IdentitySeed      int
	IdentityIncrement int

	IsRowGuidCol  bool
	IsSparse      bool
	IsFileStream  bool

	ComputedExpr *string
	IsPersisted  bool

	GeneratedAlwaysStart bool
	GeneratedAlwaysEnd   bool
	IsHidden             bool

	MaskingFunction string

	Default *InlineConstraintDef
	Check   *InlineConstraintDef
	// InlinePrimaryKey / InlineUnique: PRIMARY KEY / UNIQUE given directly
	// on the column (e.g. "Id INT PRIMARY KEY").
	InlinePrimaryKey bool
	InlineUnique     bool
}

// InlineConstraintDef is an inline DEFAULT or CHECK lifted from a column
// definition. EmitName follows spec §4.1's positional rule: the XML Name
// attribute is only emitted when CONSTRAINT [n] sits between NOT NULL and
// DEFAULT/CHECK.
type InlineConstraintDef struct {
	Name       string
	EmitName   bool
	Expression string
}

// ParseColumnOrComputed parses one column definition from the tokens inside
// a CREATE TABLE/TABLE TYPE body (a single top-level-comma-delimited
// group). It dispatches to the computed-column shape ("name AS (expr)",
// which has no TYPE token) when the second token is the AS keyword.
func ParseColumnOrComputed(toks []Token) (*ColumnDef, bool) {
	c := NewCursor(toks)
	name, ok := c.ParseIdentifier()
	if !ok {
		return nil, false
	}
	if c.CheckKeyword("AS") {
		return parseComputedColumn(name, c)
	}
	return parseRegularColumn(name, c)
}

func parseComputedColumn(name string, c *Cursor) (*ColumnDef, bool) {
	c.Next() // AS
	inner, ok := c.SkipParenthesized()
	if !ok {
		return nil, false
	}
	expr := TokenText(inner)
	col := &ColumnDef{Name: name, ComputedExpr: &expr}
	for !c.Done() {
		switch {
		case c.ConsumeKeyword("PERSISTED"):
			col.IsPersisted = true
		case c.ConsumeKeyword("NOT"):
			c.ConsumeKeyword("NULL")
			t := true
			col.NotNull = &t
		case c.ConsumeKeyword("NULL"):
			f := false
			col.NotNull = &f
		default:
			c.Next()
		}
	}
	return col, true
}

func parseRegularColumn(name string, c *Cursor) (*ColumnDef, bool) {
	typeName, ok := c.ParseIdentifier()
	if !ok {
		return nil, false
	}
	col := &ColumnDef{Name: name, TypeName: typeName}

	if c.CheckPunct("(") {
		inner, _ := c.SkipParenthesized()
		parseTypeArgs(inner, col)
	}

	sawNotNull := false
	for !c.Done() {
		switch {
		case c.ConsumeKeyword("COLLATE"):
			if v, ok := c.ParseIdentifier(); ok {
				col.Collation = v
			}
		case c.ConsumeKeyword("IDENTITY"):
			col.IsIdentity = true
			col.IdentitySeed, col.IdentityIncrement = 1, 1
			if c.CheckPunct("(") {
				inner, _ := c.SkipParenthesized()
				nums := numericTokens(inner)
				if len(nums) > 0 {
					col.IdentitySeed = nums[0]
				}
				if len(nums) > 1 {
					col.IdentityIncrement = nums[1]
				}
			}
		case c.ConsumeKeyword("NOT"):
			c.ConsumeKeyword("NULL")
			t := true
			col.NotNull = &t
			sawNotNull = true
		case c.ConsumeKeyword("NULL"):
			f := false
			col.NotNull = &f
		case c.ConsumeKeyword("ROWGUIDCOL"):
			col.IsRowGuidCol = true
		case c.ConsumeKeyword("SPARSE"):
			col.IsSparse = true
		case c.ConsumeKeyword("FILESTREAM"):
			col.IsFileStream = true
		case c.ConsumeKeyword("HIDDEN"):
			col.IsHidden = true
		case c.ConsumeKeywords("GENERATED", "ALWAYS", "AS", "ROW", "START"):
			col.GeneratedAlwaysStart = true
		case c.ConsumeKeywords("GENERATED", "ALWAYS", "AS", "ROW", "END"):
			col.GeneratedAlwaysEnd = true
		case c.ConsumeKeywords("MASKED", "WITH"):
			if inner, ok := c.SkipParenthesized(); ok {
				col.MaskingFunction = extractMaskingFunction(inner)
			}
		case c.ConsumeKeywords("PRIMARY", "KEY"):
			col.InlinePrimaryKey = true
		case c.ConsumeKeyword("UNIQUE"):
			col.InlineUnique = true
		case c.CheckKeyword("CONSTRAINT"):
			c.Next()
			constraintName, _ := c.ParseIdentifier()
			emitName := sawNotNull
			switch {
			case c.ConsumeKeyword("DEFAULT"):
				expr := parseDefaultExpression(c)
				col.Default = &InlineConstraintDef{Name: constraintName, EmitName: emitName, Expression: expr}
			case c.ConsumeKeyword("CHECK"):
				inner, _ := c.SkipParenthesized()
				col.Check = &InlineConstraintDef{Name: constraintName, EmitName: emitName, Expression: "(" + TokenText(inner) + ")"}
			}
		case c.ConsumeKeyword("DEFAULT"):
			expr := parseDefaultExpression(c)
			col.Default = &InlineConstraintDef{EmitName: false, Expression: expr}
		case c.ConsumeKeyword("CHECK"):
			inner, _ := c.SkipParenthesized()
			col.Check = &InlineConstraintDef{EmitName: false, Expression: "(" + TokenText(inner) + ")"}
		default:
			c.Next()
		}
	}

	return col, true
}

func parseDefaultExpression(c *Cursor) string {
	if c.CheckPunct("(") {
		inner, _ := c.SkipParenthesized()
		return "(" + TokenText(inner) + ")"
	}
	// Unparenthesized default, e.g. DEFAULT GETDATE() or DEFAULT 0 — consume
	// until the next clause keyword or end.
	var parts []string
	for !c.Done() {
		if c.CheckKeyword("NOT") || c.CheckKeyword("NULL") || c.CheckKeyword("CONSTRAINT") ||
			c.CheckKeyword("CHECK") || c.CheckPunct(",") {
			break
		}
		parts = append(parts, c.Next().Text)
	}
	return strings.Join(parts, " ")
}

func extractMaskingFunction(inner []Token) string {
	c := NewCursor(inner)
	if c.ConsumeKeyword("FUNCTION") && c.ConsumePunct("=") {
		t := c.Peek()
		if t.Kind == StringLit {
			c.Next()
			return t.Value
		}
	}
	return TokenText(inner)
}

func parseTypeArgs(inner []Token, col *ColumnDef) {
	c := NewCursor(inner)
	if c.CheckKeyword("MAX") {
		max := -1
		col.Length = &max
		return
	}
	nums := numericTokens(inner)
	switch len(nums) {
	case 1:
		if nums[0] == MaxLenSentinel {
			max := -1
			col.Length = &max
			return
		}
		// Ambiguous between length and precision; the builder decides based
		// on the base type name (character/binary types => length,
		// numeric/decimal => precision).
		col.Length = &nums[0]
		col.Precision = &nums[0]
	case 2:
		col.Precision = &nums[0]
		col.Scale = &nums[1]
	}
	_ = c
}

func numericTokens(toks []Token) []int {
	var out []int
	for _, t := range toks {
		if t.Kind == NumberLit {
			n := 0
			neg := false
			for _, r := range t.Text {
				if r == '-' {
					neg = true
					continue
				}
				if r < '0' || r > '9' {
					continue
				}
				n = n*10 + int(r-'0')
			}
			if neg {
				n = -n
			}
			out = append(out, n)
		}
	}
	return out
}
