package parser

// FilegroupNode is ALTER DATABASE ... ADD FILEGROUP name (spec §4.1 step
// 9). Other ALTER DATABASE SCOPED CONFIGURATION statements are recognized
// and discarded — they configure a live instance, which has no place in a
// project-scoped model.
type FilegroupNode struct {
	Name string
}

func ParseFilegroup(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("ALTER", "DATABASE") {
		return nil, false
	}
	c.ParseIdentifier() // database name, or the CURRENT-context token
	if c.ConsumeKeywords("ADD", "FILEGROUP") {
		name, ok := c.ParseIdentifier()
		if !ok {
			return nil, false
		}
		return FallbackNode{Recognizer: "Filegroup", Node: FilegroupNode{Name: name}}, true
	}
	if c.ConsumeKeywords("SCOPED", "CONFIGURATION") {
		return FallbackNode{Recognizer: "DiscardedScopedConfig", Node: nil}, true
	}
	return nil, false
}

// PartitionFunctionNode and PartitionSchemeNode are CREATE PARTITION
// FUNCTION / CREATE PARTITION SCHEME (spec §4.1 step 13).
type PartitionFunctionNode struct {
	Name       string
	InputType  string
	RangeLeft  bool
	Boundaries []string
}

type PartitionSchemeNode struct {
	Name         string
	FunctionName string
	AllToGroup   string
	Filegroups   []string
}

func ParseCreatePartitionFunction(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("CREATE", "PARTITION", "FUNCTION") {
		return nil, false
	}
	name, ok := c.ParseIdentifier()
	if !ok {
		return nil, false
	}
	node := PartitionFunctionNode{Name: name, RangeLeft: true}
	if inner, ok := c.SkipParenthesized(); ok {
		tn, _ := NewCursor(inner).ParseIdentifier()
		node.InputType = tn
	}
	if !c.ConsumeKeyword("AS") || !c.ConsumeKeyword("RANGE") {
		return nil, false
	}
	switch {
	case c.ConsumeKeyword("LEFT"):
		node.RangeLeft = true
	case c.ConsumeKeyword("RIGHT"):
		node.RangeLeft = false
	}
	if !c.ConsumeKeywords("FOR", "VALUES") {
		return nil, false
	}
	if inner, ok := c.SkipParenthesized(); ok {
		for _, group := range SplitTopLevelCommas(inner) {
			node.Boundaries = append(node.Boundaries, TokenText(group))
		}
	}
	return FallbackNode{Recognizer: "PartitionFunction", Node: node}, true
}

func ParseCreatePartitionScheme(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("CREATE", "PARTITION", "SCHEME") {
		return nil, false
	}
	name, ok := c.ParseIdentifier()
	if !ok {
		return nil, false
	}
	node := PartitionSchemeNode{Name: name}
	if !c.ConsumeKeyword("AS") || !c.ConsumeKeyword("PARTITION") {
		return nil, false
	}
	fn, _ := c.ParseIdentifier()
	node.FunctionName = fn
	if !c.ConsumeKeywords("ALL", "TO") {
		c.ConsumeKeyword("TO")
	} else {
		if inner, ok := c.SkipParenthesized(); ok {
			node.AllToGroup = TokenText(inner)
		}
		return FallbackNode{Recognizer: "PartitionScheme", Node: node}, true
	}
	if inner, ok := c.SkipParenthesized(); ok {
		node.Filegroups = extractIdentifiers(inner)
	}
	return FallbackNode{Recognizer: "PartitionScheme", Node: node}, true
}

// ExtendedPropertyNode is EXEC sp_addextendedproperty (spec §4.1 step 17),
// read from its named `@name = ...`, `@value = ...`, `@level0type = ...`
// arguments; positional arguments are not read.
type ExtendedPropertyNode struct {
	Name       string
	Value      string
	Level0Type string
	Level0Name string
	Level1Type string
	Level1Name string
	Level2Type string
	Level2Name string
}

func ParseExtendedProperty(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("EXEC") && !c.ConsumeKeyword("EXECUTE") {
		return nil, false
	}
	if !c.ConsumeKeyword("sp_addextendedproperty") {
		return nil, false
	}
	args := parseNamedSpArgs(c)
	node := ExtendedPropertyNode{
		Name:       args["@name"],
		Value:      args["@value"],
		Level0Type: args["@level0type"],
		Level0Name: args["@level0name"],
		Level1Type: args["@level1type"],
		Level1Name: args["@level1name"],
		Level2Type: args["@level2type"],
		Level2Name: args["@level2name"],
	}
	return FallbackNode{Recognizer: "ExtendedProperty", Node: node}, true
}

// parseNamedSpArgs reads a comma-separated `@arg = value` list, keyed by
// lower-cased argument name.
func parseNamedSpArgs(c *Cursor) map[string]string {
	args := map[string]string{}
	for !c.Done() {
		t := c.Peek()
		if t.Kind != LocalVar {
			break
		}
		c.Next()
		key := lowerASCII(t.Text)
		if !c.ConsumePunct("=") {
			continue
		}
		v := c.Peek()
		if v.Kind == StringLit {
			args[key] = v.Value
			c.Next()
		} else if v.Kind == Ident || v.Kind == QuotedIdent || v.Kind == Keyword {
			args[key] = v.Value
			c.Next()
		}
		c.ConsumePunct(",")
	}
	return args
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// RenameNode is sp_rename 'object', 'newname' [, 'objecttype'] — a
// supplemented recognizer (SPEC_FULL §4.1) not present in the original
// eighteen-step list.
type RenameNode struct {
	OldName    string
	NewName    string
	ObjectType string
}

func ParseSpRename(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("EXEC") && !c.ConsumeKeyword("EXECUTE") {
		return nil, false
	}
	if !c.ConsumeKeyword("sp_rename") {
		return nil, false
	}
	old := c.Peek()
	if old.Kind != StringLit {
		return nil, false
	}
	c.Next()
	if !c.ConsumePunct(",") {
		return nil, false
	}
	newName := c.Peek()
	if newName.Kind != StringLit {
		return nil, false
	}
	c.Next()
	node := RenameNode{OldName: old.Value, NewName: newName.Value}
	if c.ConsumePunct(",") {
		if t := c.Peek(); t.Kind == StringLit {
			node.ObjectType = t.Value
			c.Next()
		}
	}
	return FallbackNode{Recognizer: "RenameObject", Node: node}, true
}

// SwitchPartitionNode is ALTER TABLE source SWITCH [PARTITION n] TO target
// [PARTITION m] — a supplemented recognizer (SPEC_FULL §4.1).
type SwitchPartitionNode struct {
	SourceSchema, SourceTable string
	SourcePartition           string
	TargetSchema, TargetTable string
	TargetPartition           string
}

func ParseAlterTableSwitchPartition(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("ALTER", "TABLE") {
		return nil, false
	}
	sqn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	if !c.ConsumeKeyword("SWITCH") {
		return nil, false
	}
	node := SwitchPartitionNode{}
	node.SourceSchema, node.SourceTable = sqn.SchemaAndName("dbo")
	if c.ConsumeKeyword("PARTITION") {
		n := readSignedInt(c)
		node.SourcePartition = itoa(n)
	}
	if !c.ConsumeKeyword("TO") {
		return nil, false
	}
	tqn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node.TargetSchema, node.TargetTable = tqn.SchemaAndName("dbo")
	if c.ConsumeKeyword("PARTITION") {
		n := readSignedInt(c)
		node.TargetPartition = itoa(n)
	}
	return FallbackNode{Recognizer: "SwitchPartition", Node: node}, true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// RawStatementNode is the last-resort fallback: the raw text, a coarse
// kind label derived from the leading keywords, and the qualified name of
// the object it appears to target, when one can be found positionally
// (spec §4.1 step 18, "generic raw capture").
type RawStatementNode struct {
	Kind       string
	TargetHint string
}

// ParseGenericRaw always succeeds; it is the terminal entry in dispatch.go.
func ParseGenericRaw(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	kind := "Unknown"
	switch {
	case c.ConsumeKeyword("CREATE"):
		kind = "RawCreate"
	case c.ConsumeKeyword("ALTER"):
		kind = "RawAlter"
	case c.ConsumeKeyword("DROP"):
		kind = "RawDrop"
	case c.ConsumeKeyword("INSERT"):
		kind = "RawInsert"
	case c.ConsumeKeyword("UPDATE"):
		kind = "RawUpdate"
	case c.ConsumeKeyword("MERGE"):
		kind = "RawMerge"
	case c.ConsumeKeyword("DELETE"):
		kind = "RawDelete"
	case c.ConsumeKeyword("EXEC"), c.ConsumeKeyword("EXECUTE"):
		kind = "RawExec"
	}
	hint, _ := c.ParseIdentifier()
	return FallbackNode{Recognizer: "GenericRaw", Node: RawStatementNode{Kind: kind, TargetHint: hint}}, true
}
