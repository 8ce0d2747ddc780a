package parser

// SequenceNode is CREATE SEQUENCE (spec §4.1 step 11).
type SequenceNode struct {
	Schema    string
	Name      string
	TypeName  string
	StartWith *int
	Increment *int
	MinValue  *int
	MaxValue  *int
	Cycle     bool
	CacheSize *int
}

func ParseCreateSequence(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("CREATE", "SEQUENCE") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node := SequenceNode{}
	node.Schema, node.Name = qn.SchemaAndName("dbo")

	if c.ConsumeKeyword("AS") {
		tn, _ := c.ParseIdentifier()
		node.TypeName = tn
	}

	for !c.Done() {
		switch {
		case c.ConsumeKeywords("START", "WITH"):
			n := readSignedInt(c)
			node.StartWith = &n
		case c.ConsumeKeywords("INCREMENT", "BY"):
			n := readSignedInt(c)
			node.Increment = &n
		case c.ConsumeKeyword("MINVALUE"):
			n := readSignedInt(c)
			node.MinValue = &n
		case c.ConsumeKeyword("MAXVALUE"):
			n := readSignedInt(c)
			node.MaxValue = &n
		case c.ConsumeKeywords("NO", "CYCLE"):
			node.Cycle = false
		case c.ConsumeKeyword("CYCLE"):
			node.Cycle = true
		case c.ConsumeKeywords("CACHE"):
			n := readSignedInt(c)
			node.CacheSize = &n
		default:
			c.Next()
		}
	}

	return FallbackNode{Recognizer: "Sequence", Node: node}, true
}

func readSignedInt(c *Cursor) int {
	neg := c.ConsumePunct("-")
	t := c.Peek()
	if t.Kind != NumberLit {
		return 0
	}
	c.Next()
	nums := numericTokens([]Token{t})
	if len(nums) == 0 {
		return 0
	}
	if neg {
		return -nums[0]
	}
	return nums[0]
}
