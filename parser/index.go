package parser

// IndexNode is a regular (non-columnstore) CREATE INDEX statement (spec
// §4.1 step 6), covering key columns with ASC/DESC, INCLUDE, FILLFACTOR,
// DATA_COMPRESSION, PAD_INDEX and a filter predicate.
type IndexNode struct {
	Name         string
	Schema       string
	Table        string
	Unique       bool
	Clustered    bool
	KeyColumns   []IndexKeyColumn
	IncludeCols  []string
	FillFactor   *int
	PadIndex     bool
	DataCompression string
	FilterExpr   string
}

// ParseCreateIndex handles the fallback recognizer for CREATE [UNIQUE]
// [CLUSTERED|NONCLUSTERED] INDEX name ON schema.table (cols) [INCLUDE
// (cols)] [WHERE pred] [WITH (options)].
func ParseCreateIndex(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("CREATE") {
		return nil, false
	}
	idx := IndexNode{Clustered: false}
	idx.Unique = c.ConsumeKeyword("UNIQUE")
	switch {
	case c.ConsumeKeyword("CLUSTERED"):
		idx.Clustered = true
	case c.ConsumeKeyword("NONCLUSTERED"):
		idx.Clustered = false
	}
	if !c.ConsumeKeyword("INDEX") {
		return nil, false
	}
	name, ok := c.ParseIdentifier()
	if !ok {
		return nil, false
	}
	idx.Name = name
	if !c.ConsumeKeyword("ON") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	idx.Schema, idx.Table = qn.SchemaAndName("dbo")

	inner, ok := c.SkipParenthesized()
	if !ok {
		return nil, false
	}
	idx.KeyColumns = parseKeyColumnList(inner)

	if c.ConsumeKeyword("INCLUDE") {
		if incInner, ok := c.SkipParenthesized(); ok {
			idx.IncludeCols = extractIdentifiers(incInner)
		}
	}

	if c.ConsumeKeyword("WHERE") {
		idx.FilterExpr = scanFilterPredicate(c)
	}

	if c.ConsumeKeyword("WITH") {
		if optInner, ok := c.SkipParenthesized(); ok {
			applyIndexOptions(optInner, &idx)
		}
	}

	return FallbackNode{Recognizer: "Index", Node: idx}, true
}

// scanFilterPredicate consumes tokens up to (but not including) a following
// WITH/ON clause or end of stream, for the WHERE predicate of a filtered
// index — the predicate grammar itself is not modeled, only its raw text.
func scanFilterPredicate(c *Cursor) string {
	var parts []string
	depth := 0
	for !c.Done() {
		if depth == 0 && (c.CheckKeyword("WITH") || c.CheckKeyword("ON")) {
			break
		}
		if c.CheckPunct("(") {
			depth++
		} else if c.CheckPunct(")") {
			if depth == 0 {
				break
			}
			depth--
		}
		parts = append(parts, c.Next().Text)
	}
	return TokenText(tokensFromStrings(parts))
}

func tokensFromStrings(parts []string) []Token {
	toks := make([]Token, len(parts))
	for i, p := range parts {
		toks[i] = Token{Text: p}
	}
	return toks
}

func applyIndexOptions(inner []Token, idx *IndexNode) {
	for _, group := range SplitTopLevelCommas(inner) {
		gc := NewCursor(group)
		switch {
		case gc.ConsumeKeywords("FILLFACTOR", "="):
			nums := numericTokens(gc.toks[gc.pos:])
			if len(nums) > 0 {
				n := nums[0]
				idx.FillFactor = &n
			}
		case gc.ConsumeKeywords("PAD_INDEX", "=", "ON"):
			idx.PadIndex = true
		case gc.ConsumeKeywords("DATA_COMPRESSION", "="):
			if v, ok := gc.ParseIdentifier(); ok {
				idx.DataCompression = v
			}
		}
	}
}

// ColumnstoreIndexNode is CREATE [CLUSTERED|NONCLUSTERED] COLUMNSTORE INDEX
// (spec §4.1 step 7).
type ColumnstoreIndexNode struct {
	Name      string
	Schema    string
	Table     string
	Clustered bool
	Columns   []string
}

func ParseCreateColumnstoreIndex(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeyword("CREATE") {
		return nil, false
	}
	node := ColumnstoreIndexNode{}
	switch {
	case c.ConsumeKeyword("CLUSTERED"):
		node.Clustered = true
	case c.ConsumeKeyword("NONCLUSTERED"):
		node.Clustered = false
	default:
		node.Clustered = true // bare COLUMNSTORE INDEX defaults to clustered
	}
	if !c.ConsumeKeyword("COLUMNSTORE") {
		return nil, false
	}
	if !c.ConsumeKeyword("INDEX") {
		return nil, false
	}
	name, ok := c.ParseIdentifier()
	if !ok {
		return nil, false
	}
	node.Name = name
	if !c.ConsumeKeyword("ON") {
		return nil, false
	}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node.Schema, node.Table = qn.SchemaAndName("dbo")
	if c.CheckPunct("(") {
		inner, _ := c.SkipParenthesized()
		node.Columns = extractIdentifiers(inner)
	}
	return FallbackNode{Recognizer: "ColumnstoreIndex", Node: node}, true
}

// FullTextIndexNode is CREATE FULLTEXT INDEX ON table (cols) KEY INDEX name
// [ON catalog] (spec §4.1 step 8). FullTextCatalogNode is the companion
// CREATE FULLTEXT CATALOG statement.
type FullTextIndexNode struct {
	Schema      string
	Table       string
	Columns     []string
	KeyIndexName string
	CatalogName string
}

type FullTextCatalogNode struct {
	Name    string
	Default bool
}

func ParseCreateFullTextIndex(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("CREATE", "FULLTEXT", "INDEX", "ON") {
		return nil, false
	}
	node := FullTextIndexNode{}
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return nil, false
	}
	node.Schema, node.Table = qn.SchemaAndName("dbo")
	if inner, ok := c.SkipParenthesized(); ok {
		node.Columns = extractIdentifiers(inner)
	}
	if c.ConsumeKeywords("KEY", "INDEX") {
		name, _ := c.ParseIdentifier()
		node.KeyIndexName = name
	}
	if c.ConsumeKeyword("ON") {
		name, _ := c.ParseIdentifier()
		node.CatalogName = name
	}
	return FallbackNode{Recognizer: "FullTextIndex", Node: node}, true
}

func ParseCreateFullTextCatalog(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)
	if !c.ConsumeKeywords("CREATE", "FULLTEXT", "CATALOG") {
		return nil, false
	}
	name, ok := c.ParseIdentifier()
	if !ok {
		return nil, false
	}
	node := FullTextCatalogNode{Name: name}
	for !c.Done() {
		if c.ConsumeKeywords("AS", "DEFAULT") {
			node.Default = true
			continue
		}
		c.Next()
	}
	return FallbackNode{Recognizer: "FullTextCatalog", Node: node}, true
}
