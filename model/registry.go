package model

import (
	"strings"

	"github.com/sqldef/tsqlbuild/parser"
)

// TableRef is one FROM/JOIN source inside a view body, with its alias if
// one was given.
type TableRef struct {
	Schema string
	Name   string
	Alias  string
}

func (t TableRef) key() string {
	return strings.ToLower(t.Schema + "." + t.Name)
}

// ColumnRef is a table-qualified (or alias-qualified) column reference
// extracted from a view body.
type ColumnRef struct {
	Schema string
	Table  string
	Column string
}

// SelectItem is one item of a view's SELECT list, after the lightweight
// scan spec §4.4.6/§4.5 describes.
type SelectItem struct {
	Alias         string
	IsStar        bool
	StarQualifier string // alias/table name for "t.*"; "" for bare "*"
	IsDirectRef   bool
	Ref           ColumnRef // valid when IsDirectRef
	Raw           string    // verbatim expression text, for anything else

	// StarColumns holds the columns a "*" or "alias.*" item expands to,
	// one per column of each source table, in FROM/JOIN order (spec §4.4.6). Populated
	// by expandSelectStars once the view's table sources are known; empty
	// when the star couldn't be resolved against any table in scope.
	StarColumns []StarColumn
}

// StarColumn is one column produced by expanding a SELECT * item against
// the table it was projected from. Column is a synthesized column, never
// part of any Table.Columns, carrying FromSelectStar=true for the writer.
type StarColumn struct {
	Column *Column
	Ref    ColumnRef
}

// QueryDependency is one entry of a view's QueryDependencies relationship
// (spec §4.4.6): either a referenced table or a referenced column.
type QueryDependency struct {
	IsTable bool
	Schema  string
	Table   string
	Column  string
}

// ViewExtraction is the cached per-view analysis spec §4.5 asks the
// registry to keep, so the writer never re-tokenizes a view body.
type ViewExtraction struct {
	QueryScript       string
	Columns           []SelectItem
	TableRefs         []TableRef
	CTENames          []string
	QueryDependencies []QueryDependency
	UnresolvedStar    bool

	joinOnRefs []ColumnRef // accumulated during extraction, folded into QueryDependencies
}

// ColumnRegistry is the lookup spec §4.5 describes: built once per model,
// mapping every table/view's qualified name to its column set, plus the
// cached view-body extraction.
type ColumnRegistry struct {
	tableColumns map[string]map[string]bool // "schema.table" lower -> column lower set
	tables       map[string]*Table          // "schema.table" lower -> the table itself, for SELECT * expansion
	views        map[string]*ViewExtraction // "schema.view" lower -> extraction
}

// BuildColumnRegistry scans m once, extracting every table's columns and
// (via a lightweight re-tokenization of each view body) every view's
// projected columns and query dependencies.
func BuildColumnRegistry(m *DatabaseModel) *ColumnRegistry {
	r := &ColumnRegistry{
		tableColumns: map[string]map[string]bool{},
		tables:       map[string]*Table{},
		views:        map[string]*ViewExtraction{},
	}

	for _, e := range m.Elements {
		t, ok := e.(*Table)
		if !ok {
			continue
		}
		key := strings.ToLower(t.SchemaName + "." + t.Name)
		set := make(map[string]bool, len(t.Columns))
		for _, col := range t.Columns {
			set[strings.ToLower(col.Name)] = true
		}
		r.tableColumns[key] = set
		r.tables[key] = t
	}

	for _, e := range m.Elements {
		v, ok := e.(*View)
		if !ok {
			continue
		}
		key := strings.ToLower(v.SchemaName + "." + v.Name)
		r.views[key] = r.extractView(v.RawDefinition, v.IsSchemaBound)
	}

	return r
}

// HasColumn reports whether schema.table (table or view) is known to carry
// column, case-insensitively.
func (r *ColumnRegistry) HasColumn(schema, table, column string) bool {
	key := strings.ToLower(schema + "." + table)
	if set, ok := r.tableColumns[key]; ok {
		return set[strings.ToLower(column)]
	}
	if v, ok := r.views[key]; ok {
		for _, c := range v.Columns {
			if strings.EqualFold(c.Alias, column) {
				return true
			}
		}
	}
	return false
}

// ViewExtraction returns the cached extraction for schema.name, if any.
func (r *ColumnRegistry) ViewExtraction(schema, name string) (*ViewExtraction, bool) {
	v, ok := r.views[strings.ToLower(schema+"."+name)]
	return v, ok
}

// FindTablesWithColumn returns every table in tablesInScope that carries
// column; callers treat a result of length 1 as an unambiguous resolution
// of an unqualified column reference (spec §4.5).
func (r *ColumnRegistry) FindTablesWithColumn(column string, tablesInScope []TableRef) []TableRef {
	var out []TableRef
	for _, t := range tablesInScope {
		if set, ok := r.tableColumns[t.key()]; ok && set[strings.ToLower(column)] {
			out = append(out, t)
		}
	}
	return out
}

// extractView re-tokenizes a view's raw SELECT body to recover its FROM/
// JOIN sources, SELECT-list items, and the ordered, de-duplicated
// QueryDependencies list (spec §4.4.6). This is deliberately a lightweight
// scan, not a SQL parser: expressions that aren't a bare qualified column
// reference or "*" are kept as raw text and excluded from the dependency
// list.
func (r *ColumnRegistry) extractView(rawBody string, schemaBound bool) *ViewExtraction {
	toks := parser.Tokenize(rawBody)
	c := parser.NewCursor(toks)

	ve := &ViewExtraction{QueryScript: rawBody}

	if c.ConsumeKeyword("WITH") {
		for {
			name, ok := c.ParseIdentifier()
			if !ok {
				break
			}
			ve.CTENames = append(ve.CTENames, name)
			c.ConsumeKeyword("AS")
			if _, ok := c.SkipParenthesized(); !ok {
				break
			}
			if !c.ConsumePunct(",") {
				break
			}
		}
	}

	c.ConsumeKeyword("SELECT")
	c.ConsumeKeyword("DISTINCT")
	if c.ConsumeKeyword("TOP") {
		if c.CheckPunct("(") {
			c.SkipParenthesized()
		} else {
			c.Next()
		}
		c.ConsumeKeyword("PERCENT")
	}

	selectToks := scanUntilTopLevel(c, "FROM")
	for _, group := range parser.SplitTopLevelCommas(selectToks) {
		if len(group) == 0 {
			continue
		}
		ve.Columns = append(ve.Columns, parseSelectItem(group))
	}

	aliasMap := map[string]TableRef{}
	if c.ConsumeKeyword("FROM") {
		if tr, ok := parseTableSource(c); ok {
			ve.TableRefs = appendTableRefUnique(ve.TableRefs, tr)
			registerAlias(aliasMap, tr)
		}
		for {
			joined := false
			switch {
			case c.ConsumeKeyword("INNER"):
				joined = true
			case c.ConsumeKeyword("LEFT"), c.ConsumeKeyword("RIGHT"), c.ConsumeKeyword("FULL"):
				joined = true
				c.ConsumeKeyword("OUTER")
			case c.ConsumeKeyword("CROSS"):
				joined = true
			}
			if !joined && !c.CheckKeyword("JOIN") {
				break
			}
			if !c.ConsumeKeyword("JOIN") {
				break
			}
			tr, ok := parseTableSource(c)
			if !ok {
				break
			}
			ve.TableRefs = appendTableRefUnique(ve.TableRefs, tr)
			registerAlias(aliasMap, tr)

			if c.ConsumeKeyword("ON") {
				onToks := scanUntilAnyTopLevel(c, "JOIN", "WHERE", "GROUP", "ORDER", "HAVING", "INNER", "LEFT", "RIGHT", "FULL", "CROSS")
				for _, ref := range extractQualifiedRefs(onToks, aliasMap) {
					appendJoinOnRef(ve, ref)
				}
			}
		}
	}

	var whereRefs, groupByRefs []ColumnRef
	if c.ConsumeKeyword("WHERE") {
		whereToks := scanUntilAnyTopLevel(c, "GROUP", "ORDER", "HAVING")
		whereRefs = extractQualifiedRefs(whereToks, aliasMap)
	}
	if c.ConsumeKeywords("GROUP", "BY") {
		groupToks := scanUntilAnyTopLevel(c, "ORDER", "HAVING")
		for _, group := range parser.SplitTopLevelCommas(groupToks) {
			groupByRefs = append(groupByRefs, extractQualifiedRefs(group, aliasMap)...)
		}
	}
	if c.ConsumeKeyword("HAVING") {
		havingToks := scanUntilAnyTopLevel(c, "ORDER")
		whereRefs = append(whereRefs, extractQualifiedRefs(havingToks, aliasMap)...)
	}

	r.expandSelectStars(ve, aliasMap)

	ve.QueryDependencies = computeQueryDependencies(ve, whereRefs, groupByRefs, schemaBound)

	for i := range ve.Columns {
		if ve.Columns[i].IsStar && len(ve.Columns[i].StarColumns) == 0 {
			ve.UnresolvedStar = true
		}
	}

	return ve
}

// expandSelectStars resolves every "*" or "alias.*" item in ve.Columns
// into the actual columns of the table(s) it projects from, the way
// DacFx expands a view's SELECT * against its referenced tables rather
// than leaving it unresolved. A bare "*" expands every table in
// ve.TableRefs, in FROM/JOIN order; "alias.*" expands only the table
// aliasMap resolves alias to. A star against a table this registry never
// saw (cross-database reference, typo) is left with no StarColumns and
// marked UnresolvedStar by the caller.
func (r *ColumnRegistry) expandSelectStars(ve *ViewExtraction, aliasMap map[string]TableRef) {
	for i := range ve.Columns {
		item := &ve.Columns[i]
		if !item.IsStar {
			continue
		}

		var sources []TableRef
		if item.StarQualifier != "" {
			if tr, ok := aliasMap[strings.ToLower(item.StarQualifier)]; ok {
				sources = []TableRef{tr}
			}
		} else {
			sources = ve.TableRefs
		}

		for _, tr := range sources {
			t, ok := r.tables[tr.key()]
			if !ok {
				continue
			}
			for _, col := range t.Columns {
				item.StarColumns = append(item.StarColumns, StarColumn{
					Column: &Column{Name: col.Name, FromSelectStar: true},
					Ref:    ColumnRef{Schema: tr.Schema, Table: tr.Name, Column: col.Name},
				})
			}
		}
	}
}

func scanUntilTopLevel(c *parser.Cursor, stop string) []parser.Token {
	var out []parser.Token
	depth := 0
	for !c.Done() {
		if depth == 0 && c.CheckKeyword(stop) {
			break
		}
		if c.CheckPunct("(") {
			depth++
		} else if c.CheckPunct(")") {
			depth--
		}
		out = append(out, c.Next())
	}
	return out
}

func scanUntilAnyTopLevel(c *parser.Cursor, stops ...string) []parser.Token {
	var out []parser.Token
	depth := 0
	for !c.Done() {
		if depth == 0 {
			hit := false
			for _, s := range stops {
				if c.CheckKeyword(s) {
					hit = true
					break
				}
			}
			if hit {
				break
			}
		}
		if c.CheckPunct("(") {
			depth++
		} else if c.CheckPunct(")") {
			depth--
		}
		out = append(out, c.Next())
	}
	return out
}

// parseTableSource reads `schema.table [[AS] alias]` from the cursor.
func parseTableSource(c *parser.Cursor) (TableRef, bool) {
	qn, ok := c.ParseSchemaQualifiedName()
	if !ok {
		return TableRef{}, false
	}
	schema, name := qn.SchemaAndName("dbo")
	tr := TableRef{Schema: schema, Name: name}
	if c.ConsumeKeyword("AS") {
		alias, _ := c.ParseIdentifier()
		tr.Alias = alias
	} else if looksLikeAlias(c) {
		alias, _ := c.ParseIdentifier()
		tr.Alias = alias
	}
	return tr, true
}

var clauseKeywords = map[string]bool{
	"JOIN": true, "WHERE": true, "GROUP": true, "ORDER": true, "HAVING": true,
	"INNER": true, "LEFT": true, "RIGHT": true, "FULL": true, "CROSS": true, "ON": true,
}

func looksLikeAlias(c *parser.Cursor) bool {
	t := c.Peek()
	if t.Kind != parser.Ident && t.Kind != parser.QuotedIdent {
		return false
	}
	return !clauseKeywords[t.UpperValue()]
}

func registerAlias(aliasMap map[string]TableRef, tr TableRef) {
	if tr.Alias != "" {
		aliasMap[strings.ToLower(tr.Alias)] = tr
	}
	aliasMap[strings.ToLower(tr.Name)] = tr
}

func appendTableRefUnique(refs []TableRef, tr TableRef) []TableRef {
	key := strings.ToLower(tr.Schema + "." + tr.Name)
	for _, existing := range refs {
		if strings.ToLower(existing.Schema+"."+existing.Name) == key {
			return refs
		}
	}
	return append(refs, tr)
}

// extractQualifiedRefs finds every `qualifier.column` pair in toks,
// resolving qualifier against aliasMap when possible.
func extractQualifiedRefs(toks []parser.Token, aliasMap map[string]TableRef) []ColumnRef {
	var out []ColumnRef
	for i := 0; i+2 < len(toks); i++ {
		a, dot, b := toks[i], toks[i+1], toks[i+2]
		if !(a.Kind == parser.Ident || a.Kind == parser.QuotedIdent || a.Kind == parser.Keyword) {
			continue
		}
		if dot.Kind != parser.Punct || dot.Text != "." {
			continue
		}
		if !(b.Kind == parser.Ident || b.Kind == parser.QuotedIdent) {
			continue
		}
		ref := ColumnRef{Table: a.Value, Column: b.Value}
		if tr, ok := aliasMap[strings.ToLower(a.Value)]; ok {
			ref.Schema, ref.Table = tr.Schema, tr.Name
		}
		out = append(out, ref)
	}
	return out
}

func parseSelectItem(group []parser.Token) SelectItem {
	if len(group) == 1 && group[0].Kind == parser.Punct && group[0].Text == "*" {
		return SelectItem{IsStar: true}
	}
	if len(group) == 3 && group[1].Kind == parser.Punct && group[1].Text == "." &&
		group[2].Kind == parser.Punct && group[2].Text == "*" {
		return SelectItem{IsStar: true, StarQualifier: group[0].Value}
	}
	if len(group) == 3 && group[1].Kind == parser.Punct && group[1].Text == "." {
		return SelectItem{
			IsDirectRef: true,
			Ref:         ColumnRef{Table: group[0].Value, Column: group[2].Value},
			Alias:       group[2].Value,
		}
	}

	// Look for a top-level AS splitting expr from alias.
	depth := 0
	for i, t := range group {
		if t.Kind == parser.Punct && t.Text == "(" {
			depth++
		} else if t.Kind == parser.Punct && t.Text == ")" {
			depth--
		} else if depth == 0 && t.Kind == parser.Keyword && strings.EqualFold(t.Value, "AS") && i+1 < len(group) {
			return SelectItem{Raw: parser.TokenText(group[:i]), Alias: group[i+1].Value}
		}
	}

	// Bare trailing identifier with no AS ("expr alias").
	if len(group) > 1 {
		last := group[len(group)-1]
		if last.Kind == parser.Ident || last.Kind == parser.QuotedIdent {
			return SelectItem{Raw: parser.TokenText(group[:len(group)-1]), Alias: last.Value}
		}
	}

	return SelectItem{Raw: parser.TokenText(group)}
}

func appendJoinOnRef(ve *ViewExtraction, ref ColumnRef) {
	ve.joinOnRefs = append(ve.joinOnRefs, ref)
}

func columnKey(ref ColumnRef) string {
	return strings.ToLower(ref.Schema + "." + ref.Table + "." + ref.Column)
}

// computeQueryDependencies implements spec §4.4.6's five-phase ordered
// de-duplication.
func computeQueryDependencies(ve *ViewExtraction, whereRefs, groupByRefs []ColumnRef, schemaBound bool) []QueryDependency {
	var deps []QueryDependency
	counts := map[string]int{}
	fromJoinOn := map[string]bool{}

	// Phase 1: referenced tables, FROM/JOIN order, unique.
	for _, t := range ve.TableRefs {
		deps = append(deps, QueryDependency{IsTable: true, Schema: t.Schema, Table: t.Name})
	}

	// Phase 2: JOIN ON columns, unique.
	for _, ref := range ve.joinOnRefs {
		key := columnKey(ref)
		if counts[key] > 0 {
			continue
		}
		deps = append(deps, QueryDependency{Schema: ref.Schema, Table: ref.Table, Column: ref.Column})
		counts[key] = 1
		fromJoinOn[key] = true
	}

	// Phase 3: SELECT direct column refs — unique within this phase only;
	// duplicates of JOIN ON columns are allowed.
	localSeen := map[string]bool{}
	for _, item := range ve.Columns {
		if !item.IsDirectRef {
			continue
		}
		key := columnKey(item.Ref)
		if localSeen[key] {
			continue
		}
		localSeen[key] = true
		deps = append(deps, QueryDependency{Schema: item.Ref.Schema, Table: item.Ref.Table, Column: item.Ref.Column})
		counts[key]++
	}

	// Phase 4: WHERE/HAVING columns — unique against everything so far.
	for _, ref := range whereRefs {
		key := columnKey(ref)
		if counts[key] > 0 {
			continue
		}
		deps = append(deps, QueryDependency{Schema: ref.Schema, Table: ref.Table, Column: ref.Column})
		counts[key]++
	}

	// Phase 5: GROUP BY columns, with the schemabinding duplication quirk.
	for _, ref := range groupByRefs {
		key := columnKey(ref)
		switch {
		case schemaBound:
			if counts[key] < 2 {
				deps = append(deps, QueryDependency{Schema: ref.Schema, Table: ref.Table, Column: ref.Column})
				counts[key]++
			}
		case counts[key] == 0:
			deps = append(deps, QueryDependency{Schema: ref.Schema, Table: ref.Table, Column: ref.Column})
			counts[key]++
		case fromJoinOn[key] && counts[key] < 2:
			deps = append(deps, QueryDependency{Schema: ref.Schema, Table: ref.Table, Column: ref.Column})
			counts[key]++
		}
	}

	return deps
}
