package xmlwriter

import (
	"github.com/beevik/etree"

	"github.com/sqldef/tsqlbuild/model"
)

// writeView writes a view's SqlView element: property order IsSchemaBound
// → IsMetadataReported → QueryScript → IsWithCheckOption → IsAnsiNullsOn
// (always true, unconditionally, for every view), then the Columns
// relationship, the DynamicObjects relationship for any CTEs, the
// QueryDependencies relationship, and finally the Schema relationship
// (spec §4.4.6).
func writeView(parent *etree.Element, v *model.View, registry *model.ColumnRegistry) {
	full := bracketQualified(v.SchemaName, v.Name)
	el := newElement(parent, "SqlView", full)

	if v.IsSchemaBound {
		property(el, "IsSchemaBound", "True")
	}
	if v.IsMetadataReported {
		property(el, "IsMetadataReported", "True")
	}

	queryScript := extractViewQuery(v.RawDefinition)
	scriptProperty(el, "QueryScript", queryScript)

	if v.IsWithCheckOption {
		property(el, "IsWithCheckOption", "True")
	}

	boolProperty(el, "IsAnsiNullsOn", true)

	ext, ok := registry.ViewExtraction(v.SchemaName, v.Name)
	if !ok {
		schemaRelationship(el, v.SchemaName)
		return
	}

	writeViewColumns(el, full, ext)
	writeViewDynamicObjects(el, full, ext)
	writeViewQueryDependencies(el, ext)

	schemaRelationship(el, v.SchemaName)
}

// extractViewQuery returns the text of the view body after its top-level
// AS keyword, matching the original generator's own extraction (the
// QueryScript property carries only the SELECT, not the CREATE VIEW
// header). A def that does not start with CREATE or ALTER is already the
// bare query, as the builder stores it, and is returned unchanged.
func extractViewQuery(def string) string {
	if t := trimLeadingSpace(def); !hasWordAt(t, 0, "CREATE") && !hasWordAt(t, 0, "ALTER") {
		return def
	}
	upper := []rune(def)
	depth := 0
	for i := 0; i < len(upper); i++ {
		switch upper[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && hasWordAt(def, i, "AS") {
			rest := def[i+2:]
			return trimLeadingSpace(rest)
		}
	}
	return def
}

func hasWordAt(s string, i int, word string) bool {
	if i+len(word) > len(s) {
		return false
	}
	if !equalFoldASCII(s[i:i+len(word)], word) {
		return false
	}
	if i > 0 && isIdentByte(s[i-1]) {
		return false
	}
	if i+len(word) < len(s) && isIdentByte(s[i+len(word)]) {
		return false
	}
	return true
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'a' && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if cb >= 'a' && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n') {
		i++
	}
	return s[i:]
}

// writeViewColumns writes the Columns relationship: one SqlComputedColumn
// per SELECT item, carrying an ExpressionDependencies relationship only
// when the item is a direct qualified column reference. Unlike the table
// computed-column writer, this does not branch on
// ExternalSource="BuiltIns" — the reference implementation's view-column
// writer never does, only its table-computed-column writer does; this
// port preserves that asymmetry rather than normalizing it away.
//
// A "*"/"alias.*" item was already expanded against its source table(s)
// by expandSelectStars, so it contributes one SqlComputedColumn per
// StarColumn here, each pointing its ExpressionDependencies at the
// originating table column rather than at the view itself.
func writeViewColumns(el *etree.Element, viewFullName string, ext *model.ViewExtraction) {
	if len(ext.Columns) == 0 {
		return
	}
	rel := el.CreateElement("Relationship")
	attrBatch(rel, "Name", "Columns")

	for _, col := range ext.Columns {
		if col.IsStar {
			for _, sc := range col.StarColumns {
				writeViewColumnEntry(rel, viewFullName, sc.Column.Name, true, sc.Ref)
			}
			continue
		}
		writeViewColumnEntry(rel, viewFullName, col.Alias, col.IsDirectRef, col.Ref)
	}
}

func writeViewColumnEntry(rel *etree.Element, viewFullName, colName string, hasDep bool, ref model.ColumnRef) {
	entry := rel.CreateElement("Entry")
	colEl := entry.CreateElement("Element")
	attrBatch(colEl, "Type", "SqlComputedColumn", "Name", viewFullName+"."+bracket(colName))

	if hasDep {
		depRel := colEl.CreateElement("Relationship")
		attrBatch(depRel, "Name", "ExpressionDependencies")
		depEntry := depRel.CreateElement("Entry")
		r := depEntry.CreateElement("References")
		attrBatch(r, "Name", bracketQualified(ref.Schema, ref.Table, ref.Column))
	}
}

// writeViewDynamicObjects writes the DynamicObjects relationship: one
// entry per CTE name defined at the top of the view body (spec §4.4.6).
func writeViewDynamicObjects(el *etree.Element, viewFullName string, ext *model.ViewExtraction) {
	if len(ext.CTENames) == 0 {
		return
	}
	var refs []string
	for _, name := range ext.CTENames {
		refs = append(refs, viewFullName+"."+bracket(name))
	}
	relationship(el, "DynamicObjects", refs)
}

// writeViewQueryDependencies writes the QueryDependencies relationship
// already assembled by the registry's five-phase rule (spec §4.4.6): one
// entry per table or column dependency, tables referenced as
// "[schema].[table]" and columns as "[schema].[table].[column]".
func writeViewQueryDependencies(el *etree.Element, ext *model.ViewExtraction) {
	if len(ext.QueryDependencies) == 0 {
		return
	}
	var refs []string
	for _, d := range ext.QueryDependencies {
		if d.IsTable {
			refs = append(refs, bracketQualified(d.Schema, d.Table))
		} else {
			refs = append(refs, bracketQualified(d.Schema, d.Table, d.Column))
		}
	}
	relationship(el, "QueryDependencies", refs)
}
