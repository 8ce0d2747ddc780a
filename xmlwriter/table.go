package xmlwriter

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/sqldef/tsqlbuild/model"
)

// writeTable writes a table's SqlTable element: IsAnsiNullsOn (always
// true), the Columns relationship (if the table has any, in source
// order), the Schema relationship, then the table's own three-part
// annotation list in the order component C computed it — the AttachedAnnotation
// entries above the median descending, the table's own inline-constraint
// Annotations ascending, then the AttachedAnnotation entries at or below
// the median ascending (spec §4.4.3).
func writeTable(parent *etree.Element, t *model.Table) {
	full := bracketQualified(t.SchemaName, t.Name)
	el := newElement(parent, "SqlTable", full)

	boolProperty(el, "IsAnsiNullsOn", true)

	if len(t.Columns) > 0 {
		rel := el.CreateElement("Relationship")
		attrBatch(rel, "Name", "Columns")
		for _, col := range t.Columns {
			writeColumnEntry(rel, col, full)
		}
	}

	schemaRelationship(el, t.SchemaName)

	for _, d := range t.AttachedAnnotationsBeforeMedian {
		attrBatch(el.CreateElement("AttachedAnnotation"), "Disambiguator", itoa(d))
	}
	for _, d := range t.InlineConstraintDisambiguators {
		a := el.CreateElement("Annotation")
		attrBatch(a, "Type", "SqlInlineConstraintAnnotation", "Disambiguator", itoa(d))
	}
	for _, d := range t.AttachedAnnotationsAfterMedian {
		attrBatch(el.CreateElement("AttachedAnnotation"), "Disambiguator", itoa(d))
	}
}

// writeColumnEntry dispatches one <Entry> for a column: a computed column
// gets SqlComputedColumn's shape, everything else gets SqlSimpleColumn's.
func writeColumnEntry(rel *etree.Element, col *model.Column, tableFullName string) {
	entry := rel.CreateElement("Entry")
	colName := tableFullName + "." + bracket(col.Name)

	if col.ComputedExpr != nil {
		writeComputedColumn(entry, col, colName, tableFullName)
		return
	}
	writeSimpleColumn(entry, col, colName)
}

// writeSimpleColumn writes a SqlSimpleColumn: property order Collation →
// IsNullable="False" (only for explicit NOT NULL; never "True") →
// IsIdentity → IsFileStream, then the TypeSpecifier relationship, then
// column-level annotations (spec §4.4.4).
func writeSimpleColumn(entry *etree.Element, col *model.Column, colName string) {
	el := entry.CreateElement("Element")
	attrBatch(el, "Type", "SqlSimpleColumn", "Name", colName)

	if col.Collation != "" {
		property(el, "Collation", col.Collation)
	}
	if col.IsExplicitlyNotNull() {
		property(el, "IsNullable", "False")
	}
	if col.IsIdentity {
		property(el, "IsIdentity", "True")
	}
	if col.IsFileStream {
		property(el, "IsFileStream", "True")
	}

	writeTypeSpecifier(el, col.TypeName, col.Length, col.Precision, col.Scale)

	for _, d := range col.AttachedAnnotations {
		attrBatch(el.CreateElement("AttachedAnnotation"), "Disambiguator", itoa(d))
	}
	if col.InlineConstraintAnnotation != nil {
		a := el.CreateElement("Annotation")
		attrBatch(a, "Type", "SqlInlineConstraintAnnotation", "Disambiguator", itoa(*col.InlineConstraintAnnotation))
	}
}

// writeComputedColumn writes a SqlComputedColumn: no IsNullable property
// at all, property order ExpressionScript → IsPersisted, then
// ExpressionDependencies extracted by a lightweight scan of the
// expression text (spec §4.4.5).
func writeComputedColumn(entry *etree.Element, col *model.Column, colName, tableFullName string) {
	el := entry.CreateElement("Element")
	attrBatch(el, "Type", "SqlComputedColumn", "Name", colName)

	expr := *col.ComputedExpr
	scriptProperty(el, "ExpressionScript", expr)

	if col.IsPersisted {
		property(el, "IsPersisted", "True")
	}

	deps := extractExpressionColumnRefs(expr, tableFullName)
	if len(deps) > 0 {
		rel := el.CreateElement("Relationship")
		attrBatch(rel, "Name", "ExpressionDependencies")
		for _, dep := range deps {
			entryDep := rel.CreateElement("Entry")
			r := entryDep.CreateElement("References")
			if isBuiltinTypeReference(dep) {
				attrBatch(r, "ExternalSource", "BuiltIns", "Name", dep)
			} else {
				attrBatch(r, "Name", dep)
			}
		}
	}
}

// writeTypeSpecifier writes the TypeSpecifier relationship shared by
// simple columns, table-type columns, and procedure/function parameters:
// Scale (omitted when 0) → Precision → Length (or IsMax="True" when -1),
// then the Type relationship — ExternalSource="BuiltIns" for one of the
// 33 built-in names, omitted for a dotted/qualified UDT reference (spec
// §4.4.4).
func writeTypeSpecifier(parent *etree.Element, typeName string, length, precision, scale *int) {
	rel := parent.CreateElement("Relationship")
	attrBatch(rel, "Name", "TypeSpecifier")
	entry := rel.CreateElement("Entry")
	el := entry.CreateElement("Element")
	attrBatch(el, "Type", "SqlTypeSpecifier")

	if scale != nil && *scale > 0 {
		property(el, "Scale", itoa(*scale))
	}
	if precision != nil {
		property(el, "Precision", itoa(*precision))
	}
	if length != nil {
		if *length == -1 {
			property(el, "IsMax", "True")
		} else {
			property(el, "Length", itoa(*length))
		}
	}

	if isUserDefinedTypeName(typeName) {
		typeRel := el.CreateElement("Relationship")
		attrBatch(typeRel, "Name", "Type")
		typeEntry := typeRel.CreateElement("Entry")
		r := typeEntry.CreateElement("References")
		attrBatch(r, "Name", normalizeUDTName(typeName))
		return
	}

	typeRel := el.CreateElement("Relationship")
	attrBatch(typeRel, "Name", "Type")
	typeEntry := typeRel.CreateElement("Entry")
	r := typeEntry.CreateElement("References")
	attrBatch(r, "ExternalSource", "BuiltIns", "Name", sqlTypeToReference(typeName))
}

// isUserDefinedTypeName reports whether typeName names a user-defined
// type rather than a built-in: it's qualified, either "[schema].[name]"
// or "schema.name".
func isUserDefinedTypeName(typeName string) bool {
	base := strings.TrimSpace(strings.SplitN(typeName, "(", 2)[0])
	if strings.Contains(base, "].[") {
		return true
	}
	trimmed := strings.Trim(base, "[]")
	return strings.Contains(trimmed, ".")
}

func normalizeUDTName(typeName string) string {
	base := strings.TrimSpace(strings.SplitN(typeName, "(", 2)[0])
	parts := strings.SplitN(strings.Trim(base, "[]"), ".", 2)
	if len(parts) == 2 {
		return bracketQualified(strings.Trim(parts[0], "[]"), strings.Trim(parts[1], "[]"))
	}
	return bracket(strings.Trim(base, "[]"))
}

// writeTableTypeColumn writes a SqlTableTypeSimpleColumn for a table-type
// body column: the nullability emission direction is the inverse of a
// regular table column's — "True" is emitted whenever the column is NOT
// explicitly NOT NULL (spec §4.4.4 supplement).
func writeTableTypeColumn(parent *etree.Element, col *model.Column, typeFullName string) {
	rel := findOrCreateColumnsRelationship(parent)
	entry := rel.CreateElement("Entry")
	colName := typeFullName + "." + bracket(col.Name)

	el := entry.CreateElement("Element")
	attrBatch(el, "Type", "SqlTableTypeSimpleColumn", "Name", colName)

	if col.Nullability != model.NullabilityExplicitNotNull {
		property(el, "IsNullable", "True")
	}

	writeTypeSpecifier(el, col.TypeName, col.Length, col.Precision, col.Scale)

	if col.InlineConstraintAnnotation != nil {
		a := el.CreateElement("Annotation")
		attrBatch(a, "Type", "SqlInlineConstraintAnnotation", "Disambiguator", itoa(*col.InlineConstraintAnnotation))
	}
}

func findOrCreateColumnsRelationship(parent *etree.Element) *etree.Element {
	for _, rel := range parent.SelectElements("Relationship") {
		if rel.SelectAttrValue("Name", "") == "Columns" {
			return rel
		}
	}
	rel := parent.CreateElement("Relationship")
	attrBatch(rel, "Name", "Columns")
	return rel
}
