package xmlwriter

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/sqldef/tsqlbuild/model"
)

// writeConstraint writes one constraint element: the Name attribute is
// omitted for an anonymous inline constraint (EmitName false), the
// DefiningTable relationship is always first, then kind-specific
// relationships — ForeignTable/ForeignColumns for a foreign key,
// ColumnSpecifications for a primary key or unique constraint — and
// finally, for DEFAULT/CHECK, the expression as a CDATA Script property
// (spec §4.4.7).
func writeConstraint(parent *etree.Element, c *model.Constraint) {
	tableRef := bracketQualified(c.TableSchema, c.TableName)

	var name string
	if c.EmitName {
		name = bracketQualified(c.TableSchema, c.TableName, c.Name)
	}
	el := newElement(parent, c.Kind(), name)

	relationship(el, "DefiningTable", []string{tableRef})

	switch c.ConstraintKind {
	case model.ForeignKeyConstraint:
		relationship(el, "ForeignTable", []string{bracketQualified(c.RefSchema, c.RefTable)})
		var foreignCols []string
		for _, col := range c.RefColumns {
			foreignCols = append(foreignCols, bracketQualified(c.RefSchema, c.RefTable, col))
		}
		relationship(el, "ForeignColumns", foreignCols)
		writeConstraintColumnSpecifications(el, c, tableRef)
		if c.OnDelete != "" {
			property(el, "DeleteAction", c.OnDelete)
		}
		if c.OnUpdate != "" {
			property(el, "UpdateAction", c.OnUpdate)
		}

	case model.PrimaryKeyConstraint, model.UniqueConstraint:
		if c.IsClustered {
			property(el, "IsClustered", "True")
		}
		writeConstraintColumnSpecifications(el, c, tableRef)

	case model.CheckConstraint:
		scriptProperty(el, "Script", c.Definition)

	case model.DefaultConstraint:
		scriptProperty(el, "Script", normalizeDefaultLiteral(c.Definition))
	}
}

// normalizeDefaultLiteral re-renders a DEFAULT definition through
// shopspring/decimal when it is nothing but a (possibly parenthesized)
// numeric literal, so "((0.50))" and "((.5))" both land on the same
// canonical text DacFx itself would emit. Anything else — a function
// call, a string literal, an expression — passes through untouched.
func normalizeDefaultLiteral(def string) string {
	inner := def
	depth := 0
	for {
		t := strings.TrimSpace(inner)
		if len(t) >= 2 && t[0] == '(' && t[len(t)-1] == ')' {
			inner = t[1 : len(t)-1]
			depth++
			continue
		}
		inner = t
		break
	}

	d, err := decimal.NewFromString(inner)
	if err != nil {
		return def
	}

	canon := d.String()
	for i := 0; i < depth; i++ {
		canon = "(" + canon + ")"
	}
	return canon
}

// writeConstraintColumnSpecifications writes one SqlIndexedColumnSpecification
// per key column, each with a nested Column relationship pointing at the
// owning table's column (spec §4.4.7).
func writeConstraintColumnSpecifications(parent *etree.Element, c *model.Constraint, tableRef string) {
	if len(c.Columns) == 0 {
		return
	}
	rel := parent.CreateElement("Relationship")
	attrBatch(rel, "Name", "ColumnSpecifications")

	for i, col := range c.Columns {
		entry := rel.CreateElement("Entry")
		specName := tableRef + "." + bracket(c.Name) + "." + bracket(itoa(i))
		spec := entry.CreateElement("Element")
		attrBatch(spec, "Type", "SqlIndexedColumnSpecification", "Name", specName)

		if col.Desc {
			property(spec, "IsDescending", "True")
		}

		relationship(spec, "Column", []string{tableRef + "." + bracket(col.Name)})
	}
}
