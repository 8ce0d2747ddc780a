package xmlwriter

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/sqldef/tsqlbuild/model"
)

// writeExtendedProperty writes a SqlExtendedProperty element: its Value
// property carries the property text as an N'...'-quoted CDATA script
// (single quotes doubled for SQL escaping), and its Host relationship
// points at the table, column, or other object the property extends
// (spec §4.4.9).
func writeExtendedProperty(parent *etree.Element, ep *model.ExtendedProperty) {
	el := newElement(parent, "SqlExtendedProperty", ep.FullName())

	escaped := strings.ReplaceAll(ep.PropertyValue, "'", "''")
	scriptProperty(el, "Value", "N'"+escaped+"'")

	relationship(el, "Host", []string{extendedPropertyHostRef(ep)})
}

// extendedPropertyHostRef builds the Host reference target: a plain
// "[schema].[object]" for a table/view-level property, or
// "[schema].[object].[column]" when Level2Name (the column) is set.
func extendedPropertyHostRef(ep *model.ExtendedProperty) string {
	if ep.Level2Name != "" {
		return bracketQualified(ep.TargetSchema, ep.Level1Name, ep.Level2Name)
	}
	return bracketQualified(ep.TargetSchema, ep.Level1Name)
}
