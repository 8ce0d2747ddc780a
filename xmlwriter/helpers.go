package xmlwriter

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// attrBatch applies attrs to el in order in a single call, so every
// call site still reads as "these attributes are emitted together" even
// though etree.Element.CreateAttr already preserves insertion order on
// its own. attrs is name/value pairs: attrBatch(el, "Type", "SqlTable",
// "Name", full).
func attrBatch(el *etree.Element, attrs ...string) {
	for i := 0; i+1 < len(attrs); i += 2 {
		el.CreateAttr(attrs[i], attrs[i+1])
	}
}

// newElement creates a child <Element> with the given Type/Name (Name
// omitted when empty, for anonymous elements like unnamed inline
// constraints).
func newElement(parent *etree.Element, elemType, name string) *etree.Element {
	el := parent.CreateElement("Element")
	if name == "" {
		attrBatch(el, "Type", elemType)
	} else {
		attrBatch(el, "Type", elemType, "Name", name)
	}
	return el
}

// property writes <Property Name="name" Value="value"/>.
func property(parent *etree.Element, name, value string) {
	p := parent.CreateElement("Property")
	attrBatch(p, "Name", name, "Value", value)
}

func boolProperty(parent *etree.Element, name string, value bool) {
	if value {
		property(parent, name, "True")
	} else {
		property(parent, name, "False")
	}
}

// scriptProperty writes a SqlScriptProperty-shaped property: the value
// carried as CDATA under a <Value> child rather than a Value attribute,
// used for expressions (DEFAULT/CHECK bodies, view QueryScript, extended
// property values).
func scriptProperty(parent *etree.Element, name, script string) {
	p := parent.CreateElement("Property")
	attrBatch(p, "Name", name)
	v := p.CreateElement("Value")
	v.CreateCData(script)
}

// relationship writes a <Relationship Name="name"> with one <Entry><Element .../></Entry>
// or <Entry><References .../></Entry> per ref, preserving ref order.
func relationship(parent *etree.Element, name string, refs []string) {
	if len(refs) == 0 {
		return
	}
	rel := parent.CreateElement("Relationship")
	attrBatch(rel, "Name", name)
	for _, ref := range refs {
		entry := rel.CreateElement("Entry")
		r := entry.CreateElement("References")
		attrBatch(r, "Name", ref)
	}
}

// builtinRelationship is relationship, but every Entry's References
// carries ExternalSource="BuiltIns" — used for type/filegroup references
// that resolve against the engine's own built-in schema rather than a
// user object.
func builtinRelationship(parent *etree.Element, name string, refs []string) {
	if len(refs) == 0 {
		return
	}
	rel := parent.CreateElement("Relationship")
	attrBatch(rel, "Name", name)
	for _, ref := range refs {
		entry := rel.CreateElement("Entry")
		r := entry.CreateElement("References")
		attrBatch(r, "ExternalSource", "BuiltIns", "Name", ref)
	}
}

// schemaRelationship writes the Schema relationship every schema-owned
// element carries as its final relationship.
func schemaRelationship(parent *etree.Element, schema string) {
	builtinRelationship(parent, "Schema", []string{"[" + schema + "]"})
}

// authorizerRelationship writes the Authorizer relationship some
// principal-owned elements (full-text catalogs, schemas) carry,
// defaulting to dbo when no explicit owner was given.
func authorizerRelationship(parent *etree.Element, principal string) {
	if principal == "" {
		principal = "dbo"
	}
	builtinRelationship(parent, "Authorizer", []string{"[" + principal + "]"})
}

func bracket(name string) string { return "[" + name + "]" }

func bracketQualified(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString("[")
		sb.WriteString(p)
		sb.WriteString("]")
	}
	return sb.String()
}

// builtinTypeNames is the exact 33-name list DacFx treats as a built-in
// SQL type reference (spec §4.4.4); anything else — including any dotted,
// schema-qualified name — is a user-defined type reference.
var builtinTypeNames = map[string]bool{
	"int": true, "bigint": true, "smallint": true, "tinyint": true, "bit": true,
	"decimal": true, "numeric": true, "money": true, "smallmoney": true,
	"float": true, "real": true,
	"datetime": true, "datetime2": true, "date": true, "time": true,
	"datetimeoffset": true, "smalldatetime": true,
	"char": true, "varchar": true, "text": true,
	"nchar": true, "nvarchar": true, "ntext": true,
	"binary": true, "varbinary": true, "image": true,
	"uniqueidentifier": true, "xml": true, "sql_variant": true,
	"geography": true, "geometry": true, "hierarchyid": true, "sysname": true,
}

// isBuiltinTypeReference reports whether ref — a single bracketed name
// like "[int]", or a dotted reference like "[dbo].[MyType]" — refers to
// one of the 33 built-in types. A reference is built-in iff it has
// exactly one bracket pair and its unbracketed, lowercased name is in
// builtinTypeNames.
func isBuiltinTypeReference(ref string) bool {
	if strings.Count(ref, "[") != 1 || strings.Count(ref, "]") != 1 {
		return false
	}
	name := strings.ToLower(strings.Trim(ref, "[]"))
	return builtinTypeNames[name]
}

// sqlTypeToReference converts a bare type name into its bracketed
// reference form for the narrower set of types the original DacFx
// sequence/column-default machinery recognizes directly; anything it
// doesn't know collapses to sql_variant, matching DacFx's own fallback.
func sqlTypeToReference(typeName string) string {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case "int", "bigint", "smallint", "tinyint", "bit",
		"decimal", "numeric", "money", "smallmoney", "float", "real",
		"datetime", "datetime2", "date", "time", "datetimeoffset", "smalldatetime",
		"char", "varchar", "nchar", "nvarchar",
		"binary", "varbinary", "uniqueidentifier":
		return "[" + strings.ToLower(typeName) + "]"
	default:
		return "[sql_variant]"
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
