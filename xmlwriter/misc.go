package xmlwriter

import (
	"github.com/beevik/etree"

	"github.com/sqldef/tsqlbuild/model"
)

// writeScriptAnnotation writes the <Annotation Type="SqlInlineConstraintAnnotation">
// wrapping a single Script property — the shape procedures, functions,
// triggers, and table types carry their raw CREATE body in, the same way
// the reference generator's simpler element writers do for anything kept
// as a verbatim script rather than deeply modeled.
func writeScriptAnnotation(parent *etree.Element, script string) {
	a := parent.CreateElement("Annotation")
	attrBatch(a, "Type", "SqlInlineConstraintAnnotation")
	scriptProperty(a, "Script", script)
}

func writeProcedure(parent *etree.Element, p *model.Procedure) {
	el := newElement(parent, "SqlProcedure", bracketQualified(p.SchemaName, p.Name))
	schemaRelationship(el, p.SchemaName)
	if p.IsNativelyCompiled {
		property(el, "IsNativelyCompiled", "True")
	}
	writeScriptAnnotation(el, p.RawDefinition)
}

func writeFunction(parent *etree.Element, f *model.Function) {
	typeTag := "SqlScalarFunction"
	switch f.Kind_ {
	case model.InlineTableValuedKind:
		typeTag = "SqlInlineTableValuedFunction"
	case model.MultiStatementTableValuedKind:
		typeTag = "SqlMultiStatementTableValuedFunction"
	}
	el := newElement(parent, typeTag, bracketQualified(f.SchemaName, f.Name))
	schemaRelationship(el, f.SchemaName)
	writeScriptAnnotation(el, f.RawDefinition)
}

func writeTrigger(parent *etree.Element, t *model.Trigger) {
	el := newElement(parent, "SqlDmlTrigger", bracketQualified(t.SchemaName, t.Name))
	relationship(el, "Parent", []string{bracketQualified(t.ParentSchema, t.ParentName)})
	if t.InsteadOf {
		property(el, "IsInsteadOf", "True")
	}
	schemaRelationship(el, t.SchemaName)
	writeScriptAnnotation(el, t.RawDefinition)
}

// writeUserDefinedType writes a CREATE TYPE ... AS TABLE element: a
// Columns relationship (reusing the table-type column writer), a
// Constraints relationship for any table-type constraints, and the
// Schema relationship.
func writeUserDefinedType(parent *etree.Element, u *model.UserDefinedType) {
	full := bracketQualified(u.SchemaName, u.Name)
	el := newElement(parent, "SqlUserDefinedTableType", full)

	for _, col := range u.Columns {
		writeTableTypeColumn(el, col, full)
	}

	if len(u.Constraints) > 0 {
		var refs []string
		for _, c := range u.Constraints {
			refs = append(refs, full+"."+bracket(c.Name))
		}
		relationship(el, "Constraints", refs)
	}

	schemaRelationship(el, u.SchemaName)
}

// writeScalarType writes a CREATE TYPE ... FROM element: the aliased
// base type as a TypeSpecifier, then the Schema relationship.
func writeScalarType(parent *etree.Element, s *model.ScalarType) {
	el := newElement(parent, "SqlUserDefinedDataType", bracketQualified(s.SchemaName, s.Name))
	if s.IsNullable {
		property(el, "IsNullable", "True")
	}
	writeTypeSpecifier(el, s.BaseType, s.Length, s.Precision, s.Scale)
	schemaRelationship(el, s.SchemaName)
}

func writeFilegroup(parent *etree.Element, f *model.Filegroup) {
	newElement(parent, "SqlFilegroup", bracket(f.Name))
}

func writePartitionFunction(parent *etree.Element, pf *model.PartitionFunction) {
	el := newElement(parent, "SqlPartitionFunction", bracket(pf.Name))
	if pf.RangeLeft {
		property(el, "IsRangeLeft", "True")
	}
	writeTypeSpecifier(el, pf.InputType, nil, nil, nil)
	for _, b := range pf.Boundaries {
		p := el.CreateElement("Property")
		attrBatch(p, "Name", "Boundary")
		v := p.CreateElement("Value")
		v.CreateCData(b)
	}
}

func writePartitionScheme(parent *etree.Element, ps *model.PartitionScheme) {
	el := newElement(parent, "SqlPartitionScheme", bracket(ps.Name))
	relationship(el, "Function", []string{bracket(ps.FunctionName)})
	var refs []string
	for _, fg := range ps.Filegroups {
		refs = append(refs, bracket(fg))
	}
	builtinRelationship(el, "FileGroups", refs)
}

func writeSynonym(parent *etree.Element, s *model.Synonym) {
	el := newElement(parent, "SqlSynonym", bracketQualified(s.SchemaName, s.Name))
	relationship(el, "BaseObject", []string{bracketQualified(s.BaseSchema, s.BaseObject)})
	schemaRelationship(el, s.SchemaName)
}

func writeUser(parent *etree.Element, u *model.User) {
	newElement(parent, "SqlUser", bracket(u.Name))
}

func writeRole(parent *etree.Element, r *model.Role) {
	newElement(parent, "SqlRole", bracket(r.Name))
}

func writeRoleMembership(parent *etree.Element, rm *model.RoleMembership) {
	el := newElement(parent, "SqlRoleMembership", "")
	relationship(el, "Role", []string{bracket(rm.RoleName)})
	relationship(el, "Member", []string{bracket(rm.MemberName)})
}

func writePermission(parent *etree.Element, perm *model.Permission) {
	el := newElement(parent, "SqlPermissionStatement", "")
	property(el, "Action", perm.Action)
	property(el, "Permission", perm.PermissionName)
	relationship(el, "Object", []string{bracketQualified(perm.ObjectSchema, perm.ObjectName)})
	relationship(el, "Grantee", []string{bracket(perm.Principal)})
}

// writeRaw emits the terminal fallback element verbatim, tagged with
// whatever TypeTag the builder recorded for it, carrying its source text
// as a single Script-annotation (spec §3.3 "Raw").
func writeRaw(parent *etree.Element, r *model.Raw) {
	el := newElement(parent, r.TypeTag, bracketQualified(r.SchemaName, r.Name))
	if r.SchemaName != "" {
		schemaRelationship(el, r.SchemaName)
	}
	writeScriptAnnotation(el, r.Definition)
}
