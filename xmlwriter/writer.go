package xmlwriter

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/sqldef/tsqlbuild/model"
)

// Write renders m as a complete model.xml document: the XML declaration,
// the DataSchemaModel root (spec §4.4.1), the Header (spec §4.4.2), then
// one child of Model per element of m.Elements, in m's own order — the
// ordering decided by component C (annotate.go) is never re-sorted here.
func Write(m *model.DatabaseModel, opts Options) (string, error) {
	registry := model.BuildColumnRegistry(m)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("DataSchemaModel")
	attrBatch(root,
		"FileFormatVersion", fileFormatVersion,
		"SchemaVersion", schemaVersion,
		"DspName", opts.TargetPlatform.DspName(),
		"CollationLcid", fmt.Sprintf("%d", opts.CollationLcid),
		"CollationCaseSensitive", "False",
		"xmlns", xmlNamespace,
	)

	writeHeader(root, opts)

	modelEl := root.CreateElement("Model")
	writeDatabaseOptions(modelEl, opts.DatabaseOptions)
	for _, e := range m.Elements {
		writeElement(modelEl, e, registry)
	}

	doc.Indent(2)
	return doc.WriteToString()
}

// writeElement dispatches one model.Element to its writer, matching the
// case order of the reference generator's own match statement plus the
// element kinds this port adds (Trigger, Filegroup, PartitionFunction/
// Scheme, Synonym, principals) that the source model enumerates in
// model/elements.go.
func writeElement(parent *etree.Element, e model.Element, registry *model.ColumnRegistry) {
	switch v := e.(type) {
	case *model.Schema:
		writeSchema(parent, v)
	case *model.Table:
		writeTable(parent, v)
	case *model.View:
		writeView(parent, v, registry)
	case *model.Procedure:
		writeProcedure(parent, v)
	case *model.Function:
		writeFunction(parent, v)
	case *model.Index:
		writeIndex(parent, v)
	case *model.ColumnstoreIndex:
		writeColumnstoreIndex(parent, v)
	case *model.FullTextIndex:
		writeFullTextIndex(parent, v)
	case *model.FullTextCatalog:
		writeFullTextCatalog(parent, v)
	case *model.Constraint:
		writeConstraint(parent, v)
	case *model.Sequence:
		writeSequence(parent, v)
	case *model.UserDefinedType:
		writeUserDefinedType(parent, v)
	case *model.ScalarType:
		writeScalarType(parent, v)
	case *model.ExtendedProperty:
		writeExtendedProperty(parent, v)
	case *model.Trigger:
		writeTrigger(parent, v)
	case *model.Filegroup:
		writeFilegroup(parent, v)
	case *model.PartitionFunction:
		writePartitionFunction(parent, v)
	case *model.PartitionScheme:
		writePartitionScheme(parent, v)
	case *model.Synonym:
		writeSynonym(parent, v)
	case *model.User:
		writeUser(parent, v)
	case *model.Role:
		writeRole(parent, v)
	case *model.RoleMembership:
		writeRoleMembership(parent, v)
	case *model.Permission:
		writePermission(parent, v)
	case *model.Raw:
		writeRaw(parent, v)
	}
}

func writeSchema(parent *etree.Element, s *model.Schema) {
	el := newElement(parent, "SqlSchema", bracket(s.Name))
	authorizerRelationship(el, s.Authorization)
}
