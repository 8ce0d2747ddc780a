package model

import (
	"fmt"
	"strings"

	"github.com/sqldef/tsqlbuild/parser"
)

// Builder implements component B (spec §4.2): it walks ParsedStatements and
// appends Elements to a DatabaseModel, then runs the three finalization
// steps. It is not safe for concurrent use — parser.ParseFiles already
// parallelizes component A, so component B always runs single-threaded
// over the resulting statement stream (spec §5).
type Builder struct {
	Model         *DatabaseModel
	DefaultSchema string

	sourceOrder map[string]int // "schema.table" -> next constraint source_order
}

// NewBuilder starts an empty model with defaultSchema as the schema used
// when a statement's qualified name omits one.
func NewBuilder(defaultSchema string) *Builder {
	if defaultSchema == "" {
		defaultSchema = "dbo"
	}
	return &Builder{
		Model:         NewDatabaseModel(),
		DefaultSchema: defaultSchema,
		sourceOrder:   map[string]int{},
	}
}

func (b *Builder) nextSourceOrder(schema, table string) int {
	key := strings.ToLower(schema + "." + table)
	n := b.sourceOrder[key]
	b.sourceOrder[key] = n + 1
	return n
}

// Add maps one parsed statement to zero or more elements.
func (b *Builder) Add(stmt *parser.ParsedStatement) error {
	switch body := stmt.Body.(type) {
	case parser.ASTNode:
		return b.addASTNode(body)
	case parser.FallbackNode:
		return b.addFallbackNode(body)
	default:
		return fmt.Errorf("model: unknown statement body type %T", stmt.Body)
	}
}

func (b *Builder) addASTNode(n parser.ASTNode) error {
	switch n.Kind {
	case "CreateTable":
		tn := n.Node.(parser.CreateTableNode)
		b.addTable(tn, false, "")
	case "CreateView":
		vn := n.Node.(parser.ViewNode)
		b.Model.Append(&View{
			SchemaName:        vn.Schema,
			Name:              vn.Name,
			RawDefinition:     vn.RawBody,
			IsSchemaBound:     vn.SchemaBinding,
			IsWithCheckOption: vn.WithCheckOption,
		})
	case "CreateProcedure":
		pn := n.Node.(parser.ProcedureNode)
		b.Model.Append(&Procedure{
			SchemaName:         pn.Schema,
			Name:               pn.Name,
			RawDefinition:      pn.RawBody,
			Parameters:         convertParams(pn.Parameters),
			IsNativelyCompiled: pn.NativelyCompiled,
		})
	case "CreateFunction":
		fn := n.Node.(parser.FunctionNode)
		b.Model.Append(&Function{
			SchemaName:    fn.Schema,
			Name:          fn.Name,
			RawDefinition: fn.RawBody,
			Parameters:    convertParams(fn.Parameters),
			Kind_:         convertFunctionKind(fn.Kind),
			ReturnType:    fn.ReturnType,
		})
	default:
		return fmt.Errorf("model: unhandled AST node kind %q", n.Kind)
	}
	return nil
}

func convertParams(ps []parser.ProcedureParam) []Parameter {
	out := make([]Parameter, len(ps))
	for i, p := range ps {
		out[i] = Parameter{Name: p.Name, TypeName: p.TypeName, Default: p.Default, Output: p.Output}
	}
	return out
}

func convertFunctionKind(k parser.FunctionKind) FunctionKind {
	switch k {
	case parser.InlineTableValuedFunction:
		return InlineTableValuedKind
	case parser.MultiStatementTableValuedFunction:
		return MultiStatementTableValuedKind
	default:
		return ScalarFunctionKind
	}
}

func (b *Builder) addFallbackNode(n parser.FallbackNode) error {
	switch n.Recognizer {
	case "TemporalTable":
		tt := n.Node.(parser.TemporalTableNode)
		b.addTable(tt.CreateTableNode, true, "")
		b.overlayTemporal(tt)
	case "TableFallback":
		tn := n.Node.(parser.CreateTableNode)
		b.addTable(tn, false, "")
	case "TableType":
		utn := n.Node.(parser.UserDefinedTypeNode)
		b.addTableType(utn)
	case "ScalarType":
		st := n.Node.(parser.UserDefinedTypeNode)
		b.Model.Append(&ScalarType{
			SchemaName: st.Schema,
			Name:       st.Name,
			BaseType:   st.BaseType,
			IsNullable: st.Nullable,
			Length:     st.Length,
			Precision:  st.Precision,
			Scale:      st.Scale,
		})
	case "Index":
		idx := n.Node.(parser.IndexNode)
		b.Model.Append(&Index{
			Name:            idx.Name,
			TableSchema:     idx.Schema,
			TableName:       idx.Table,
			KeyColumns:      convertKeyColumns(idx.KeyColumns),
			IncludeColumns:  idx.IncludeCols,
			IsUnique:        idx.Unique,
			IsClustered:     idx.Clustered,
			FillFactor:      idx.FillFactor,
			FilterPredicate: idx.FilterExpr,
			DataCompression: idx.DataCompression,
			IsPadded:        idx.PadIndex,
		})
	case "ColumnstoreIndex":
		cs := n.Node.(parser.ColumnstoreIndexNode)
		b.Model.Append(&ColumnstoreIndex{
			Name:        cs.Name,
			TableSchema: cs.Schema,
			TableName:   cs.Table,
			IsClustered: cs.Clustered,
			Columns:     cs.Columns,
		})
	case "FullTextIndex":
		ft := n.Node.(parser.FullTextIndexNode)
		var cols []FullTextColumnRef
		for _, c := range ft.Columns {
			cols = append(cols, FullTextColumnRef{Name: c})
		}
		b.Model.Append(&FullTextIndex{
			TableSchema:  ft.Schema,
			TableName:    ft.Table,
			Columns:      cols,
			KeyIndexName: ft.KeyIndexName,
			CatalogName:  ft.CatalogName,
		})
	case "FullTextCatalog":
		fc := n.Node.(parser.FullTextCatalogNode)
		b.Model.Append(&FullTextCatalog{Name: fc.Name, IsDefault: fc.Default})
	case "Filegroup":
		fg := n.Node.(parser.FilegroupNode)
		b.Model.Append(&Filegroup{Name: fg.Name})
	case "DiscardedScopedConfig":
		// Intentionally dropped (spec §4.1 step 6).
	case "PartitionFunction":
		pf := n.Node.(parser.PartitionFunctionNode)
		b.Model.Append(&PartitionFunction{Name: pf.Name, InputType: pf.InputType, RangeLeft: pf.RangeLeft, Boundaries: pf.Boundaries})
	case "PartitionScheme":
		ps := n.Node.(parser.PartitionSchemeNode)
		b.Model.Append(&PartitionScheme{Name: ps.Name, FunctionName: ps.FunctionName, Filegroups: ps.Filegroups})
	case "Sequence":
		sq := n.Node.(parser.SequenceNode)
		b.Model.Append(&Sequence{
			SchemaName: sq.Schema, Name: sq.Name, DataType: sq.TypeName,
			StartWith: sq.StartWith, Increment: sq.Increment,
			MinValue: sq.MinValue, MaxValue: sq.MaxValue,
			IsCycling: sq.Cycle, CacheSize: sq.CacheSize,
		})
	case "ExtendedProperty":
		ep := n.Node.(parser.ExtendedPropertyNode)
		if ep.Level1Name == "" {
			return nil // spec §4.2: only emitted when @level1name is present
		}
		b.Model.Append(&ExtendedProperty{
			TargetSchema:  ep.Level0Name,
			Level0Type:    ep.Level0Type,
			Level1Type:    ep.Level1Type,
			Level1Name:    ep.Level1Name,
			Level2Type:    ep.Level2Type,
			Level2Name:    ep.Level2Name,
			PropertyName:  ep.Name,
			PropertyValue: ep.Value,
		})
	case "RenameObject":
		rn := n.Node.(parser.RenameNode)
		b.Model.Append(&Raw{Name: rn.NewName, TypeTag: "SqlRenameStatement", Definition: rn.OldName + " -> " + rn.NewName})
	case "Trigger":
		tr := n.Node.(parser.TriggerNode)
		b.Model.Append(&Trigger{
			SchemaName: tr.Schema, Name: tr.Name, RawDefinition: tr.RawBody,
			ParentSchema: tr.TableSchema, ParentName: tr.TableName,
			OnInsert: containsStr(tr.Events, "Insert"), OnUpdate: containsStr(tr.Events, "Update"),
			OnDelete: containsStr(tr.Events, "Delete"), InsteadOf: tr.InsteadOf,
		})
	case "Security":
		sn := n.Node.(parser.SecurityNode)
		for _, perm := range strings.Split(sn.Permission, ",") {
			b.Model.Append(&Permission{
				PermissionName: strings.TrimSpace(perm),
				ObjectSchema:   sn.ObjectSchema, ObjectName: sn.ObjectName,
				Principal: sn.Principal, Action: sn.Kind,
			})
		}
	case "RoleMembership":
		sn := n.Node.(parser.SecurityNode)
		b.Model.Append(&RoleMembership{RoleName: sn.RoleName, MemberName: sn.MemberName})
	case "User":
		sn := n.Node.(parser.SecurityNode)
		b.Model.Append(&User{Name: sn.Principal})
	case "Role":
		sn := n.Node.(parser.SecurityNode)
		b.Model.Append(&Role{Name: sn.RoleName})
	case "SkippedPrincipal":
		// Silently discarded (spec §4.1 step 13, §6.3).
	case "Synonym":
		syn := n.Node.(parser.SynonymNode)
		b.Model.Append(&Synonym{SchemaName: syn.Schema, Name: syn.Name, BaseSchema: syn.BaseSchema, BaseObject: syn.BaseObject})
	case "Schema":
		sc := n.Node.(parser.SchemaNode)
		if !b.Model.HasSchema(sc.Name) {
			b.Model.Append(&Schema{Name: sc.Name, Authorization: sc.Authorization})
		}
	case "AlterView":
		vn := n.Node.(parser.ViewNode)
		b.Model.Append(&Raw{SchemaName: vn.Schema, Name: vn.Name, TypeTag: "SqlView", Definition: vn.RawBody})
	case "SwitchPartition":
		sp := n.Node.(parser.SwitchPartitionNode)
		b.Model.Append(&Raw{
			SchemaName: sp.SourceSchema, Name: sp.SourceTable, TypeTag: "SqlAlterTableStatement",
			Definition: fmt.Sprintf("SWITCH TO %s.%s", sp.TargetSchema, sp.TargetTable),
		})
	case "AlterTableAddConstraint":
		ac := n.Node.(parser.AlterTableAddConstraintNode)
		b.addTableLevelConstraint(ac.Schema, ac.Table, ac.Constraint)
	case "AlterTableAddColumn":
		ac := n.Node.(parser.AlterTableAddColumnNode)
		if idx := b.Model.FindTable(ac.Schema, ac.Table); idx >= 0 {
			t := b.Model.Elements[idx].(*Table)
			t.Columns = append(t.Columns, b.convertColumn(ac.Column))
		}
	case "AlterTableRaw":
		ar := n.Node.(parser.AlterTableRawNode)
		b.Model.Append(&Raw{SchemaName: ar.Schema, Name: ar.Table, TypeTag: "SqlAlterTableStatement"})
	case "GenericRaw":
		rs := n.Node.(parser.RawStatementNode)
		b.Model.Append(&Raw{Name: rs.TargetHint, TypeTag: rawKindTag(rs.Kind)})
	default:
		return fmt.Errorf("model: unhandled fallback recognizer %q", n.Recognizer)
	}
	return nil
}

func rawKindTag(kind string) string {
	switch kind {
	case "RawCreate":
		return "SqlCreateStatement"
	case "RawAlter":
		return "SqlAlterStatement"
	case "RawDrop":
		return "SqlDropStatement"
	case "RawMerge":
		return "SqlMergeStatement"
	case "RawInsert", "RawUpdate", "RawDelete", "RawExec":
		return "SqlDmlStatement"
	default:
		return "SqlStatement"
	}
}

func containsStr(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func convertKeyColumns(ks []parser.IndexKeyColumn) []KeyColumnRef {
	out := make([]KeyColumnRef, len(ks))
	for i, k := range ks {
		out[i] = KeyColumnRef{Name: k.Name, Desc: k.Desc}
	}
	return out
}

// addTable appends the Table element plus one Constraint per table-level
// and inline constraint, in the order spec §4.2 requires: table-level
// constraints in source order, then inline PK/UNIQUE, then inline DEFAULT,
// then inline CHECK.
func (b *Builder) addTable(tn parser.CreateTableNode, isTemporal bool, _ string) {
	table := &Table{SchemaName: tn.Schema, Name: tn.Name}
	for _, col := range tn.Columns {
		table.Columns = append(table.Columns, b.convertColumn(col))
	}
	b.Model.Append(table)

	for _, tc := range tn.Constraints {
		b.addTableLevelConstraint(tn.Schema, tn.Name, tc)
	}
	for _, col := range tn.Columns {
		if col.InlinePrimaryKey || col.InlineUnique {
			kind := UniqueConstraint
			clustered := false
			if col.InlinePrimaryKey {
				kind = PrimaryKeyConstraint
				clustered = true
			}
			b.Model.Append(&Constraint{
				TableSchema: tn.Schema, TableName: tn.Name,
				ConstraintKind: kind, Columns: []KeyColumnRef{{Name: col.Name}},
				IsClustered: clustered, IsInline: true, EmitName: false,
				SourceOrder: b.nextSourceOrder(tn.Schema, tn.Name),
			})
		}
	}
	for _, col := range tn.Columns {
		if col.Default != nil {
			name := col.Default.Name
			if name == "" {
				name = fmt.Sprintf("DF_%s_%s", tn.Name, col.Name)
			}
			b.Model.Append(&Constraint{
				Name: name, TableSchema: tn.Schema, TableName: tn.Name,
				ConstraintKind: DefaultConstraint, Columns: []KeyColumnRef{{Name: col.Name}},
				Definition: col.Default.Expression, IsInline: true, EmitName: col.Default.EmitName,
				SourceOrder: b.nextSourceOrder(tn.Schema, tn.Name),
			})
		}
	}
	for _, col := range tn.Columns {
		if col.Check != nil {
			name := col.Check.Name
			if name == "" {
				name = fmt.Sprintf("CK_%s_%s", tn.Name, col.Name)
			}
			b.Model.Append(&Constraint{
				Name: name, TableSchema: tn.Schema, TableName: tn.Name,
				ConstraintKind: CheckConstraint, Columns: []KeyColumnRef{{Name: col.Name}},
				Definition: col.Check.Expression, IsInline: true, EmitName: col.Check.EmitName,
				SourceOrder: b.nextSourceOrder(tn.Schema, tn.Name),
			})
		}
	}
}

// addTableType appends a UserDefinedType for CREATE TYPE ... AS TABLE; per
// spec §4.2, named default constraints are NOT split into separate
// Constraint elements for table types, only for regular tables.
func (b *Builder) addTableType(utn parser.UserDefinedTypeNode) {
	ut := &UserDefinedType{SchemaName: utn.Schema, Name: utn.Name}
	for _, col := range utn.Columns {
		ut.Columns = append(ut.Columns, b.convertColumn(col))
	}
	for _, tc := range utn.Constraints {
		ut.Constraints = append(ut.Constraints, b.convertTableConstraint(utn.Schema, utn.Name, tc))
	}
	b.Model.Append(ut)
}

func (b *Builder) addTableLevelConstraint(schema, table string, tc parser.TableConstraint) {
	b.Model.Append(b.convertTableConstraint(schema, table, tc))
}

func (b *Builder) convertTableConstraint(schema, table string, tc parser.TableConstraint) *Constraint {
	kind := PrimaryKeyConstraint
	switch tc.Kind {
	case "Unique":
		kind = UniqueConstraint
	case "ForeignKey":
		kind = ForeignKeyConstraint
	case "Check":
		kind = CheckConstraint
	}
	return &Constraint{
		Name: tc.Name, TableSchema: schema, TableName: table,
		ConstraintKind: kind, Columns: convertKeyColumns(tc.Columns),
		Definition: tc.CheckExpr, RefSchema: tc.RefSchema, RefTable: tc.RefTable,
		RefColumns: tc.RefColumns, OnDelete: tc.OnDelete, OnUpdate: tc.OnUpdate,
		IsClustered: tc.Clustered, IsInline: false, EmitName: tc.Name != "",
		SourceOrder: b.nextSourceOrder(schema, table),
	}
}

func (b *Builder) convertColumn(col parser.ColumnDef) *Column {
	c := &Column{
		Name: col.Name, TypeName: col.TypeName, Length: col.Length,
		Precision: col.Precision, Scale: col.Scale, Collation: col.Collation,
		IsIdentity: col.IsIdentity, IdentitySeed: col.IdentitySeed, IdentityIncrement: col.IdentityIncrement,
		IsRowGuidCol: col.IsRowGuidCol, IsSparse: col.IsSparse, IsFileStream: col.IsFileStream,
		ComputedExpr: col.ComputedExpr, IsPersisted: col.IsPersisted,
		GeneratedAlwaysStart: col.GeneratedAlwaysStart, GeneratedAlwaysEnd: col.GeneratedAlwaysEnd,
		IsHidden: col.IsHidden, MaskingFunction: col.MaskingFunction,
	}
	switch {
	case col.NotNull == nil:
		c.Nullability = NullabilityImplicit
	case *col.NotNull:
		c.Nullability = NullabilityExplicitNotNull
	default:
		c.Nullability = NullabilityExplicitNull
	}
	return c
}

// overlayTemporal applies the PERIOD FOR SYSTEM_TIME / SYSTEM_VERSIONING
// metadata onto the just-appended table and its two period columns (spec
// §4.2 "temporal metadata ... overlaid on the column records").
func (b *Builder) overlayTemporal(tt parser.TemporalTableNode) {
	idx := b.Model.FindTable(tt.Schema, tt.Name)
	if idx < 0 {
		return
	}
	t := b.Model.Elements[idx].(*Table)
	t.SystemTimeStartColumn = tt.PeriodStartColumn
	t.SystemTimeEndColumn = tt.PeriodEndColumn
	t.IsSystemVersioned = tt.HistoryTable != "" || tt.HistorySchema != ""
	t.HistorySchema = tt.HistorySchema
	t.HistoryTable = tt.HistoryTable
}

// Finalize runs the three finalization steps from spec §4.2 and returns
// the built model. After this call, CacheElementNames has been run once
// (callers needing re-cached names after annotate.go should call it
// again — see spec §4.3.5).
func (b *Builder) Finalize() *DatabaseModel {
	b.resolveUDTNullability()
	b.closeSchemas()
	b.Model.CacheElementNames()
	return b.Model
}

// resolveUDTNullability implements finalization step 1: a column with
// implicit nullability whose TypeName matches a ScalarType inherits that
// type's nullability.
func (b *Builder) resolveUDTNullability() {
	for _, e := range b.Model.Elements {
		var cols []*Column
		switch t := e.(type) {
		case *Table:
			cols = t.Columns
		case *UserDefinedType:
			cols = t.Columns
		default:
			continue
		}
		for _, col := range cols {
			if col.Nullability != NullabilityImplicit {
				continue
			}
			st := b.Model.FindScalarType(col.TypeName, b.DefaultSchema)
			if st == nil {
				continue
			}
			if st.IsNullable {
				col.Nullability = NullabilityExplicitNull
			} else {
				col.Nullability = NullabilityExplicitNotNull
			}
		}
	}
}

// closeSchemas implements finalization step 2: every schema name collected
// in EncounteredSchemas (plus the built-in "dbo") must have a Schema
// element.
func (b *Builder) closeSchemas() {
	if !b.Model.HasSchema("dbo") {
		b.Model.Append(&Schema{Name: "dbo"})
	}
	b.Model.EncounteredSchemas["dbo"] = true
	for schema := range b.Model.EncounteredSchemas {
		if !b.Model.HasSchema(schema) {
			b.Model.Append(&Schema{Name: schema})
		}
	}
}
