// Package model implements components B and C of the pipeline: mapping
// parsed statements into a flat, deterministically ordered semantic model
// (builder.go) and the disambiguator/annotation pass that links inline
// constraints to their owning tables and columns (annotate.go).
//
// Each schema-object kind in spec §3.3 is its own Go struct implementing
// Element, following the teacher's per-variant-struct convention in
// schema/ast.go rather than one tagged union struct.
package model

import "strings"

// Element is any entry in a DatabaseModel's flat element list. Kind is the
// XML type tag the writer emits ("SqlTable", "SqlView", ...). SchemaOf
// returns the schema name the element belongs to, or "" if it has none
// (schema closure only tracks non-empty results).
type Element interface {
	Kind() string
	SchemaOf() string
}

// namer supplies the names used for sorting and for the XML Name
// attribute. Every element type implements it; anonymous elements (inline
// constraints with EmitName=false, full-text indexes, role memberships,
// permissions) return "" from XMLNameAttr.
type namer interface {
	FullName() string
	XMLNameAttr() string
}

func bracketName(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString("[")
		sb.WriteString(p)
		sb.WriteString("]")
	}
	return sb.String()
}

// Schema is a schema element (§3.3).
type Schema struct {
	Name          string
	Authorization string
}

func (e *Schema) Kind() string        { return "SqlSchema" }
func (e *Schema) SchemaOf() string    { return "" }
func (e *Schema) FullName() string    { return bracketName(e.Name) }
func (e *Schema) XMLNameAttr() string { return bracketName(e.Name) }

// Table is a CREATE TABLE element, including the temporal overlay fields
// (spec §4.1 step-10 fallback, §4.2 finalization).
type Table struct {
	SchemaName string
	Name       string
	Columns    []*Column
	IsNode     bool
	IsEdge     bool

	SystemTimeStartColumn string
	SystemTimeEndColumn   string
	IsSystemVersioned     bool
	HistorySchema         string
	HistoryTable          string

	// Annotation bookkeeping filled in by annotate.go.
	TableAnnotationDisambiguator     *int
	InlineConstraintDisambiguators   []int // ascending, emitted as SqlInlineConstraintAnnotation
	AttachedAnnotationsBeforeMedian  []int // strictly above median, descending
	AttachedAnnotationsAfterMedian   []int // <= median, ascending
}

func (e *Table) Kind() string        { return "SqlTable" }
func (e *Table) SchemaOf() string    { return e.SchemaName }
func (e *Table) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *Table) XMLNameAttr() string { return e.FullName() }

// View is a CREATE VIEW element; the raw definition is kept verbatim and
// re-scanned by the writer/registry for query dependencies.
type View struct {
	SchemaName        string
	Name              string
	RawDefinition     string
	IsSchemaBound     bool
	IsWithCheckOption bool
	IsMetadataReported bool
}

func (e *View) Kind() string        { return "SqlView" }
func (e *View) SchemaOf() string    { return e.SchemaName }
func (e *View) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *View) XMLNameAttr() string { return e.FullName() }

// Procedure is CREATE/ALTER PROCEDURE.
type Procedure struct {
	SchemaName         string
	Name               string
	RawDefinition      string
	Parameters         []Parameter
	IsNativelyCompiled bool
}

type Parameter struct {
	Name     string
	TypeName string
	Default  string
	Output   bool
}

func (e *Procedure) Kind() string        { return "SqlProcedure" }
func (e *Procedure) SchemaOf() string    { return e.SchemaName }
func (e *Procedure) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *Procedure) XMLNameAttr() string { return e.FullName() }

// FunctionKind mirrors parser.FunctionKind but lives in model so the
// builder doesn't force every downstream package to import parser.
type FunctionKind int

const (
	ScalarFunctionKind FunctionKind = iota
	InlineTableValuedKind
	MultiStatementTableValuedKind
)

// Function is CREATE/ALTER FUNCTION.
type Function struct {
	SchemaName    string
	Name          string
	RawDefinition string
	Parameters    []Parameter
	Kind_         FunctionKind
	ReturnType    string
}

func (e *Function) Kind() string        { return "SqlScalarFunction" }
func (e *Function) SchemaOf() string    { return e.SchemaName }
func (e *Function) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *Function) XMLNameAttr() string { return e.FullName() }

// Index is a regular (non-columnstore) CREATE INDEX.
type Index struct {
	Name            string
	TableSchema     string
	TableName       string
	KeyColumns      []KeyColumnRef
	IncludeColumns  []string
	IsUnique        bool
	IsClustered     bool
	FillFactor      *int
	FilterPredicate string
	DataCompression string
	IsPadded        bool
}

type KeyColumnRef struct {
	Name string
	Desc bool
}

func (e *Index) Kind() string        { return "SqlIndex" }
func (e *Index) SchemaOf() string    { return e.TableSchema }
func (e *Index) FullName() string    { return bracketName(e.TableSchema, e.TableName, e.Name) }
func (e *Index) XMLNameAttr() string { return e.FullName() }

// ColumnstoreIndex is CREATE [CLUSTERED|NONCLUSTERED] COLUMNSTORE INDEX.
type ColumnstoreIndex struct {
	Name            string
	TableSchema     string
	TableName       string
	IsClustered     bool
	Columns         []string
	DataCompression string
	FilterPredicate string
}

func (e *ColumnstoreIndex) Kind() string        { return "SqlColumnStoreIndex" }
func (e *ColumnstoreIndex) SchemaOf() string    { return e.TableSchema }
func (e *ColumnstoreIndex) FullName() string    { return bracketName(e.TableSchema, e.TableName, e.Name) }
func (e *ColumnstoreIndex) XMLNameAttr() string { return e.FullName() }

// FullTextIndex and FullTextCatalog (spec §4.1 step 5).
type FullTextColumnRef struct {
	Name       string
	LanguageID *int
}

type FullTextIndex struct {
	TableSchema    string
	TableName      string
	Columns        []FullTextColumnRef
	KeyIndexName   string
	CatalogName    string
	ChangeTracking string
	Disambiguator  int
}

func (e *FullTextIndex) Kind() string        { return "SqlFullTextIndex" }
func (e *FullTextIndex) SchemaOf() string    { return e.TableSchema }
func (e *FullTextIndex) FullName() string    { return bracketName(e.TableSchema, e.TableName) }
func (e *FullTextIndex) XMLNameAttr() string { return "" }

type FullTextCatalog struct {
	Name      string
	IsDefault bool
}

func (e *FullTextCatalog) Kind() string        { return "SqlFullTextCatalog" }
func (e *FullTextCatalog) SchemaOf() string    { return "" }
func (e *FullTextCatalog) FullName() string    { return bracketName(e.Name) }
func (e *FullTextCatalog) XMLNameAttr() string { return bracketName(e.Name) }

// ConstraintKind enumerates the five constraint shapes.
type ConstraintKind int

const (
	PrimaryKeyConstraint ConstraintKind = iota
	ForeignKeyConstraint
	UniqueConstraint
	CheckConstraint
	DefaultConstraint
)

// Constraint covers both table-level and inline (column-level) constraints
// (spec §3.3/§4.2); the annotation fields are filled in by annotate.go.
type Constraint struct {
	Name          string
	TableSchema   string
	TableName     string
	ConstraintKind ConstraintKind
	Columns       []KeyColumnRef
	Definition    string // CHECK/DEFAULT expression text
	RefSchema     string
	RefTable      string
	RefColumns    []string
	OnDelete      string
	OnUpdate      string
	IsClustered   bool

	IsInline    bool
	EmitName    bool
	SourceOrder int

	Disambiguator  int
	UsesAnnotation bool
}

func (e *Constraint) SchemaOf() string { return e.TableSchema }

// Kind returns the XML type tag for this constraint's kind.
func (e *Constraint) Kind() string {
	switch e.ConstraintKind {
	case PrimaryKeyConstraint:
		return "SqlPrimaryKeyConstraint"
	case ForeignKeyConstraint:
		return "SqlForeignKeyConstraint"
	case UniqueConstraint:
		return "SqlUniqueConstraint"
	case CheckConstraint:
		return "SqlCheckConstraint"
	default:
		return "SqlDefaultConstraint"
	}
}

func (e *Constraint) FullName() string {
	return bracketName(e.TableSchema, e.TableName, e.Name)
}

func (e *Constraint) XMLNameAttr() string {
	if !e.EmitName {
		return ""
	}
	return e.FullName()
}

// Sequence is CREATE SEQUENCE.
type Sequence struct {
	SchemaName string
	Name       string
	DataType   string
	StartWith  *int
	Increment  *int
	MinValue   *int
	MaxValue   *int
	IsCycling  bool
	NoMin      bool
	NoMax      bool
	CacheSize  *int
}

func (e *Sequence) Kind() string        { return "SqlSequence" }
func (e *Sequence) SchemaOf() string    { return e.SchemaName }
func (e *Sequence) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *Sequence) XMLNameAttr() string { return e.FullName() }

// UserDefinedType is a CREATE TYPE ... AS TABLE (table type).
type UserDefinedType struct {
	SchemaName  string
	Name        string
	Columns     []*Column
	Constraints []*Constraint
}

func (e *UserDefinedType) Kind() string        { return "SqlTableType" }
func (e *UserDefinedType) SchemaOf() string    { return e.SchemaName }
func (e *UserDefinedType) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *UserDefinedType) XMLNameAttr() string { return e.FullName() }

// ScalarType is CREATE TYPE ... FROM (scalar alias type), the lookup table
// consulted during UDT nullability resolution (spec §4.2 finalization 1).
type ScalarType struct {
	SchemaName string
	Name       string
	BaseType   string
	IsNullable bool
	Length     *int
	Precision  *int
	Scale      *int
}

func (e *ScalarType) Kind() string        { return "SqlUserDefinedDataType" }
func (e *ScalarType) SchemaOf() string    { return e.SchemaName }
func (e *ScalarType) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *ScalarType) XMLNameAttr() string { return e.FullName() }

// ExtendedProperty is EXEC sp_addextendedproperty (spec §4.1 step 11); only
// emitted by the builder when Level1Name is non-empty.
type ExtendedProperty struct {
	TargetSchema string
	Level0Type   string
	Level1Type   string
	Level1Name   string
	Level2Type   string
	Level2Name   string
	PropertyName string
	PropertyValue string
}

func (e *ExtendedProperty) Kind() string     { return "SqlExtendedProperty" }
func (e *ExtendedProperty) SchemaOf() string { return e.TargetSchema }
func (e *ExtendedProperty) FullName() string {
	parts := []string{e.TargetSchema, e.Level1Name}
	if e.Level2Name != "" {
		parts = append(parts, e.Level2Name)
	}
	parts = append(parts, e.PropertyName)
	return bracketName(parts...)
}
func (e *ExtendedProperty) XMLNameAttr() string { return e.FullName() }

// Trigger is CREATE/ALTER TRIGGER.
type Trigger struct {
	SchemaName    string
	Name          string
	RawDefinition string
	ParentSchema  string
	ParentName    string
	OnInsert      bool
	OnUpdate      bool
	OnDelete      bool
	InsteadOf     bool
}

func (e *Trigger) Kind() string        { return "SqlDmlTrigger" }
func (e *Trigger) SchemaOf() string    { return e.SchemaName }
func (e *Trigger) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *Trigger) XMLNameAttr() string { return e.FullName() }

// Filegroup, PartitionFunction, PartitionScheme, Synonym, User, Role,
// RoleMembership, Permission round out §3.3's simpler variants.
type Filegroup struct{ Name string }

func (e *Filegroup) Kind() string        { return "SqlFilegroup" }
func (e *Filegroup) SchemaOf() string    { return "" }
func (e *Filegroup) FullName() string    { return bracketName(e.Name) }
func (e *Filegroup) XMLNameAttr() string { return bracketName(e.Name) }

type PartitionFunction struct {
	Name       string
	InputType  string
	RangeLeft  bool
	Boundaries []string
}

func (e *PartitionFunction) Kind() string        { return "SqlPartitionFunction" }
func (e *PartitionFunction) SchemaOf() string    { return "" }
func (e *PartitionFunction) FullName() string    { return bracketName(e.Name) }
func (e *PartitionFunction) XMLNameAttr() string { return bracketName(e.Name) }

type PartitionScheme struct {
	Name         string
	FunctionName string
	Filegroups   []string
}

func (e *PartitionScheme) Kind() string        { return "SqlPartitionScheme" }
func (e *PartitionScheme) SchemaOf() string    { return "" }
func (e *PartitionScheme) FullName() string    { return bracketName(e.Name) }
func (e *PartitionScheme) XMLNameAttr() string { return bracketName(e.Name) }

type Synonym struct {
	SchemaName string
	Name       string
	BaseSchema string
	BaseObject string
}

func (e *Synonym) Kind() string        { return "SqlSynonym" }
func (e *Synonym) SchemaOf() string    { return e.SchemaName }
func (e *Synonym) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *Synonym) XMLNameAttr() string { return e.FullName() }

type User struct{ Name string }

func (e *User) Kind() string        { return "SqlUser" }
func (e *User) SchemaOf() string    { return "" }
func (e *User) FullName() string    { return bracketName(e.Name) }
func (e *User) XMLNameAttr() string { return bracketName(e.Name) }

type Role struct{ Name string }

func (e *Role) Kind() string        { return "SqlRole" }
func (e *Role) SchemaOf() string    { return "" }
func (e *Role) FullName() string    { return bracketName(e.Name) }
func (e *Role) XMLNameAttr() string { return bracketName(e.Name) }

type RoleMembership struct {
	RoleName   string
	MemberName string
}

func (e *RoleMembership) Kind() string        { return "SqlRoleMembership" }
func (e *RoleMembership) SchemaOf() string    { return "" }
func (e *RoleMembership) FullName() string    { return bracketName(e.RoleName, e.MemberName) }
func (e *RoleMembership) XMLNameAttr() string { return "" }

type Permission struct {
	PermissionName string
	ObjectSchema   string
	ObjectName     string
	Principal      string
	Action         string // "Grant", "Deny", "Revoke"
}

func (e *Permission) Kind() string     { return "SqlPermissionStatement" }
func (e *Permission) SchemaOf() string { return e.ObjectSchema }
func (e *Permission) FullName() string {
	return bracketName(e.ObjectSchema, e.ObjectName, e.Principal)
}
func (e *Permission) XMLNameAttr() string { return "" }

// Raw is the terminal fallback element: the writer emits it verbatim under
// the tag name TypeTag records (spec §3.3 "Raw").
type Raw struct {
	SchemaName string
	Name       string
	TypeTag    string
	Definition string
}

func (e *Raw) Kind() string        { return e.TypeTag }
func (e *Raw) SchemaOf() string    { return e.SchemaName }
func (e *Raw) FullName() string    { return bracketName(e.SchemaName, e.Name) }
func (e *Raw) XMLNameAttr() string { return e.FullName() }
