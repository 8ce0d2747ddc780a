package model

// Nullability distinguishes "NOT NULL", "NULL", and "nothing stated",
// since the last one resolves differently during UDT nullability
// inheritance (spec §3.4, §4.2 finalization step 1).
type Nullability int

const (
	NullabilityImplicit Nullability = iota
	NullabilityExplicitNull
	NullabilityExplicitNotNull
)

// Column is owned exclusively by its Table or UserDefinedType (spec §3.5
// "Ownership") — no other element ever holds a pointer to one.
type Column struct {
	Name string

	TypeName  string
	Length    *int // -1 means MAX
	Precision *int
	Scale     *int
	Collation string

	Nullability Nullability

	IsIdentity        bool
	IdentitySeed      int
	IdentityIncrement int
	IsRowGuidCol      bool
	IsSparse          bool
	IsFileStream      bool

	ComputedExpr *string
	IsPersisted  bool

	GeneratedAlwaysStart bool
	GeneratedAlwaysEnd   bool
	IsHidden             bool

	MaskingFunction string

	// Annotation bookkeeping filled in by annotate.go.
	AttachedAnnotations        []int // disambiguators of constraints covering this column
	InlineConstraintAnnotation *int  // the single "SqlInlineConstraintAnnotation" disambiguator, if any

	// FromSelectStar marks a column synthesized by expandSelectStars to
	// represent one projection of a view's "*"/"alias.*" SELECT item; such
	// a Column is never part of any Table.Columns (spec §4.4.6).
	FromSelectStar bool
}

// IsExplicitlyNotNull reports whether the writer should emit
// IsNullable="False" for this column (spec §4.4.4: never emit
// IsNullable="True", only omit or emit False).
func (c *Column) IsExplicitlyNotNull() bool {
	return c.Nullability == NullabilityExplicitNotNull
}
