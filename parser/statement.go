package parser

import "github.com/sqldef/tsqlbuild/tsqlerr"

// StatementBody is the tagged-variant payload of a ParsedStatement: either
// an ASTNode (the standard parser succeeded) or a FallbackNode (a
// recognizer from dispatch.go matched). Exactly one is ever produced, which
// is why ParsedStatement holds a StatementBody interface value rather than
// two optional fields (spec §3.1: "Never both").
type StatementBody interface {
	isStatementBody()
}

// ASTNode wraps a structured parse result: CREATE TABLE and CREATE VIEW
// from the standard path, and CREATE PROCEDURE / CREATE FUNCTION from
// their recognizers.
type ASTNode struct {
	Kind string // "CreateTable", "CreateView", "CreateProcedure", "CreateFunction"
	Node any
}

func (ASTNode) isStatementBody() {}

// FallbackNode wraps the output of one of the fallback recognizers in
// dispatch.go's fallbackTable.
type FallbackNode struct {
	Recognizer string // recognizer name, for diagnostics
	Node       any
}

func (FallbackNode) isStatementBody() {}

// ParsedStatement is the pipeline-internal unit produced by component A
// (spec §3.1).
type ParsedStatement struct {
	SourceFile        string
	RawText           *RawText
	Body              StatementBody
	ExtractedDefaults []LiftedDefault
	// LeadingComment is the comment block immediately preceding the
	// statement's first real token, if any (spec's supplemented
	// "sp_addextendedproperty"-adjacent documentation convention: several
	// sample projects precede a CREATE with a /* ... */ block describing
	// it, which the extended-property writer can surface as MS_Description
	// when no explicit sp_addextendedproperty call exists).
	LeadingComment string
}

// RawText is a shared, immutable reference to a statement's original text
// (spec §3.1, §5 "Memory discipline"). Using a pointer to a single
// allocation lets every downstream element that needs the verbatim text
// (procedure/trigger/view bodies, computed-column expressions) share the
// same backing bytes instead of copying per statement.
type RawText struct {
	s string
}

// NewRawText wraps a string as a shared immutable reference.
func NewRawText(s string) *RawText { return &RawText{s: s} }

// String returns the underlying text.
func (r *RawText) String() string {
	if r == nil {
		return ""
	}
	return r.s
}

// NewParseError builds the one error class surfaced to the end user,
// computing the absolute line from a batch's start line plus a
// batch-relative line (spec §4.1 "Failure model").
func NewParseError(path string, batchStartLine, batchRelativeLine int, message string) *tsqlerr.ParseError {
	return &tsqlerr.ParseError{
		Path:    path,
		Line:    batchStartLine + batchRelativeLine - 1,
		Message: message,
	}
}
