// Package xmlwriter implements component D (spec §4.4): it walks a
// *model.DatabaseModel and renders the DacFx model.xml document DacFx
// itself would have produced, using github.com/beevik/etree for the
// element tree rather than a hand-rolled buffered writer.
package xmlwriter

import "fmt"

// TargetPlatform mirrors the handful of SQL Server versions DacFx
// targets; it drives both the root DspName attribute and the Header's
// CompatibilityMode.
type TargetPlatform int

const (
	Sql130 TargetPlatform = iota
	Sql140
	Sql150
	Sql160
)

// DspName returns the Microsoft.Data.Tools.Schema.Sql provider name DacFx
// stamps onto the root element for this platform.
func (p TargetPlatform) DspName() string {
	return fmt.Sprintf("Microsoft.Data.Tools.Schema.Sql.Sql%dDatabaseSchemaProvider", p.number())
}

// CompatibilityMode is the bare version number the Header's
// CompatibilityMode CustomData entry carries.
func (p TargetPlatform) CompatibilityMode() string {
	return fmt.Sprintf("%d", p.number())
}

func (p TargetPlatform) number() int {
	switch p {
	case Sql130:
		return 130
	case Sql140:
		return 140
	case Sql150:
		return 150
	default:
		return 160
	}
}

// PackageReference is one <Reference Include="..."/> of a .sqlproj, e.g.
// "Microsoft.SqlServer.Dacpacs.Master".
type PackageReference struct {
	Name string
}

// SqlCmdVariable is one SQLCMD variable declared by the project; its
// Header entry always carries a blank Value regardless of any default
// assigned in the .sqlproj.
type SqlCmdVariable struct {
	Name string
}

// DatabaseOptions is the SqlDatabaseOptions element's backing data (spec
// §4.4.10), read from the project's PropertyGroup.
type DatabaseOptions struct {
	Collation                    string // "" omits the property
	AnsiNullDefaultOn             bool
	AnsiNullsOn                   bool
	AnsiWarningsOn                bool
	ArithAbortOn                  bool
	ConcatNullYieldsNullOn        bool
	TornPageProtectionOn          bool
	FullTextEnabled               bool
	PageVerifyMode                string // "NONE" | "TORN_PAGE_DETECTION" | "CHECKSUM" | ""
	DefaultLanguage               string
	DefaultFullTextLanguage       string
	QueryStoreStaleQueryThreshold int
	DefaultFilegroup              string // "" omits the relationship
}

// Options is everything the writer needs beyond the model itself — the
// project-level facts that land on the root element, the Header, and the
// SqlDatabaseOptions element. It is deliberately its own type rather than
// an import of package project, so this package never depends on how a
// .sqlproj gets read.
type Options struct {
	TargetPlatform    TargetPlatform
	CollationLcid     uint32
	AnsiNulls         bool
	QuotedIdentifier  bool
	PackageReferences []PackageReference
	SqlCmdVariables   []SqlCmdVariable
	DatabaseOptions   DatabaseOptions
}

const (
	schemaVersion     = "2.9"
	fileFormatVersion = "1.2"
	xmlNamespace      = "http://schemas.microsoft.com/sqlserver/dac/Serialization/2012/02"
)
