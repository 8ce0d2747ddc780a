// Package project reads a .sqlproj-shaped XML manifest into a Config: the
// set of source files to compile plus the database/packaging options that
// feed the model writer (spec §6.1, SPEC_FULL.md §6.1).
package project

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sqldef/tsqlbuild/tsqlerr"
)

// SqlServerVersion is the DSP-derived compilation target.
type SqlServerVersion int

const (
	Sql130 SqlServerVersion = iota
	Sql140
	Sql150
	Sql160
)

var dspVersions = []struct {
	pattern string
	version SqlServerVersion
}{
	{"Sql160", Sql160},
	{"Sql150", Sql150},
	{"Sql140", Sql140},
	{"Sql130", Sql130},
}

func (v SqlServerVersion) DspName() string {
	return fmt.Sprintf("Microsoft.Data.Tools.Schema.Sql.Sql%dDatabaseSchemaProvider", v.number())
}

func (v SqlServerVersion) CompatibilityMode() string {
	return strconv.Itoa(v.number())
}

func (v SqlServerVersion) number() int {
	switch v {
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

// PackageReference is a NuGet-style dacpac package reference (e.g.
// Microsoft.SqlServer.Dacpacs.Master), which reserves a disambiguator slot
// during inline-constraint annotation even though its own contents are
// never parsed.
type PackageReference struct {
	Name    string `validate:"required"`
	Version string
}

// DacpacReference is an ArtifactReference to another compiled dacpac.
type DacpacReference struct {
	Path                       string
	DatabaseVariable           string
	ServerVariable             string
	SuppressMissingDependencies bool
}

// SqlCmdVariable is a project-declared SQLCMD variable, substituted by the
// sqlcmd package during preprocessing.
type SqlCmdVariable struct {
	Name         string `validate:"required"`
	Value        string
	DefaultValue string
}

// DatabaseOptions mirrors the PropertyGroup settings that drive the model
// writer's SqlDatabaseOptions element (spec §4.4.10).
type DatabaseOptions struct {
	Collation                    string
	PageVerify                   string
	DefaultFilegroup             string
	AnsiNullDefaultOn            bool
	AnsiNullsOn                  bool
	AnsiWarningsOn               bool
	ArithAbortOn                 bool
	ConcatNullYieldsNullOn       bool
	FullTextEnabled              bool
	TornPageProtectionOn         bool
	DefaultLanguage              string
	DefaultFullTextLanguage      string
	QueryStoreStaleQueryThreshold int
}

// defaultDatabaseOptions mirrors DacFx's own PropertyGroup defaults, used
// whenever the .sqlproj doesn't override a given setting.
func defaultDatabaseOptions() DatabaseOptions {
	return DatabaseOptions{
		Collation:                    "SQL_Latin1_General_CP1_CI_AS",
		PageVerify:                   "CHECKSUM",
		DefaultFilegroup:             "PRIMARY",
		AnsiNullDefaultOn:            true,
		AnsiNullsOn:                  true,
		AnsiWarningsOn:               true,
		ArithAbortOn:                 true,
		ConcatNullYieldsNullOn:       true,
		FullTextEnabled:              true,
		TornPageProtectionOn:         false,
		QueryStoreStaleQueryThreshold: 367,
	}
}

// Config is the parsed project (spec §6.1's ProjectConfig).
type Config struct {
	Name             string `validate:"required"`
	TargetPlatform   SqlServerVersion
	DefaultSchema    string `validate:"required"`
	CollationLcid    uint32
	SqlFiles         []string `validate:"required,min=1,dive,required"`
	DacpacReferences []DacpacReference
	PackageReferences []PackageReference `validate:"dive"`
	SqlCmdVariables  []SqlCmdVariable    `validate:"dive"`
	ProjectDir       string
	PreDeployScript  string
	PostDeployScript string
	AnsiNulls        bool
	QuotedIdentifier bool
	DatabaseOptions  DatabaseOptions
	DacVersion       string `validate:"required"`
	DacDescription   string
}

var validate = validator.New()

// sqlprojDoc is the minimal .sqlproj XML shape this reader understands:
// a flat soup of PropertyGroup/ItemGroup children, walked rather than
// strictly modeled, since MSBuild project files freely interleave groups.
type sqlprojDoc struct {
	XMLName  xml.Name        `xml:"Project"`
	Elements []sqlprojElement `xml:",any"`
}

// sqlprojElement captures any child element generically: its tag name,
// attributes, text content, and (for ItemGroup) nested children — enough
// to walk the whole tree the way the original reader's descendants() scan
// does, without hand-modeling every MSBuild item type.
type sqlprojElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr       `xml:",any,attr"`
	Content  string           `xml:",chardata"`
	Children []sqlprojElement `xml:",any"`
}

func (el *sqlprojElement) attr(name string) (string, bool) {
	for _, a := range el.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (el *sqlprojElement) childText(tag string) (string, bool) {
	for _, c := range el.Children {
		if c.XMLName.Local == tag {
			return strings.TrimSpace(c.Content), true
		}
	}
	return "", false
}

// walk calls fn for el and every descendant, matching the original reader's
// root.descendants() traversal.
func walk(el *sqlprojElement, fn func(*sqlprojElement)) {
	fn(el)
	for i := range el.Children {
		walk(&el.Children[i], fn)
	}
}

func findPropertyValue(root *sqlprojElement, name string) (string, bool) {
	var found string
	var ok bool
	walk(root, func(el *sqlprojElement) {
		if ok || el.XMLName.Local != name {
			return
		}
		found = strings.TrimSpace(el.Content)
		ok = true
	})
	return found, ok
}

func parseBoolProperty(root *sqlprojElement, name string, def bool) bool {
	v, ok := findPropertyValue(root, name)
	if !ok {
		return def
	}
	return strings.EqualFold(v, "true")
}

func extractVersionFromDSP(dsp string) SqlServerVersion {
	for _, v := range dspVersions {
		if strings.Contains(dsp, v.pattern) {
			return v.version
		}
	}
	return Sql160
}

// ReadConfig reads and validates a .sqlproj file (spec §6.1).
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &tsqlerr.ProjectError{Path: path, Kind: "read", Err: err}
	}

	var doc sqlprojDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &tsqlerr.ProjectError{Path: path, Kind: "parse", Err: err}
	}

	root := &sqlprojElement{Children: doc.Elements}
	projectDir := filepath.Dir(path)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	targetPlatform := Sql160
	if dsp, ok := findPropertyValue(root, "DSP"); ok {
		targetPlatform = extractVersionFromDSP(dsp)
	}

	defaultSchema := "dbo"
	if v, ok := findPropertyValue(root, "DefaultSchema"); ok {
		defaultSchema = v
	}

	dacVersion := "1.0.0.0"
	if v, ok := findPropertyValue(root, "DacVersion"); ok {
		dacVersion = v
	}
	dacDescription, _ := findPropertyValue(root, "DacDescription")

	dbOpts := parseDatabaseOptions(root)

	sqlFiles, err := findSQLFiles(root, projectDir)
	if err != nil {
		return nil, &tsqlerr.ProjectError{Path: path, Kind: "format", Err: err}
	}

	cfg := &Config{
		Name:              name,
		TargetPlatform:    targetPlatform,
		DefaultSchema:     defaultSchema,
		CollationLcid:     1033,
		SqlFiles:          sqlFiles,
		DacpacReferences:  findDacpacReferences(root, projectDir),
		PackageReferences: findPackageReferences(root),
		SqlCmdVariables:   findSqlCmdVariables(root),
		ProjectDir:        projectDir,
		AnsiNulls:         parseBoolProperty(root, "AnsiNulls", true),
		QuotedIdentifier:  parseBoolProperty(root, "QuotedIdentifier", true),
		DatabaseOptions:   dbOpts,
		DacVersion:        dacVersion,
		DacDescription:    dacDescription,
	}
	cfg.PreDeployScript, cfg.PostDeployScript = findDeploymentScripts(root, projectDir)

	if err := validate.Struct(cfg); err != nil {
		return nil, &tsqlerr.ProjectError{Path: path, Kind: "format", Err: err}
	}

	return cfg, nil
}

func parseDatabaseOptions(root *sqlprojElement) DatabaseOptions {
	opts := defaultDatabaseOptions()

	if v, ok := findPropertyValue(root, "DefaultCollation"); ok {
		opts.Collation = v
	}
	if v, ok := findPropertyValue(root, "PageVerify"); ok {
		opts.PageVerify = v
	}
	if v, ok := findPropertyValue(root, "DefaultFilegroup"); ok {
		opts.DefaultFilegroup = v
	}

	opts.AnsiNullDefaultOn = parseBoolProperty(root, "AnsiNullDefaultOn", true)
	opts.AnsiNullsOn = parseBoolProperty(root, "AnsiNullsOn", true)
	opts.AnsiWarningsOn = parseBoolProperty(root, "AnsiWarningsOn", true)
	opts.ArithAbortOn = parseBoolProperty(root, "ArithAbortOn", true)
	opts.ConcatNullYieldsNullOn = parseBoolProperty(root, "ConcatNullYieldsNullOn", true)
	opts.FullTextEnabled = parseBoolProperty(root, "FullTextEnabled", true)

	return opts
}

func findDacpacReferences(root *sqlprojElement, projectDir string) []DacpacReference {
	var refs []DacpacReference
	walk(root, func(el *sqlprojElement) {
		if el.XMLName.Local != "ArtifactReference" {
			return
		}
		include, ok := el.attr("Include")
		if !ok {
			return
		}
		suppress, _ := el.childText("SuppressMissingDependenciesErrors")
		dbVar, _ := el.childText("DatabaseVariableLiteralValue")
		serverVar, _ := el.childText("ServerVariableLiteralValue")
		refs = append(refs, DacpacReference{
			Path:                        filepath.Join(projectDir, filepath.FromSlash(strings.ReplaceAll(include, `\`, "/"))),
			DatabaseVariable:            dbVar,
			ServerVariable:              serverVar,
			SuppressMissingDependencies: strings.EqualFold(suppress, "true"),
		})
	})
	return refs
}

func findPackageReferences(root *sqlprojElement) []PackageReference {
	var refs []PackageReference
	walk(root, func(el *sqlprojElement) {
		if el.XMLName.Local != "PackageReference" {
			return
		}
		include, ok := el.attr("Include")
		if !ok {
			return
		}
		version, ok := el.attr("Version")
		if !ok {
			version, ok = el.childText("Version")
		}
		if !ok {
			version = "0.0.0"
		}
		refs = append(refs, PackageReference{Name: include, Version: version})
	})
	return refs
}

func findSqlCmdVariables(root *sqlprojElement) []SqlCmdVariable {
	var vars []SqlCmdVariable
	walk(root, func(el *sqlprojElement) {
		if el.XMLName.Local != "SqlCmdVariable" {
			return
		}
		name, ok := el.attr("Include")
		if !ok {
			return
		}
		value, _ := el.childText("Value")
		def, _ := el.childText("DefaultValue")
		vars = append(vars, SqlCmdVariable{Name: name, Value: value, DefaultValue: def})
	})
	return vars
}

func findDeploymentScripts(root *sqlprojElement, projectDir string) (pre, post string) {
	walk(root, func(el *sqlprojElement) {
		switch el.XMLName.Local {
		case "PreDeploy":
			if include, ok := el.attr("Include"); ok && pre == "" {
				candidate := filepath.Join(projectDir, filepath.FromSlash(strings.ReplaceAll(include, `\`, "/")))
				if fileExists(candidate) {
					pre = candidate
				}
			}
		case "PostDeploy":
			if include, ok := el.attr("Include"); ok && post == "" {
				candidate := filepath.Join(projectDir, filepath.FromSlash(strings.ReplaceAll(include, `\`, "/")))
				if fileExists(candidate) {
					post = candidate
				}
			}
		}
	})
	return pre, post
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
