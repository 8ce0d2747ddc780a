package xmlwriter

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// writeHeader writes the Header section: CustomData entries for
// AnsiNulls, QuotedIdentifier, CompatibilityMode, one per package
// reference, then (if any) one combined SqlCmdVariables entry (spec
// §4.4.2).
func writeHeader(root *etree.Element, opts Options) {
	header := root.CreateElement("Header")

	writeCustomData(header, "AnsiNulls", "AnsiNulls", boolStr(opts.AnsiNulls))
	writeCustomData(header, "QuotedIdentifier", "QuotedIdentifier", boolStr(opts.QuotedIdentifier))
	writeCustomData(header, "CompatibilityMode", "CompatibilityMode", opts.TargetPlatform.CompatibilityMode())

	for _, ref := range opts.PackageReferences {
		writePackageReference(header, ref)
	}

	if len(opts.SqlCmdVariables) > 0 {
		writeSqlCmdVariables(header, opts.SqlCmdVariables)
	}
}

func writeCustomData(header *etree.Element, category, name, value string) {
	cd := header.CreateElement("CustomData")
	attrBatch(cd, "Category", category)
	md := cd.CreateElement("Metadata")
	attrBatch(md, "Name", name, "Value", value)
}

// writePackageReference emits the Reference/SqlSchema CustomData block a
// .dacpac package reference carries: the dacpac's FileName/LogicalName
// both derive from the last dotted component of the package name,
// lowercased.
func writePackageReference(header *etree.Element, ref PackageReference) {
	cd := header.CreateElement("CustomData")
	attrBatch(cd, "Category", "Reference", "Type", "SqlSchema")

	dacpacName := dacpacFileName(ref.Name)
	attrBatch(cd.CreateElement("Metadata"), "Name", "FileName", "Value", dacpacName)
	attrBatch(cd.CreateElement("Metadata"), "Name", "LogicalName", "Value", dacpacName)
	attrBatch(cd.CreateElement("Metadata"), "Name", "SuppressMissingDependenciesErrors", "Value", "False")
}

func dacpacFileName(packageName string) string {
	parts := strings.Split(packageName, ".")
	last := parts[len(parts)-1]
	return strings.ToLower(last) + ".dacpac"
}

func writeSqlCmdVariables(header *etree.Element, vars []SqlCmdVariable) {
	cd := header.CreateElement("CustomData")
	attrBatch(cd, "Category", "SqlCmdVariables", "Type", "SqlCmdVariable")
	for _, v := range vars {
		attrBatch(cd.CreateElement("Metadata"), "Name", v.Name, "Value", "")
	}
}

// writeDatabaseOptions writes the single SqlDatabaseOptions element that
// is always the first child of Model (spec §4.4.10).
func writeDatabaseOptions(modelEl *etree.Element, opts DatabaseOptions) {
	el := newElement(modelEl, "SqlDatabaseOptions", "")

	if opts.Collation != "" {
		property(el, "Collation", opts.Collation)
	}
	boolProperty(el, "IsAnsiNullDefaultOn", opts.AnsiNullDefaultOn)
	boolProperty(el, "IsAnsiNullsOn", opts.AnsiNullsOn)
	boolProperty(el, "IsAnsiWarningsOn", opts.AnsiWarningsOn)
	boolProperty(el, "IsArithAbortOn", opts.ArithAbortOn)
	boolProperty(el, "IsConcatNullYieldsNullOn", opts.ConcatNullYieldsNullOn)
	boolProperty(el, "IsTornPageProtectionOn", opts.TornPageProtectionOn)
	boolProperty(el, "IsFullTextEnabled", opts.FullTextEnabled)

	if opts.PageVerifyMode != "" {
		property(el, "PageVerifyMode", pageVerifyModeValue(opts.PageVerifyMode))
	}

	property(el, "DefaultLanguage", opts.DefaultLanguage)
	property(el, "DefaultFullTextLanguage", opts.DefaultFullTextLanguage)
	property(el, "QueryStoreStaleQueryThreshold", fmt.Sprintf("%d", opts.QueryStoreStaleQueryThreshold))

	if opts.DefaultFilegroup != "" {
		builtinRelationship(el, "DefaultFilegroup", []string{bracket(opts.DefaultFilegroup)})
	}
}

func pageVerifyModeValue(mode string) string {
	switch strings.ToUpper(mode) {
	case "NONE":
		return "0"
	case "TORN_PAGE_DETECTION":
		return "1"
	case "CHECKSUM":
		return "3"
	default:
		return "3"
	}
}

func boolStr(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
