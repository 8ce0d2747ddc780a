// Command tsqlbuild compiles a SQL Server database project into a
// dacpac-style package: it reads a .sqlproj, runs every referenced .sql
// file through SQLCMD preprocessing and the parser, builds and normalizes
// the semantic model, renders model.xml, and zips the result (spec §1,
// SPEC_FULL.md §1-§6).
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/sqldef/tsqlbuild/model"
	"github.com/sqldef/tsqlbuild/parser"
	"github.com/sqldef/tsqlbuild/pkgassemble"
	"github.com/sqldef/tsqlbuild/project"
	"github.com/sqldef/tsqlbuild/sqlcmd"
	"github.com/sqldef/tsqlbuild/tsqlerr"
	"github.com/sqldef/tsqlbuild/tsqllog"
	"github.com/sqldef/tsqlbuild/xmlwriter"
)

var version string

type options struct {
	Output    string `short:"o" long:"output" description:"Output dacpac path" value-name:"output_file" default:"bin/output.dacpac"`
	DebugDump bool   `long:"debug-dump" description:"Pretty-print the built model before writing XML"`
	Help      bool   `long:"help" description:"Show this help"`
	Version   bool   `long:"version" description:"Show this version"`
}

// parseOptions parses flags and returns the project file positional
// argument alongside the parsed options, following the teacher's
// parseOptions/main split (cmd/mssqldef/mssqldef.go).
func parseOptions(args []string) (string, *options) {
	var opts options

	flagParser := flags.NewParser(&opts, flags.None)
	flagParser.Usage = "[options] project.sqlproj"
	args, err := flagParser.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.Help {
		flagParser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if len(args) == 0 {
		fmt.Print("No project file is specified!\n\n")
		flagParser.WriteHelp(os.Stdout)
		os.Exit(1)
	} else if len(args) > 1 {
		fmt.Printf("Multiple project files are given: %v\n\n", args)
		flagParser.WriteHelp(os.Stdout)
		os.Exit(1)
	}

	return args[0], &opts
}

func main() {
	tsqllog.Init()
	projectFile, opts := parseOptions(os.Args[1:])

	cfg, err := project.ReadConfig(projectFile)
	if err != nil {
		fail("project", err)
	}

	m, err := compile(cfg)
	if err != nil {
		reportFailure(err)
		os.Exit(1)
	}

	if opts.DebugDump {
		pp.Println(m)
	}

	xmlOpts := xmlOptionsFromConfig(*cfg)
	xmlStr, err := xmlwriter.Write(m, xmlOpts)
	if err != nil {
		fail("xml", &tsqlerr.XMLGenerationError{Err: err})
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		fail("package", &tsqlerr.ZipError{Err: err})
	}
	out, err := os.Create(opts.Output)
	if err != nil {
		fail("package", &tsqlerr.ZipError{Err: err})
	}
	defer out.Close()

	if err := pkgassemble.Write(out, []byte(xmlStr), *cfg); err != nil {
		fail("package", err)
	}

	slog.Default().Info("compiled project", "project", cfg.Name, "output", opts.Output, "elements", len(m.Elements))
}

// compile runs components A through C: preprocess and parse every source
// file, feed the resulting statements to a Builder, then finalize and
// normalize the model (spec §2).
func compile(cfg *project.Config) (*model.DatabaseModel, error) {
	vars := sqlCmdVariableValues(cfg)
	builder := model.NewBuilder(cfg.DefaultSchema)

	for _, path := range cfg.SqlFiles {
		stage := tsqllog.Stage("preprocess")
		text, err := sqlcmd.Preprocess(path, vars)
		if err != nil {
			return nil, err
		}
		stage.Debug("preprocessed file", "file", path)

		result, err := parser.ParseText(path, text)
		if err != nil {
			return nil, err
		}
		tsqllog.Stage("parse").Debug("parsed file", "file", path, "statements", len(result.Statements))

		for _, stmt := range result.Statements {
			if err := builder.Add(stmt); err != nil {
				return nil, &tsqlerr.InternalError{Stage: "build", Err: err}
			}
		}
	}

	builder.Model.DspName = cfg.TargetPlatform.DspName()
	builder.Model.CollationLcid = cfg.CollationLcid
	builder.Model.PackageReferenceCount = len(cfg.PackageReferences)

	m := builder.Finalize()
	tsqllog.Stage("build").Debug("built model", "elements", len(m.Elements))

	model.Normalize(m)
	tsqllog.Stage("annotate").Debug("normalized model", "elements", len(m.Elements))

	return m, nil
}

// sqlCmdVariableValues seeds the preprocessor's variable map from the
// project's declared SqlCmdVariables: an explicit Value wins over
// DefaultValue, matching how a .sqlproj's SqlCmdVariable element is
// actually read (spec §6.1/§6.2).
func sqlCmdVariableValues(cfg *project.Config) map[string]string {
	vars := make(map[string]string, len(cfg.SqlCmdVariables))
	for _, v := range cfg.SqlCmdVariables {
		if v.Value != "" {
			vars[v.Name] = v.Value
		} else {
			vars[v.Name] = v.DefaultValue
		}
	}
	return vars
}

// xmlOptionsFromConfig adapts a project.Config into the xmlwriter.Options
// the writer actually needs; the two packages deliberately don't share
// types (xmlwriter never imports project), so this is the one place that
// bridges them.
func xmlOptionsFromConfig(cfg project.Config) xmlwriter.Options {
	refs := make([]xmlwriter.PackageReference, len(cfg.PackageReferences))
	for i, r := range cfg.PackageReferences {
		refs[i] = xmlwriter.PackageReference{Name: r.Name}
	}

	vars := make([]xmlwriter.SqlCmdVariable, len(cfg.SqlCmdVariables))
	for i, v := range cfg.SqlCmdVariables {
		vars[i] = xmlwriter.SqlCmdVariable{Name: v.Name}
	}

	return xmlwriter.Options{
		TargetPlatform:    xmlwriter.TargetPlatform(cfg.TargetPlatform),
		CollationLcid:     cfg.CollationLcid,
		AnsiNulls:         cfg.AnsiNulls,
		QuotedIdentifier:  cfg.QuotedIdentifier,
		PackageReferences: refs,
		SqlCmdVariables:   vars,
		DatabaseOptions: xmlwriter.DatabaseOptions{
			Collation:                     cfg.DatabaseOptions.Collation,
			AnsiNullDefaultOn:             cfg.DatabaseOptions.AnsiNullDefaultOn,
			AnsiNullsOn:                   cfg.DatabaseOptions.AnsiNullsOn,
			AnsiWarningsOn:                cfg.DatabaseOptions.AnsiWarningsOn,
			ArithAbortOn:                  cfg.DatabaseOptions.ArithAbortOn,
			ConcatNullYieldsNullOn:        cfg.DatabaseOptions.ConcatNullYieldsNullOn,
			TornPageProtectionOn:          cfg.DatabaseOptions.TornPageProtectionOn,
			FullTextEnabled:               cfg.DatabaseOptions.FullTextEnabled,
			PageVerifyMode:                cfg.DatabaseOptions.PageVerify,
			DefaultLanguage:               cfg.DatabaseOptions.DefaultLanguage,
			DefaultFullTextLanguage:       cfg.DatabaseOptions.DefaultFullTextLanguage,
			QueryStoreStaleQueryThreshold: cfg.DatabaseOptions.QueryStoreStaleQueryThreshold,
			DefaultFilegroup:              cfg.DatabaseOptions.DefaultFilegroup,
		},
	}
}

// reportFailure prints a SqlParseError with its path:line highlighted the
// way a terminal build tool would; every other error just prints plainly.
func reportFailure(err error) {
	var perr *tsqlerr.ParseError
	if errors.As(err, &perr) {
		loc := color.New(color.FgRed, color.Bold).Sprintf("%s:%d", perr.Path, perr.Line)
		fmt.Fprintf(os.Stderr, "%s: %s\n", loc, perr.Message)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func fail(stage string, err error) {
	reportFailure(err)
	slog.Default().Error("compile failed", "stage", stage, "error", err)
	os.Exit(1)
}
