package parser

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/sqldef/tsqlbuild/tsqlerr"
)

// parallelThreshold is the file-count floor below which ParseFiles just
// parses sequentially; below it the errgroup scheduling overhead costs more
// than it saves (spec §5 "Parallel file parsing").
const parallelThreshold = 8

// FileResult is one input file's parse outcome, keeping ParseFiles'
// output in the same order as its input regardless of which goroutine
// finished first.
type FileResult struct {
	Path       string
	Statements []*ParsedStatement
}

// ParseFile reads and parses a single .sql file into its batches and
// statements.
func ParseFile(path string) (*FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &tsqlerr.SqlFileReadError{Path: path, Err: err}
	}
	return ParseText(path, string(data))
}

// ParseText splits and parses already-in-memory source text attributed to
// path. Callers that must preprocess a file before tokenization (SQLCMD
// :r/$(var) expansion runs ahead of the parser, not inside it) use this
// instead of ParseFile, which always reads path itself.
func ParseText(path, text string) (*FileResult, error) {
	batches := SplitBatches(text)
	result := &FileResult{Path: path}
	for _, b := range batches {
		stmt, err := ParseStatement(path, b)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			result.Statements = append(result.Statements, stmt)
		}
	}
	return result, nil
}

// ParseFiles parses every path, preserving input order in the result slice
// regardless of completion order. At parallelThreshold files or more it
// starts one errgroup goroutine per file. Every started parse runs to
// completion; the first error any of them returns is the one reported.
func ParseFiles(ctx context.Context, paths []string) ([]*FileResult, error) {
	results := make([]*FileResult, len(paths))

	if len(paths) < parallelThreshold {
		for i, p := range paths {
			r, err := ParseFile(p)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			r, err := ParseFile(p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
