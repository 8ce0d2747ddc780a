package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// findSQLFiles resolves a project's Build Include/Remove items into an
// ordered file list: glob patterns are expanded with doublestar (so
// "**/*.sql" SDK-style includes behave the same as the reference reader's
// own glob expansion), direct paths are used verbatim, and — when the
// project declares no Build items at all — every .sql file under the
// project directory is picked up (skipping bin/obj), matching the
// SDK-style project default (spec §6.1, `sqlproj_parser.rs::find_sql_files`).
func findSQLFiles(root *sqlprojElement, projectDir string) ([]string, error) {
	var includePatterns, excludePatterns []string

	walk(root, func(el *sqlprojElement) {
		if el.XMLName.Local != "Build" {
			return
		}
		if include, ok := el.attr("Include"); ok {
			includePatterns = append(includePatterns, strings.ReplaceAll(include, `\`, "/"))
		}
		if remove, ok := el.attr("Remove"); ok {
			excludePatterns = append(excludePatterns, strings.ReplaceAll(remove, `\`, "/"))
		}
	})

	var files []string

	for _, pattern := range includePatterns {
		if strings.ContainsAny(pattern, "*?[") {
			fsys := os.DirFS(projectDir)
			matches, err := doublestar.Glob(fsys, pattern)
			if err != nil {
				continue
			}
			for _, m := range matches {
				if strings.EqualFold(filepath.Ext(m), ".sql") {
					files = append(files, filepath.Join(projectDir, filepath.FromSlash(m)))
				}
			}
		} else if strings.EqualFold(filepath.Ext(pattern), ".sql") {
			candidate := filepath.Join(projectDir, filepath.FromSlash(pattern))
			if fileExists(candidate) {
				files = append(files, candidate)
			}
		}
	}

	if len(files) == 0 && len(includePatterns) == 0 {
		err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".sql") {
				return nil
			}
			rel := strings.ReplaceAll(path, `\`, "/")
			if strings.Contains(rel, "/bin/") || strings.Contains(rel, "/obj/") {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(excludePatterns) == 0 {
		return files, nil
	}

	filtered := files[:0]
	for _, f := range files {
		rel, err := filepath.Rel(projectDir, f)
		if err != nil {
			rel = f
		}
		relSlash := strings.ReplaceAll(rel, `\`, "/")
		excluded := false
		for _, pattern := range excludePatterns {
			if strings.ContainsAny(pattern, "*?[") {
				if ok, _ := doublestar.Match(pattern, relSlash); ok {
					excluded = true
					break
				}
			} else if relSlash == pattern {
				excluded = true
				break
			}
		}
		if !excluded {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}
