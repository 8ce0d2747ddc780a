// Package sqlcmd expands SQLCMD :r include directives, substituting $(var)
// references inside their include paths, in a source file before it
// reaches the parser (spec §6.2).
package sqlcmd

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/sqldef/tsqlbuild/tsqlerr"
)

var (
	setvarRe  = regexp.MustCompile(`(?m)^\s*:setvar\s+(\w+)\s+"?([^"\r\n]+)"?\s*$`)
	includeRe = regexp.MustCompile(`(?m)^\s*:r\s+(?:"([^"]+)"|(\S+))\s*$`)
	varRe     = regexp.MustCompile(`\$\((\w+)\)`)
)

// Preprocess reads path and expands every :r include (recursively),
// substituting $(var) references in include paths from the project's vars
// and then from any :setvar lines encountered along the way (spec §6.2).
// $(var) references elsewhere in the text, and the :setvar lines
// themselves, are left as written.
func Preprocess(path string, vars map[string]string) (string, error) {
	content, err := readWithEncodingFallback(path)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	visited := map[string]bool{abs: true}

	merged := map[string]string{}
	for k, v := range vars {
		merged[k] = v
	}

	return expandIncludes(content, path, visited, merged)
}

func expandIncludes(content, sourceFile string, visited map[string]bool, vars map[string]string) (string, error) {
	local := map[string]string{}
	for k, v := range vars {
		local[k] = v
	}
	for _, m := range setvarRe.FindAllStringSubmatch(content, -1) {
		local[m[1]] = strings.Trim(m[2], `"`)
	}

	sourceDir := filepath.Dir(sourceFile)

	var out strings.Builder
	lastEnd := 0

	matches := includeRe.FindAllStringSubmatchIndex(content, -1)
	for _, m := range matches {
		out.WriteString(content[lastEnd:m[0]])

		var includePathStr string
		if m[2] != -1 {
			includePathStr = content[m[2]:m[3]]
		} else {
			includePathStr = content[m[4]:m[5]]
		}

		includePathStr = varRe.ReplaceAllStringFunc(includePathStr, func(ref string) string {
			name := varRe.FindStringSubmatch(ref)[1]
			if v, ok := local[name]; ok {
				return v
			}
			return ref
		})

		includePathStr = strings.ReplaceAll(includePathStr, `\`, "/")
		resolvedPath := includePathStr
		if !filepath.IsAbs(includePathStr) {
			resolvedPath = filepath.Join(sourceDir, filepath.FromSlash(includePathStr))
		}

		canonical, err := filepath.Abs(resolvedPath)
		if err != nil {
			canonical = resolvedPath
		}
		if _, statErr := os.Stat(canonical); statErr != nil {
			return "", &tsqlerr.SqlcmdIncludeError{Path: resolvedPath, IncludeAt: sourceFile}
		}

		if visited[canonical] {
			return "", &tsqlerr.SqlcmdIncludeError{Path: canonical, Circular: true, IncludeAt: sourceFile}
		}

		includedContent, err := readWithEncodingFallback(canonical)
		if err != nil {
			return "", &tsqlerr.SqlcmdIncludeError{Path: resolvedPath, IncludeAt: sourceFile}
		}

		visited[canonical] = true
		expanded, err := expandIncludes(includedContent, canonical, visited, local)
		delete(visited, canonical)
		if err != nil {
			return "", err
		}

		out.WriteString("-- BEGIN :r " + includePathStr + "\n")
		out.WriteString(expanded)
		if !strings.HasSuffix(expanded, "\n") {
			out.WriteString("\n")
		}
		out.WriteString("-- END :r " + includePathStr + "\n")

		lastEnd = m[1]
	}

	out.WriteString(content[lastEnd:])
	return out.String(), nil
}

// readWithEncodingFallback reads path as UTF-8, falling back to Windows-1252
// when the bytes aren't valid UTF-8 (common for SQL files authored on
// Windows tooling), and strips a leading UTF-8 BOM.
func readWithEncodingFallback(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &tsqlerr.SqlFileReadError{Path: path, Err: err}
	}

	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", &tsqlerr.SqlFileReadError{Path: path, Err: err}
		}
		text = string(decoded)
	}

	return strings.TrimPrefix(text, "\xEF\xBB\xBF"), nil
}
