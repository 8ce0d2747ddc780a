package sqlcmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPreprocessNoIncludes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.sql")
	writeFile(t, path, "SELECT 1;\n")

	out, err := Preprocess(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;\n", out)
}

func TestPreprocessSimpleInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "child.sql"), "CREATE TABLE dbo.T (Id INT);\n")
	main := filepath.Join(dir, "main.sql")
	writeFile(t, main, ":r child.sql\nSELECT 1;\n")

	out, err := Preprocess(main, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "-- BEGIN :r child.sql")
	assert.Contains(t, out, "CREATE TABLE dbo.T (Id INT);")
	assert.Contains(t, out, "-- END :r child.sql")
	assert.Contains(t, out, "SELECT 1;")
}

func TestPreprocessVariableSubstitutionInIncludePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Tables", "Orders.sql"), "CREATE TABLE dbo.Orders (Id INT);\n")
	main := filepath.Join(dir, "main.sql")
	writeFile(t, main, ":r $(Dir)/Orders.sql\n")

	out, err := Preprocess(main, map[string]string{"Dir": "Tables"})
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE dbo.Orders")
}

func TestPreprocessSetvarOverridesProjectVar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "prod.sql"), "SELECT 'from prod';\n")
	writeFile(t, filepath.Join(dir, "dev.sql"), "SELECT 'from dev';\n")
	main := filepath.Join(dir, "main.sql")
	writeFile(t, main, ":setvar Env \"prod\"\n:r $(Env).sql\nSELECT '$(Env)';\n")

	out, err := Preprocess(main, map[string]string{"Env": "dev"})
	require.NoError(t, err)
	// setvar lines are left untouched in the emitted text; only $(var) refs
	// inside :r include paths are substituted by this preprocessor.
	assert.Contains(t, out, ":setvar Env \"prod\"")
	assert.Contains(t, out, "from prod")
	assert.NotContains(t, out, "from dev")
	assert.Contains(t, out, "SELECT '$(Env)';")
}

func TestPreprocessNestedIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "grandchild.sql"), "SELECT 'grandchild';\n")
	writeFile(t, filepath.Join(dir, "child.sql"), ":r grandchild.sql\n")
	main := filepath.Join(dir, "main.sql")
	writeFile(t, main, ":r child.sql\n")

	out, err := Preprocess(main, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "grandchild")
}

func TestPreprocessCircularIncludeDetected(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.sql")
	b := filepath.Join(dir, "b.sql")
	writeFile(t, a, ":r b.sql\n")
	writeFile(t, b, ":r a.sql\n")

	_, err := Preprocess(a, nil)
	require.Error(t, err)
}

func TestPreprocessMissingIncludeFails(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.sql")
	writeFile(t, main, ":r missing.sql\n")

	_, err := Preprocess(main, nil)
	require.Error(t, err)
}

func TestPreprocessStripsBOM(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.sql")
	writeFile(t, main, "\xEF\xBB\xBFSELECT 1;\n")

	out, err := Preprocess(main, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;\n", out)
}
