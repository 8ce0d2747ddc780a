package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProj = `<?xml version="1.0" encoding="utf-8"?>
<Project>
  <PropertyGroup>
    <Name>Widgets</Name>
    <DSP>Microsoft.Data.Tools.Schema.Sql.Sql150DatabaseSchemaProvider</DSP>
    <DefaultSchema>app</DefaultSchema>
    <DacVersion>2.1.0.0</DacVersion>
    <AnsiNulls>False</AnsiNulls>
  </PropertyGroup>
  <ItemGroup>
    <Build Include="Tables\*.sql" />
    <Build Remove="Tables\Scratch.sql" />
    <PackageReference Include="Microsoft.SqlServer.Dacpacs.Master" Version="160.0.0" />
    <SqlCmdVariable Include="Environment">
      <DefaultValue>dev</DefaultValue>
    </SqlCmdVariable>
  </ItemGroup>
</Project>
`

func writeProject(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return filepath.Join(dir, "Widgets.sqlproj")
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeProject(t, dir, map[string]string{
		"Widgets.sqlproj":       sampleProj,
		"Tables/Orders.sql":     "CREATE TABLE app.Orders (Id INT);",
		"Tables/Scratch.sql":    "CREATE TABLE app.Scratch (Id INT);",
		"Tables/Sub/Items.sql":  "CREATE TABLE app.Items (Id INT);",
	})

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Widgets", cfg.Name)
	assert.Equal(t, Sql150, cfg.TargetPlatform)
	assert.Equal(t, "app", cfg.DefaultSchema)
	assert.Equal(t, "2.1.0.0", cfg.DacVersion)
	assert.False(t, cfg.AnsiNulls)
	assert.Equal(t, uint32(1033), cfg.CollationLcid)

	require.Len(t, cfg.PackageReferences, 1)
	assert.Equal(t, "Microsoft.SqlServer.Dacpacs.Master", cfg.PackageReferences[0].Name)

	require.Len(t, cfg.SqlCmdVariables, 1)
	assert.Equal(t, "dev", cfg.SqlCmdVariables[0].DefaultValue)

	require.Len(t, cfg.SqlFiles, 1)
	assert.Contains(t, cfg.SqlFiles[0], "Orders.sql")
}

func TestReadConfigDefaultsWhenNoBuildItems(t *testing.T) {
	dir := t.TempDir()
	minimal := `<?xml version="1.0" encoding="utf-8"?>
<Project>
  <PropertyGroup>
    <Name>Bare</Name>
  </PropertyGroup>
</Project>
`
	path := writeProject(t, dir, map[string]string{
		"Widgets.sqlproj": minimal,
		"a.sql":           "CREATE TABLE dbo.A (Id INT);",
		"bin/Debug/b.sql": "CREATE TABLE dbo.B (Id INT);",
		"sub/c.sql":       "CREATE TABLE dbo.C (Id INT);",
	})

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, Sql160, cfg.TargetPlatform)
	assert.Equal(t, "dbo", cfg.DefaultSchema)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.sql"),
		filepath.Join(dir, "sub", "c.sql"),
	}, cfg.SqlFiles)
}

func TestReadConfigRejectsEmptyFileList(t *testing.T) {
	dir := t.TempDir()
	empty := `<?xml version="1.0" encoding="utf-8"?>
<Project>
  <PropertyGroup><Name>Empty</Name></PropertyGroup>
</Project>
`
	writeProject(t, dir, map[string]string{"Empty.sqlproj": empty})
	path := filepath.Join(dir, "Empty.sqlproj")

	_, err := ReadConfig(path)
	require.Error(t, err)
}

func TestSqlServerVersionDspName(t *testing.T) {
	assert.Equal(t, "Microsoft.Data.Tools.Schema.Sql.Sql130DatabaseSchemaProvider", Sql130.DspName())
	assert.Equal(t, "160", Sql160.CompatibilityMode())
}

func TestExtractVersionFromDSP(t *testing.T) {
	assert.Equal(t, Sql140, extractVersionFromDSP("Microsoft.Data.Tools.Schema.Sql.Sql140DatabaseSchemaProvider"))
	assert.Equal(t, Sql160, extractVersionFromDSP("garbage"))
}
