package parser

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

type batchFixture struct {
	SQL   string `yaml:"sql"`
	Count int    `yaml:"count"`
}

func readBatchFixtures(t *testing.T, path string) map[string]batchFixture {
	t.Helper()
	buf, err := os.ReadFile(path)
	require.NoError(t, err)

	var fixtures map[string]batchFixture
	require.NoError(t, yaml.Unmarshal(buf, &fixtures))
	return fixtures
}

func TestSplitBatchesFixtures(t *testing.T) {
	fixtures := readBatchFixtures(t, "testdata/batches.yml")

	for name, fx := range fixtures {
		fx := fx
		t.Run(name, func(t *testing.T) {
			batches := SplitBatches(fx.SQL)
			assert.Len(t, batches, fx.Count)
		})
	}
}

func TestSplitBatchesTracksStartLine(t *testing.T) {
	batches := SplitBatches("CREATE TABLE dbo.T (Id INT);\nGO\nSELECT 1;\n")
	require.Len(t, batches, 2)
	assert.Equal(t, 1, batches[0].StartLine)
	assert.Equal(t, 3, batches[1].StartLine)
}
