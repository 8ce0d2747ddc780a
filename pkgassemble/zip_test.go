package pkgassemble

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/xml"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldef/tsqlbuild/project"
)

func TestWriteProducesExpectedParts(t *testing.T) {
	var buf bytes.Buffer
	modelXML := []byte(`<DataSchemaModel></DataSchemaModel>`)
	cfg := project.Config{Name: "Widgets", DacDescription: "a test package"}

	err := Write(&buf, modelXML, cfg)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.Equal(t, zip.Deflate, f.Method)
	}
	assert.Equal(t, []string{"model.xml", "DacMetadata.xml", "Origin.xml", "[Content_Types].xml"}, names)
}

func TestGenerateMetadataXML(t *testing.T) {
	cfg := project.Config{Name: "Widgets", DacDescription: "desc"}
	body, err := generateMetadataXML(cfg)
	require.NoError(t, err)

	var doc dacTypeXML
	require.NoError(t, xml.Unmarshal(body, &doc))
	assert.Equal(t, "Widgets", doc.Name)
	assert.Equal(t, "desc", doc.Description)
	assert.Equal(t, dacNamespace, doc.Xmlns)
}

func TestGenerateOriginXMLChecksumMatchesModel(t *testing.T) {
	modelXML := []byte(`<DataSchemaModel></DataSchemaModel>`)
	body, err := generateOriginXML(modelXML)
	require.NoError(t, err)

	var doc originXML
	require.NoError(t, xml.Unmarshal(body, &doc))
	assert.NotEmpty(t, doc.Checksums.Checksum.Value)
	sum := sha256.Sum256(modelXML)
	assert.Equal(t, fmt.Sprintf("%X", sum[:]), doc.Checksums.Checksum.Value)
	assert.Equal(t, "/model.xml", doc.Checksums.Checksum.URI)
	assert.NotEmpty(t, doc.Operation.Start)
	assert.Equal(t, doc.Operation.Start, doc.Operation.End)
}
