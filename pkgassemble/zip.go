// Package pkgassemble assembles the final dacpac ZIP: model.xml plus the
// package's fixed supporting parts (spec §6.3, SPEC_FULL.md §6.3).
package pkgassemble

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/sqldef/tsqlbuild/project"
	"github.com/sqldef/tsqlbuild/tsqlerr"
)

const dacNamespace = "http://schemas.microsoft.com/sqlserver/dac/Serialization/2012/02"

// Write builds a dacpac ZIP into w: model.xml, DacMetadata.xml, Origin.xml,
// and [Content_Types].xml, in that order (spec §6.3). There is no
// ecosystem ZIP library in the retrieved pack richer than archive/zip, so
// this stays on the standard library.
func Write(w io.Writer, modelXML []byte, cfg project.Config) error {
	zw := zip.NewWriter(w)

	if err := writePart(zw, "model.xml", modelXML); err != nil {
		return &tsqlerr.ZipError{Err: err}
	}

	metadata, err := generateMetadataXML(cfg)
	if err != nil {
		return &tsqlerr.ZipError{Err: err}
	}
	if err := writePart(zw, "DacMetadata.xml", metadata); err != nil {
		return &tsqlerr.ZipError{Err: err}
	}

	origin, err := generateOriginXML(modelXML)
	if err != nil {
		return &tsqlerr.ZipError{Err: err}
	}
	if err := writePart(zw, "Origin.xml", origin); err != nil {
		return &tsqlerr.ZipError{Err: err}
	}

	if err := writePart(zw, "[Content_Types].xml", []byte(contentTypesXML)); err != nil {
		return &tsqlerr.ZipError{Err: err}
	}

	if err := zw.Close(); err != nil {
		return &tsqlerr.ZipError{Err: err}
	}
	return nil
}

func writePart(zw *zip.Writer, name string, content []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = fw.Write(content)
	return err
}

const contentTypesXML = `<?xml version="1.0" encoding="utf-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="text/xml" />
</Types>`

type dacTypeXML struct {
	XMLName     xml.Name `xml:"DacType"`
	Xmlns       string   `xml:"xmlns,attr"`
	Name        string   `xml:"Name"`
	Version     string   `xml:"Version"`
	Description string   `xml:"Description"`
}

func generateMetadataXML(cfg project.Config) ([]byte, error) {
	doc := dacTypeXML{
		Xmlns:       dacNamespace,
		Name:        cfg.Name,
		Version:     "1.0.0.0",
		Description: cfg.DacDescription,
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

type originXML struct {
	XMLName           xml.Name          `xml:"DacOrigin"`
	Xmlns             string            `xml:"xmlns,attr"`
	PackageProperties packagePropertiesXML `xml:"PackageProperties"`
	Checksums         checksumsXML      `xml:"Checksums"`
	Operation         operationXML      `xml:"Operation"`
}

type packagePropertiesXML struct {
	Version               string           `xml:"Version"`
	ContainsExportedData  string           `xml:"ContainsExportedData"`
	StreamVersions        streamVersionsXML `xml:"StreamVersions"`
}

type streamVersionsXML struct {
	Versions []streamVersionXML `xml:"Version"`
}

type streamVersionXML struct {
	StreamName string `xml:"StreamName,attr"`
	Value      string `xml:",chardata"`
}

type checksumsXML struct {
	Checksum checksumXML `xml:"Checksum"`
}

type checksumXML struct {
	URI   string `xml:"Uri,attr"`
	Value string `xml:",chardata"`
}

type operationXML struct {
	Identity      string           `xml:"Identity"`
	Start         string           `xml:"Start"`
	End           string           `xml:"End"`
	ProductSchema productSchemaXML `xml:"ProductSchema"`
}

type productSchemaXML struct {
	MajorVersion majorVersionXML `xml:"MajorVersion"`
}

type majorVersionXML struct {
	Value string `xml:"Value,attr"`
}

// generateOriginXML writes Origin.xml: package properties, a SHA-256
// checksum of model.xml (hex, uppercase, matching DacFx's own convention),
// and the operation record with the current timestamp (spec §6.3; no
// "Start"/"End" semantics beyond "package build time" are specified, so both
// are stamped identically at call time).
func generateOriginXML(modelXML []byte) ([]byte, error) {
	sum := sha256.Sum256(modelXML)
	checksum := strings.ToUpper(hex.EncodeToString(sum[:]))
	now := time.Now().UTC().Format(time.RFC3339)

	doc := originXML{
		Xmlns: dacNamespace,
		PackageProperties: packagePropertiesXML{
			Version:              "3.1.0.0",
			ContainsExportedData: "false",
			StreamVersions: streamVersionsXML{
				Versions: []streamVersionXML{
					{StreamName: "Data", Value: "2.0.0.0"},
					{StreamName: "DeploymentContributors", Value: "1.0.0.0"},
				},
			},
		},
		Checksums: checksumsXML{
			Checksum: checksumXML{URI: "/model.xml", Value: checksum},
		},
		Operation: operationXML{
			Identity: "tsqlbuild",
			Start:    now,
			End:      now,
			ProductSchema: productSchemaXML{
				MajorVersion: majorVersionXML{Value: "160"},
			},
		},
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
