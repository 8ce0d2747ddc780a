package model

import "strings"

// DatabaseModel is the flat, ordered container spec §3.2 describes: a
// slice of Element plus two parallel name-cache slices. Append and the
// element sort change Elements only; CacheElementNames rebuilds both caches
// from Elements, and Builder.Finalize and Normalize each end with that call,
// after which index i refers to the same logical element in all three.
type DatabaseModel struct {
	Elements        []Element
	CachedFullNames []string
	CachedXMLNames  []string

	// Schemas encountered while building, regardless of whether they later
	// got a Schema element of their own (spec §4.2 finalization step 2).
	EncounteredSchemas map[string]bool

	// DspName and CollationLcid record the project's target platform and
	// collation on the model. xmlwriter.Write takes the root element's
	// attributes from its Options argument and its own version constants,
	// not from these fields.
	DspName       string
	CollationLcid uint32

	// PackageReferenceCount reserves the first N disambiguator slots
	// before any are issued by annotate.go (spec §4.3.2 "Counter").
	PackageReferenceCount int
}

// NewDatabaseModel returns an empty model ready for Builder.Add calls.
func NewDatabaseModel() *DatabaseModel {
	return &DatabaseModel{EncounteredSchemas: map[string]bool{}}
}

// Append adds one element without touching the name caches; callers must
// call CacheElementNames before relying on CachedFullNames/CachedXMLNames.
func (m *DatabaseModel) Append(e Element) {
	m.Elements = append(m.Elements, e)
	if s := e.SchemaOf(); s != "" {
		m.EncounteredSchemas[strings.ToLower(s)] = true
	}
}

// CacheElementNames (re)computes CachedFullNames/CachedXMLNames for every
// element, in the same order as Elements. Calling it twice produces
// identical output (spec §8 "Round-trip and idempotence" #2) since it is a
// pure function of Elements.
func (m *DatabaseModel) CacheElementNames() {
	full := make([]string, len(m.Elements))
	xmlNames := make([]string, len(m.Elements))
	for i, e := range m.Elements {
		if n, ok := e.(namer); ok {
			full[i] = n.FullName()
			xmlNames[i] = n.XMLNameAttr()
		}
	}
	m.CachedFullNames = full
	m.CachedXMLNames = xmlNames
}

// HasSchema reports whether name (case-insensitive) already has a Schema
// element.
func (m *DatabaseModel) HasSchema(name string) bool {
	lower := strings.ToLower(name)
	for _, e := range m.Elements {
		if s, ok := e.(*Schema); ok && strings.ToLower(s.Name) == lower {
			return true
		}
	}
	return false
}

// FindTable returns the element index of the Table named (schema, name),
// case-insensitively, or -1.
func (m *DatabaseModel) FindTable(schema, name string) int {
	lowerSchema, lowerName := strings.ToLower(schema), strings.ToLower(name)
	for i, e := range m.Elements {
		if t, ok := e.(*Table); ok && strings.ToLower(t.SchemaName) == lowerSchema && strings.ToLower(t.Name) == lowerName {
			return i
		}
	}
	return -1
}

// FindScalarType returns the ScalarType element matching typeName under
// all four bracketed/unbracketed schema-qualification permutations (spec
// §4.2 finalization step 1), or nil.
func (m *DatabaseModel) FindScalarType(typeName, defaultSchema string) *ScalarType {
	candidates := scalarTypeLookupKeys(typeName, defaultSchema)
	for _, e := range m.Elements {
		st, ok := e.(*ScalarType)
		if !ok {
			continue
		}
		key := strings.ToLower(st.SchemaName + "." + st.Name)
		for _, c := range candidates {
			if c == key {
				return st
			}
		}
	}
	return nil
}

func scalarTypeLookupKeys(typeName, defaultSchema string) []string {
	typeName = strings.Trim(typeName, "[]")
	schema := defaultSchema
	name := typeName
	if idx := strings.Index(typeName, "."); idx >= 0 {
		schema = strings.Trim(typeName[:idx], "[]")
		name = strings.Trim(typeName[idx+1:], "[]")
	}
	return []string{
		strings.ToLower(schema + "." + name),
		strings.ToLower(defaultSchema + "." + name),
	}
}
