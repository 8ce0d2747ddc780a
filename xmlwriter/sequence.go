package xmlwriter

import (
	"github.com/beevik/etree"

	"github.com/sqldef/tsqlbuild/model"
)

// writeSequence writes a CREATE SEQUENCE element: property order
// IsCycling, HasNoMaxValue, HasNoMinValue, MinValue, MaxValue, Increment,
// StartValue, CacheSize, then the Schema relationship and (if a data type
// was given) a TypeSpecifier relationship referencing it as a built-in
// type (spec §4.1 step 11, §4.4).
func writeSequence(parent *etree.Element, s *model.Sequence) {
	full := bracketQualified(s.SchemaName, s.Name)
	el := newElement(parent, "SqlSequence", full)

	if s.IsCycling {
		property(el, "IsCycling", "True")
	}

	hasNoMax := s.NoMax || s.MaxValue == nil
	hasNoMin := s.NoMin || s.MinValue == nil
	boolProperty(el, "HasNoMaxValue", hasNoMax)
	boolProperty(el, "HasNoMinValue", hasNoMin)

	if s.MinValue != nil {
		property(el, "MinValue", itoa(*s.MinValue))
	}
	if s.MaxValue != nil {
		property(el, "MaxValue", itoa(*s.MaxValue))
	}
	if s.Increment != nil {
		property(el, "Increment", itoa(*s.Increment))
	}
	if s.StartWith != nil {
		property(el, "StartValue", itoa(*s.StartWith))
	}
	if s.CacheSize != nil {
		property(el, "CacheSize", itoa(*s.CacheSize))
	}

	schemaRelationship(el, s.SchemaName)

	if s.DataType != "" {
		writeTypeSpecifier(el, s.DataType, nil, nil, nil)
	}
}
