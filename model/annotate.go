package model

import (
	"sort"
	"strings"
)

// Normalize runs component C (spec §4.3) over m in place: sorts elements
// into final emission order, assigns Disambiguator values that link inline
// constraints to their owning table/columns via Annotation/
// AttachedAnnotation markers, splits each table's attached-annotation list
// around its median, applies the single-named-inline column hook, and
// re-caches element names.
func Normalize(m *DatabaseModel) {
	sortElements(m)
	assignDisambiguators(m)
	splitAttachedAnnotations(m)
	applySingleNamedInlineHook(m)
	m.CacheElementNames()
}

// sortElements implements spec §4.3.1: sort by (lowercased xml name,
// lowercased type tag, secondary key), stable. The secondary key only
// matters for elements with no Name attribute — in practice unnamed inline
// constraints — and is compared in reverse order by the parent table's full
// name.
func sortElements(m *DatabaseModel) {
	tableFullName := make(map[*Constraint]string)
	for _, e := range m.Elements {
		if c, ok := e.(*Constraint); ok && !c.EmitName {
			tableFullName[c] = bracketName(c.TableSchema, c.TableName)
		}
	}

	type sortKey struct {
		xmlName  string
		typeTag  string
		idx      int
	}
	keys := make([]sortKey, len(m.Elements))
	for i, e := range m.Elements {
		xmlName := ""
		if n, ok := e.(namer); ok {
			xmlName = n.XMLNameAttr()
		}
		keys[i] = sortKey{xmlName: strings.ToLower(xmlName), typeTag: strings.ToLower(e.Kind()), idx: i}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.xmlName != b.xmlName {
			return a.xmlName < b.xmlName
		}
		if a.typeTag != b.typeTag {
			return a.typeTag < b.typeTag
		}
		ae, be := m.Elements[a.idx], m.Elements[b.idx]
		ac, aok := ae.(*Constraint)
		bc, bok := be.(*Constraint)
		if aok && bok && !ac.EmitName && !bc.EmitName {
			// Reverse order on the parent table's full name.
			return tableFullName[ac] > tableFullName[bc]
		}
		return false // preserve original relative order (stable sort)
	})

	sorted := make([]Element, len(m.Elements))
	for i, k := range keys {
		sorted[i] = m.Elements[k.idx]
	}
	m.Elements = sorted
}

type tableAnnotationState struct {
	tableIdx      int
	named         []int // element indices of named constraints (emit_name=true)
	unnamedInline []int // element indices of unnamed inline constraints

	carriesAnnotation       bool
	singleNamedInlineIdx    int // element index, -1 if not applicable
}

// assignDisambiguators implements spec §4.3.2.
func assignDisambiguators(m *DatabaseModel) {
	counter := 3 + m.PackageReferenceCount

	tableIdxByKey := map[string]int{}
	for i, e := range m.Elements {
		if t, ok := e.(*Table); ok {
			tableIdxByKey[strings.ToLower(t.SchemaName+"."+t.Name)] = i
		}
	}

	states := map[int]*tableAnnotationState{} // table element index -> state
	for i, e := range m.Elements {
		c, ok := e.(*Constraint)
		if !ok {
			continue
		}
		tIdx, ok := tableIdxByKey[strings.ToLower(c.TableSchema+"."+c.TableName)]
		if !ok {
			continue
		}
		st, ok := states[tIdx]
		if !ok {
			st = &tableAnnotationState{tableIdx: tIdx, singleNamedInlineIdx: -1}
			states[tIdx] = st
		}
		if c.EmitName {
			st.named = append(st.named, i)
		} else if c.IsInline {
			st.unnamedInline = append(st.unnamedInline, i)
		}
	}

	// Step 3: determine who carries the primary annotation.
	for _, st := range states {
		if len(st.named) == 1 {
			ci := st.named[0]
			c := m.Elements[ci].(*Constraint)
			if !c.IsInline {
				st.carriesAnnotation = true
			} else {
				st.singleNamedInlineIdx = ci
			}
		}
	}

	// Pass A: FullTextIndex elements, in element order.
	for _, e := range m.Elements {
		if ft, ok := e.(*FullTextIndex); ok {
			ft.Disambiguator = counter
			counter++
		}
	}

	// Step 5: pre-pass for the exact-2-named case, processed in table-index
	// order for determinism.
	tableIdxsOrdered := make([]int, 0, len(states))
	for idx := range states {
		tableIdxsOrdered = append(tableIdxsOrdered, idx)
	}
	sort.Ints(tableIdxsOrdered)
	for _, tIdx := range tableIdxsOrdered {
		st := states[tIdx]
		if len(st.named) == 2 && len(st.unnamedInline) == 0 {
			named := append([]int(nil), st.named...)
			sort.Slice(named, func(i, j int) bool {
				return m.Elements[named[i]].(*Constraint).SourceOrder < m.Elements[named[j]].(*Constraint).SourceOrder
			})
			for _, ci := range named {
				c := m.Elements[ci].(*Constraint)
				c.Disambiguator = counter
				counter++
				c.UsesAnnotation = false
			}
		}
	}

	// Pass B: iterate elements in (already-sorted) order.
	for i, e := range m.Elements {
		switch v := e.(type) {
		case *Table:
			if st, ok := states[i]; ok && st.carriesAnnotation {
				d := counter
				counter++
				v.TableAnnotationDisambiguator = &d
				v.InlineConstraintDisambiguators = append(v.InlineConstraintDisambiguators, d)
			}
		case *Constraint:
			tIdx, ok := tableIdxByKey[strings.ToLower(v.TableSchema+"."+v.TableName)]
			if !ok {
				continue
			}
			st := states[tIdx]
			table := m.Elements[tIdx].(*Table)

			switch {
			case !v.EmitName && v.IsInline:
				// Unnamed inline: always gets an Annotation, attached to its
				// columns.
				d := counter
				counter++
				v.Disambiguator = d
				v.UsesAnnotation = true
				for _, kc := range v.Columns {
					attachColumnAnnotation(table, kc.Name, d)
				}
				table.AttachedAnnotationsBeforeMedian = append(table.AttachedAnnotationsBeforeMedian, d)

			case v.EmitName && len(st.named) == 1:
				if !v.IsInline {
					// Table-level single named: reuse the table's disambiguator.
					if table.TableAnnotationDisambiguator != nil {
						v.Disambiguator = *table.TableAnnotationDisambiguator
					}
					v.UsesAnnotation = false
				} else {
					d := counter
					counter++
					v.Disambiguator = d
					v.UsesAnnotation = false
				}

			case v.EmitName && len(st.named) == 2 && len(st.unnamedInline) == 0:
				// Already assigned in the step-5 pre-pass.
				table.InlineConstraintDisambiguators = append(table.InlineConstraintDisambiguators, v.Disambiguator)

			case v.EmitName:
				// 3+ named, or 2-named with unnamed inline: sort named
				// constraints by element index; all but the last get
				// uses_annotation=true, the last gets uses_annotation=false.
				named := append([]int(nil), st.named...)
				sort.Ints(named)
				last := named[len(named)-1]
				if i == last {
					d := counter
					counter++
					v.Disambiguator = d
					v.UsesAnnotation = false
					table.InlineConstraintDisambiguators = append(table.InlineConstraintDisambiguators, d)
				} else {
					d := counter
					counter++
					v.Disambiguator = d
					v.UsesAnnotation = true
					table.AttachedAnnotationsBeforeMedian = append(table.AttachedAnnotationsBeforeMedian, d)
				}
			}
		}
	}
}

func attachColumnAnnotation(t *Table, columnName string, disambiguator int) {
	for _, col := range t.Columns {
		if strings.EqualFold(col.Name, columnName) {
			col.AttachedAnnotations = append(col.AttachedAnnotations, disambiguator)
			return
		}
	}
}

// splitAttachedAnnotations implements spec §4.3.3: median-split each
// table's accumulated attached-annotation disambiguators.
func splitAttachedAnnotations(m *DatabaseModel) {
	for _, e := range m.Elements {
		t, ok := e.(*Table)
		if !ok || len(t.AttachedAnnotationsBeforeMedian) == 0 {
			continue
		}
		vals := append([]int(nil), t.AttachedAnnotationsBeforeMedian...)
		sort.Ints(vals)

		median := medianOf(vals)

		var before, after []int
		for _, v := range vals {
			if float64(v) > median {
				before = append(before, v)
			} else {
				after = append(after, v)
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(before)))
		sort.Ints(after)

		t.AttachedAnnotationsBeforeMedian = before
		t.AttachedAnnotationsAfterMedian = after
	}
}

func medianOf(sorted []int) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// applySingleNamedInlineHook implements spec §4.3.4.
func applySingleNamedInlineHook(m *DatabaseModel) {
	tableIdxByKey := map[string]int{}
	for i, e := range m.Elements {
		if t, ok := e.(*Table); ok {
			tableIdxByKey[strings.ToLower(t.SchemaName+"."+t.Name)] = i
		}
	}
	for _, e := range m.Elements {
		c, ok := e.(*Constraint)
		if !ok || !c.IsInline || !c.EmitName || len(c.Columns) == 0 {
			continue
		}
		tIdx, ok := tableIdxByKey[strings.ToLower(c.TableSchema+"."+c.TableName)]
		if !ok {
			continue
		}
		table := m.Elements[tIdx].(*Table)
		// Only applies to the single-named-inline case: this table has
		// exactly one named constraint and it is this one.
		namedCount := 0
		for _, ce := range m.Elements {
			other, ok := ce.(*Constraint)
			if !ok || !other.EmitName {
				continue
			}
			if strings.EqualFold(other.TableSchema, c.TableSchema) && strings.EqualFold(other.TableName, c.TableName) {
				namedCount++
			}
		}
		if namedCount != 1 {
			continue
		}
		firstCol := c.Columns[0].Name
		for _, col := range table.Columns {
			if strings.EqualFold(col.Name, firstCol) {
				d := c.Disambiguator
				col.InlineConstraintAnnotation = &d
				break
			}
		}
	}
}
