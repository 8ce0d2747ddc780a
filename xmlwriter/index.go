package xmlwriter

import (
	"github.com/beevik/etree"

	"github.com/sqldef/tsqlbuild/model"
)

// writeIndex writes a regular (non-columnstore) index element: IsUnique,
// IsClustered, FillFactor, FilterPredicate (as a CDATA script property),
// then BodyDependencies (filtered indexes only), ColumnSpecifications,
// DataCompressionOptions, IncludedColumns, and finally IndexedObject
// (spec §4.4.8).
func writeIndex(parent *etree.Element, idx *model.Index) {
	tableRef := bracketQualified(idx.TableSchema, idx.TableName)
	full := bracketQualified(idx.TableSchema, idx.TableName, idx.Name)
	el := newElement(parent, "SqlIndex", full)

	if idx.IsUnique {
		property(el, "IsUnique", "True")
	}
	if idx.IsClustered {
		property(el, "IsClustered", "True")
	}
	if idx.FillFactor != nil {
		property(el, "FillFactor", itoa(*idx.FillFactor))
	}
	if idx.FilterPredicate != "" {
		scriptProperty(el, "FilterPredicate", idx.FilterPredicate)
		if deps := extractExpressionColumnRefs(idx.FilterPredicate, tableRef); len(deps) > 0 {
			var bodyRefs []string
			for _, d := range deps {
				if !isBuiltinTypeReference(d) {
					bodyRefs = append(bodyRefs, d)
				}
			}
			relationship(el, "BodyDependencies", bodyRefs)
		}
	}

	if len(idx.KeyColumns) > 0 {
		rel := el.CreateElement("Relationship")
		attrBatch(rel, "Name", "ColumnSpecifications")
		for i, col := range idx.KeyColumns {
			entry := rel.CreateElement("Entry")
			specName := full + "." + bracket(itoa(i))
			spec := entry.CreateElement("Element")
			attrBatch(spec, "Type", "SqlIndexedColumnSpecification", "Name", specName)
			if col.Desc {
				property(spec, "IsDescending", "True")
			}
			relationship(spec, "Column", []string{tableRef + "." + bracket(col.Name)})
		}
	}

	if idx.DataCompression != "" {
		writeDataCompressionOptions(el, idx.DataCompression)
	}

	if len(idx.IncludeColumns) > 0 {
		var refs []string
		for _, c := range idx.IncludeColumns {
			refs = append(refs, tableRef+"."+bracket(c))
		}
		relationship(el, "IncludedColumns", refs)
	}

	relationship(el, "IndexedObject", []string{tableRef})
}

func writeDataCompressionOptions(el *etree.Element, level string) {
	rel := el.CreateElement("Relationship")
	attrBatch(rel, "Name", "DataCompressionOptions")
	entry := rel.CreateElement("Entry")
	opt := entry.CreateElement("Element")
	attrBatch(opt, "Type", "SqlDataCompressionOption")
	property(opt, "CompressionLevel", level)
	property(opt, "PartitionNumber", "1")
}

// writeColumnstoreIndex writes a CREATE [CLUSTERED|NONCLUSTERED] COLUMNSTORE
// INDEX element.
func writeColumnstoreIndex(parent *etree.Element, idx *model.ColumnstoreIndex) {
	tableRef := bracketQualified(idx.TableSchema, idx.TableName)
	full := bracketQualified(idx.TableSchema, idx.TableName, idx.Name)
	el := newElement(parent, "SqlColumnStoreIndex", full)

	if idx.IsClustered {
		property(el, "IsClustered", "True")
	}
	if idx.DataCompression != "" {
		writeDataCompressionOptions(el, idx.DataCompression)
	}

	if len(idx.Columns) > 0 {
		var refs []string
		for _, c := range idx.Columns {
			refs = append(refs, tableRef+"."+bracket(c))
		}
		relationship(el, "IncludedColumns", refs)
	}

	relationship(el, "IndexedObject", []string{tableRef})
}

// writeFullTextIndex writes a CREATE FULLTEXT INDEX element: an optional
// Catalog relationship, per-column SqlFullTextIndexColumnSpecifier
// entries (anonymous, no Name attribute), the IndexedObject relationship,
// and the KeyName relationship pointing at the backing unique index.
func writeFullTextIndex(parent *etree.Element, ft *model.FullTextIndex) {
	tableRef := bracketQualified(ft.TableSchema, ft.TableName)
	el := newElement(parent, "SqlFullTextIndex", tableRef)

	if ft.CatalogName != "" {
		relationship(el, "Catalog", []string{bracket(ft.CatalogName)})
	}

	if len(ft.Columns) > 0 {
		rel := el.CreateElement("Relationship")
		attrBatch(rel, "Name", "Columns")
		for _, col := range ft.Columns {
			entry := rel.CreateElement("Entry")
			spec := entry.CreateElement("Element")
			attrBatch(spec, "Type", "SqlFullTextIndexColumnSpecifier")
			if col.LanguageID != nil {
				property(spec, "LanguageId", itoa(*col.LanguageID))
			}
			relationship(spec, "Column", []string{tableRef + "." + bracket(col.Name)})
		}
	}

	relationship(el, "IndexedObject", []string{tableRef})

	if ft.KeyIndexName != "" {
		relationship(el, "KeyName", []string{bracketQualified(ft.TableSchema, ft.KeyIndexName)})
	}
}

// writeFullTextCatalog writes a CREATE FULLTEXT CATALOG element.
func writeFullTextCatalog(parent *etree.Element, cat *model.FullTextCatalog) {
	el := newElement(parent, "SqlFullTextCatalog", bracket(cat.Name))
	if cat.IsDefault {
		property(el, "IsDefault", "True")
	}
	authorizerRelationship(el, "dbo")
}
