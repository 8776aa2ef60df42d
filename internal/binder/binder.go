package binder

// Binds a record type's nominated fields to search-engine documents.
// Each record type declares one Binding; the Binding projects records
// into flat documents keyed by the record's primary key.

// Keyed is anything with a stable primary key. Field values that
// implement Keyed are reduced to their key during conversion.
type Keyed interface {
	PrimaryKey() string
}

// Record is a database entity that can be projected into the search
// index. Field returns the value of a nominated field by name; the
// second return is false when the record type does not carry that field.
type Record interface {
	Keyed
	Field(name string) (any, bool)
}

// ConvertFunc turns one field value into a search-indexable scalar.
// Bindings may supply their own to replace DefaultConvert entirely.
type ConvertFunc func(field string, value any) (any, error)

// Binding is the per-record-type configuration: which collection the
// type lives in, which fields get projected, and how values convert.
type Binding struct {
	// BaseName is the collection base name. Physical collections are
	// named BaseName plus a random suffix; the read/write aliases are
	// derived from it.
	BaseName string

	// Fields are the nominated field names projected into documents.
	Fields []string

	// Convert overrides the default conversion rules when non-nil.
	Convert ConvertFunc
}

// ReadAlias is the alias queries resolve through. It only ever points
// at a fully populated collection.
func (b Binding) ReadAlias() string { return b.BaseName + "-read" }

// WriteAlias is the alias all writes target, including mid-rebuild.
func (b Binding) WriteAlias() string { return b.BaseName + "-write" }

// BuildDocument projects one record through the binding. A nominated
// field missing on the record is a *FieldError; a value that cannot be
// rendered is a *CastError. No partial document is ever returned.
func (b Binding) BuildDocument(rec Record) (map[string]any, error) {
	convert := b.Convert
	if convert == nil {
		convert = DefaultConvert
	}

	doc := map[string]any{"id": rec.PrimaryKey()}
	for _, field := range b.Fields {
		value, ok := rec.Field(field)
		if !ok {
			return nil, &FieldError{Field: field, Base: b.BaseName}
		}

		converted, err := convert(field, value)
		if err != nil {
			return nil, err
		}
		doc[field] = converted
	}
	return doc, nil
}

// BuildDocuments projects a batch, one document per record. The first
// failing record aborts the whole batch.
func (b Binding) BuildDocuments(recs []Record) ([]any, error) {
	docs := make([]any, 0, len(recs))
	for _, rec := range recs {
		doc, err := b.BuildDocument(rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
