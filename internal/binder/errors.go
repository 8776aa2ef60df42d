package binder

import "fmt"

// FieldError reports a nominated field that does not exist on the
// record type. This is a configuration mistake: it fires before any
// network call and is never retried.
type FieldError struct {
	Field string
	Base  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("binder: nominated field %q does not exist on %q records", e.Field, e.Base)
}

// CastError reports a field value that could not be rendered into a
// search-indexable scalar. The record is not partially indexed.
type CastError struct {
	Field string
	Value any
	Err   error
}

func (e *CastError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("binder: cannot cast field %q (%T) for indexing: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("binder: cannot cast field %q (%T) for indexing", e.Field, e.Value)
}

func (e *CastError) Unwrap() error { return e.Err }
