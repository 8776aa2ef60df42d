package syncing

import "fmt"

// SaveError reports a search-engine failure while indexing a record
// that was already persisted. The primary-store write is NOT rolled
// back; the two stores diverge until the record is re-synced.
type SaveError struct {
	Key string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("sync: failed to index saved record %q: %v", e.Key, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// DeleteError reports a search-engine failure while removing the
// document of a record that was already deleted from the primary
// store. The deleted row is not restored.
type DeleteError struct {
	Key string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("sync: failed to remove document %q after delete: %v", e.Key, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// BulkError reports a failed bulk index or bulk delete request. There
// are no partial-commit semantics: the whole batch is treated as failed.
type BulkError struct {
	Op  string // "index" or "delete"
	Err error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("sync: bulk %s failed: %v", e.Op, e.Err)
}

func (e *BulkError) Unwrap() error { return e.Err }
