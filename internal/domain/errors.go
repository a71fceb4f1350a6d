package domain

import "fmt"

// StoreError wraps a storage failure: the database was unreachable or
// a constraint was violated. It is never swallowed at the store
// boundary.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// RelayError reports that the media host rejected or timed out on one
// item. Batch ingestion treats it as recoverable at item granularity.
type RelayError struct {
	Handle string
	Err    error
}

func (e *RelayError) Error() string { return fmt.Sprintf("media relay %s: %v", e.Handle, e.Err) }
func (e *RelayError) Unwrap() error { return e.Err }

// TranslationError reports a failed call to the translation
// collaborator. Callers fall back to the source text.
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string { return fmt.Sprintf("translate: %v", e.Err) }
func (e *TranslationError) Unwrap() error { return e.Err }

// ValidationError is fatal to the current ingestion attempt (corrupt
// archive, no valid entries).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// AuthorizationError marks a non-operator caller invoking an
// operator-only capability. The message stays minimal on purpose.
type AuthorizationError struct {
	UserID int64
}

func (e *AuthorizationError) Error() string { return "not authorized" }
