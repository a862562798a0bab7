package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch signals a record or query that does not conform to the schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrInvalidSchema signals an invalid attribute schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidWeight signals a negative or non-finite attribute weight.
	ErrInvalidWeight = errors.New("invalid weight")
	// ErrRecordNotFound signals a missing catalog record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord signals two catalog records sharing a key.
	ErrDuplicateRecord = errors.New("duplicate record")
	// ErrCatalogNotLoaded signals that no catalog has been loaded yet.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
)

// SchemaMismatchError wraps ErrSchemaMismatch with the offending attribute.
type SchemaMismatchError struct {
	Attribute string
	Reason    string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: attribute %q: %s", ErrSchemaMismatch.Error(), e.Attribute, e.Reason)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// NewSchemaMismatch creates a schema mismatch error for an attribute.
func NewSchemaMismatch(attribute, reason string) error {
	return &SchemaMismatchError{Attribute: attribute, Reason: reason}
}
