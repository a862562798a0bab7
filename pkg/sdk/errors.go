package casematch

import "github.com/kailas-cloud/casematch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSchemaMismatch = domain.ErrSchemaMismatch
	ErrInvalidSchema  = domain.ErrInvalidSchema
	ErrInvalidWeight  = domain.ErrInvalidWeight
)

// SchemaMismatchError names the attribute a record or query got wrong.
type SchemaMismatchError = domain.SchemaMismatchError
