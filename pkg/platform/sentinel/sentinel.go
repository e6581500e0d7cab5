package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborator adapters
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
//   - ErrNotFound: no record under the requested key
//   - ErrConflict: a different record already occupies a write-once key
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: backend or collaborator temporarily unavailable
//
// For validation errors (bad input, wrong pick counts), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
