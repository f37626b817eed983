package storecheck

import (
	"errors"
)

// The errors in storecheck can be checked via errors.Is function.
var (
	// ErrInvalidCatalog is an error for if the endpoint catalog was malformed.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrInvalidRecord is an error for if failed to parse history because it was invalid format.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrIO is an error for if failed to read/write history or snapshot.
	ErrIO = errors.New("failed to read/write file")
)
