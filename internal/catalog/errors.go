package catalog

import "errors"

// Sentinel errors for catalog loading and parsing.
var (
	// ErrInvalidDocument indicates the catalog file exists but does not
	// parse as a capability document.
	ErrInvalidDocument = errors.New("catalog: invalid document")

	// ErrInvalidAddress indicates a document key is not a valid
	// powerline address.
	ErrInvalidAddress = errors.New("catalog: invalid address key")
)
