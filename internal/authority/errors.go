package authority

import "errors"

var (
	// ErrDocumentNotFound is returned for an estimate the authority does not hold.
	ErrDocumentNotFound = errors.New("estimate not found")
	// ErrEmptyDocumentID is returned when no estimate id was given.
	ErrEmptyDocumentID = errors.New("empty estimate id")
)
