package imagestore

import "errors"

var (
	// ErrNotFound marks the absence of a record on the one read path where
	// absence is a failure: import reconciliation by project and name.
	ErrNotFound = errors.New("not found")

	// ErrMalformedPayload marks a stored label document that no longer parses.
	// Single-record fetches propagate it; bulk listings skip the row instead.
	ErrMalformedPayload = errors.New("malformed label payload")
)
