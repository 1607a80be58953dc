package ingest

import "errors"

// ErrInvalidRecord is the sentinel wrapped whenever a stash or item in a
// fetched page fails its required-field check (mirrors the original
// implementation's ValueError on a missing required field). Invalid
// records are skipped, not fatal to the page.
var ErrInvalidRecord = errors.New("ingest: invalid record")

func errMissingField(kind, field string) error {
	return &missingFieldError{kind: kind, field: field}
}

type missingFieldError struct {
	kind  string
	field string
}

func (e *missingFieldError) Error() string {
	return e.kind + ": " + e.field + " is a required field"
}

func (e *missingFieldError) Unwrap() error {
	return ErrInvalidRecord
}
