package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized signals a query issued before the first corpus build.
	// The engine panics with it: querying an unbuilt engine is a caller ordering bug.
	ErrNotInitialized = errors.New("corpus not initialized")
	// ErrInvalidDocument signals a document that failed validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrDuplicateID signals two documents sharing an ID within one corpus.
	ErrDuplicateID = errors.New("duplicate document id")
	// ErrUnknownCategory signals a category tag outside the known set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownSource signals an unsupported content source type.
	ErrUnknownSource = errors.New("unknown content source")
	// ErrSourceFailed signals a content source that could not be loaded.
	ErrSourceFailed = errors.New("content source failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOptions signals search options or tunables out of range.
	ErrInvalidOptions = errors.New("invalid options")
)

// SourceError wraps ErrSourceFailed with the name of the failing source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceFailed.Error(), e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *SourceError) Unwrap() []error { return []error{ErrSourceFailed, e.Err} }

// NewSourceError creates a source failure error.
func NewSourceError(source string, err error) error {
	return &SourceError{Source: source, Err: err}
}
