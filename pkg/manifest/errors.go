package manifest

import (
	"errors"
	"fmt"
)

// Manifest package errors.
var (
	// ErrEmptyStream is returned when a file contains no documents.
	ErrEmptyStream = errors.New("no documents found in stream")

	// ErrMissingKind is returned when a document omits the kind field.
	ErrMissingKind = errors.New("document is missing kind")

	// ErrMissingAPIVersion is returned when a document omits apiVersion.
	ErrMissingAPIVersion = errors.New("document is missing apiVersion")

	// ErrUnknownKind is returned for document kinds the loader does not support.
	ErrUnknownKind = errors.New("unsupported document kind")

	// ErrInvalidInterval is returned when a declared interval is missing,
	// unparseable, or not positive.
	ErrInvalidInterval = errors.New("invalid interval")
)

// ParseError indicates a failure while decoding a document from a stream.
type ParseError struct {
	Source string // file the stream came from
	Index  int    // zero-based document position within the stream
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse document %d in %s: %v", e.Index, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
