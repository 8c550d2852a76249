// Package domain holds the core entities and error taxonomy shared by every
// adapter and service in the search engine.
package domain

import "errors"

// Sentinel errors implementing the taxonomy from the error handling design.
// Adapters wrap these with fmt.Errorf("...: %w", ErrX) so callers can match
// with errors.Is regardless of the concrete failure message.
var (
	// ErrIO signals an underlying filesystem failure. Local-recoverable:
	// the caller skips the file and logs a warning.
	ErrIO = errors.New("io error")

	// ErrExtract signals a format parse failure. Content is skipped but
	// metadata is still indexed.
	ErrExtract = errors.New("extract error")

	// ErrModelLoad signals missing or corrupt model/backend configuration.
	// Fatal for semantic mode, non-fatal for keyword-only mode.
	ErrModelLoad = errors.New("model load error")

	// ErrEncode signals an inference failure for a single input. The
	// embedding for that file is skipped; ingestion continues.
	ErrEncode = errors.New("encode error")

	// ErrStore signals a failure in one of the three durable stores
	// (relational, inverted index, vector store). Fatal at file
	// granularity.
	ErrStore = errors.New("store error")

	// ErrDimensionMismatch signals a vector snapshot whose declared
	// dimension does not match the expected store dimension. Fatal;
	// the caller's existing store is left untouched.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidInput signals a request rejected at the API boundary,
	// e.g. a keyword_weight outside [0,1].
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound signals a lookup that found no matching row.
	ErrNotFound = errors.New("not found")
)
