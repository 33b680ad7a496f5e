package outliner

import "errors"

var (
	// ErrUnsupportedFormat is returned for unrecognized document formats.
	ErrUnsupportedFormat = errors.New("outliner: unsupported document format")

	// ErrUpstreamExtraction is returned when the content-extraction
	// source produced no usable spans for a document. The accompanying
	// Result is still well-formed (empty title, empty outline).
	ErrUpstreamExtraction = errors.New("outliner: upstream extraction produced no usable spans")

	// ErrExtractionTimeout is returned when a document's source call
	// exceeded the per-document budget. Only that document is affected.
	ErrExtractionTimeout = errors.New("outliner: extraction timed out")

	// ErrInvalidConfig is returned for out-of-range configuration values.
	ErrInvalidConfig = errors.New("outliner: invalid configuration")
)
