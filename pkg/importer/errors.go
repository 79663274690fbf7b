package importer

import "errors"

var (
	// ErrMissingParameter is returned when an upload is requested without a file name.
	ErrMissingParameter = errors.New("missing fileName parameter")
	// ErrInvalidSourceStream is returned when a staged object cannot be read as a byte stream.
	ErrInvalidSourceStream = errors.New("invalid stream from S3 object")
	// ErrArchiveIncomplete is returned when the processed copy exists but the
	// staged original could not be removed.
	ErrArchiveIncomplete = errors.New("archive incomplete")
)
