package services

import "errors"

// Cleaning service errors
var (
	// ErrInvalidInput covers requests that are malformed before any file
	// is read
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFileType is returned when the declared type cannot be
	// derived from the request or the file name
	ErrInvalidFileType = errors.New("invalid file type")
)
