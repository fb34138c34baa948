package resumes

import "errors"

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformed marks a stored value that is not a valid resume record.
	ErrMalformed = errors.New("malformed resume record")
)
