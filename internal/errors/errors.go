package errors

import "errors"

var (
	ErrWPPasswordRequired = errors.New("WP_PASSWORD environment variable is required")
	ErrUnknownPipeline    = errors.New("unknown pipeline")
	ErrEmptySecret        = errors.New("secret version has no payload")
	ErrJobNameRequired    = errors.New("job name is required")
	ErrImageRequired      = errors.New("container image is required")
)
