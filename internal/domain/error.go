package domain

import "errors"

var (
	// Common domain errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrClassifierOrder  = errors.New("classify called before a positive resume check")
	ErrStreamTerminated = errors.New("event stream already terminated")
)
