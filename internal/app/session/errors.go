package session

import "errors"

var (
	ErrNotFound         = errors.New("session_not_found")
	ErrInvalidOutcome   = errors.New("invalid_outcome")
	ErrEmptyHistory     = errors.New("empty_history")
	ErrIndexOutOfRange  = errors.New("index_out_of_range")
	ErrInsufficientData = errors.New("insufficient_data")
	ErrPersist          = errors.New("persist_failed")
)
