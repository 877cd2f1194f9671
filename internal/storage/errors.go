package storage

import "errors"

// Storage errors for the append-only sample stores.
var (
	// ErrDuplicateKey is returned when a sample with the same
	// (completion_id, test_date, pressure) already exists, in the store or in the batch.
	ErrDuplicateKey = errors.New("duplicate key: sample already recorded")

	// ErrInvalidInput is returned when a sample fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
