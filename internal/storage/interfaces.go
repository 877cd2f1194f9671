package storage

import (
	"context"
	"time"

	"pvt-resolver/internal/domain"
)

// SampleStore provides access to completion_pvt_samples storage.
// Samples are append-only: they are never updated or deleted.
type SampleStore interface {
	// InsertBulk adds multiple samples atomically.
	// Fails entire batch on duplicate (completion_id, test_date, pressure).
	InsertBulk(ctx context.Context, samples []*domain.Sample) error

	// GetUpTo retrieves all samples of a completion with test_date <= upTo,
	// ordered by test_date ASC, pressure ASC.
	GetUpTo(ctx context.Context, completionID string, upTo time.Time) ([]*domain.Sample, error)

	// ListCompletions returns the distinct completion ids, sorted.
	ListCompletions(ctx context.Context) ([]string, error)
}

// ValidateSample checks the fields every store requires before insert.
func ValidateSample(s *domain.Sample) error {
	if s == nil || s.CompletionID == "" || s.TestDate.IsZero() {
		return ErrInvalidInput
	}
	if !domain.IsFinite(s.Pressure) {
		return ErrInvalidInput
	}
	return nil
}
