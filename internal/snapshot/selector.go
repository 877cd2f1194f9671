// Package snapshot picks the PVT samples that are in force at a month-end.
//
// A sample is valid from its test date until the next later test date of the
// same completion. Selecting as of a date means evaluating at the last day of
// that date's month and keeping the samples whose window covers it.
package snapshot

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/storage"
)

// Snapshot is the set of samples active at Date.
type Snapshot struct {
	CompletionID string
	Date         time.Time
	Samples      []domain.ActiveSample
}

// Selector loads samples from a store and activates them for a snapshot date.
type Selector struct {
	store  storage.SampleStore
	logger *zap.Logger
}

// NewSelector creates a Selector. A nil logger falls back to the global zap logger.
func NewSelector(store storage.SampleStore, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.L()
	}
	return &Selector{store: store, logger: logger}
}

// Select returns the samples of completionID active at the month-end of asOf.
// An empty snapshot is a valid result. Store failures are returned wrapped.
func (s *Selector) Select(ctx context.Context, completionID string, asOf time.Time) (Snapshot, error) {
	date := SnapshotDate(asOf)

	samples, err := s.store.GetUpTo(ctx, completionID, date)
	if err != nil {
		return Snapshot{}, eris.Wrapf(err, "snapshot: load samples for %s", completionID)
	}

	active := Activate(samples, date)
	s.logger.Debug("snapshot selected",
		zap.String("completion_id", completionID),
		zap.Time("snapshot_date", date),
		zap.Int("fetched", len(samples)),
		zap.Int("active", len(active)),
	)

	return Snapshot{CompletionID: completionID, Date: date, Samples: active}, nil
}

// Activate computes each sample's validity window and keeps those covering date.
// Samples are expected to belong to one completion; rows with a later test
// date than date are ignored. The input is not modified.
func Activate(samples []*domain.Sample, date time.Time) []domain.ActiveSample {
	date = domain.TruncateDay(date)

	sorted := make([]*domain.Sample, 0, len(samples))
	for _, sm := range samples {
		if sm != nil && !sm.TestDate.After(date) {
			sorted = append(sorted, sm)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TestDate.Before(sorted[j].TestDate)
	})

	var active []domain.ActiveSample
	for i := 0; i < len(sorted); {
		// Group samples sharing a test date; they share one window.
		j := i + 1
		for j < len(sorted) && sorted[j].TestDate.Equal(sorted[i].TestDate) {
			j++
		}

		end := domain.EndOfTime
		if j < len(sorted) {
			end = sorted[j].TestDate
		}

		for _, sm := range sorted[i:j] {
			a := domain.ActiveSample{Sample: *sm, EndDate: end}
			if a.Covers(date) {
				active = append(active, a)
			}
		}
		i = j
	}

	return active
}
