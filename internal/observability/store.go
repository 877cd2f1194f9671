package observability

import (
	"context"
	"time"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/storage"
)

// InstrumentedStore wraps a storage.SampleStore and records query metrics.
type InstrumentedStore struct {
	next     storage.SampleStore
	database string
	metrics  *Metrics
}

// InstrumentStore wraps store so every call is timed under the database label.
func InstrumentStore(store storage.SampleStore, database string, m *Metrics) *InstrumentedStore {
	if m == nil {
		m = DefaultMetrics
	}
	return &InstrumentedStore{next: store, database: database, metrics: m}
}

var _ storage.SampleStore = (*InstrumentedStore)(nil)

// InsertBulk implements storage.SampleStore.
func (s *InstrumentedStore) InsertBulk(ctx context.Context, samples []*domain.Sample) error {
	start := time.Now()
	err := s.next.InsertBulk(ctx, samples)
	s.metrics.RecordDBQuery(s.database, "insert_bulk", time.Since(start).Seconds(), err)
	if err == nil {
		s.metrics.RecordSamplesIngested(len(samples))
	}
	return err
}

// GetUpTo implements storage.SampleStore.
func (s *InstrumentedStore) GetUpTo(ctx context.Context, completionID string, upTo time.Time) ([]*domain.Sample, error) {
	start := time.Now()
	samples, err := s.next.GetUpTo(ctx, completionID, upTo)
	s.metrics.RecordDBQuery(s.database, "get_up_to", time.Since(start).Seconds(), err)
	return samples, err
}

// ListCompletions implements storage.SampleStore.
func (s *InstrumentedStore) ListCompletions(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := s.next.ListCompletions(ctx)
	s.metrics.RecordDBQuery(s.database, "list_completions", time.Since(start).Seconds(), err)
	return ids, err
}
