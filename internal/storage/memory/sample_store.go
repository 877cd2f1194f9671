package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/storage"
)

// SampleStore is an in-memory implementation of storage.SampleStore.
type SampleStore struct {
	mu           sync.RWMutex
	byCompletion map[string][]*domain.Sample // kept sorted by (test_date, pressure)
	keys         map[domain.SampleKey]struct{}
}

// NewSampleStore creates a new in-memory sample store.
func NewSampleStore() *SampleStore {
	return &SampleStore{
		byCompletion: make(map[string][]*domain.Sample),
		keys:         make(map[domain.SampleKey]struct{}),
	}
}

// InsertBulk adds multiple samples. Fails entire batch on duplicate.
func (s *SampleStore) InsertBulk(_ context.Context, samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[domain.SampleKey]struct{}, len(samples))

	// First pass: validate and check for duplicates (existing + intra-batch)
	for _, sm := range samples {
		if err := storage.ValidateSample(sm); err != nil {
			return err
		}
		key := sm.Key()
		if _, exists := s.keys[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	touched := make(map[string]struct{})
	for _, sm := range samples {
		sampleCopy := *sm
		sampleCopy.TestDate = domain.TruncateDay(sm.TestDate)
		sampleCopy.Properties = sm.Properties.Copy()
		sampleCopy.Properties.Clean()

		s.keys[sampleCopy.Key()] = struct{}{}
		s.byCompletion[sm.CompletionID] = append(s.byCompletion[sm.CompletionID], &sampleCopy)
		touched[sm.CompletionID] = struct{}{}
	}

	for id := range touched {
		list := s.byCompletion[id]
		sort.SliceStable(list, func(i, j int) bool {
			if !list[i].TestDate.Equal(list[j].TestDate) {
				return list[i].TestDate.Before(list[j].TestDate)
			}
			return list[i].Pressure < list[j].Pressure
		})
	}

	return nil
}

// GetUpTo retrieves samples of a completion with test_date <= upTo,
// ordered by test_date ASC, pressure ASC.
func (s *SampleStore) GetUpTo(_ context.Context, completionID string, upTo time.Time) ([]*domain.Sample, error) {
	upTo = domain.TruncateDay(upTo)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Sample
	for _, sm := range s.byCompletion[completionID] {
		if sm.TestDate.After(upTo) {
			break
		}
		sampleCopy := *sm
		sampleCopy.Properties = sm.Properties.Copy()
		result = append(result, &sampleCopy)
	}

	return result, nil
}

// ListCompletions returns the distinct completion ids, sorted.
func (s *SampleStore) ListCompletions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byCompletion))
	for id := range s.byCompletion {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ storage.SampleStore = (*SampleStore)(nil)
