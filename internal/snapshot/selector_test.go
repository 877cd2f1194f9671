package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/storage/memory"
)

func sample(date time.Time, pressure float64) *domain.Sample {
	return &domain.Sample{CompletionID: "C1", TestDate: date, Pressure: pressure}
}

func pressures(active []domain.ActiveSample) []float64 {
	out := make([]float64, len(active))
	for i, a := range active {
		out[i] = a.Pressure
	}
	return out
}

func TestActivate_Empty(t *testing.T) {
	assert.Empty(t, Activate(nil, domain.Date(2024, 1, 31)))
}

func TestActivate_LatestTestDateGroupWins(t *testing.T) {
	samples := []*domain.Sample{
		sample(domain.Date(2023, 6, 1), 1000),
		sample(domain.Date(2023, 6, 1), 2000),
		sample(domain.Date(2023, 11, 15), 1500),
		sample(domain.Date(2023, 11, 15), 2500),
		sample(domain.Date(2023, 11, 15), 3500),
	}

	active := Activate(samples, domain.Date(2024, 1, 31))

	assert.Equal(t, []float64{1500, 2500, 3500}, pressures(active))
	for _, a := range active {
		assert.True(t, domain.EndOfTime.Equal(a.EndDate))
		assert.True(t, a.Covers(domain.Date(2024, 1, 31)))
	}
}

func TestActivate_IgnoresFutureSamples(t *testing.T) {
	samples := []*domain.Sample{
		sample(domain.Date(2024, 1, 10), 1000),
		sample(domain.Date(2024, 2, 10), 2000),
	}

	active := Activate(samples, domain.Date(2024, 1, 31))

	require.Len(t, active, 1)
	assert.Equal(t, 1000.0, active[0].Pressure)
	assert.True(t, domain.EndOfTime.Equal(active[0].EndDate))
}

func TestActivate_UnsortedInput(t *testing.T) {
	samples := []*domain.Sample{
		sample(domain.Date(2023, 11, 15), 2500),
		sample(domain.Date(2023, 6, 1), 1000),
		sample(domain.Date(2023, 11, 15), 1500),
	}

	active := Activate(samples, domain.Date(2024, 1, 31))

	assert.ElementsMatch(t, []float64{1500, 2500}, pressures(active))
}

func TestActivate_WindowsRespectInvariant(t *testing.T) {
	dates := []time.Time{
		domain.Date(2022, 1, 1),
		domain.Date(2022, 7, 1),
		domain.Date(2023, 3, 31),
		domain.Date(2023, 4, 1),
	}
	var samples []*domain.Sample
	for i, d := range dates {
		samples = append(samples, sample(d, float64(1000*(i+1))))
	}

	for _, snap := range []time.Time{
		domain.Date(2021, 12, 31),
		domain.Date(2022, 1, 31),
		domain.Date(2022, 7, 31),
		domain.Date(2023, 3, 31),
		domain.Date(2023, 4, 30),
	} {
		for _, a := range Activate(samples, snap) {
			assert.False(t, a.TestDate.After(snap), "test date after snapshot %v", snap)
			assert.True(t, snap.Before(a.EndDate), "window closed before snapshot %v", snap)
		}
	}

	assert.Empty(t, Activate(samples, domain.Date(2021, 12, 31)))
	assert.Equal(t, []float64{3000}, pressures(Activate(samples, domain.Date(2023, 3, 31))))
}

func TestActivate_DoesNotMutateInput(t *testing.T) {
	samples := []*domain.Sample{
		sample(domain.Date(2023, 11, 15), 2500),
		sample(domain.Date(2023, 6, 1), 1000),
	}

	_ = Activate(samples, domain.Date(2024, 1, 31))

	assert.Equal(t, 2500.0, samples[0].Pressure)
	assert.Equal(t, 1000.0, samples[1].Pressure)
}

func TestSelector_Select(t *testing.T) {
	store := memory.NewSampleStore()
	ctx := context.Background()
	require.NoError(t, store.InsertBulk(ctx, []*domain.Sample{
		sample(domain.Date(2023, 12, 1), 1000),
		sample(domain.Date(2024, 1, 20), 2000),
		sample(domain.Date(2024, 2, 5), 3000),
	}))

	sel := NewSelector(store, zap.NewNop())

	snap, err := sel.Select(ctx, "C1", domain.Date(2024, 1, 3))
	require.NoError(t, err)

	assert.Equal(t, "C1", snap.CompletionID)
	assert.True(t, domain.Date(2024, 1, 31).Equal(snap.Date))
	assert.Equal(t, []float64{2000}, pressures(snap.Samples))
}

func TestSelector_UnknownCompletion(t *testing.T) {
	sel := NewSelector(memory.NewSampleStore(), zap.NewNop())

	snap, err := sel.Select(context.Background(), "C2", domain.Date(2024, 1, 3))
	require.NoError(t, err)
	assert.Empty(t, snap.Samples)
}

type failingStore struct {
	memory.SampleStore
	err error
}

func (f *failingStore) GetUpTo(context.Context, string, time.Time) ([]*domain.Sample, error) {
	return nil, f.err
}

func TestSelector_StoreFailureIsSurfaced(t *testing.T) {
	boom := errors.New("connection refused")
	sel := NewSelector(&failingStore{err: boom}, zap.NewNop())

	_, err := sel.Select(context.Background(), "C1", domain.Date(2024, 1, 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
