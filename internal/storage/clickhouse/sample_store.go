package clickhouse

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/storage"
)

// SampleStore implements storage.SampleStore using ClickHouse.
type SampleStore struct {
	conn *Conn
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(conn *Conn) *SampleStore {
	return &SampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SampleStore = (*SampleStore)(nil)

// InsertBulk adds multiple samples. Fails entire batch on duplicate
// (completion_id, test_date, pressure). MergeTree does not enforce keys,
// so duplicates are checked before the batch is sent.
func (s *SampleStore) InsertBulk(ctx context.Context, samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[domain.SampleKey]struct{}, len(samples))
	for _, sm := range samples {
		if err := storage.ValidateSample(sm); err != nil {
			return err
		}
		k := sm.Key()
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for k := range seen {
		exists, err := s.exists(ctx, k)
		if err != nil {
			return eris.Wrap(err, "check exists")
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO completion_pvt_samples (
			completion_id, test_date, pressure,
			oil_formation_volume_factor, gas_formation_volume_factor, water_formation_volume_factor,
			solution_gas_oil_ratio, viscosity_oil, viscosity_water, viscosity_gas,
			injected_gas_formation_volume_factor, injected_water_formation_volume_factor
		)
	`)
	if err != nil {
		return eris.Wrap(err, "prepare batch")
	}

	for _, sm := range samples {
		props := sm.Properties.Copy()
		props.Clean()
		err = batch.Append(
			sm.CompletionID, domain.TruncateDay(sm.TestDate), sm.Pressure,
			props[domain.OilFVF], props[domain.GasFVF], props[domain.WaterFVF],
			props[domain.SolutionGOR], props[domain.ViscosityOil], props[domain.ViscosityWater], props[domain.ViscosityGas],
			props[domain.InjectedGasFVF], props[domain.InjectedWaterFVF],
		)
		if err != nil {
			return eris.Wrap(err, "append to batch")
		}
	}

	if err := batch.Send(); err != nil {
		return eris.Wrap(err, "send batch")
	}

	return nil
}

// GetUpTo retrieves samples of a completion with test_date <= upTo,
// ordered by test_date ASC, pressure ASC.
func (s *SampleStore) GetUpTo(ctx context.Context, completionID string, upTo time.Time) ([]*domain.Sample, error) {
	query := `
		SELECT completion_id, test_date, pressure,
			oil_formation_volume_factor, gas_formation_volume_factor, water_formation_volume_factor,
			solution_gas_oil_ratio, viscosity_oil, viscosity_water, viscosity_gas,
			injected_gas_formation_volume_factor, injected_water_formation_volume_factor
		FROM completion_pvt_samples FINAL
		WHERE completion_id = ? AND test_date <= ?
		ORDER BY test_date ASC, pressure ASC
	`

	rows, err := s.conn.Query(ctx, query, completionID, domain.TruncateDay(upTo))
	if err != nil {
		return nil, eris.Wrap(err, "query samples up to date")
	}
	defer rows.Close()

	return scanSamples(rows)
}

// ListCompletions returns the distinct completion ids, sorted.
func (s *SampleStore) ListCompletions(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT DISTINCT completion_id
		FROM completion_pvt_samples
		ORDER BY completion_id
	`)
	if err != nil {
		return nil, eris.Wrap(err, "query completions")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "scan completion id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate completion rows")
	}
	return ids, nil
}

// exists checks if a sample with the given key exists.
func (s *SampleStore) exists(ctx context.Context, k domain.SampleKey) (bool, error) {
	query := `
		SELECT count(*) FROM completion_pvt_samples
		WHERE completion_id = ? AND test_date = ? AND pressure = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, k.CompletionID, k.TestDate, k.Pressure).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSamples scans multiple rows.
func scanSamples(rows chRows) ([]*domain.Sample, error) {
	var samples []*domain.Sample

	for rows.Next() {
		var sm domain.Sample
		dest := []any{&sm.CompletionID, &sm.TestDate, &sm.Pressure}
		for i := range sm.Properties {
			dest = append(dest, &sm.Properties[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "scan pvt sample row")
		}
		sm.TestDate = domain.TruncateDay(sm.TestDate)
		sm.Properties.Clean()
		samples = append(samples, &sm)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate pvt sample rows")
	}

	return samples, nil
}
