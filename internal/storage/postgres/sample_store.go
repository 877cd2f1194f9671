package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/storage"
)

const samplesTable = "completion_pvt_samples"

// sampleColumns lists the table columns in scan/copy order.
var sampleColumns = []string{
	"completion_id",
	"test_date",
	"pressure",
	"oil_formation_volume_factor",
	"gas_formation_volume_factor",
	"water_formation_volume_factor",
	"solution_gas_oil_ratio",
	"viscosity_oil",
	"viscosity_water",
	"viscosity_gas",
	"injected_gas_formation_volume_factor",
	"injected_water_formation_volume_factor",
}

// SampleStore implements storage.SampleStore using PostgreSQL.
type SampleStore struct {
	db DB
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(db DB) *SampleStore {
	return &SampleStore{db: db}
}

// Compile-time interface check.
var _ storage.SampleStore = (*SampleStore)(nil)

// InsertBulk adds samples with a single COPY. The primary key rejects
// duplicates against stored rows and within the batch, and COPY is atomic.
func (s *SampleStore) InsertBulk(ctx context.Context, samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(samples))
	for _, sm := range samples {
		if err := storage.ValidateSample(sm); err != nil {
			return err
		}
		props := sm.Properties.Copy()
		props.Clean()

		row := make([]any, 0, len(sampleColumns))
		row = append(row, sm.CompletionID, domain.TruncateDay(sm.TestDate), sm.Pressure)
		for _, v := range props {
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	_, err := s.db.CopyFrom(ctx, pgx.Identifier{samplesTable}, sampleColumns, pgx.CopyFromRows(rows))
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return eris.Wrap(err, "copy pvt samples")
	}
	return nil
}

// GetUpTo retrieves samples of a completion with test_date <= upTo.
func (s *SampleStore) GetUpTo(ctx context.Context, completionID string, upTo time.Time) ([]*domain.Sample, error) {
	query := `
		SELECT completion_id, test_date, pressure,
			oil_formation_volume_factor, gas_formation_volume_factor, water_formation_volume_factor,
			solution_gas_oil_ratio, viscosity_oil, viscosity_water, viscosity_gas,
			injected_gas_formation_volume_factor, injected_water_formation_volume_factor
		FROM completion_pvt_samples
		WHERE completion_id = $1 AND test_date <= $2
		ORDER BY test_date ASC, pressure ASC
	`

	rows, err := s.db.Query(ctx, query, completionID, domain.TruncateDay(upTo))
	if err != nil {
		return nil, eris.Wrap(err, "get pvt samples up to date")
	}
	defer rows.Close()

	return scanSamples(rows)
}

// ListCompletions returns the distinct completion ids, sorted.
func (s *SampleStore) ListCompletions(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT completion_id
		FROM completion_pvt_samples
		ORDER BY completion_id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "list completions")
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

// scanSamples scans multiple rows into a slice of Sample.
func scanSamples(rows pgx.Rows) ([]*domain.Sample, error) {
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
