// Package sqlite stores PVT samples in a single SQLite file using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/storage"
	"pvt-resolver/internal/storage/migrations"
)

const sampleColumns = `completion_id, test_date, pressure,
	oil_formation_volume_factor, gas_formation_volume_factor, water_formation_volume_factor,
	solution_gas_oil_ratio, viscosity_oil, viscosity_water, viscosity_gas,
	injected_gas_formation_volume_factor, injected_water_formation_volume_factor`

// SampleStore implements storage.SampleStore on SQLite.
type SampleStore struct {
	db *sql.DB
}

var _ storage.SampleStore = (*SampleStore)(nil)

// Open opens a SQLite database at path and configures WAL mode.
func Open(path string) (*SampleStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SampleStore{db: db}, nil
}

// Migrate applies the embedded schema.
func (s *SampleStore) Migrate(ctx context.Context) error {
	return eris.Wrap(migrations.RunSQLiteMigrations(ctx, s.db), "sqlite: migrate")
}

func (s *SampleStore) Close() error {
	return s.db.Close()
}

// InsertBulk inserts all samples in one transaction. A duplicate key rolls
// back the whole batch.
func (s *SampleStore) InsertBulk(ctx context.Context, samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	for _, sm := range samples {
		if err := storage.ValidateSample(sm); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 3+domain.NumProperties), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO completion_pvt_samples (`+sampleColumns+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, sm := range samples {
		props := sm.Properties.Copy()
		props.Clean()

		args := make([]any, 0, 3+domain.NumProperties)
		args = append(args, sm.CompletionID, sm.TestDate.Format(domain.DateLayout), sm.Pressure)
		for _, v := range props {
			args = append(args, v)
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return eris.Wrap(err, "sqlite: insert sample")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

// GetUpTo retrieves samples of a completion with test_date <= upTo,
// ordered by test_date, pressure.
func (s *SampleStore) GetUpTo(ctx context.Context, completionID string, upTo time.Time) ([]*domain.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sampleColumns+`
		FROM completion_pvt_samples
		WHERE completion_id = ? AND test_date <= ?
		ORDER BY test_date ASC, pressure ASC`,
		completionID, upTo.Format(domain.DateLayout),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query samples")
	}
	defer rows.Close()

	var samples []*domain.Sample
	for rows.Next() {
		var (
			sm   domain.Sample
			date string
		)
		dest := []any{&sm.CompletionID, &date, &sm.Pressure}
		for i := range sm.Properties {
			dest = append(dest, &sm.Properties[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sample")
		}
		if sm.TestDate, err = domain.ParseDate(date); err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse test_date %q", date)
		}
		sm.Properties.Clean()
		samples = append(samples, &sm)
	}
	return samples, eris.Wrap(rows.Err(), "sqlite: iterate samples")
}

// ListCompletions returns the distinct completion ids, sorted.
func (s *SampleStore) ListCompletions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT completion_id FROM completion_pvt_samples ORDER BY completion_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query completions")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan completion id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate completions")
}

func isDuplicateKeyError(err error) bool {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		code := sqErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
