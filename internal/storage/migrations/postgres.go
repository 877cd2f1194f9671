package migrations

import (
	"context"

	"github.com/rotisserie/eris"

	"pvt-resolver/internal/storage/postgres"
)

// RunPostgresMigrations applies all embedded SQL files in lexical order.
// Migrations are expected to be idempotent.
func RunPostgresMigrations(ctx context.Context, db postgres.DB) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return eris.Wrapf(err, "apply migration %s", m.name)
		}
	}

	return nil
}
