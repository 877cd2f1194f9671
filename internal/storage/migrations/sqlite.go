package migrations

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
)

// RunSQLiteMigrations applies all embedded SQLite files statement by statement.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	files, err := load(SQLiteFS, "sqlite")
	if err != nil {
		return err
	}

	for _, m := range files {
		if err := validateNoSemicolonInStrings(m.sql); err != nil {
			return eris.Wrapf(err, "validate migration %s", m.name)
		}
		for _, stmt := range splitStatements(m.sql) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return eris.Wrapf(err, "apply migration %s", m.name)
			}
		}
	}

	return nil
}
