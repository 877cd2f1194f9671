package migrations

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	chstore "pvt-resolver/internal/storage/clickhouse"
)

// RunClickhouseMigrations ensures the database exists and applies all embedded SQL files.
// Returns a ClickHouse connection to the target database for reuse.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	files, err := load(ClickhouseFS, "clickhouse")
	if err != nil {
		return nil, err
	}

	adminConn, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, eris.Wrap(err, "connect clickhouse admin")
	}
	if err := adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName)); err != nil {
		adminConn.Close()
		return nil, eris.Wrapf(err, "create database %s", dbName)
	}
	if err := adminConn.Close(); err != nil {
		return nil, eris.Wrap(err, "close admin connection")
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, eris.Wrap(err, "connect clickhouse db")
	}

	for _, m := range files {
		if err := validateNoSemicolonInStrings(m.sql); err != nil {
			conn.Close()
			return nil, eris.Wrapf(err, "validate migration %s", m.name)
		}

		// The driver does not accept multi-statement Exec.
		for _, stmt := range splitStatements(m.sql) {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, eris.Wrapf(err, "apply migration %s", m.name)
			}
		}
	}

	return conn, nil
}

var databaseName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", eris.Wrap(err, "parse clickhouse dsn")
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", eris.New("clickhouse dsn missing database")
	}
	if !databaseName.MatchString(db) {
		return "", eris.Errorf("clickhouse database name %q: only letters, digits and underscores allowed", db)
	}
	return db, nil
}
