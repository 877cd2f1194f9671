package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pvt-resolver/internal/config"
	"pvt-resolver/internal/ingest"
	"pvt-resolver/internal/observability"
	"pvt-resolver/internal/storage"
	chstore "pvt-resolver/internal/storage/clickhouse"
	"pvt-resolver/internal/storage/memory"
	"pvt-resolver/internal/storage/migrations"
	pgstore "pvt-resolver/internal/storage/postgres"
	"pvt-resolver/internal/storage/sqlite"
)

// openStore connects the configured sample store and wraps it with metrics.
// The returned cleanup must be called when done.
func openStore(ctx context.Context, sc config.StoreConfig, m *observability.Metrics) (storage.SampleStore, func(), error) {
	var (
		store   storage.SampleStore
		cleanup = func() {}
	)

	switch sc.Driver {
	case config.DriverMemory:
		store = memory.NewSampleStore()

	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, sc.PostgresDSN)
		if err != nil {
			return nil, nil, eris.Wrap(err, "connect to postgres")
		}
		store = pgstore.NewSampleStore(pool)
		cleanup = pool.Close

	case config.DriverClickHouse:
		conn, err := chstore.NewConn(ctx, sc.ClickHouseDSN)
		if err != nil {
			return nil, nil, eris.Wrap(err, "connect to clickhouse")
		}
		store = chstore.NewSampleStore(conn)
		cleanup = func() { _ = conn.Close() }

	case config.DriverSQLite:
		st, err := sqlite.Open(sc.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, nil, err
		}
		store = st
		cleanup = func() { _ = st.Close() }

	default:
		return nil, nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}

	zap.L().Debug("store opened", zap.String("driver", sc.Driver))
	return observability.InstrumentStore(store, sc.Driver, m), cleanup, nil
}

// runMigrations applies the embedded schema for SQL drivers.
func runMigrations(ctx context.Context, sc config.StoreConfig) error {
	switch sc.Driver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, sc.PostgresDSN)
		if err != nil {
			return eris.Wrap(err, "connect to postgres")
		}
		defer pool.Close()
		return migrations.RunPostgresMigrations(ctx, pool)

	case config.DriverClickHouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, sc.ClickHouseDSN)
		if err != nil {
			return err
		}
		return conn.Close()

	case config.DriverSQLite:
		st, err := sqlite.Open(sc.SQLitePath)
		if err != nil {
			return err
		}
		defer st.Close()
		return st.Migrate(ctx)

	default:
		zap.L().Info("nothing to migrate", zap.String("driver", sc.Driver))
		return nil
	}
}

// loadSamples reads samples from path and inserts them into store.
func loadSamples(ctx context.Context, store storage.SampleStore, path string) (int, error) {
	samples, err := ingest.LoadFile(path)
	if err != nil {
		return 0, err
	}
	if err := store.InsertBulk(ctx, samples); err != nil {
		return 0, eris.Wrapf(err, "insert samples from %s", path)
	}
	return len(samples), nil
}
