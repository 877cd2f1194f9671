package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/storage"
)

func newMockStore(t *testing.T) (*SampleStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewSampleStore(mock), mock
}

func TestSampleStore_GetUpTo_ScansNullableProperties(t *testing.T) {
	store, mock := newMockStore(t)

	upTo := domain.Date(2024, 1, 31)
	rows := pgxmock.NewRows(sampleColumns).
		AddRow("C1", domain.Date(2023, 11, 20), 1000.0,
			domain.Float(1.1), nil, domain.Float(1.01), domain.Float(100.0),
			domain.Float(0.8), domain.Float(0.5), domain.Float(0.02), nil, domain.Float(1.02)).
		AddRow("C1", domain.Date(2023, 11, 20), 2000.0,
			domain.Float(1.2), domain.Float(0.005), nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery("SELECT completion_id, test_date, pressure").
		WithArgs("C1", upTo).
		WillReturnRows(rows)

	samples, err := store.GetUpTo(context.Background(), "C1", upTo)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	first := samples[0]
	assert.Equal(t, "C1", first.CompletionID)
	assert.Equal(t, 1000.0, first.Pressure)
	assert.Equal(t, 1.1, *first.Value(domain.OilFVF))
	assert.Nil(t, first.Value(domain.GasFVF))
	assert.Nil(t, first.Value(domain.InjectedGasFVF))
	assert.Equal(t, 1.02, *first.Value(domain.InjectedWaterFVF))

	second := samples[1]
	assert.Equal(t, 0.005, *second.Value(domain.GasFVF))
	assert.Nil(t, second.Value(domain.ViscosityOil))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleStore_GetUpTo_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT completion_id").
		WithArgs("C1", domain.Date(2024, 1, 31)).
		WillReturnError(errors.New("connection reset"))

	_, err := store.GetUpTo(context.Background(), "C1", domain.Date(2024, 1, 31))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleStore_InsertBulk_Copy(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{samplesTable}, sampleColumns).WillReturnResult(2)

	err := store.InsertBulk(context.Background(), []*domain.Sample{
		{CompletionID: "C1", TestDate: domain.Date(2024, 1, 1), Pressure: 1000},
		{CompletionID: "C1", TestDate: domain.Date(2024, 1, 1), Pressure: 2000},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleStore_InsertBulk_Duplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{samplesTable}, sampleColumns).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.InsertBulk(context.Background(), []*domain.Sample{
		{CompletionID: "C1", TestDate: domain.Date(2024, 1, 1), Pressure: 1000},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSampleStore_InsertBulk_InvalidInputSkipsDatabase(t *testing.T) {
	store, mock := newMockStore(t)

	err := store.InsertBulk(context.Background(), []*domain.Sample{{Pressure: 1000}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleStore_InsertBulk_Empty(t *testing.T) {
	store, mock := newMockStore(t)

	require.NoError(t, store.InsertBulk(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleStore_ListCompletions(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT DISTINCT completion_id").
		WillReturnRows(pgxmock.NewRows([]string{"completion_id"}).AddRow("C1").AddRow("C2"))

	ids, err := store.ListCompletions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.False(t, isDuplicateKeyError(nil))
	assert.False(t, isDuplicateKeyError(errors.New("boom")))
	assert.False(t, isDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isDuplicateKeyError(&pgconn.PgError{Code: pgErrUniqueViolation}))
}
