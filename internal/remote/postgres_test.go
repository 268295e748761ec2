package remote_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/remote"
)

func newPostgresStore(t *testing.T) (*remote.PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &remote.PostgresStore{Pool: mock}, mock
}

func TestPostgresFindJobID(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM maintenance_jobs WHERE job_number = $1`)).
		WithArgs("KM4521").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("row-1"))

	id, ok, err := store.FindJobID(context.Background(), "KM4521")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "row-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindJobIDAbsent(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM maintenance_jobs WHERE job_number = $1`)).
		WithArgs("KM9999").
		WillReturnError(pgx.ErrNoRows)

	_, ok, err := store.FindJobID(context.Background(), "KM9999")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertJobReturnsGeneratedID(t *testing.T) {
	store, mock := newPostgresStore(t)
	rec := testRecord()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO maintenance_jobs`)).
		WithArgs(rec.JobNumber, rec.ClientName, rec.Mobile, rec.Email,
			rec.SiteAddress, rec.Suburb, rec.ExtractedAt.UTC()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("row-7"))

	id, err := store.InsertJob(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "row-7", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateJob(t *testing.T) {
	store, mock := newPostgresStore(t)
	rec := testRecord()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE maintenance_jobs`)).
		WithArgs(rec.ClientName, rec.Mobile, rec.Email, rec.SiteAddress,
			rec.Suburb, rec.ExtractedAt.UTC(), "row-7").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.UpdateJob(context.Background(), "row-7", rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteThenInsertItems(t *testing.T) {
	store, mock := newPostgresStore(t)
	items := testRecord().Items

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM maintenance_items WHERE maintenance_job_id = $1`)).
		WithArgs("row-7").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO maintenance_items`)).
		WithArgs("row-7", items[0].ItemName, items[0].Reason, items[0].DateCreated,
			items[0].DeliveryInfo, items[0].DeliveryDate, items[0].Delivered).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := context.Background()
	require.NoError(t, store.DeleteItems(ctx, "row-7"))
	require.NoError(t, store.InsertItems(ctx, "row-7", items))
	assert.NoError(t, mock.ExpectationsWereMet())
}
