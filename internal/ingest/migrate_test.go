package ingest

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectMigrationPreamble(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec(`SELECT pg_advisory_lock`).
		WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS cricket`).
		WillReturnResult(pgxmock.NewResult("CREATE SCHEMA", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS cricket\.schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
}

func TestMigrate_AppliesPendingInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectMigrationPreamble(mock)
	mock.ExpectQuery(`SELECT filename FROM cricket\.schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"filename"}))

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS cricket\.matches`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(`INSERT INTO cricket\.schema_migrations`).
		WithArgs("0001_schema.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectExec(`CREATE OR REPLACE VIEW`).
		WillReturnResult(pgxmock.NewResult("CREATE VIEW", 0))
	mock.ExpectExec(`INSERT INTO cricket\.schema_migrations`).
		WithArgs("0002_views.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectExec(`SELECT pg_advisory_unlock`).
		WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_SkipsApplied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectMigrationPreamble(mock)
	mock.ExpectQuery(`SELECT filename FROM cricket\.schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"filename"}).
			AddRow("0001_schema.sql").
			AddRow("0002_views.sql"))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).
		WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReset_DropsSchemaFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DROP SCHEMA IF EXISTS cricket CASCADE`).
		WillReturnResult(pgxmock.NewResult("DROP SCHEMA", 0))
	expectMigrationPreamble(mock)
	mock.ExpectQuery(`SELECT filename FROM cricket\.schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"filename"}).
			AddRow("0001_schema.sql").
			AddRow("0002_views.sql"))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).
		WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, Reset(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
