package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(nil, nil, "cricket.players", []string{"player_name", "team"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_SchemaQualified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"match_id", "innings_number", "over_number"}
	mock.ExpectCopyFrom(pgx.Identifier{"cricket", "ball_by_ball"}, cols).
		WillReturnResult(3)

	n, err := CopyFrom(context.Background(), mock, "cricket.ball_by_ball", cols,
		[][]any{{1, 1, 0}, {1, 1, 0}, {1, 1, 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_BareTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"player_name", "team"}
	mock.ExpectCopyFrom(pgx.Identifier{"scratch"}, cols).
		WillReturnResult(1)

	n, err := CopyFrom(context.Background(), mock, "scratch", cols, [][]any{{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"player_name", "team"}
	mock.ExpectCopyFrom(pgx.Identifier{"cricket", "players"}, cols).
		WillReturnError(assert.AnError)

	_, err = CopyFrom(context.Background(), mock, "cricket.players", cols, [][]any{{"a", "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO cricket.players")
	assert.NoError(t, mock.ExpectationsWereMet())
}
