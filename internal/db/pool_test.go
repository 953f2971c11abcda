package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanrumi/location-picker/internal/model"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return mock
}

func TestRunInTx_Commit(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO states`).WithArgs("Brazil").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := RunInTx(context.Background(), mock, func(ctx context.Context) error {
		q := QuerierFromCtx(ctx, mock)
		_, err := q.Exec(ctx, "INSERT INTO states (name) VALUES ($1)", "Brazil")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	mock := newMockPool(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := RunInTx(context.Background(), mock, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_NestedReusesOuter(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := RunInTx(context.Background(), mock, func(ctx context.Context) error {
		return RunInTx(ctx, mock, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_BeginError(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	err := RunInTx(context.Background(), mock, func(context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestQuerierFromCtx_DefaultsToPool(t *testing.T) {
	mock := newMockPool(t)
	assert.Equal(t, Querier(mock), QuerierFromCtx(context.Background(), mock))
}

func TestClassify(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	assert.ErrorIs(t, Classify(fk), model.ErrReferential)

	unique := &pgconn.PgError{Code: "23505"}
	assert.ErrorIs(t, Classify(unique), model.ErrStore)

	assert.ErrorIs(t, Classify(errors.New("conn closed")), model.ErrStore)
	assert.Equal(t, context.Canceled, Classify(context.Canceled))
	assert.Nil(t, Classify(nil))
}
