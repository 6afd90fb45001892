package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/config"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5

	return NewRepository(cfg, db), mock
}

func TestRetryableTxError(t *testing.T) {
	assert.True(t, retryableTxError(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, retryableTxError(fmt.Errorf("事务失败: %w", &pgconn.PgError{Code: "40001"})))

	assert.False(t, retryableTxError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, retryableTxError(errors.New("其他错误")))
	assert.False(t, retryableTxError(nil))
}
