package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{
	"username", "password_hash", "full_name", "email", "role", "manual_availability",
	"kitchen_id", "shop_id", "is_available", "avatar_path", "created_at", "version",
}

// 在某个厨房任职的用户：派生可用性为 false
func siteHolderRows() *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).
		AddRow("zhangwei1", "hash", "张伟", "zhangwei1@example.com", "厨师", nil,
			int64(3), nil, false, nil, time.Now(), int32(1))
}

// 设置手动不可用时，即使用户原本就因站点分配不可用（派生值不变），
// 也必须追加一条可用性历史，并且级联移除只产生一条操作历史
func TestSetManualAvailabilityAuditsSiteHolder(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM users WHERE id = \$1\s+FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(siteHolderRows())
	mock.ExpectQuery(`FROM sites WHERE id = \$1\s+FOR UPDATE`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "name", "is_deleted", "version"}).
			AddRow("kitchen", "中央厨房", false, int32(1)))
	mock.ExpectQuery(`SELECT shift_type FROM site_operating_shifts WHERE site_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"shift_type"}).AddRow("早班"))
	mock.ExpectExec(`DELETE FROM site_shift_members WHERE site_id = \$1 AND user_id = \$2`).
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE users`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(2)))
	mock.ExpectExec(`INSERT INTO availability_history`).
		WithArgs(int64(7), false, "家中有事").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO action_history`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.SetManualAvailability(context.Background(), 7, true, "家中有事")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 状态没有变化时不产生任何写入
func TestSetManualAvailabilityNoOp(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM users WHERE id = \$1\s+FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("zhangwei1", "hash", "张伟", "zhangwei1@example.com", "厨师", "不可用",
				nil, nil, false, nil, time.Now(), int32(1)))
	mock.ExpectRollback()

	err := repo.SetManualAvailability(context.Background(), 7, true, "再次标记")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Postgres 因死锁中止事务时，调用方应拿到可重试的冲突错误
func TestSetManualAvailabilityDeadlockRetryable(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM users WHERE id = \$1\s+FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnError(&pgconn.PgError{Code: "40P01"})
	mock.ExpectRollback()

	err := repo.SetManualAvailability(context.Background(), 7, true, "测试")
	assert.ErrorIs(t, err, ErrEditConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetShiftRosterDeadlockRetryable(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM sites WHERE id = \$1\s+FOR UPDATE`).
		WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: "40001"})
	mock.ExpectRollback()

	_, _, err := repo.SetShiftRoster(context.Background(), 3, "早班", []int64{7})
	assert.ErrorIs(t, err, ErrEditConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
