package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 软删除的站点视同不存在：查询必须带 is_deleted 过滤，
// 未命中时统一返回站点不存在
func TestGetSiteByIDIgnoresDeletedSite(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM sites WHERE id = \$1 AND is_deleted = FALSE`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSiteByID(9)
	assert.ErrorIs(t, err, ErrSiteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
