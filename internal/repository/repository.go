package repository

import (
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/config"
)

// 协调类操作（花名册调整、手动可用性、站点删除）跨多张表写入，
// handler 需要根据失败原因返回不同的提示，因此这里定义哨兵错误
var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrSiteNotFound     = errors.New("站点不存在")
	ErrInvalidShiftType = errors.New("站点未开设该班次")
	ErrUserUnavailable  = errors.New("用户当前不可用，无法分配")
	ErrEditConflict     = errors.New("数据已被其他操作修改，请重试")
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}
