package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/domain"
)

func (r *Repository) CreateSite(site *domain.Site) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO sites (kind, name, address)
		VALUES ($1, $2, $3)
		RETURNING id, is_deleted, created_at, version
	`
	args := []any{site.Kind, site.Name, site.Address}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&site.ID, &site.IsDeleted, &site.CreatedAt, &site.Version); err != nil {
		return err
	}

	for _, shiftType := range site.OperatingShifts {
		query = `
			INSERT INTO site_operating_shifts (site_id, shift_type)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, site.ID, shiftType); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	// 新站点还没有任何花名册
	site.Teams = make([]domain.ShiftTeam, 0)

	return nil
}

// GetSiteByID 对外只暴露未被软删除的站点，已删除的站点视同不存在
func (r *Repository) GetSiteByID(id int64) (*domain.Site, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT kind, name, address, image_path, is_deleted, created_at, version
		FROM sites WHERE id = $1 AND is_deleted = FALSE
	`

	site := &domain.Site{
		ID: id,
	}

	dst := []any{
		&site.Kind,
		&site.Name,
		&site.Address,
		&site.ImagePath,
		&site.IsDeleted,
		&site.CreatedAt,
		&site.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}

	if err := r.fillSiteShifts(ctx, site); err != nil {
		return nil, err
	}

	return site, nil
}

// fillSiteShifts 补全站点的开设班次和各班次花名册
func (r *Repository) fillSiteShifts(ctx context.Context, site *domain.Site) error {
	query := `
		SELECT shift_type FROM site_operating_shifts
		WHERE site_id = $1
		ORDER BY shift_type
	`

	rows, err := r.dbpool.QueryContext(ctx, query, site.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	site.OperatingShifts = make([]domain.ShiftType, 0)
	for rows.Next() {
		var shiftType domain.ShiftType
		if err := rows.Scan(&shiftType); err != nil {
			return err
		}
		site.OperatingShifts = append(site.OperatingShifts, shiftType)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	query = `
		SELECT shift_type, user_id FROM site_shift_members
		WHERE site_id = $1
		ORDER BY shift_type, position
	`

	memberRows, err := r.dbpool.QueryContext(ctx, query, site.ID)
	if err != nil {
		return err
	}
	defer memberRows.Close()

	teamsMap := make(map[domain.ShiftType][]int64)
	for memberRows.Next() {
		var shiftType domain.ShiftType
		var userID int64
		if err := memberRows.Scan(&shiftType, &userID); err != nil {
			return err
		}
		teamsMap[shiftType] = append(teamsMap[shiftType], userID)
	}
	if err := memberRows.Err(); err != nil {
		return err
	}

	// 按开设班次的顺序组装花名册，未开设的班次不可能有成员
	site.Teams = make([]domain.ShiftTeam, 0, len(teamsMap))
	for _, shiftType := range site.OperatingShifts {
		userIDs, exists := teamsMap[shiftType]
		if !exists {
			continue
		}
		site.Teams = append(site.Teams, domain.ShiftTeam{
			ShiftType: shiftType,
			UserIDs:   userIDs,
		})
	}

	return nil
}

// GetAllSites 返回未被软删除的站点，kind 为空时返回所有类型
func (r *Repository) GetAllSites(kind domain.SiteKind) ([]*domain.Site, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, kind, name, address, image_path, is_deleted, created_at, version
		FROM sites
		WHERE is_deleted = FALSE AND ($1 = '' OR kind = $1)
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := make([]*domain.Site, 0)
	for rows.Next() {
		site := &domain.Site{}
		dst := []any{
			&site.ID,
			&site.Kind,
			&site.Name,
			&site.Address,
			&site.ImagePath,
			&site.IsDeleted,
			&site.CreatedAt,
			&site.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, site := range sites {
		if err := r.fillSiteShifts(ctx, site); err != nil {
			return nil, err
		}
	}

	return sites, nil
}

// UpdateSite 只更新站点的基础信息，开设班次和花名册走各自的操作
func (r *Repository) UpdateSite(site *domain.Site) error {
	query := `
		UPDATE sites
		SET
			name = $1,
			address = $2,
			image_path = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{site.Name, site.Address, site.ImagePath, site.ID, site.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&site.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}

	return nil
}
