package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/roster"
)

// retryableTxError 识别 Postgres 主动中止事务的两类错误：
// 死锁（40P01，并发协调操作以相反顺序加锁时可能触发）和序列化失败（40001）。
// 这类失败对调用方来说和版本冲突一样，重试即可恢复
func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40P01" || pgErr.Code == "40001"
	}
	return false
}

// 本文件实现分配协调器：所有跨用户表、花名册表、历史表和通知表的
// 写入都必须发生在同一个事务里，要么全部提交要么全部回滚。
// 事务上下文派生自请求上下文，请求被取消时事务一并中止。

// siteMeta 是事务内对站点行加锁后读到的元数据。
// 对 sites 行的 FOR UPDATE 锁同时充当站点级的花名册操作串行化手段
type siteMeta struct {
	ID              int64
	Kind            domain.SiteKind
	Name            string
	IsDeleted       bool
	Version         int32
	OperatingShifts []domain.ShiftType
}

func (m *siteMeta) isOperating(shiftType domain.ShiftType) bool {
	for _, st := range m.OperatingShifts {
		if st == shiftType {
			return true
		}
	}
	return false
}

func getSiteForUpdateTx(ctx context.Context, tx *sql.Tx, siteID int64) (*siteMeta, error) {
	query := `
		SELECT kind, name, is_deleted, version
		FROM sites WHERE id = $1
		FOR UPDATE
	`

	meta := &siteMeta{
		ID: siteID,
	}
	if err := tx.QueryRowContext(ctx, query, siteID).Scan(&meta.Kind, &meta.Name, &meta.IsDeleted, &meta.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}

	query = `SELECT shift_type FROM site_operating_shifts WHERE site_id = $1`
	rows, err := tx.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shiftType domain.ShiftType
		if err := rows.Scan(&shiftType); err != nil {
			return nil, err
		}
		meta.OperatingShifts = append(meta.OperatingShifts, shiftType)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return meta, nil
}

func getUserForUpdateTx(ctx context.Context, tx *sql.Tx, userID int64) (*domain.User, error) {
	query := `
		SELECT username, password_hash, full_name, email, role, manual_availability,
			kitchen_id, shop_id, is_available, avatar_path, created_at, version
		FROM users WHERE id = $1
		FOR UPDATE
	`

	user := &domain.User{
		ID: userID,
	}
	dst := []any{
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&user.Role,
		&user.ManualAvailability,
		&user.KitchenID,
		&user.ShopID,
		&user.IsAvailable,
		&user.AvatarPath,
		&user.CreatedAt,
		&user.Version,
	}
	if err := tx.QueryRowContext(ctx, query, userID).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w (ID: %d)", ErrUserNotFound, userID)
		}
		return nil, err
	}

	return user, nil
}

// updateUserStateTx 只写分配协调器关心的字段，并递增版本号
func updateUserStateTx(ctx context.Context, tx *sql.Tx, user *domain.User) error {
	query := `
		UPDATE users
		SET
			manual_availability = $1,
			kitchen_id = $2,
			shop_id = $3,
			is_available = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	args := []any{user.ManualAvailability, user.KitchenID, user.ShopID, user.IsAvailable, user.ID, user.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&user.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}

	return nil
}

func getTeamTx(ctx context.Context, tx *sql.Tx, siteID int64, shiftType domain.ShiftType) ([]int64, error) {
	query := `
		SELECT user_id FROM site_shift_members
		WHERE site_id = $1 AND shift_type = $2
		ORDER BY position
	`

	rows, err := tx.QueryContext(ctx, query, siteID, shiftType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	userIDs := make([]int64, 0)
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return userIDs, nil
}

// countOtherShiftsTx 统计每个用户在该站点除指定班次外还出现的次数，
// 规划器用它判断被移除的用户是否还能保留站点引用
func countOtherShiftsTx(ctx context.Context, tx *sql.Tx, siteID int64, shiftType domain.ShiftType) (map[int64]int, error) {
	query := `
		SELECT user_id, COUNT(*) FROM site_shift_members
		WHERE site_id = $1 AND shift_type <> $2
		GROUP BY user_id
	`

	rows, err := tx.QueryContext(ctx, query, siteID, shiftType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var userID int64
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, err
		}
		counts[userID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func replaceTeamTx(ctx context.Context, tx *sql.Tx, siteID int64, shiftType domain.ShiftType, userIDs []int64) error {
	query := `DELETE FROM site_shift_members WHERE site_id = $1 AND shift_type = $2`
	if _, err := tx.ExecContext(ctx, query, siteID, shiftType); err != nil {
		return err
	}

	for position, userID := range userIDs {
		query = `
			INSERT INTO site_shift_members (site_id, shift_type, position, user_id)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, siteID, shiftType, position, userID); err != nil {
			return err
		}
	}

	return nil
}

func insertAvailabilityHistoryTx(ctx context.Context, tx *sql.Tx, userID int64, isAvailable bool, reason string) error {
	query := `
		INSERT INTO availability_history (user_id, is_available, reason)
		VALUES ($1, $2, $3)
	`
	_, err := tx.ExecContext(ctx, query, userID, isAvailable, reason)
	return err
}

func insertActionHistoryTx(ctx context.Context, tx *sql.Tx, userID int64, action domain.ActionKind, detail string) error {
	query := `
		INSERT INTO action_history (user_id, action, detail)
		VALUES ($1, $2, $3)
	`
	_, err := tx.ExecContext(ctx, query, userID, action, detail)
	return err
}

func insertNotificationTx(ctx context.Context, tx *sql.Tx, userID int64, message string) error {
	query := `
		INSERT INTO notifications (user_id, message)
		VALUES ($1, $2)
	`
	_, err := tx.ExecContext(ctx, query, userID, message)
	return err
}

func (m *siteMeta) describe(shiftType domain.ShiftType) string {
	return fmt.Sprintf("%s「%s」的%s", kindName(m.Kind), m.Name, string(shiftType))
}

// SetShiftRoster 把站点某个班次的花名册调整为 desired 给出的目标集合。
// 对每个变化的用户更新站点引用、重算可用性、追加历史并写入通知，
// 最后整体替换该班次的花名册，全部发生在一个事务中。
// 任何一个目标用户不可用都会导致整批失败，不存在部分分配。
func (r *Repository) SetShiftRoster(ctx context.Context, siteID int64, shiftType domain.ShiftType, desired []int64) (assigned []int64, unassigned []int64, err error) {
	defer func() {
		if retryableTxError(err) {
			err = ErrEditConflict
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	site, err := getSiteForUpdateTx(ctx, tx, siteID)
	if err != nil {
		return nil, nil, err
	}
	if site.IsDeleted {
		return nil, nil, ErrSiteNotFound
	}
	if !site.isOperating(shiftType) {
		return nil, nil, ErrInvalidShiftType
	}

	current, err := getTeamTx(ctx, tx, siteID, shiftType)
	if err != nil {
		return nil, nil, err
	}

	otherShiftCount, err := countOtherShiftsTx(ctx, tx, siteID, shiftType)
	if err != nil {
		return nil, nil, err
	}

	plan, err := roster.Build(current, desired, otherShiftCount)
	if err != nil {
		return nil, nil, err
	}

	// 目标和当前一致时不产生任何写入（也不产生历史和通知）
	if plan.Empty() {
		if err := tx.Commit(); err != nil {
			return nil, nil, err
		}
		return []int64{}, []int64{}, nil
	}

	for _, userID := range plan.ToAssign {
		user, err := getUserForUpdateTx(ctx, tx, userID)
		if err != nil {
			return nil, nil, err
		}

		// 已经在同一站点其他班次任职的用户可以再接一个班次，
		// 除此之外必须处于可用状态才能分配
		alreadyHere := user.SiteID() != nil && *user.SiteID() == siteID
		if !alreadyHere && !domain.ComputeAvailability(user.ManualAvailability, user.KitchenID, user.ShopID) {
			return nil, nil, fmt.Errorf("%w: %s", ErrUserUnavailable, user.FullName)
		}

		wasAvailable := user.IsAvailable
		user.SetSiteRef(site.Kind, siteID)
		user.RefreshAvailability()

		if err := updateUserStateTx(ctx, tx, user); err != nil {
			return nil, nil, err
		}

		detail := fmt.Sprintf("被分配到%s", site.describe(shiftType))
		if wasAvailable != user.IsAvailable {
			if err := insertAvailabilityHistoryTx(ctx, tx, userID, user.IsAvailable, detail); err != nil {
				return nil, nil, err
			}
		}
		if err := insertActionHistoryTx(ctx, tx, userID, domain.AssignAction(site.Kind), detail); err != nil {
			return nil, nil, err
		}
		if err := insertNotificationTx(ctx, tx, userID, fmt.Sprintf("您已%s", detail)); err != nil {
			return nil, nil, err
		}

		assigned = append(assigned, userID)
	}

	for _, removal := range plan.ToUnassign {
		user, err := getUserForUpdateTx(ctx, tx, removal.UserID)
		if err != nil {
			return nil, nil, err
		}

		detail := fmt.Sprintf("从%s中移除", site.describe(shiftType))

		// 只有在该站点的其他班次都不再引用这个用户时才清除站点引用，
		// 否则用户仍然属于这个站点，可用性不变
		if removal.ClearSiteRef {
			wasAvailable := user.IsAvailable
			user.ClearSiteRef()
			user.RefreshAvailability()

			if err := updateUserStateTx(ctx, tx, user); err != nil {
				return nil, nil, err
			}
			if wasAvailable != user.IsAvailable {
				if err := insertAvailabilityHistoryTx(ctx, tx, user.ID, user.IsAvailable, detail); err != nil {
					return nil, nil, err
				}
			}
		}

		if err := insertActionHistoryTx(ctx, tx, user.ID, domain.UnassignAction(site.Kind), detail); err != nil {
			return nil, nil, err
		}
		if err := insertNotificationTx(ctx, tx, user.ID, fmt.Sprintf("您已%s", detail)); err != nil {
			return nil, nil, err
		}

		unassigned = append(unassigned, removal.UserID)
	}

	if err := replaceTeamTx(ctx, tx, siteID, shiftType, desired); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return assigned, unassigned, nil
}

// SetManualAvailability 设置或清除用户的手动不可用状态。
// 用户因此转为不可用时，还要把他从当前站点的所有班次中移除并清除站点引用，
// 整个级联在同一个事务中完成，并只产生一条操作历史。
func (r *Repository) SetManualAvailability(ctx context.Context, userID int64, makeUnavailable bool, reason string) (err error) {
	defer func() {
		if retryableTxError(err) {
			err = ErrEditConflict
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	user, err := getUserForUpdateTx(ctx, tx, userID)
	if err != nil {
		return err
	}

	manuallyUnavailable := user.ManualAvailability != nil && *user.ManualAvailability == domain.ManualUnavailable
	if manuallyUnavailable == makeUnavailable {
		// 状态没有变化，不产生任何写入
		return nil
	}

	detail := reason
	if makeUnavailable {
		manual := domain.ManualUnavailable
		user.ManualAvailability = &manual

		// 级联：从当前站点的所有班次中移除
		if siteID := user.SiteID(); siteID != nil {
			site, err := getSiteForUpdateTx(ctx, tx, *siteID)
			if err != nil {
				return err
			}

			query := `DELETE FROM site_shift_members WHERE site_id = $1 AND user_id = $2`
			if _, err := tx.ExecContext(ctx, query, site.ID, userID); err != nil {
				return err
			}

			detail = fmt.Sprintf("%s（已从%s「%s」的所有班次中移除）", reason, kindName(site.Kind), site.Name)
			user.ClearSiteRef()
		}
	} else {
		user.ManualAvailability = nil
	}

	user.RefreshAvailability()
	if err := updateUserStateTx(ctx, tx, user); err != nil {
		return err
	}

	// 手动覆盖是一次显式的可用性操作，即使派生值没有变化
	// （用户原本因站点分配已不可用）也要追加一条可用性历史
	if err := insertAvailabilityHistoryTx(ctx, tx, userID, user.IsAvailable, reason); err != nil {
		return err
	}
	if err := insertActionHistoryTx(ctx, tx, userID, domain.ActionAvailabilityUpdated, detail); err != nil {
		return err
	}

	message := "您的可用状态已恢复为可用"
	if makeUnavailable {
		message = "您已被标记为不可用"
	}
	if reason != "" {
		message = fmt.Sprintf("%s（原因：%s）", message, reason)
	}
	if err := insertNotificationTx(ctx, tx, userID, message); err != nil {
		return err
	}

	return tx.Commit()
}

// SoftDeleteSite 软删除站点：站点保留在库中但标记 is_deleted，
// 所有引用该站点的用户被清除站点引用、重算可用性、记录历史并收到通知，
// 整个受影响的用户集合作为一个事务处理。
func (r *Repository) SoftDeleteSite(ctx context.Context, siteID int64) (err error) {
	defer func() {
		if retryableTxError(err) {
			err = ErrEditConflict
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	site, err := getSiteForUpdateTx(ctx, tx, siteID)
	if err != nil {
		return err
	}
	if site.IsDeleted {
		return ErrSiteNotFound
	}

	// 先收集所有引用该站点的用户再清空花名册
	query := `SELECT id FROM users WHERE kitchen_id = $1 OR shop_id = $1 ORDER BY id`
	rows, err := tx.QueryContext(ctx, query, siteID)
	if err != nil {
		return err
	}

	affectedUserIDs := make([]int64, 0)
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return err
		}
		affectedUserIDs = append(affectedUserIDs, userID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	query = `DELETE FROM site_shift_members WHERE site_id = $1`
	if _, err := tx.ExecContext(ctx, query, siteID); err != nil {
		return err
	}

	detail := fmt.Sprintf("%s「%s」已停用", kindName(site.Kind), site.Name)
	for _, userID := range affectedUserIDs {
		user, err := getUserForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		wasAvailable := user.IsAvailable
		user.ClearSiteRef()
		user.RefreshAvailability()

		if err := updateUserStateTx(ctx, tx, user); err != nil {
			return err
		}
		if wasAvailable != user.IsAvailable {
			if err := insertAvailabilityHistoryTx(ctx, tx, userID, user.IsAvailable, detail); err != nil {
				return err
			}
		}
		if err := insertActionHistoryTx(ctx, tx, userID, domain.UnassignAction(site.Kind), detail); err != nil {
			return err
		}
		if err := insertNotificationTx(ctx, tx, userID, fmt.Sprintf("%s，您的分配已被解除", detail)); err != nil {
			return err
		}
	}

	query = `
		UPDATE sites
		SET is_deleted = TRUE, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`
	var version int32
	if err := tx.QueryRowContext(ctx, query, siteID, site.Version).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}

	return tx.Commit()
}

func kindName(kind domain.SiteKind) string {
	if kind == domain.SiteKindKitchen {
		return "厨房"
	}
	return "门店"
}
