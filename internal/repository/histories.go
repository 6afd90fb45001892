package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/domain"
)

func (r *Repository) GetAvailabilityHistory(userID int64) ([]*domain.AvailabilityHistoryEntry, error) {
	query := `
		SELECT id, occurred_at, is_available, reason
		FROM availability_history
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.AvailabilityHistoryEntry, 0)
	for rows.Next() {
		entry := &domain.AvailabilityHistoryEntry{
			UserID: userID,
		}
		if err := rows.Scan(&entry.ID, &entry.OccurredAt, &entry.IsAvailable, &entry.Reason); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) GetActionHistory(userID int64) ([]*domain.ActionHistoryEntry, error) {
	query := `
		SELECT id, occurred_at, action, detail
		FROM action_history
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.ActionHistoryEntry, 0)
	for rows.Next() {
		entry := &domain.ActionHistoryEntry{
			UserID: userID,
		}
		if err := rows.Scan(&entry.ID, &entry.OccurredAt, &entry.Action, &entry.Detail); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) GetSalaryHistory(userID int64) ([]*domain.SalaryHistoryEntry, error) {
	query := `
		SELECT id, amount, effective_date, created_at
		FROM salary_history
		WHERE user_id = $1
		ORDER BY effective_date DESC, id DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.SalaryHistoryEntry, 0)
	for rows.Next() {
		entry := &domain.SalaryHistoryEntry{
			UserID: userID,
		}
		if err := rows.Scan(&entry.ID, &entry.Amount, &entry.EffectiveDate, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) InsertSalaryHistory(entry *domain.SalaryHistoryEntry) error {
	query := `
		INSERT INTO salary_history (user_id, amount, effective_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{entry.UserID, entry.Amount, entry.EffectiveDate}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return err
	}

	return nil
}
