package repositories

import (
	"context"

	"timetrack-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SyncLogRepository appends audit rows for sync operations. Rows are never
// updated or deleted.
type SyncLogRepository struct {
	DB *pgxpool.Pool
}

func NewSyncLogRepository(db *pgxpool.Pool) *SyncLogRepository {
	return &SyncLogRepository{DB: db}
}

func (r *SyncLogRepository) Create(ctx context.Context, l *models.SyncLog) error {
	query := `
		INSERT INTO sync_logs(company_id, operation, level, message, entry_count,
			success_count, error_count, duration_ms, bc_error_code, bc_error_message, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(ctx, query,
		l.CompanyID, l.Operation, l.Level, l.Message, l.EntryCount,
		l.SuccessCount, l.ErrorCount, l.DurationMs, l.BCErrorCode, l.BCErrorMessage,
		nullIfEmpty(l.Details),
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *SyncLogRepository) ListByCompany(ctx context.Context, companyID, limit int) ([]*models.SyncLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, company_id, operation, level, message, entry_count, success_count,
			error_count, duration_ms, bc_error_code, bc_error_message,
			COALESCE(details::text, ''), created_at
		FROM sync_logs
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.Query(ctx, query, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.SyncLog
	for rows.Next() {
		var l models.SyncLog
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.Operation, &l.Level, &l.Message,
			&l.EntryCount, &l.SuccessCount, &l.ErrorCount, &l.DurationMs,
			&l.BCErrorCode, &l.BCErrorMessage, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
