package repositories

import (
	"context"

	"timetrack-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SyncBatchRepository struct {
	DB *pgxpool.Pool
}

func NewSyncBatchRepository(db *pgxpool.Pool) *SyncBatchRepository {
	return &SyncBatchRepository{DB: db}
}

func (r *SyncBatchRepository) Create(ctx context.Context, b *models.SyncBatch) error {
	query := `
		INSERT INTO sync_batches(company_id, batch_name, entry_count, total_hours, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(ctx, query,
		b.CompanyID, b.BatchName, b.EntryCount, b.TotalHours, b.Status,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *SyncBatchRepository) ListByCompany(ctx context.Context, companyID, limit int) ([]*models.SyncBatch, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, company_id, batch_name, entry_count, total_hours, status, created_at
		FROM sync_batches
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.Query(ctx, query, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*models.SyncBatch
	for rows.Next() {
		var b models.SyncBatch
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.BatchName, &b.EntryCount, &b.TotalHours, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, &b)
	}
	return batches, rows.Err()
}
