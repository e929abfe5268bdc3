package repositories

import (
	"context"
	"errors"
	"fmt"

	"timetrack-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TenantRepository struct {
	DB *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{DB: db}
}

const tenantColumns = `id, name, bc_tenant_id, bc_client_id, bc_client_secret,
	bc_environment, integration_enabled, created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.BCTenantID, &t.BCClientID, &t.BCClientSecret,
		&t.BCEnvironment, &t.IntegrationEnabled, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) Get(ctx context.Context, id int) (*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE id = $1`, tenantColumns)
	t, err := scanTenant(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenant %d not found", id)
	}
	return t, err
}

func (r *TenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	query := `
		INSERT INTO tenants(name, bc_tenant_id, bc_client_id, bc_client_secret,
			bc_environment, integration_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		t.Name, t.BCTenantID, t.BCClientID, t.BCClientSecret,
		t.BCEnvironment, t.IntegrationEnabled,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}
