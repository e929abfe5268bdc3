package repositories

import (
	"context"
	"errors"
	"fmt"

	"timetrack-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepository struct {
	DB *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

const companyColumns = `id, tenant_id, name, bc_company_id, journal_template_name,
	journal_batch_name, created_at, updated_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.BCCompanyID, &c.JournalTemplateName,
		&c.JournalBatchName, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Get(ctx context.Context, id int) (*models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1`, companyColumns)
	c, err := scanCompany(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("company %d not found", id)
	}
	return c, err
}

func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) error {
	query := `
		INSERT INTO companies(tenant_id, name, bc_company_id, journal_template_name, journal_batch_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		c.TenantID, c.Name, c.BCCompanyID, c.JournalTemplateName, c.JournalBatchName,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}
