package models

import "time"

// Company is one BC company within a tenant. Journal template/batch names
// come from configuration; they are never invented as a fallback.
type Company struct {
	ID                  int       `json:"id"`
	TenantID            int       `json:"tenant_id"`
	Name                string    `json:"name"`
	BCCompanyID         string    `json:"bc_company_id"` // BC company GUID
	JournalTemplateName string    `json:"journal_template_name"`
	JournalBatchName    string    `json:"journal_batch_name"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
