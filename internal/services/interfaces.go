package services

import (
	"context"
	"errors"
	"time"

	"timetrack-backend/internal/bc"
	"timetrack-backend/internal/models"
)

// Errors that abort a whole operation (as opposed to entry-local failures,
// which are reported through result counts).
var (
	ErrIntegrationDisabled = errors.New("business central integration is not enabled for this tenant")
	ErrNotEditable         = errors.New("entry is finalized in business central and can no longer be modified")
	ErrNotRetryEligible    = errors.New("entry is not in a retryable sync state")
)

// EntryStore is the subset of the time entry repository the sync services
// depend on.
type EntryStore interface {
	Get(ctx context.Context, id string) (*models.TimeEntry, error)
	Create(ctx context.Context, e *models.TimeEntry) error
	Update(ctx context.Context, e *models.TimeEntry) error
	Delete(ctx context.Context, id string) error
	GetPendingSync(ctx context.Context, companyID int, resourceNo string) ([]*models.TimeEntry, error)
	ListByKey(ctx context.Context, companyID int, resourceNo, jobNo, jobTaskNo string, date time.Time) ([]*models.TimeEntry, error)
	ListSyncedWithJournalID(ctx context.Context, companyID int, resourceNo string) ([]*models.TimeEntry, error)
	MarkSynced(ctx context.Context, id, journalID, batchName string, lineNo int, syncedAt time.Time) error
	MarkSyncError(ctx context.Context, id string, syncedAt time.Time) error
	UpdateApproval(ctx context.Context, id, approvalStatus, comments string) error
}

// EntryLister serves the HTTP layer's read queries. Satisfied by
// *repositories.TimeEntryRepository alongside EntryStore.
type EntryLister interface {
	List(ctx context.Context, companyID int, resourceNo string, from, to *time.Time) ([]*models.TimeEntry, error)
}

// BatchStore records sync batches.
type BatchStore interface {
	Create(ctx context.Context, b *models.SyncBatch) error
}

// AuditStore appends sync audit rows.
type AuditStore interface {
	Create(ctx context.Context, l *models.SyncLog) error
}

// CompanyStore resolves companies.
type CompanyStore interface {
	Get(ctx context.Context, id int) (*models.Company, error)
}

// TenantStore resolves tenants.
type TenantStore interface {
	Get(ctx context.Context, id int) (*models.Tenant, error)
}

// Gateway is the Business Central surface the services call. *bc.Client
// implements it.
type Gateway interface {
	CreateJournalLine(ctx context.Context, spec bc.JournalLineSpec) (*bc.JournalLine, error)
	UpdateJournalLine(ctx context.Context, spec bc.JournalLineSpec) (*bc.JournalLine, error)
	DeleteJournalLine(ctx context.Context, id string) error
	GetLineStatuses(ctx context.Context, ids []string) (map[string]bc.LineStatus, error)
	GetResourceAssignments(ctx context.Context, resourceNo string) (*bc.ResourceAssignments, error)
}

// GatewayFactory builds one gateway per pass. The OAuth token cache lives on
// the gateway instance, so a fresh instance per pass avoids any need for
// synchronization across concurrent passes.
type GatewayFactory func(tenant *models.Tenant, company *models.Company) Gateway
