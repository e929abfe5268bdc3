package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"timetrack-backend/internal/metrics"
	"timetrack-backend/internal/models"
)

// StatusService pulls approval status and reviewer comments for previously
// synced entries back from BC. This path is read-only against BC: it never
// mutates journal lines, only mirrors their state locally.
type StatusService struct {
	EntryRepo   EntryStore
	LogRepo     AuditStore
	CompanyRepo CompanyStore
	TenantRepo  TenantStore
	NewGateway  GatewayFactory
}

func NewStatusService(entryRepo EntryStore, logRepo AuditStore, companyRepo CompanyStore,
	tenantRepo TenantStore, newGateway GatewayFactory) *StatusService {
	return &StatusService{
		EntryRepo:   entryRepo,
		LogRepo:     logRepo,
		CompanyRepo: companyRepo,
		TenantRepo:  tenantRepo,
		NewGateway:  newGateway,
	}
}

// Refresh compares BC-side approval state against local state for all synced
// entries (optionally one resource) and applies only the deltas.
func (s *StatusService) Refresh(ctx context.Context, companyID int, resourceNo string) (*models.StatusRefreshResult, error) {
	start := time.Now()

	company, err := s.CompanyRepo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.TenantRepo.Get(ctx, company.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IntegrationEnabled {
		return nil, ErrIntegrationDisabled
	}

	entries, err := s.EntryRepo.ListSyncedWithJournalID(ctx, companyID, resourceNo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch synced entries: %w", err)
	}

	result := &models.StatusRefreshResult{Success: true, CheckedEntries: len(entries)}
	if len(entries) == 0 {
		s.writeAudit(ctx, companyID, result, time.Since(start))
		return result, nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, *e.BCJournalID)
	}

	gateway := s.NewGateway(tenant, company)
	statuses, err := gateway.GetLineStatuses(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch line statuses: %w", err)
	}

	for _, entry := range entries {
		status, ok := statuses[*entry.BCJournalID]
		if !ok {
			// Line gone from BC (posted and archived, or deleted remotely).
			// Nothing to mirror; leave the local row alone.
			continue
		}

		newStatus := strings.ToLower(status.ApprovalStatus)
		if newStatus == "" {
			newStatus = models.ApprovalStatusPending
		}
		if newStatus == entry.ApprovalStatus && status.Comments == entry.BCComments {
			continue
		}

		if err := s.EntryRepo.UpdateApproval(ctx, entry.ID, newStatus, status.Comments); err != nil {
			log.Printf("[StatusRefresh] failed to apply status for entry %s: %v", entry.ID, err)
			continue
		}

		result.UpdatedEntries++
		result.Updates = append(result.Updates, models.StatusUpdate{
			EntryID:    entry.ID,
			OldStatus:  entry.ApprovalStatus,
			NewStatus:  newStatus,
			OldComment: entry.BCComments,
			NewComment: status.Comments,
		})
	}

	metrics.StatusRefreshUpdatesTotal.Add(float64(result.UpdatedEntries))
	s.writeAudit(ctx, companyID, result, time.Since(start))
	return result, nil
}

func (s *StatusService) writeAudit(ctx context.Context, companyID int, result *models.StatusRefreshResult, duration time.Duration) {
	details, _ := json.Marshal(result.Updates)
	entry := &models.SyncLog{
		CompanyID:    companyID,
		Operation:    models.SyncOpStatusRefresh,
		Level:        models.SyncLevelSuccess,
		Message:      fmt.Sprintf("%d checked, %d updated", result.CheckedEntries, result.UpdatedEntries),
		EntryCount:   result.CheckedEntries,
		SuccessCount: result.UpdatedEntries,
		DurationMs:   duration.Milliseconds(),
		Details:      string(details),
	}
	if err := s.LogRepo.Create(ctx, entry); err != nil {
		log.Printf("[StatusRefresh] failed to write audit log: %v", err)
	}
}
