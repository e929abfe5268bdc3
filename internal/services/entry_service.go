package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"timetrack-backend/internal/bc"
	"timetrack-backend/internal/models"
	"timetrack-backend/internal/timeutil"
)

// EntryService is the single-entry CRUD surface. Edits of a synced entry
// demote it back to not_synced so the next reconciliation pass picks it up;
// the one exception is a rejected entry, whose BC line is pushed immediately
// so its ERP-side approval state resets to pending.
type EntryService struct {
	EntryRepo   EntryStore
	LogRepo     AuditStore
	CompanyRepo CompanyStore
	TenantRepo  TenantStore
	NewGateway  GatewayFactory
}

func NewEntryService(entryRepo EntryStore, logRepo AuditStore, companyRepo CompanyStore,
	tenantRepo TenantStore, newGateway GatewayFactory) *EntryService {
	return &EntryService{
		EntryRepo:   entryRepo,
		LogRepo:     logRepo,
		CompanyRepo: companyRepo,
		TenantRepo:  tenantRepo,
		NewGateway:  newGateway,
	}
}

func (s *EntryService) Get(ctx context.Context, id string) (*models.TimeEntry, error) {
	return s.EntryRepo.Get(ctx, id)
}

// Create validates and persists a new entry in not_synced state. The batch
// name comes from company configuration; when the company has none the entry
// is stored without one and the sync pass reports it.
func (s *EntryService) Create(ctx context.Context, companyID int, resourceNo string, userID int, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	date, err := validateEntryFields(req.EntryDate, req.Hours, req.Description, req.JobNo, req.JobTaskNo)
	if err != nil {
		return nil, err
	}
	if req.Hours == 0 {
		return nil, fmt.Errorf("hours must be greater than 0")
	}

	company, err := s.CompanyRepo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	entry := &models.TimeEntry{
		CompanyID:       companyID,
		ResourceNo:      resourceNo,
		JobNo:           req.JobNo,
		JobTaskNo:       req.JobTaskNo,
		EntryDate:       date,
		Hours:           req.Hours,
		Description:     req.Description,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		SyncState:       models.SyncStateNotSynced,
		IsEditable:      true,
		CreatedByUserID: userID,
	}
	if company.JournalBatchName != "" {
		entry.BCBatchName = &company.JournalBatchName
	}
	if err := s.EntryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update mutates an editable entry. Non-editable rows are rejected without
// contacting BC.
func (s *EntryService) Update(ctx context.Context, id string, req *models.UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	entry, err := s.EntryRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.IsEditable {
		return nil, ErrNotEditable
	}

	date, err := validateEntryFields(req.EntryDate, req.Hours, req.Description, req.JobNo, req.JobTaskNo)
	if err != nil {
		return nil, err
	}
	if req.Hours == 0 {
		return nil, fmt.Errorf("hours must be greater than 0")
	}

	entry.JobNo = req.JobNo
	entry.JobTaskNo = req.JobTaskNo
	entry.EntryDate = date
	entry.Hours = req.Hours
	entry.Description = req.Description
	entry.StartTime = req.StartTime
	entry.EndTime = req.EndTime

	if s.isRejected(entry) {
		// Push the update to BC first so the line's approval state resets to
		// pending. A remote failure here is logged, never blocking the edit.
		s.resetRejectedLine(ctx, entry, false)
		entry.ApprovalStatus = models.ApprovalStatusPending
		entry.BCComments = ""
	}

	entry.SyncState = entry.SyncState.ApplyEdit()
	if err := s.EntryRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes an editable entry, pushing the BC delete first when the
// entry is synced and rejected.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	entry, err := s.EntryRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !entry.IsEditable {
		return ErrNotEditable
	}

	if s.isRejected(entry) {
		s.resetRejectedLine(ctx, entry, true)
	}

	return s.EntryRepo.Delete(ctx, id)
}

func (s *EntryService) isRejected(entry *models.TimeEntry) bool {
	return entry.SyncState == models.SyncStateSynced &&
		strings.EqualFold(entry.ApprovalStatus, models.ApprovalStatusRejected) &&
		entry.HasJournalLine()
}

// resetRejectedLine pushes the mutation to the rejected entry's BC line.
// Failures are audit-logged only; the local mutation always proceeds.
func (s *EntryService) resetRejectedLine(ctx context.Context, entry *models.TimeEntry, remove bool) {
	company, err := s.CompanyRepo.Get(ctx, entry.CompanyID)
	if err != nil {
		s.logResetFailure(ctx, entry, err)
		return
	}
	tenant, err := s.TenantRepo.Get(ctx, company.TenantID)
	if err != nil {
		s.logResetFailure(ctx, entry, err)
		return
	}
	if !tenant.IntegrationEnabled {
		return
	}

	gateway := s.NewGateway(tenant, company)
	if remove {
		err = gateway.DeleteJournalLine(ctx, *entry.BCJournalID)
	} else {
		spec := bc.JournalLineSpec{
			ID:                  *entry.BCJournalID,
			JournalTemplateName: company.JournalTemplateName,
			JobNo:               entry.JobNo,
			JobTaskNo:           entry.JobTaskNo,
			ResourceNo:          entry.ResourceNo,
			PostingDate:         timeutil.FormatDate(entry.EntryDate),
			Quantity:            entry.Hours,
			Description:         entry.Description,
		}
		if entry.BCBatchName != nil {
			spec.JournalBatchName = *entry.BCBatchName
		}
		if entry.BCLineNo != nil {
			spec.LineNo = *entry.BCLineNo
		}
		_, err = gateway.UpdateJournalLine(ctx, spec)
	}
	if err != nil {
		log.Printf("[Entry] failed to reset rejected BC line for entry %s: %v", entry.ID, err)
		s.logResetFailure(ctx, entry, err)
	}
}

func (s *EntryService) logResetFailure(ctx context.Context, entry *models.TimeEntry, cause error) {
	logEntry := &models.SyncLog{
		CompanyID:  entry.CompanyID,
		Operation:  models.SyncOpRejectedReset,
		Level:      models.SyncLevelWarning,
		Message:    fmt.Sprintf("could not reset rejected BC line for entry %s: %v", entry.ID, cause),
		EntryCount: 1,
		ErrorCount: 1,
	}
	var remoteErr *bc.RemoteCallError
	if errors.As(cause, &remoteErr) {
		logEntry.BCErrorCode = remoteErr.Code
		logEntry.BCErrorMessage = remoteErr.Message
	}
	if err := s.LogRepo.Create(ctx, logEntry); err != nil {
		log.Printf("[Entry] failed to write audit log: %v", err)
	}
}

func validateEntryFields(entryDate string, hours float64, description, jobNo, jobTaskNo string) (time.Time, error) {
	date, err := timeutil.ParseDate(entryDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid entry date %q, expected YYYY-MM-DD", entryDate)
	}
	if hours < 0 || hours > 24 {
		return time.Time{}, fmt.Errorf("hours must be between 0 and 24, got %v", hours)
	}
	if hours > 0 && strings.TrimSpace(description) == "" {
		return time.Time{}, fmt.Errorf("description is required")
	}
	if jobNo == "" || jobTaskNo == "" {
		return time.Time{}, fmt.Errorf("job and task are required")
	}
	return date, nil
}
