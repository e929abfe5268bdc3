package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"timetrack-backend/internal/bc"
	"timetrack-backend/internal/metrics"
	"timetrack-backend/internal/models"
	"timetrack-backend/internal/timeutil"
)

// SyncService drives reconciliation passes: it mirrors pending local entries
// into BC job journal lines, committing each entry's local state immediately
// after its remote call so a crash mid-pass can leave at most one entry
// in-flight.
type SyncService struct {
	EntryRepo   EntryStore
	BatchRepo   BatchStore
	LogRepo     AuditStore
	CompanyRepo CompanyStore
	TenantRepo  TenantStore
	NewGateway  GatewayFactory
}

func NewSyncService(entryRepo EntryStore, batchRepo BatchStore, logRepo AuditStore,
	companyRepo CompanyStore, tenantRepo TenantStore, newGateway GatewayFactory) *SyncService {
	return &SyncService{
		EntryRepo:   entryRepo,
		BatchRepo:   batchRepo,
		LogRepo:     logRepo,
		CompanyRepo: companyRepo,
		TenantRepo:  tenantRepo,
		NewGateway:  newGateway,
	}
}

// entryOutcome is the per-entry record accumulated during a pass.
type entryOutcome struct {
	EntryID string `json:"entry_id"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"bc_error_code,omitempty"`
}

type batchTotals struct {
	count int
	hours float64
}

// Sync runs one reconciliation pass for a company, optionally scoped to one
// resource. Entry-local failures never abort the pass; only context
// resolution and the integration-disabled gate produce a top-level error.
func (s *SyncService) Sync(ctx context.Context, companyID int, resourceNo string) (*models.SyncResult, error) {
	start := time.Now()

	company, tenant, err := s.resolveContext(ctx, companyID)
	if err != nil {
		return nil, err
	}

	pending, err := s.EntryRepo.GetPendingSync(ctx, companyID, resourceNo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending entries: %w", err)
	}

	result, outcomes, batches := s.runPass(ctx, tenant, company, pending)
	s.recordBatches(ctx, company, batches)
	s.writeSummary(ctx, company, models.SyncOpSync, result, outcomes, time.Since(start))
	s.countPass(result)
	return result, nil
}

// RetryEntry is the degenerate one-entry pass. It additionally validates
// that the entry is still editable and in a retry-eligible state.
func (s *SyncService) RetryEntry(ctx context.Context, entryID string) (*models.SyncResult, error) {
	start := time.Now()

	entry, err := s.EntryRepo.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.IsEditable {
		return nil, ErrNotEditable
	}
	if !entry.SyncState.IsRetryEligible() {
		return nil, ErrNotRetryEligible
	}

	company, tenant, err := s.resolveContext(ctx, entry.CompanyID)
	if err != nil {
		return nil, err
	}

	result, outcomes, batches := s.runPass(ctx, tenant, company, []*models.TimeEntry{entry})
	s.recordBatches(ctx, company, batches)
	s.writeSummary(ctx, company, models.SyncOpRetry, result, outcomes, time.Since(start))
	s.countPass(result)
	return result, nil
}

// resolveContext loads company and tenant and enforces the integration gate.
func (s *SyncService) resolveContext(ctx context.Context, companyID int) (*models.Company, *models.Tenant, error) {
	company, err := s.CompanyRepo.Get(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	tenant, err := s.TenantRepo.Get(ctx, company.TenantID)
	if err != nil {
		return nil, nil, err
	}
	if !tenant.IntegrationEnabled {
		return nil, nil, ErrIntegrationDisabled
	}
	return company, tenant, nil
}

// runPass processes the pending set strictly sequentially. BC assigns line
// numbers per batch in order, so remote calls against the same batch must
// not interleave.
func (s *SyncService) runPass(ctx context.Context, tenant *models.Tenant, company *models.Company, pending []*models.TimeEntry) (*models.SyncResult, []entryOutcome, map[string]batchTotals) {
	result := &models.SyncResult{Success: true, BatchesUsed: []string{}}
	outcomes := make([]entryOutcome, 0, len(pending))
	batches := make(map[string]batchTotals)

	if len(pending) == 0 {
		return result, outcomes, batches
	}

	gateway := s.NewGateway(tenant, company)

	for _, entry := range pending {
		outcome := s.syncOne(ctx, gateway, company, entry)
		outcomes = append(outcomes, outcome)

		if outcome.Error != "" {
			result.FailedEntries++
			result.Errors = append(result.Errors, fmt.Sprintf("Entry %s: %s", entry.ID, outcome.Error))
			continue
		}

		result.SyncedEntries++
		batch := *entry.BCBatchName
		totals := batches[batch]
		totals.count++
		totals.hours += entry.Hours
		batches[batch] = totals
	}

	for name := range batches {
		result.BatchesUsed = append(result.BatchesUsed, name)
	}
	result.Success = result.FailedEntries == 0
	return result, outcomes, batches
}

// syncOne mirrors a single entry into BC and immediately persists the
// outcome locally. An empty outcome.Error means success.
func (s *SyncService) syncOne(ctx context.Context, gateway Gateway, company *models.Company, entry *models.TimeEntry) entryOutcome {
	now := timeutil.Now()

	// Batch name is configuration; a missing one is a hard per-entry error,
	// never something to invent a fallback for.
	if entry.BCBatchName == nil || *entry.BCBatchName == "" {
		log.Printf("[Sync] entry %s has no batch name configured, marking error", entry.ID)
		if err := s.EntryRepo.MarkSyncError(ctx, entry.ID, now); err != nil {
			log.Printf("[Sync] failed to persist error state for entry %s: %v", entry.ID, err)
		}
		return entryOutcome{EntryID: entry.ID, Error: "No batch name configured", Code: "MISSING_BATCH_NAME"}
	}

	spec := bc.JournalLineSpec{
		JournalTemplateName: company.JournalTemplateName,
		JournalBatchName:    *entry.BCBatchName,
		JobNo:               entry.JobNo,
		JobTaskNo:           entry.JobTaskNo,
		ResourceNo:          entry.ResourceNo,
		PostingDate:         timeutil.FormatDate(entry.EntryDate),
		Quantity:            entry.Hours,
		Description:         entry.Description,
	}

	var line *bc.JournalLine
	var err error
	if entry.HasJournalLine() {
		// A prior pass already created this line; updating the same line is
		// what keeps re-sync idempotent.
		spec.ID = *entry.BCJournalID
		if entry.BCLineNo != nil {
			spec.LineNo = *entry.BCLineNo
		}
		line, err = gateway.UpdateJournalLine(ctx, spec)
	} else {
		line, err = gateway.CreateJournalLine(ctx, spec)
	}

	if err != nil {
		outcome := entryOutcome{EntryID: entry.ID, Error: err.Error()}
		var remoteErr *bc.RemoteCallError
		if errors.As(err, &remoteErr) {
			outcome.Code = remoteErr.Code
		}
		if persistErr := s.EntryRepo.MarkSyncError(ctx, entry.ID, now); persistErr != nil {
			log.Printf("[Sync] failed to persist error state for entry %s: %v", entry.ID, persistErr)
		}
		return outcome
	}

	// Persist success immediately, before touching the next entry. If this
	// write fails, BC holds a line the local store does not know about:
	// that is a critical divergence, logged as such, and the remote call is
	// not rolled back.
	if err := s.EntryRepo.MarkSynced(ctx, entry.ID, line.ID, *entry.BCBatchName, line.LineNo, now); err != nil {
		log.Printf("[Sync] CRITICAL: entry %s created in BC as %s but local success write failed: %v", entry.ID, line.ID, err)
		s.writeAudit(ctx, &models.SyncLog{
			CompanyID:  company.ID,
			Operation:  models.SyncOpSync,
			Level:      models.SyncLevelCritical,
			Message:    fmt.Sprintf("entry %s synced to BC line %s but local state update failed: %v", entry.ID, line.ID, err),
			EntryCount: 1,
		})
	}

	entry.BCJournalID = &line.ID
	entry.SyncState = models.SyncStateSynced
	return entryOutcome{EntryID: entry.ID}
}

// recordBatches creates one SyncBatch row per batch that had at least one
// success in this pass.
func (s *SyncService) recordBatches(ctx context.Context, company *models.Company, batches map[string]batchTotals) {
	for name, totals := range batches {
		batch := &models.SyncBatch{
			CompanyID:  company.ID,
			BatchName:  name,
			EntryCount: totals.count,
			TotalHours: totals.hours,
			Status:     "synced",
		}
		if err := s.BatchRepo.Create(ctx, batch); err != nil {
			log.Printf("[Sync] failed to record sync batch %s: %v", name, err)
		}
	}
}

// writeSummary appends the one audit row every pass produces, including the
// zero-entries case.
func (s *SyncService) writeSummary(ctx context.Context, company *models.Company, operation string, result *models.SyncResult, outcomes []entryOutcome, duration time.Duration) {
	level := models.SyncLevelSuccess
	switch {
	case result.FailedEntries > 0 && result.SyncedEntries == 0:
		level = models.SyncLevelError
	case result.FailedEntries > 0:
		level = models.SyncLevelWarning
	}

	details, _ := json.Marshal(outcomes)
	entry := &models.SyncLog{
		CompanyID:    company.ID,
		Operation:    operation,
		Level:        level,
		Message:      fmt.Sprintf("%d synced, %d failed", result.SyncedEntries, result.FailedEntries),
		EntryCount:   result.SyncedEntries + result.FailedEntries,
		SuccessCount: result.SyncedEntries,
		ErrorCount:   result.FailedEntries,
		DurationMs:   duration.Milliseconds(),
		Details:      string(details),
	}
	for _, o := range outcomes {
		if o.Code != "" {
			entry.BCErrorCode = o.Code
			entry.BCErrorMessage = o.Error
			break
		}
	}
	s.writeAudit(ctx, entry)
}

func (s *SyncService) writeAudit(ctx context.Context, entry *models.SyncLog) {
	if err := s.LogRepo.Create(ctx, entry); err != nil {
		log.Printf("[Sync] failed to write audit log: %v", err)
	}
}

func (s *SyncService) countPass(result *models.SyncResult) {
	outcome := "success"
	switch {
	case result.FailedEntries > 0 && result.SyncedEntries == 0:
		outcome = "failed"
	case result.FailedEntries > 0:
		outcome = "partial"
	}
	metrics.SyncPassesTotal.WithLabelValues(outcome).Inc()
	metrics.SyncEntriesTotal.WithLabelValues("synced").Add(float64(result.SyncedEntries))
	metrics.SyncEntriesTotal.WithLabelValues("failed").Add(float64(result.FailedEntries))
}
