package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"timetrack-backend/internal/models"
	"timetrack-backend/internal/timeutil"
)

// TimesheetService handles bulk timesheet saves. A bulk save is keyed by
// (resource, job, task, date); when more than one local row exists for a key
// the rows are merged down to at most one editable row, with finalized rows
// left untouched.
type TimesheetService struct {
	EntryRepo   EntryStore
	LogRepo     AuditStore
	CompanyRepo CompanyStore
}

func NewTimesheetService(entryRepo EntryStore, logRepo AuditStore, companyRepo CompanyStore) *TimesheetService {
	return &TimesheetService{EntryRepo: entryRepo, LogRepo: logRepo, CompanyRepo: companyRepo}
}

// BulkSave applies every line of the request independently: one bad line is
// reported in the result and never blocks the others.
func (s *TimesheetService) BulkSave(ctx context.Context, companyID int, resourceNo string, userID int, req *models.BulkSaveRequest) (*models.BulkSaveResult, error) {
	start := time.Now()

	company, err := s.CompanyRepo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result := &models.BulkSaveResult{}
	for _, line := range req.Lines {
		if err := s.saveLine(ctx, company, resourceNo, userID, line, result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s/%s %s: %v", line.JobNo, line.JobTaskNo, line.EntryDate, err))
		}
	}

	s.writeAudit(ctx, companyID, result, time.Since(start))
	return result, nil
}

func (s *TimesheetService) saveLine(ctx context.Context, company *models.Company, resourceNo string, userID int, line models.BulkSaveLine, result *models.BulkSaveResult) error {
	date, err := validateLine(line)
	if err != nil {
		return err
	}

	existing, err := s.EntryRepo.ListByKey(ctx, company.ID, resourceNo, line.JobNo, line.JobTaskNo, date)
	if err != nil {
		return err
	}

	var editable, nonEditable []*models.TimeEntry
	for _, e := range existing {
		if e.IsEditable {
			editable = append(editable, e)
		} else {
			nonEditable = append(nonEditable, e)
		}
	}

	// Finalized rows already account for part of the requested total; only
	// the remainder lives in editable rows.
	var nonEditableHours float64
	for _, e := range nonEditable {
		nonEditableHours += e.Hours
	}
	needed := line.Hours - nonEditableHours
	if needed < 0 {
		needed = 0
	}

	if len(editable) == 0 {
		if needed == 0 {
			return nil
		}
		entry := &models.TimeEntry{
			CompanyID:       company.ID,
			ResourceNo:      resourceNo,
			JobNo:           line.JobNo,
			JobTaskNo:       line.JobTaskNo,
			EntryDate:       date,
			Hours:           needed,
			Description:     line.Description,
			SyncState:       models.SyncStateNotSynced,
			IsEditable:      true,
			CreatedByUserID: userID,
		}
		if company.JournalBatchName != "" {
			entry.BCBatchName = &company.JournalBatchName
		}
		if err := s.EntryRepo.Create(ctx, entry); err != nil {
			return err
		}
		result.Created++
		return nil
	}

	// Rows arrive ordered by created_at, so the first editable row is the
	// one to keep; the rest are duplicates.
	kept := editable[0]
	for _, dup := range editable[1:] {
		if err := s.EntryRepo.Delete(ctx, dup.ID); err != nil {
			return err
		}
		log.Printf("[Timesheet] merged duplicate entry %s into %s", dup.ID, kept.ID)
		result.Deleted++
	}

	if needed == 0 {
		if err := s.EntryRepo.Delete(ctx, kept.ID); err != nil {
			return err
		}
		result.Deleted++
		return nil
	}

	kept.Hours = needed
	kept.Description = line.Description
	kept.SyncState = kept.SyncState.ApplyEdit()
	if err := s.EntryRepo.Update(ctx, kept); err != nil {
		return err
	}
	result.Updated++
	return nil
}

// validateLine enforces field-level rules before anything is written.
func validateLine(line models.BulkSaveLine) (time.Time, error) {
	date, err := timeutil.ParseDate(line.EntryDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid entry date %q, expected YYYY-MM-DD", line.EntryDate)
	}
	if line.Hours < 0 || line.Hours > 24 {
		return time.Time{}, fmt.Errorf("hours must be between 0 and 24, got %v", line.Hours)
	}
	if line.Hours > 0 && strings.TrimSpace(line.Description) == "" {
		return time.Time{}, fmt.Errorf("description is required")
	}
	if line.JobNo == "" || line.JobTaskNo == "" {
		return time.Time{}, fmt.Errorf("job and task are required")
	}
	return date, nil
}

func (s *TimesheetService) writeAudit(ctx context.Context, companyID int, result *models.BulkSaveResult, duration time.Duration) {
	level := models.SyncLevelSuccess
	if result.Failed > 0 {
		level = models.SyncLevelWarning
	}
	entry := &models.SyncLog{
		CompanyID:    companyID,
		Operation:    models.SyncOpBulkSave,
		Level:        level,
		Message:      fmt.Sprintf("%d created, %d updated, %d deleted, %d failed", result.Created, result.Updated, result.Deleted, result.Failed),
		EntryCount:   result.Created + result.Updated + result.Deleted + result.Failed,
		SuccessCount: result.Created + result.Updated + result.Deleted,
		ErrorCount:   result.Failed,
		DurationMs:   duration.Milliseconds(),
	}
	if err := s.LogRepo.Create(ctx, entry); err != nil {
		log.Printf("[Timesheet] failed to write audit log: %v", err)
	}
}
