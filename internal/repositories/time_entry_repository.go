package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timetrack-backend/internal/models"
	"timetrack-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TimeEntryRepository struct {
	DB *pgxpool.Pool
}

func NewTimeEntryRepository(db *pgxpool.Pool) *TimeEntryRepository {
	return &TimeEntryRepository{DB: db}
}

const timeEntryColumns = `id, company_id, resource_no, job_no, job_task_no, entry_date, hours,
	description, start_time, end_time, sync_state, bc_journal_id, bc_batch_name,
	bc_line_no, synced_at, is_editable, approval_status, bc_comments,
	created_by_user_id, created_at, updated_at`

func scanTimeEntry(row pgx.Row) (*models.TimeEntry, error) {
	var e models.TimeEntry
	var state string
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.ResourceNo, &e.JobNo, &e.JobTaskNo, &e.EntryDate, &e.Hours,
		&e.Description, &e.StartTime, &e.EndTime, &state, &e.BCJournalID, &e.BCBatchName,
		&e.BCLineNo, &e.SyncedAt, &e.IsEditable, &e.ApprovalStatus, &e.BCComments,
		&e.CreatedByUserID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Legacy values ("modified", "pending", ...) collapse to not_synced
	e.SyncState = models.NormalizeSyncState(state)
	return &e, nil
}

func (r *TimeEntryRepository) Create(ctx context.Context, e *models.TimeEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.SyncState == "" {
		e.SyncState = models.SyncStateNotSynced
	}
	if e.ApprovalStatus == "" {
		e.ApprovalStatus = models.ApprovalStatusPending
	}

	query := `
		INSERT INTO time_entries(id, company_id, resource_no, job_no, job_task_no, entry_date,
			hours, description, start_time, end_time, sync_state, bc_batch_name, is_editable,
			approval_status, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, true, $13, $14)
		RETURNING created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		e.ID, e.CompanyID, e.ResourceNo, e.JobNo, e.JobTaskNo, e.EntryDate,
		e.Hours, e.Description, e.StartTime, e.EndTime, string(e.SyncState), e.BCBatchName,
		e.ApprovalStatus, e.CreatedByUserID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *TimeEntryRepository) Get(ctx context.Context, id string) (*models.TimeEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_entries WHERE id = $1`, timeEntryColumns)
	entry, err := scanTimeEntry(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("time entry %s not found", id)
	}
	return entry, err
}

// Update persists the user-editable fields and the sync state. The sync
// state is normalized on write so legacy values never survive an edit.
func (r *TimeEntryRepository) Update(ctx context.Context, e *models.TimeEntry) error {
	query := `
		UPDATE time_entries
		SET job_no = $2, job_task_no = $3, entry_date = $4, hours = $5, description = $6,
			start_time = $7, end_time = $8, sync_state = $9, approval_status = $10,
			bc_comments = $11, updated_at = $12
		WHERE id = $1
	`
	e.SyncState = models.NormalizeSyncState(string(e.SyncState))
	e.UpdatedAt = timeutil.Now()
	tag, err := r.DB.Exec(ctx, query,
		e.ID, e.JobNo, e.JobTaskNo, e.EntryDate, e.Hours, e.Description,
		e.StartTime, e.EndTime, string(e.SyncState), e.ApprovalStatus,
		e.BCComments, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("time entry %s not found", e.ID)
	}
	return nil
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("time entry %s not found", id)
	}
	return nil
}

// List returns a company's entries, optionally scoped to one resource and/or
// a date range.
func (r *TimeEntryRepository) List(ctx context.Context, companyID int, resourceNo string, from, to *time.Time) ([]*models.TimeEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_entries WHERE company_id = $1`, timeEntryColumns)
	args := []interface{}{companyID}

	if resourceNo != "" {
		args = append(args, resourceNo)
		query += fmt.Sprintf(" AND resource_no = $%d", len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}
	query += " ORDER BY entry_date DESC, created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

// GetPendingSync is the single atomic read of all entries eligible for a
// sync attempt: editable and not yet successfully synced. Optionally scoped
// to one resource. Returned in creation order.
func (r *TimeEntryRepository) GetPendingSync(ctx context.Context, companyID int, resourceNo string) ([]*models.TimeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM time_entries
		WHERE company_id = $1
		  AND is_editable = true
		  AND sync_state NOT IN ('synced')
	`, timeEntryColumns)
	args := []interface{}{companyID}

	if resourceNo != "" {
		args = append(args, resourceNo)
		query += fmt.Sprintf(" AND resource_no = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

// ListByKey returns all rows colliding on one (resource, job, task, date)
// key, earliest first. Used by the bulk-save dedup resolver.
func (r *TimeEntryRepository) ListByKey(ctx context.Context, companyID int, resourceNo, jobNo, jobTaskNo string, date time.Time) ([]*models.TimeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM time_entries
		WHERE company_id = $1 AND resource_no = $2 AND job_no = $3 AND job_task_no = $4
		  AND entry_date = $5
		ORDER BY created_at
	`, timeEntryColumns)

	rows, err := r.DB.Query(ctx, query, companyID, resourceNo, jobNo, jobTaskNo, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

// ListSyncedWithJournalID returns the entries whose approval state can be
// refreshed from BC: successfully synced and carrying a journal line id.
func (r *TimeEntryRepository) ListSyncedWithJournalID(ctx context.Context, companyID int, resourceNo string) ([]*models.TimeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM time_entries
		WHERE company_id = $1 AND sync_state = 'synced' AND bc_journal_id IS NOT NULL
	`, timeEntryColumns)
	args := []interface{}{companyID}

	if resourceNo != "" {
		args = append(args, resourceNo)
		query += fmt.Sprintf(" AND resource_no = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTimeEntries(rows)
}

// MarkSynced records a successful remote call: state, BC linkage and sync
// timestamp in one statement, committed immediately per entry.
func (r *TimeEntryRepository) MarkSynced(ctx context.Context, id, journalID, batchName string, lineNo int, syncedAt time.Time) error {
	query := `
		UPDATE time_entries
		SET sync_state = 'synced', bc_journal_id = $2, bc_batch_name = $3, bc_line_no = $4,
			synced_at = $5, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.DB.Exec(ctx, query, id, journalID, batchName, lineNo, syncedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("time entry %s not found", id)
	}
	return nil
}

// MarkSyncError records a failed remote call.
func (r *TimeEntryRepository) MarkSyncError(ctx context.Context, id string, syncedAt time.Time) error {
	query := `
		UPDATE time_entries
		SET sync_state = 'error', synced_at = $2, updated_at = $2
		WHERE id = $1
	`
	tag, err := r.DB.Exec(ctx, query, id, syncedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("time entry %s not found", id)
	}
	return nil
}

// UpdateApproval mirrors BC-side approval fields. This is the only write
// allowed against non-editable rows.
func (r *TimeEntryRepository) UpdateApproval(ctx context.Context, id, approvalStatus, comments string) error {
	query := `
		UPDATE time_entries
		SET approval_status = $2, bc_comments = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.DB.Exec(ctx, query, id, approvalStatus, comments, timeutil.Now())
	return err
}

func collectTimeEntries(rows pgx.Rows) ([]*models.TimeEntry, error) {
	var entries []*models.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
