package models

import "time"

type TimeEntry struct {
	ID          string    `json:"id"`
	CompanyID   int       `json:"company_id"`
	ResourceNo  string    `json:"resource_no"`
	JobNo       string    `json:"job_no"`
	JobTaskNo   string    `json:"job_task_no"`
	EntryDate   time.Time `json:"entry_date"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description"`
	StartTime   *string   `json:"start_time,omitempty"` // HH:MM, optional
	EndTime     *string   `json:"end_time,omitempty"`

	SyncState   SyncState  `json:"sync_state"`
	BCJournalID *string    `json:"bc_journal_id"` // set iff created in BC at least once
	BCBatchName *string    `json:"bc_batch_name"` // required before any sync attempt
	BCLineNo    *int       `json:"bc_line_no,omitempty"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`

	// IsEditable is false once the journal line has been finalized/posted in
	// BC. A non-editable row is immutable except for status refresh fields.
	IsEditable     bool   `json:"is_editable"`
	ApprovalStatus string `json:"approval_status"`
	BCComments     string `json:"bc_comments,omitempty"`

	CreatedByUserID int       `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasJournalLine reports whether the entry was ever successfully created in BC.
func (e *TimeEntry) HasJournalLine() bool {
	return e.BCJournalID != nil && *e.BCJournalID != ""
}

// CreateTimeEntryRequest represents the request body for creating an entry
type CreateTimeEntryRequest struct {
	JobNo       string  `json:"job_no"`
	JobTaskNo   string  `json:"job_task_no"`
	EntryDate   string  `json:"entry_date"` // YYYY-MM-DD
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
}

// UpdateTimeEntryRequest represents the request body for updating an entry
type UpdateTimeEntryRequest struct {
	JobNo       string  `json:"job_no"`
	JobTaskNo   string  `json:"job_task_no"`
	EntryDate   string  `json:"entry_date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
}

// BulkSaveLine is one (job, task, date) cell of a bulk timesheet save.
// Hours of zero means "delete whatever editable row exists for this key".
type BulkSaveLine struct {
	JobNo       string  `json:"job_no"`
	JobTaskNo   string  `json:"job_task_no"`
	EntryDate   string  `json:"entry_date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

// BulkSaveRequest represents the request body for a bulk timesheet save
type BulkSaveRequest struct {
	Lines []BulkSaveLine `json:"lines"`
}

// BulkSaveResult reports what a bulk save actually did, per line outcome.
type BulkSaveResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// SyncResult is the structured outcome of one reconciliation pass. Partial
// failure is reported through counts, never through a top-level error.
type SyncResult struct {
	Success       bool     `json:"success"`
	SyncedEntries int      `json:"synced_entries"`
	FailedEntries int      `json:"failed_entries"`
	BatchesUsed   []string `json:"batches_used"`
	Errors        []string `json:"errors,omitempty"`
}

// StatusUpdate is one before/after approval delta applied by a status refresh.
type StatusUpdate struct {
	EntryID    string `json:"entry_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	OldComment string `json:"old_comment,omitempty"`
	NewComment string `json:"new_comment,omitempty"`
}

// StatusRefreshResult summarises one status refresh pass.
type StatusRefreshResult struct {
	Success        bool           `json:"success"`
	CheckedEntries int            `json:"checked_entries"`
	UpdatedEntries int            `json:"updated_entries"`
	Updates        []StatusUpdate `json:"updates,omitempty"`
}
