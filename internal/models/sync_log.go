package models

import "time"

// Sync log operation types
const (
	SyncOpSync          = "sync"
	SyncOpRetry         = "retry"
	SyncOpStatusRefresh = "status_refresh"
	SyncOpRejectedReset = "rejected_reset"
	SyncOpBulkSave      = "bulk_save"
)

// Sync log levels
const (
	SyncLevelSuccess = "success"
	SyncLevelWarning = "warning"
	SyncLevelError   = "error"
	// SyncLevelCritical marks local/remote divergence: BC accepted a line but
	// the local success write failed. Never produced by ordinary entry errors.
	SyncLevelCritical = "critical"
)

// SyncLog is an append-only audit record of one sync-related operation.
// Rows are never mutated after insert.
type SyncLog struct {
	ID             int       `json:"id"`
	CompanyID      int       `json:"company_id"`
	Operation      string    `json:"operation"`
	Level          string    `json:"level"`
	Message        string    `json:"message"`
	EntryCount     int       `json:"entry_count"`
	SuccessCount   int       `json:"success_count"`
	ErrorCount     int       `json:"error_count"`
	DurationMs     int64     `json:"duration_ms"`
	BCErrorCode    string    `json:"bc_error_code,omitempty"`
	BCErrorMessage string    `json:"bc_error_message,omitempty"`
	Details        string    `json:"details,omitempty"` // JSON blob
	CreatedAt      time.Time `json:"created_at"`
}
