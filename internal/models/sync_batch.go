package models

import "time"

// SyncBatch groups the entries synced into one BC journal batch during a
// single reconciliation pass. A batch row is only created once at least one
// entry in it succeeded.
type SyncBatch struct {
	ID         int       `json:"id"`
	CompanyID  int       `json:"company_id"`
	BatchName  string    `json:"batch_name"`
	EntryCount int       `json:"entry_count"`
	TotalHours float64   `json:"total_hours"`
	Status     string    `json:"status"` // 'synced', 'partial'
	CreatedAt  time.Time `json:"created_at"`
}
