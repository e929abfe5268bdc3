package models

// SyncState is the three-state sync machine for a time entry.
// Transitions: not_synced -> (synced | error); error -> (synced | error) on
// retry; any edit of a synced entry demotes it back to not_synced.
type SyncState string

const (
	SyncStateNotSynced SyncState = "not_synced"
	SyncStateSynced    SyncState = "synced"
	SyncStateError     SyncState = "error"

	// SyncStateModified is a legacy value still present in old rows. It is
	// normalized to not_synced on the next write and treated as
	// retry-eligible in the meantime.
	SyncStateModified SyncState = "modified"
)

// NormalizeSyncState maps legacy or unknown values onto the authoritative
// three-state machine.
func NormalizeSyncState(s string) SyncState {
	switch SyncState(s) {
	case SyncStateSynced:
		return SyncStateSynced
	case SyncStateError:
		return SyncStateError
	default:
		return SyncStateNotSynced
	}
}

// ApplyEdit is the transition taken when a user edits an entry.
func (s SyncState) ApplyEdit() SyncState {
	return SyncStateNotSynced
}

// ApplySyncSuccess is the transition taken after a successful remote call.
func (s SyncState) ApplySyncSuccess() SyncState {
	return SyncStateSynced
}

// ApplySyncError is the transition taken after a failed remote call.
func (s SyncState) ApplySyncError() SyncState {
	return SyncStateError
}

// IsPending reports whether an entry in this state is eligible for a sync
// attempt.
func (s SyncState) IsPending() bool {
	return s == SyncStateNotSynced || s == SyncStateError || s == SyncStateModified
}

// IsRetryEligible reports whether a single-entry retry is allowed from this
// state. Synced entries have nothing to retry.
func (s SyncState) IsRetryEligible() bool {
	return s.IsPending()
}

// Approval statuses mirrored from Business Central. Values are stored
// lower-cased; BC reports them in mixed case.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)
