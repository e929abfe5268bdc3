package services

import (
	"context"
	"testing"
	"time"

	"timetrack-backend/internal/bc"
	"timetrack-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncedEntry(env *testEnv, journalID, approvalStatus string) *models.TimeEntry {
	return env.entries.add(&models.TimeEntry{
		CompanyID:      1,
		ResourceNo:     "R001",
		JobNo:          "J100",
		JobTaskNo:      "T10",
		EntryDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Hours:          4,
		Description:    "synced work",
		SyncState:      models.SyncStateSynced,
		BCJournalID:    &journalID,
		BCBatchName:    strPtr("ZEIT"),
		IsEditable:     true,
		ApprovalStatus: approvalStatus,
	})
}

func TestRefreshAppliesApprovalDeltas(t *testing.T) {
	env := newTestEnv()
	approvedNow := syncedEntry(env, "bc-1", models.ApprovalStatusPending)
	unchanged := syncedEntry(env, "bc-2", models.ApprovalStatusPending)
	env.gateway.statuses = map[string]bc.LineStatus{
		"bc-1": {ApprovalStatus: "Approved", Comments: "looks good"},
		"bc-2": {ApprovalStatus: "Pending"},
	}

	result, err := env.statusService().Refresh(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.CheckedEntries)
	assert.Equal(t, 1, result.UpdatedEntries, "only actual deltas count as updates")
	require.Len(t, result.Updates, 1)
	assert.Equal(t, approvedNow.ID, result.Updates[0].EntryID)
	assert.Equal(t, models.ApprovalStatusPending, result.Updates[0].OldStatus)
	assert.Equal(t, models.ApprovalStatusApproved, result.Updates[0].NewStatus)

	stored, _ := env.entries.Get(context.Background(), approvedNow.ID)
	assert.Equal(t, models.ApprovalStatusApproved, stored.ApprovalStatus)
	assert.Equal(t, "looks good", stored.BCComments)

	untouched, _ := env.entries.Get(context.Background(), unchanged.ID)
	assert.Equal(t, models.ApprovalStatusPending, untouched.ApprovalStatus)
}

func TestRefreshSkipsEntriesMissingFromBC(t *testing.T) {
	env := newTestEnv()
	gone := syncedEntry(env, "bc-gone", models.ApprovalStatusPending)
	env.gateway.statuses = map[string]bc.LineStatus{}

	result, err := env.statusService().Refresh(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.CheckedEntries)
	assert.Equal(t, 0, result.UpdatedEntries)
	stored, _ := env.entries.Get(context.Background(), gone.ID)
	assert.Equal(t, models.ApprovalStatusPending, stored.ApprovalStatus)
}

func TestRefreshNoSyncedEntriesSkipsRemoteCall(t *testing.T) {
	env := newTestEnv()

	result, err := env.statusService().Refresh(context.Background(), 1, "")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.CheckedEntries)
	require.Len(t, env.audit.logs, 1)
	assert.Equal(t, models.SyncOpStatusRefresh, env.audit.logs[0].Operation)
}

func TestRefreshNormalizesStatusCase(t *testing.T) {
	env := newTestEnv()
	entry := syncedEntry(env, "bc-1", models.ApprovalStatusPending)
	env.gateway.statuses = map[string]bc.LineStatus{
		"bc-1": {ApprovalStatus: "REJECTED", Comments: "missing task reference"},
	}

	_, err := env.statusService().Refresh(context.Background(), 1, "")
	require.NoError(t, err)

	stored, _ := env.entries.Get(context.Background(), entry.ID)
	assert.Equal(t, models.ApprovalStatusRejected, stored.ApprovalStatus)
}
