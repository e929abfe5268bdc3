package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"timetrack-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func updateRequest() *models.UpdateTimeEntryRequest {
	return &models.UpdateTimeEntryRequest{
		JobNo:       "J100",
		JobTaskNo:   "T10",
		EntryDate:   "2025-03-11",
		Hours:       5,
		Description: "revised work",
	}
}

func TestCreateEntrySetsBatchNameFromCompany(t *testing.T) {
	env := newTestEnv()

	entry, err := env.entryService().Create(context.Background(), 1, "R001", 7,
		&models.CreateTimeEntryRequest{
			JobNo:       "J100",
			JobTaskNo:   "T10",
			EntryDate:   "2025-03-10",
			Hours:       4,
			Description: "initial work",
		})
	require.NoError(t, err)

	assert.Equal(t, models.SyncStateNotSynced, entry.SyncState)
	require.NotNil(t, entry.BCBatchName)
	assert.Equal(t, "ZEIT", *entry.BCBatchName)
	assert.True(t, entry.IsEditable)
}

func TestCreateEntryRejectsInvalidFields(t *testing.T) {
	env := newTestEnv()
	svc := env.entryService()

	cases := []models.CreateTimeEntryRequest{
		{JobNo: "J100", JobTaskNo: "T10", EntryDate: "bad-date", Hours: 4, Description: "x"},
		{JobNo: "J100", JobTaskNo: "T10", EntryDate: "2025-03-10", Hours: 25, Description: "x"},
		{JobNo: "J100", JobTaskNo: "T10", EntryDate: "2025-03-10", Hours: 4, Description: " "},
		{JobNo: "", JobTaskNo: "T10", EntryDate: "2025-03-10", Hours: 4, Description: "x"},
		{JobNo: "J100", JobTaskNo: "T10", EntryDate: "2025-03-10", Hours: 0, Description: "x"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), 1, "R001", 7, &req)
		assert.Error(t, err)
	}
}

func TestUpdateEntryDemotesSyncState(t *testing.T) {
	env := newTestEnv()
	entry := syncedEntry(env, "bc-1", models.ApprovalStatusPending)

	updated, err := env.entryService().Update(context.Background(), entry.ID, updateRequest())
	require.NoError(t, err)

	assert.Equal(t, models.SyncStateNotSynced, updated.SyncState)
	assert.Equal(t, 5.0, updated.Hours)
	assert.Empty(t, env.gateway.updateCalls, "a pending-approval entry is not pushed immediately")
}

func TestUpdateRejectsNonEditableWithoutRemoteCall(t *testing.T) {
	env := newTestEnv()
	entry := syncedEntry(env, "bc-1", models.ApprovalStatusApproved)
	entry.IsEditable = false

	_, err := env.entryService().Update(context.Background(), entry.ID, updateRequest())
	assert.ErrorIs(t, err, ErrNotEditable)
	assert.Empty(t, env.gateway.updateCalls)
	assert.Empty(t, env.gateway.deleteCalls)
}

func TestUpdateRejectedEntryPushesResetToBC(t *testing.T) {
	env := newTestEnv()
	entry := syncedEntry(env, "bc-1", models.ApprovalStatusRejected)
	entry.BCComments = "please fix the task"

	updated, err := env.entryService().Update(context.Background(), entry.ID, updateRequest())
	require.NoError(t, err)

	require.Len(t, env.gateway.updateCalls, 1, "the BC line is updated before the local edit")
	assert.Equal(t, "bc-1", env.gateway.updateCalls[0].ID)
	assert.Equal(t, models.SyncStateNotSynced, updated.SyncState)
	assert.Equal(t, models.ApprovalStatusPending, updated.ApprovalStatus)
	assert.Empty(t, updated.BCComments)
}

func TestUpdateRejectedEntryRemoteFailureDoesNotBlockEdit(t *testing.T) {
	env := newTestEnv()
	entry := syncedEntry(env, "bc-1", models.ApprovalStatusRejected)
	env.gateway.failUpdate = errors.New("bc unavailable")

	updated, err := env.entryService().Update(context.Background(), entry.ID, updateRequest())
	require.NoError(t, err, "remote failure is logged, never blocking the local mutation")

	assert.Equal(t, models.SyncStateNotSynced, updated.SyncState)
	warnings := env.audit.byLevel(models.SyncLevelWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, models.SyncOpRejectedReset, warnings[0].Operation)
}

func TestDeleteRejectedEntryPushesRemoteDelete(t *testing.T) {
	env := newTestEnv()
	entry := syncedEntry(env, "bc-1", models.ApprovalStatusRejected)

	err := env.entryService().Delete(context.Background(), entry.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"bc-1"}, env.gateway.deleteCalls)
	_, err = env.entries.Get(context.Background(), entry.ID)
	assert.Error(t, err)
}

func TestDeleteRejectedEntryRemoteFailureStillDeletesLocally(t *testing.T) {
	env := newTestEnv()
	entry := syncedEntry(env, "bc-1", models.ApprovalStatusRejected)
	env.gateway.failDelete = errors.New("bc unavailable")

	err := env.entryService().Delete(context.Background(), entry.ID)
	require.NoError(t, err)

	_, err = env.entries.Get(context.Background(), entry.ID)
	assert.Error(t, err)
	require.Len(t, env.audit.byLevel(models.SyncLevelWarning), 1)
}

func TestDeleteNonEditableRejected(t *testing.T) {
	env := newTestEnv()
	entry := env.entries.add(&models.TimeEntry{
		CompanyID:   1,
		ResourceNo:  "R001",
		JobNo:       "J100",
		JobTaskNo:   "T10",
		EntryDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Hours:       4,
		Description: "posted",
		SyncState:   models.SyncStateSynced,
		IsEditable:  false,
	})

	err := env.entryService().Delete(context.Background(), entry.ID)
	assert.ErrorIs(t, err, ErrNotEditable)
	assert.Empty(t, env.gateway.deleteCalls)
}
