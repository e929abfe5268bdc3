package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"timetrack-backend/internal/bc"
	"timetrack-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingEntry(env *testEnv, description string, hours float64) *models.TimeEntry {
	return env.entries.add(&models.TimeEntry{
		CompanyID:   1,
		ResourceNo:  "R001",
		JobNo:       "J100",
		JobTaskNo:   "T10",
		EntryDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Hours:       hours,
		Description: description,
		SyncState:   models.SyncStateNotSynced,
		BCBatchName: strPtr("ZEIT"),
		IsEditable:  true,
	})
}

func TestSyncCreatesJournalLinesAndMarksSynced(t *testing.T) {
	env := newTestEnv()
	first := pendingEntry(env, "design review", 2)
	second := pendingEntry(env, "implementation", 6)

	result, err := env.syncService(true).Sync(context.Background(), 1, "")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.SyncedEntries)
	assert.Equal(t, 0, result.FailedEntries)
	assert.Equal(t, []string{"ZEIT"}, result.BatchesUsed)
	assert.Len(t, env.gateway.createCalls, 2)

	for _, id := range []string{first.ID, second.ID} {
		stored, err := env.entries.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.SyncStateSynced, stored.SyncState)
		assert.True(t, stored.HasJournalLine())
		assert.NotNil(t, stored.SyncedAt)
	}

	require.Len(t, env.batches.batches, 1)
	assert.Equal(t, "ZEIT", env.batches.batches[0].BatchName)
	assert.Equal(t, 2, env.batches.batches[0].EntryCount)
	assert.Equal(t, 8.0, env.batches.batches[0].TotalHours)

	require.Len(t, env.audit.logs, 1)
	assert.Equal(t, models.SyncLevelSuccess, env.audit.logs[0].Level)
}

func TestSyncUpdatesExistingJournalLine(t *testing.T) {
	env := newTestEnv()
	entry := pendingEntry(env, "follow-up work", 3)
	entry.BCJournalID = strPtr("bc-existing")
	lineNo := 20000
	entry.BCLineNo = &lineNo

	result, err := env.syncService(true).Sync(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SyncedEntries)
	assert.Empty(t, env.gateway.createCalls, "re-sync of a partially synced entry must not create a second line")
	require.Len(t, env.gateway.updateCalls, 1)
	assert.Equal(t, "bc-existing", env.gateway.updateCalls[0].ID)
	assert.Equal(t, 20000, env.gateway.updateCalls[0].LineNo)
}

func TestSyncPartialFailureDoesNotAbortPass(t *testing.T) {
	env := newTestEnv()
	pendingEntry(env, "good one", 2)
	bad := pendingEntry(env, "bad one", 4)
	pendingEntry(env, "another good one", 1)
	env.gateway.failCreateFor["bad one"] = &bc.RemoteCallError{
		Status: 400, Code: "Invalid_JobTask", Message: "Job task does not exist",
	}

	result, err := env.syncService(true).Sync(context.Background(), 1, "")
	require.NoError(t, err, "entry-local failures must not surface as a top-level error")

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.SyncedEntries)
	assert.Equal(t, 1, result.FailedEntries)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], bad.ID)

	stored, err := env.entries.Get(context.Background(), bad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateError, stored.SyncState)

	require.Len(t, env.audit.logs, 1)
	assert.Equal(t, models.SyncLevelWarning, env.audit.logs[0].Level)
	assert.Equal(t, "Invalid_JobTask", env.audit.logs[0].BCErrorCode)
}

func TestSyncMissingBatchNameIsEntryLocalError(t *testing.T) {
	env := newTestEnv()
	entry := pendingEntry(env, "no batch", 2)
	entry.BCBatchName = nil

	result, err := env.syncService(true).Sync(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, 0, result.SyncedEntries)
	assert.Equal(t, 1, result.FailedEntries)
	assert.Empty(t, env.gateway.createCalls, "no remote call without a batch name")

	stored, err := env.entries.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateError, stored.SyncState)

	require.Len(t, env.audit.logs, 1)
	assert.Equal(t, "MISSING_BATCH_NAME", env.audit.logs[0].BCErrorCode)
	assert.Equal(t, models.SyncLevelError, env.audit.logs[0].Level)
}

func TestSyncIntegrationDisabledAbortsPass(t *testing.T) {
	env := newTestEnv()
	pendingEntry(env, "anything", 2)

	_, err := env.syncService(false).Sync(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrIntegrationDisabled)
	assert.Empty(t, env.gateway.createCalls)
}

func TestSyncEmptyPendingSetSucceedsTrivially(t *testing.T) {
	env := newTestEnv()

	result, err := env.syncService(true).Sync(context.Background(), 1, "")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.SyncedEntries)
	assert.Empty(t, result.BatchesUsed)
	require.Len(t, env.audit.logs, 1, "even an empty pass leaves an audit row")
}

func TestSyncResourceFilterScopesPass(t *testing.T) {
	env := newTestEnv()
	mine := pendingEntry(env, "mine", 2)
	other := pendingEntry(env, "someone else", 3)
	other.ResourceNo = "R999"

	result, err := env.syncService(true).Sync(context.Background(), 1, "R001")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SyncedEntries)
	stored, _ := env.entries.Get(context.Background(), mine.ID)
	assert.Equal(t, models.SyncStateSynced, stored.SyncState)
	untouched, _ := env.entries.Get(context.Background(), other.ID)
	assert.Equal(t, models.SyncStateNotSynced, untouched.SyncState)
}

func TestSyncPersistFailureAfterRemoteSuccessIsCritical(t *testing.T) {
	env := newTestEnv()
	entry := pendingEntry(env, "diverging entry", 2)
	env.entries.failMarkSynced = map[string]error{entry.ID: errors.New("connection lost")}

	result, err := env.syncService(true).Sync(context.Background(), 1, "")
	require.NoError(t, err)

	// The remote call went through, so the entry counts as synced; the
	// divergence is surfaced through a critical audit row instead.
	assert.Equal(t, 1, result.SyncedEntries)
	assert.Len(t, env.gateway.createCalls, 1)

	critical := env.audit.byLevel(models.SyncLevelCritical)
	require.Len(t, critical, 1)
	assert.Contains(t, critical[0].Message, entry.ID)
}

func TestRetryEntrySingleDegeneratePass(t *testing.T) {
	env := newTestEnv()
	entry := pendingEntry(env, "failed earlier", 2)
	entry.SyncState = models.SyncStateError

	result, err := env.syncService(true).RetryEntry(context.Background(), entry.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedEntries)
	stored, _ := env.entries.Get(context.Background(), entry.ID)
	assert.Equal(t, models.SyncStateSynced, stored.SyncState)
}

func TestRetryEntryRejectsNonEditable(t *testing.T) {
	env := newTestEnv()
	entry := pendingEntry(env, "posted already", 2)
	entry.SyncState = models.SyncStateError
	entry.IsEditable = false

	_, err := env.syncService(true).RetryEntry(context.Background(), entry.ID)
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestRetryEntryRejectsSyncedEntry(t *testing.T) {
	env := newTestEnv()
	entry := pendingEntry(env, "already fine", 2)
	entry.SyncState = models.SyncStateSynced

	_, err := env.syncService(true).RetryEntry(context.Background(), entry.ID)
	assert.ErrorIs(t, err, ErrNotRetryEligible)
}

func TestRetryEntryAllowsLegacyModifiedState(t *testing.T) {
	env := newTestEnv()
	entry := pendingEntry(env, "legacy state", 2)
	entry.SyncState = models.SyncStateModified

	result, err := env.syncService(true).RetryEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SyncedEntries)
}
