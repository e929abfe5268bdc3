package bc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linesPath = "/v2.0/tenant-guid/production/api/v2.0/companies(company-guid)/jobJournalLines"

func journalMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tenant-guid/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, "test-token", 3600)
	})
	return mux
}

func TestCreateJournalLineNormalizesSystemID(t *testing.T) {
	mux := journalMux(t)
	mux.HandleFunc(linesPath, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "JOB", body["journalTemplateName"])
		assert.Equal(t, "B1", body["journalBatchName"])
		assert.Equal(t, "Resource", body["type"])
		assert.Equal(t, "R001", body["no"])
		assert.EqualValues(t, 8, body["quantity"])

		w.WriteHeader(http.StatusCreated)
		// Some BC endpoints answer with systemId instead of id
		fmt.Fprint(w, `{"systemId":"line-guid-1","lineNo":10000,"journalBatchName":"B1"}`)
	})

	client, _ := newTestClient(t, mux)
	line, err := client.CreateJournalLine(context.Background(), JournalLineSpec{
		JournalTemplateName: "JOB",
		JournalBatchName:    "B1",
		JobNo:               "J100",
		JobTaskNo:           "T10",
		ResourceNo:          "R001",
		PostingDate:         "2026-02-03",
		Quantity:            8,
		Description:         "dev work",
	})

	require.NoError(t, err)
	assert.Equal(t, "line-guid-1", line.ID)
	assert.Equal(t, 10000, line.LineNo)
}

func TestUpdateJournalLineRecoversCompositeKey(t *testing.T) {
	var sawLookup, sawPatch bool
	mux := journalMux(t)
	mux.HandleFunc(linesPath+"(line-guid-1)", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sawLookup = true
			fmt.Fprint(w, `{"id":"line-guid-1","lineNo":20000,"journalTemplateName":"JOB","journalBatchName":"B1"}`)
		case http.MethodPatch:
			sawPatch = true
			assert.Equal(t, "*", r.Header.Get("If-Match"))
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.EqualValues(t, 20000, body["lineNo"], "recovered line number must be sent")
			assert.Equal(t, "JOB", body["journalTemplateName"])
			fmt.Fprint(w, `{"id":"line-guid-1","lineNo":20000}`)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	client, _ := newTestClient(t, mux)
	line, err := client.UpdateJournalLine(context.Background(), JournalLineSpec{
		ID:          "line-guid-1",
		JobNo:       "J100",
		JobTaskNo:   "T10",
		ResourceNo:  "R001",
		PostingDate: "2026-02-03",
		Quantity:    6,
		Description: "updated",
	})

	require.NoError(t, err)
	assert.True(t, sawLookup, "must look up the line before patching")
	assert.True(t, sawPatch)
	assert.Equal(t, 20000, line.LineNo)
}

func TestUpdateJournalLineWithoutIDFails(t *testing.T) {
	client, _ := newTestClient(t, journalMux(t))
	_, err := client.UpdateJournalLine(context.Background(), JournalLineSpec{})
	assert.Error(t, err)
}

func TestDeleteJournalLine(t *testing.T) {
	deleted := false
	mux := journalMux(t)
	mux.HandleFunc(linesPath+"(line-guid-9)", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, mux)
	require.NoError(t, client.DeleteJournalLine(context.Background(), "line-guid-9"))
	assert.True(t, deleted)
}

func TestCreateJournalLineRemoteError(t *testing.T) {
	mux := journalMux(t)
	mux.HandleFunc(linesPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":"Invalid_JobNo","message":"Job X does not exist"}}`)
	})

	client, _ := newTestClient(t, mux)
	_, err := client.CreateJournalLine(context.Background(), JournalLineSpec{JobNo: "X"})

	var remoteErr *RemoteCallError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.Status)
	assert.Equal(t, "Invalid_JobNo", remoteErr.Code)
}

func TestGetLineStatusesSkipsMissingIDs(t *testing.T) {
	mux := journalMux(t)
	mux.HandleFunc(linesPath, func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("$filter")
		assert.Contains(t, filter, "id eq g1")
		assert.Contains(t, filter, "id eq g2")
		// g2 no longer exists in BC; only g1 comes back
		fmt.Fprint(w, `{"value":[{"id":"g1","approvalStatus":"Approved","comments":"ok"}]}`)
	})

	client, _ := newTestClient(t, mux)
	statuses, err := client.GetLineStatuses(context.Background(), []string{"g1", "g2"})

	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Approved", statuses["g1"].ApprovalStatus)
	assert.Equal(t, "ok", statuses["g1"].Comments)
	_, found := statuses["g2"]
	assert.False(t, found)
}

func TestGetLineStatusesEmptyInput(t *testing.T) {
	client, _ := newTestClient(t, journalMux(t))
	statuses, err := client.GetLineStatuses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
