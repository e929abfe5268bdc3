package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"timetrack-backend/internal/models"
	"timetrack-backend/internal/repositories"
	"timetrack-backend/internal/services"
	"timetrack-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// SyncHandler exposes the reconciliation, retry and status refresh
// operations plus the sync audit views.
type SyncHandler struct {
	sync      *services.SyncService
	status    *services.StatusService
	entryRepo *repositories.TimeEntryRepository
	batchRepo *repositories.SyncBatchRepository
	logRepo   *repositories.SyncLogRepository
}

func NewSyncHandler(sync *services.SyncService, status *services.StatusService,
	entryRepo *repositories.TimeEntryRepository, batchRepo *repositories.SyncBatchRepository,
	logRepo *repositories.SyncLogRepository) *SyncHandler {
	return &SyncHandler{
		sync:      sync,
		status:    status,
		entryRepo: entryRepo,
		batchRepo: batchRepo,
		logRepo:   logRepo,
	}
}

func writeSyncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrIntegrationDisabled):
		utils.Error(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, services.ErrNotEditable), errors.Is(err, services.ErrNotRetryEligible):
		utils.Error(w, http.StatusConflict, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}

// Run handles POST /api/sync/run
func (h *SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	companyID, resourceNo, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.sync.Sync(r.Context(), companyID, resourceNo)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// Retry handles POST /api/sync/entries/{id}/retry
func (h *SyncHandler) Retry(w http.ResponseWriter, r *http.Request) {
	result, err := h.sync.RetryEntry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeSyncError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// RefreshStatus handles POST /api/sync/refresh-status
func (h *SyncHandler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	companyID, resourceNo, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.status.Refresh(r.Context(), companyID, resourceNo)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// Pending handles GET /api/sync/pending
func (h *SyncHandler) Pending(w http.ResponseWriter, r *http.Request) {
	companyID, resourceNo, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entries, err := h.entryRepo.GetPendingSync(r.Context(), companyID, resourceNo)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*models.TimeEntry{}
	}
	utils.JSON(w, http.StatusOK, entries)
}

// Logs handles GET /api/sync/logs
func (h *SyncHandler) Logs(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	logs, err := h.logRepo.ListByCompany(r.Context(), companyID, queryLimit(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []*models.SyncLog{}
	}
	utils.JSON(w, http.StatusOK, logs)
}

// Batches handles GET /api/sync/batches
func (h *SyncHandler) Batches(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	batches, err := h.batchRepo.ListByCompany(r.Context(), companyID, queryLimit(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if batches == nil {
		batches = []*models.SyncBatch{}
	}
	utils.JSON(w, http.StatusOK, batches)
}

func queryLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
