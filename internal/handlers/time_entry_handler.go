package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"timetrack-backend/internal/middleware"
	"timetrack-backend/internal/models"
	"timetrack-backend/internal/services"
	"timetrack-backend/internal/timeutil"
	"timetrack-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// TimeEntryHandler handles time entry CRUD and bulk save requests
type TimeEntryHandler struct {
	entries    *services.EntryService
	timesheets *services.TimesheetService
	list       services.EntryLister
}

func NewTimeEntryHandler(entries *services.EntryService, timesheets *services.TimesheetService, list services.EntryLister) *TimeEntryHandler {
	return &TimeEntryHandler{entries: entries, timesheets: timesheets, list: list}
}

// requestScope resolves which company and resource a request operates on.
// Employees are always scoped to their own resource; admins may widen it.
func requestScope(r *http.Request) (companyID int, resourceNo string, ok bool) {
	companyID, ok = middleware.GetCompanyIDFromContext(r.Context())
	if !ok {
		return 0, "", false
	}

	role, _ := middleware.GetRoleFromContext(r.Context())
	resourceNo, _ = middleware.GetResourceNoFromContext(r.Context())

	if role == "admin" {
		if companyParam := r.URL.Query().Get("company_id"); companyParam != "" {
			if n, err := strconv.Atoi(companyParam); err == nil && n > 0 {
				companyID = n
			}
		}
		if resourceParam := r.URL.Query().Get("resource_no"); resourceParam != "" {
			resourceNo = resourceParam
		} else if !r.URL.Query().Has("resource_no") {
			// Admin default view is the whole company
			resourceNo = ""
		}
	}
	return companyID, resourceNo, true
}

// List handles GET /api/time-entries
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, resourceNo, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		d, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		from = &d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := timeutil.ParseDate(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		to = &d
	}

	entries, err := h.list.List(r.Context(), companyID, resourceNo, from, to)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*models.TimeEntry{}
	}
	utils.JSON(w, http.StatusOK, entries)
}

// Get handles GET /api/time-entries/{id}
func (h *TimeEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entries.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Time entry not found")
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

// Create handles POST /api/time-entries
func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, resourceNo, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CreateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.entries.Create(r.Context(), companyID, resourceNo, userID, &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

// Update handles PUT /api/time-entries/{id}
func (h *TimeEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.entries.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		if errors.Is(err, services.ErrNotEditable) {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/time-entries/{id}
func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.entries.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, services.ErrNotEditable) {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkSave handles POST /api/time-entries/bulk-save
func (h *TimeEntryHandler) BulkSave(w http.ResponseWriter, r *http.Request) {
	companyID, resourceNo, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.BulkSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Lines) == 0 {
		utils.Error(w, http.StatusBadRequest, "At least one line is required")
		return
	}

	result, err := h.timesheets.BulkSave(r.Context(), companyID, resourceNo, userID, &req)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
