package handlers

import (
	"errors"
	"net/http"

	"timetrack-backend/internal/services"
	"timetrack-backend/pkg/utils"
)

// AssignmentHandler serves the jobs and tasks a resource may book against
type AssignmentHandler struct {
	service *services.AssignmentService
}

func NewAssignmentHandler(service *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Get handles GET /api/assignments
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, resourceNo, ok := requestScope(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if resourceNo == "" {
		utils.Error(w, http.StatusBadRequest, "resource_no is required")
		return
	}

	assignments, err := h.service.GetAssignments(r.Context(), companyID, resourceNo)
	if err != nil {
		if errors.Is(err, services.ErrIntegrationDisabled) {
			utils.Error(w, http.StatusPreconditionFailed, err.Error())
			return
		}
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, assignments)
}
