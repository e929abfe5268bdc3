package handlers

import (
	"net/http"

	"timetrack-backend/internal/monitoring"
	"timetrack-backend/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MonitoringHandler serves host and pool stats for the admin dashboard
type MonitoringHandler struct {
	pool *pgxpool.Pool
}

func NewMonitoringHandler(pool *pgxpool.Pool) *MonitoringHandler {
	return &MonitoringHandler{pool: pool}
}

// Stats handles GET /api/monitoring/stats
func (h *MonitoringHandler) Stats(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, monitoring.Collect(h.pool))
}
