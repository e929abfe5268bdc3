package http

import (
	"net/http"

	"timetrack-backend/internal/handlers"
	"timetrack-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	timeEntryHandler *handlers.TimeEntryHandler,
	syncHandler *handlers.SyncHandler,
	assignmentHandler *handlers.AssignmentHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(authHandler.Signup)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(authHandler.ListUsers)).ServeHTTP).Methods("GET")

	// Protected API routes - Time Entries
	entriesAPI := r.PathPrefix("/api/time-entries").Subrouter()
	entriesAPI.Use(authMiddleware.Authenticate)
	entriesAPI.HandleFunc("", timeEntryHandler.List).Methods("GET")
	entriesAPI.HandleFunc("", timeEntryHandler.Create).Methods("POST")
	entriesAPI.HandleFunc("/bulk-save", timeEntryHandler.BulkSave).Methods("POST")
	entriesAPI.HandleFunc("/{id}", timeEntryHandler.Get).Methods("GET")
	entriesAPI.HandleFunc("/{id}", timeEntryHandler.Update).Methods("PUT")
	entriesAPI.HandleFunc("/{id}", timeEntryHandler.Delete).Methods("DELETE")

	// Protected API routes - Sync
	syncAPI := r.PathPrefix("/api/sync").Subrouter()
	syncAPI.Use(authMiddleware.Authenticate)
	syncAPI.HandleFunc("/run", syncHandler.Run).Methods("POST")
	syncAPI.HandleFunc("/entries/{id}/retry", syncHandler.Retry).Methods("POST")
	syncAPI.HandleFunc("/refresh-status", syncHandler.RefreshStatus).Methods("POST")
	syncAPI.HandleFunc("/pending", syncHandler.Pending).Methods("GET")
	syncAPI.HandleFunc("/logs", syncHandler.Logs).Methods("GET")
	syncAPI.HandleFunc("/batches", syncHandler.Batches).Methods("GET")

	// Protected API routes - Assignments (BC jobs/tasks for a resource)
	assignmentsAPI := r.PathPrefix("/api/assignments").Subrouter()
	assignmentsAPI.Use(authMiddleware.Authenticate)
	assignmentsAPI.HandleFunc("", assignmentHandler.Get).Methods("GET")

	// Protected API routes - Monitoring (admin only)
	monitoringAPI := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringAPI.Use(authMiddleware.Authenticate)
	monitoringAPI.HandleFunc("/stats", authMiddleware.RequireAdmin(http.HandlerFunc(monitoringHandler.Stats)).ServeHTTP).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
