package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"timetrack-backend/internal/auth"
	"timetrack-backend/internal/bc"
	"timetrack-backend/internal/cache"
	"timetrack-backend/internal/config"
	"timetrack-backend/internal/database"
	"timetrack-backend/internal/db"
	"timetrack-backend/internal/handlers"
	"timetrack-backend/internal/health"
	h "timetrack-backend/internal/http"
	"timetrack-backend/internal/middleware"
	"timetrack-backend/internal/models"
	"timetrack-backend/internal/repositories"
	"timetrack-backend/internal/services"
)

// newGatewayFactory builds one BC client per sync pass, carrying the
// tenant's credentials and the company's BC identifiers.
func newGatewayFactory(cfg *config.Config) services.GatewayFactory {
	return func(tenant *models.Tenant, company *models.Company) services.Gateway {
		return bc.NewClient(
			bc.Credentials{
				TenantID:     tenant.BCTenantID,
				ClientID:     tenant.BCClientID,
				ClientSecret: tenant.BCClientSecret,
				Environment:  tenant.BCEnvironment,
			},
			company.BCCompanyID,
			bc.Config{
				IdentityBaseURL: cfg.BC.IdentityBaseURL,
				APIBaseURL:      cfg.BC.APIBaseURL,
				Scope:           cfg.BC.Scope,
				Timeout:         cfg.BCTimeout(),
			},
		)
	}
}

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (login will use bcrypt only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	tenantRepo := repositories.NewTenantRepository(pool)
	companyRepo := repositories.NewCompanyRepository(pool)
	entryRepo := repositories.NewTimeEntryRepository(pool)
	batchRepo := repositories.NewSyncBatchRepository(pool)
	logRepo := repositories.NewSyncLogRepository(pool)

	// Initialize services
	newGateway := newGatewayFactory(cfg)
	userService := services.NewUserService(userRepo, jwtManager)
	entryService := services.NewEntryService(entryRepo, logRepo, companyRepo, tenantRepo, newGateway)
	timesheetService := services.NewTimesheetService(entryRepo, logRepo, companyRepo)
	syncService := services.NewSyncService(entryRepo, batchRepo, logRepo, companyRepo, tenantRepo, newGateway)
	statusService := services.NewStatusService(entryRepo, logRepo, companyRepo, tenantRepo, newGateway)
	assignmentService := services.NewAssignmentService(companyRepo, tenantRepo, newGateway)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	timeEntryHandler := handlers.NewTimeEntryHandler(entryService, timesheetService, entryRepo)
	syncHandler := handlers.NewSyncHandler(syncService, statusService, entryRepo, batchRepo, logRepo)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	monitoringHandler := handlers.NewMonitoringHandler(pool)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	router := h.NewRouter(authHandler, timeEntryHandler, syncHandler, assignmentHandler,
		monitoringHandler, healthHandler, authMiddleware)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(corsMiddleware(router))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
