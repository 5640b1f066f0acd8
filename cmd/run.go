package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/avolve-dao/avolve-sub003/api"
	"github.com/avolve-dao/avolve-sub003/config"
	"github.com/avolve-dao/avolve-sub003/database"
	"github.com/avolve-dao/avolve-sub003/events"
	"github.com/avolve-dao/avolve-sub003/repository"
	"github.com/avolve-dao/avolve-sub003/service"
)

// Run initializes and starts the reward engine
func Run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLogging(cfg.LogLevel)
	log.Info("Starting reward engine...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	clock := service.NewSystemClock()
	claimService := service.NewClaimService(uowFactory, clock, cfg.ClaimMaxAttempts, cfg.ClaimRetryBaseDelay)
	catalogService := service.NewChallengeCatalog(uowFactory)
	ledgerService := service.NewLedgerService(uowFactory, clock)
	auditService := service.NewAuditService(uowFactory)
	log.Info("Services initialized successfully")

	// Schedule the conservation audit
	var scheduler *cron.Cron
	if cfg.AuditEnabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.AuditSchedule, func() {
			if _, err := auditService.VerifyConservation(ctx); err != nil {
				log.WithError(err).Error("Conservation audit failed to run")
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule conservation audit: %w", err)
		}
		scheduler.Start()
		log.WithField("schedule", cfg.AuditSchedule).Info("Conservation audit scheduled")
	}

	// Start the HTTP server
	handlers := api.NewHandlers(claimService, catalogService, ledgerService, clock)
	server := api.NewServer(cfg.HTTPAddr, handlers, db)

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	log.Infof("Reward engine is running in %s mode...", cfg.Environment)

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down reward engine...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	log.Info("Shutdown completed")
	return nil
}

func setupLogging(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
