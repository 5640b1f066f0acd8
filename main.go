package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"github.com/avolve-dao/avolve-sub003/cmd"
	"github.com/avolve-dao/avolve-sub003/config"
	"github.com/avolve-dao/avolve-sub003/database"
	"github.com/avolve-dao/avolve-sub003/events"
	"github.com/avolve-dao/avolve-sub003/repository"
	"github.com/avolve-dao/avolve-sub003/service"
)

func main() {
	// Check for admin subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error:", err)
			}
			return
		case "adjust":
			if err := handleAdjustCommand(); err != nil {
				log.Fatal("Adjustment error:", err)
			}
			return
		}
	}

	// Normal server operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: avolve-sub003 migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleAdjustCommand records a manual ledger correction. It runs through
// the same service path as the API so the balance and ledger stay
// consistent.
func handleAdjustCommand() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: avolve-sub003 adjust <user-id> <token-type> <amount> [note]")
	}

	userID, err := uuid.Parse(os.Args[2])
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	tokenType := os.Args[3]

	amount, err := strconv.ParseInt(os.Args[4], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	note := ""
	if len(os.Args) > 5 {
		note = os.Args[5]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := repository.NewUnitOfWorkFactory(db, events.NewBus())
	ledgerService := service.NewLedgerService(uowFactory, service.NewSystemClock())

	entry, err := ledgerService.Adjust(ctx, userID, tokenType, amount, note)
	if err != nil {
		return err
	}

	log.Printf("Recorded adjustment %s: %s %+d for user %s", entry.ID, entry.TokenType, entry.Amount, entry.UserID)
	return nil
}
