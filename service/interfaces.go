package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avolve-dao/avolve-sub003/events"
	"github.com/avolve-dao/avolve-sub003/models"
)

// ChallengeRepository defines the interface for challenge reference data access
type ChallengeRepository interface {
	// GetByWeekday retrieves the active challenge for a weekday, nil if none
	GetByWeekday(ctx context.Context, weekday time.Weekday) (*models.Challenge, error)

	// GetAll returns all challenges ordered by weekday
	GetAll(ctx context.Context) ([]*models.Challenge, error)

	// GetAllTokenTypes returns the token reference data ordered by symbol
	GetAllTokenTypes(ctx context.Context) ([]*models.TokenType, error)
}

// StreakRecordRepository defines the interface for streak record data access
type StreakRecordRepository interface {
	// Get retrieves a streak record, nil if the user never claimed in scope
	Get(ctx context.Context, userID uuid.UUID, scope string) (*models.StreakRecord, error)

	// GetForUpdate retrieves a streak record and row-locks it for the
	// duration of the surrounding transaction
	GetForUpdate(ctx context.Context, userID uuid.UUID, scope string) (*models.StreakRecord, error)

	// Upsert creates or updates a streak record
	Upsert(ctx context.Context, record *models.StreakRecord) error
}

// LedgerRepository defines the interface for append-only ledger access
type LedgerRepository interface {
	// Append inserts a new ledger entry; a colliding positive entry for the
	// same (user, challenge, day) fails with models.ErrDuplicateClaim
	Append(ctx context.Context, entry *models.LedgerEntry) error

	// GetByUser returns the most recent ledger entries for a user
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error)

	// SumByUserAndToken returns the signed sum of a user's entries for one token
	SumByUserAndToken(ctx context.Context, userID uuid.UUID, tokenType string) (int64, error)

	// SumAll returns the signed ledger sum for every (user, token) pair
	SumAll(ctx context.Context) ([]*models.LedgerSum, error)
}

// BalanceRepository defines the interface for derived balance access
type BalanceRepository interface {
	// Get retrieves one balance, nil if the user never earned the token
	Get(ctx context.Context, userID uuid.UUID, tokenType string) (*models.Balance, error)

	// GetAllByUser returns all balances held by a user
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*models.Balance, error)

	// GetAll returns every balance row
	GetAll(ctx context.Context) ([]*models.Balance, error)

	// ApplyDelta adjusts a balance by delta, creating the row if needed
	ApplyDelta(ctx context.Context, userID uuid.UUID, tokenType string, delta int64) error
}

// ClaimService defines the interface for the daily claim operation
type ClaimService interface {
	// Claim settles today's challenge claim for a user and returns a
	// receipt. clientDate, when provided, is validated against the server
	// date but claims always settle on the server's calendar day.
	Claim(ctx context.Context, userID uuid.UUID, clientDate *time.Time) (*models.ClaimReceipt, error)

	// GetStreak returns the streak record for a user and scope, or a zeroed
	// record if the user has never claimed in that scope
	GetStreak(ctx context.Context, userID uuid.UUID, scope string) (*models.StreakRecord, error)
}

// ChallengeCatalog defines the interface for challenge lookups
type ChallengeCatalog interface {
	// GetChallengeForDate resolves the active challenge for a calendar
	// date; fails with models.ErrChallengeNotConfigured when none exists
	GetChallengeForDate(ctx context.Context, date time.Time) (*models.Challenge, error)

	// ListChallenges returns the full weekly challenge schedule
	ListChallenges(ctx context.Context) ([]*models.Challenge, error)

	// ListTokenTypes returns the platform's token reference data
	ListTokenTypes(ctx context.Context) ([]*models.TokenType, error)
}

// LedgerService defines the interface for ledger and balance operations
// outside the claim path
type LedgerService interface {
	// GetBalances returns all balances held by a user
	GetBalances(ctx context.Context, userID uuid.UUID) ([]*models.Balance, error)

	// GetBalance returns one balance, zero-valued if the user never earned
	// the token
	GetBalance(ctx context.Context, userID uuid.UUID, tokenType string) (*models.Balance, error)

	// GetHistory returns the most recent ledger entries for a user
	GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error)

	// Adjust appends a signed compensating entry and applies it to the
	// balance. Corrections never edit existing entries.
	Adjust(ctx context.Context, userID uuid.UUID, tokenType string, amount int64, note string) (*models.LedgerEntry, error)
}

// AuditService defines the interface for the conservation audit
type AuditService interface {
	// VerifyConservation recomputes ledger sums and compares them with the
	// stored balances, returning one violation per mismatched pair
	VerifyConservation(ctx context.Context) ([]ConservationViolation, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	ChallengeRepository() ChallengeRepository
	StreakRecordRepository() StreakRecordRepository
	LedgerRepository() LedgerRepository
	BalanceRepository() BalanceRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
