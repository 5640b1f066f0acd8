package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolve-dao/avolve-sub003/events"
	"github.com/avolve-dao/avolve-sub003/models"
)

// RecordClaim appends an earn entry to the ledger and applies it to the
// user's balance within the caller's unit of work. This is the single
// entry point for claim settlements; earns are strictly additive.
func RecordClaim(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry) error {
	if entry.Amount <= 0 {
		return fmt.Errorf("claim amount must be positive, got %d", entry.Amount)
	}
	if entry.Reason != models.LedgerReasonDailyChallenge {
		return fmt.Errorf("unexpected ledger reason %q for claim", entry.Reason)
	}

	if err := uow.LedgerRepository().Append(ctx, entry); err != nil {
		return err
	}

	if err := uow.BalanceRepository().ApplyDelta(ctx, entry.UserID, entry.TokenType, entry.Amount); err != nil {
		return fmt.Errorf("failed to apply claim to balance: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       entry.UserID,
		TokenType:    entry.TokenType,
		ChangeAmount: entry.Amount,
		Reason:       entry.Reason,
	})

	return nil
}

// RecordAdjustment appends a signed compensating entry and applies it to
// the balance within the caller's unit of work. Adjustments never edit
// existing entries and must not drive a balance negative.
func RecordAdjustment(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry) error {
	if entry.Amount == 0 {
		return fmt.Errorf("adjustment amount must be non-zero")
	}
	if entry.Reason != models.LedgerReasonAdjustment {
		return fmt.Errorf("unexpected ledger reason %q for adjustment", entry.Reason)
	}

	if err := uow.LedgerRepository().Append(ctx, entry); err != nil {
		return err
	}

	if err := uow.BalanceRepository().ApplyDelta(ctx, entry.UserID, entry.TokenType, entry.Amount); err != nil {
		return fmt.Errorf("failed to apply adjustment to balance: %w", err)
	}

	uow.EventBus().Publish(events.LedgerAdjustedEvent{
		UserID:    entry.UserID,
		TokenType: entry.TokenType,
		Amount:    entry.Amount,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       entry.UserID,
		TokenType:    entry.TokenType,
		ChangeAmount: entry.Amount,
		Reason:       entry.Reason,
	})

	return nil
}

type ledgerService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, clock Clock) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (s *ledgerService) GetBalances(ctx context.Context, userID uuid.UUID) ([]*models.Balance, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balances, err := uow.BalanceRepository().GetAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}

	return balances, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, userID uuid.UUID, tokenType string) (*models.Balance, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.BalanceRepository().Get(ctx, userID, tokenType)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if balance == nil {
		// Never earned this token: report a zero balance rather than absence.
		balance = &models.Balance{UserID: userID, TokenType: tokenType}
	}

	return balance, nil
}

func (s *ledgerService) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.LedgerRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger history: %w", err)
	}

	return entries, nil
}

func (s *ledgerService) Adjust(ctx context.Context, userID uuid.UUID, tokenType string, amount int64, note string) (*models.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry := &models.LedgerEntry{
		UserID:    userID,
		TokenType: tokenType,
		Amount:    amount,
		ClaimDate: s.clock.Today(),
		Reason:    models.LedgerReasonAdjustment,
		Metadata:  map[string]any{"note": note},
	}

	if err := RecordAdjustment(ctx, uow, entry); err != nil {
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	return entry, nil
}
