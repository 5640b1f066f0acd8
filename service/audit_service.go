package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ConservationViolation reports one (user, token) pair whose stored
// balance disagrees with the signed sum of its ledger entries.
type ConservationViolation struct {
	UserID        uuid.UUID
	TokenType     string
	LedgerTotal   int64
	BalanceAmount int64
}

type auditService struct {
	uowFactory UnitOfWorkFactory
}

// NewAuditService creates a new conservation audit service
func NewAuditService(uowFactory UnitOfWorkFactory) AuditService {
	return &auditService{
		uowFactory: uowFactory,
	}
}

// VerifyConservation recomputes ledger sums inside one transaction so
// sums and balances are read from the same snapshot. Violations are
// logged and returned, never repaired automatically.
func (s *auditService) VerifyConservation(ctx context.Context) ([]ConservationViolation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sums, err := uow.LedgerRepository().SumAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger entries: %w", err)
	}

	balances, err := uow.BalanceRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}

	type key struct {
		userID    uuid.UUID
		tokenType string
	}

	ledgerTotals := make(map[key]int64, len(sums))
	for _, sum := range sums {
		ledgerTotals[key{sum.UserID, sum.TokenType}] = sum.Total
	}

	var violations []ConservationViolation

	seen := make(map[key]bool, len(balances))
	for _, balance := range balances {
		k := key{balance.UserID, balance.TokenType}
		seen[k] = true
		if total := ledgerTotals[k]; total != balance.Amount {
			violations = append(violations, ConservationViolation{
				UserID:        balance.UserID,
				TokenType:     balance.TokenType,
				LedgerTotal:   total,
				BalanceAmount: balance.Amount,
			})
		}
	}

	// Ledger entries without a balance row are also a violation.
	for k, total := range ledgerTotals {
		if !seen[k] {
			violations = append(violations, ConservationViolation{
				UserID:      k.userID,
				TokenType:   k.tokenType,
				LedgerTotal: total,
			})
		}
	}

	for _, v := range violations {
		log.WithFields(log.Fields{
			"userID":        v.UserID,
			"tokenType":     v.TokenType,
			"ledgerTotal":   v.LedgerTotal,
			"balanceAmount": v.BalanceAmount,
		}).Error("Balance conservation violation detected")
	}

	if len(violations) == 0 {
		log.WithField("pairs", len(ledgerTotals)).Info("Conservation audit passed")
	}

	return violations, nil
}
