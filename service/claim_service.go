package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/avolve-dao/avolve-sub003/events"
	"github.com/avolve-dao/avolve-sub003/models"
)

// maxClientDateSkew bounds how far a client-supplied calendar date may
// drift from the server's before the claim is rejected outright.
const maxClientDateSkew = 24 * time.Hour

type claimService struct {
	uowFactory    UnitOfWorkFactory
	clock         Clock
	maxAttempts   uint64
	retryInterval time.Duration
}

// NewClaimService creates a new claim service. maxAttempts bounds the
// number of times a transiently failing claim is tried before the error
// surfaces; retryInterval seeds the exponential backoff between attempts.
func NewClaimService(uowFactory UnitOfWorkFactory, clock Clock, maxAttempts int, retryInterval time.Duration) ClaimService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &claimService{
		uowFactory:    uowFactory,
		clock:         clock,
		maxAttempts:   uint64(maxAttempts),
		retryInterval: retryInterval,
	}
}

func (s *claimService) Claim(ctx context.Context, userID uuid.UUID, clientDate *time.Time) (*models.ClaimReceipt, error) {
	claimDate := s.clock.Today()

	// Claims always settle on the server's calendar day. A client date is
	// only sanity-checked: a device clock off by more than a day gets a
	// hard failure instead of a confusing streak reset.
	if clientDate != nil {
		skew := models.NormalizeDate(*clientDate).Sub(claimDate)
		if skew < -maxClientDateSkew || skew > maxClientDateSkew {
			return nil, fmt.Errorf("client date %s is too far from server date %s",
				models.NormalizeDate(*clientDate).Format(time.DateOnly), claimDate.Format(time.DateOnly))
		}
	}

	var receipt *models.ClaimReceipt
	operation := func() error {
		r, err := s.settleClaim(ctx, userID, claimDate)
		if err != nil {
			if models.IsTransient(err) {
				log.WithFields(log.Fields{
					"userID":    userID,
					"claimDate": claimDate.Format(time.DateOnly),
				}).WithError(err).Warn("Transient claim failure, retrying")
				return err
			}
			return backoff.Permanent(err)
		}
		receipt = r
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, s.maxAttempts-1), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return receipt, nil
}

// settleClaim performs one claim attempt inside a single transaction:
// resolve the challenge, advance the streak under a row lock, compute the
// reward, and append the ledger entry. Any failure rolls back the whole
// attempt.
func (s *claimService) settleClaim(ctx context.Context, userID uuid.UUID, claimDate time.Time) (*models.ClaimReceipt, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	challenge, err := resolveChallengeForDate(ctx, uow.ChallengeRepository(), claimDate)
	if err != nil {
		return nil, err
	}

	record, err := uow.StreakRecordRepository().GetForUpdate(ctx, userID, challenge.TokenType)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak record: %w", err)
	}

	if record == nil {
		record = models.NewStreakRecord(userID, challenge.TokenType, claimDate)
	} else if err := record.Advance(claimDate); err != nil {
		return nil, err
	}

	amount := CalculateReward(challenge.BaseReward, record.CurrentStreak)

	if err := uow.StreakRecordRepository().Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save streak record: %w", err)
	}

	entry := &models.LedgerEntry{
		UserID:      userID,
		TokenType:   challenge.TokenType,
		Amount:      amount,
		ChallengeID: &challenge.ID,
		ClaimDate:   claimDate,
		Reason:      models.LedgerReasonDailyChallenge,
		Metadata: map[string]any{
			"base_reward": challenge.BaseReward,
			"streak":      record.CurrentStreak,
			"multiplier":  Multiplier(record.CurrentStreak),
		},
	}

	if err := RecordClaim(ctx, uow, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ClaimSettledEvent{
		UserID:      userID,
		TokenType:   challenge.TokenType,
		Amount:      amount,
		ChallengeID: challenge.ID,
		ClaimDate:   claimDate,
		NewStreak:   record.CurrentStreak,
	})
	uow.EventBus().Publish(events.StreakAdvancedEvent{
		UserID:        userID,
		Scope:         challenge.TokenType,
		CurrentStreak: record.CurrentStreak,
		LongestStreak: record.LongestStreak,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"tokenType": challenge.TokenType,
		"amount":    amount,
		"streak":    record.CurrentStreak,
	}).Info("Claim settled")

	return &models.ClaimReceipt{
		TokenType:     challenge.TokenType,
		Amount:        amount,
		NewStreak:     record.CurrentStreak,
		LongestStreak: record.LongestStreak,
		Multiplier:    Multiplier(record.CurrentStreak),
		StreakFamily:  StreakFamily(record.CurrentStreak),
		ClaimDate:     claimDate,
	}, nil
}

func (s *claimService) GetStreak(ctx context.Context, userID uuid.UUID, scope string) (*models.StreakRecord, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	record, err := uow.StreakRecordRepository().Get(ctx, userID, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak record: %w", err)
	}
	if record == nil {
		record = &models.StreakRecord{UserID: userID, Scope: scope}
	}

	return record, nil
}
