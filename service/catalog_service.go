package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avolve-dao/avolve-sub003/models"
)

// resolveChallengeForDate looks up the active challenge for a calendar
// date through the given repository. Shared between the catalog service
// and the claim path so both resolve identically.
func resolveChallengeForDate(ctx context.Context, repo ChallengeRepository, date time.Time) (*models.Challenge, error) {
	challenge, err := repo.GetByWeekday(ctx, models.NormalizeDate(date).Weekday())
	if err != nil {
		return nil, fmt.Errorf("failed to look up challenge: %w", err)
	}
	if challenge == nil {
		return nil, models.ErrChallengeNotConfigured
	}
	return challenge, nil
}

type challengeCatalog struct {
	uowFactory UnitOfWorkFactory
}

// NewChallengeCatalog creates a new challenge catalog service
func NewChallengeCatalog(uowFactory UnitOfWorkFactory) ChallengeCatalog {
	return &challengeCatalog{
		uowFactory: uowFactory,
	}
}

func (c *challengeCatalog) GetChallengeForDate(ctx context.Context, date time.Time) (*models.Challenge, error) {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return resolveChallengeForDate(ctx, uow.ChallengeRepository(), date)
}

func (c *challengeCatalog) ListTokenTypes(ctx context.Context) ([]*models.TokenType, error) {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tokenTypes, err := uow.ChallengeRepository().GetAllTokenTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list token types: %w", err)
	}

	return tokenTypes, nil
}

func (c *challengeCatalog) ListChallenges(ctx context.Context) ([]*models.Challenge, error) {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	challenges, err := uow.ChallengeRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	return challenges, nil
}
