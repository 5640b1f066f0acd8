package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avolve-dao/avolve-sub003/models"
)

func TestLedgerService_Adjust_CreditsBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(nil, nil, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewLedgerService(mockFactory, fixedClock{now: testMonday})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.UserID == userID &&
			e.TokenType == "GEN" &&
			e.Amount == 50 &&
			e.ChallengeID == nil &&
			e.Reason == models.LedgerReasonAdjustment &&
			e.Metadata["note"] == "support grant"
	})).Return(nil)
	mockBalanceRepo.On("ApplyDelta", ctx, userID, "GEN", int64(50)).Return(nil)

	entry, err := svc.Adjust(ctx, userID, "GEN", 50, "support grant")

	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(50), entry.Amount)
	assert.Equal(t, models.LedgerReasonAdjustment, entry.Reason)

	mockUoW.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
	mockBalanceRepo.AssertExpectations(t)
}

func TestLedgerService_Adjust_RejectsZeroAmount(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(nil, nil, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewLedgerService(mockFactory, fixedClock{now: testMonday})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	entry, err := svc.Adjust(ctx, uuid.New(), "GEN", 0, "")

	require.Error(t, err)
	assert.Nil(t, entry)
	assert.Contains(t, err.Error(), "must be non-zero")
	mockLedgerRepo.AssertNotCalled(t, "Append")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLedgerService_Adjust_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(nil, nil, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewLedgerService(mockFactory, fixedClock{now: testMonday})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLedgerRepo.On("Append", ctx, mock.Anything).Return(nil)
	// The debit would drive the balance below zero
	mockBalanceRepo.On("ApplyDelta", ctx, userID, "GEN", int64(-100)).
		Return(models.ErrInsufficientBalance)

	entry, err := svc.Adjust(ctx, userID, "GEN", -100, "clawback")

	require.Error(t, err)
	assert.Nil(t, entry)
	assert.True(t, errors.Is(err, models.ErrInsufficientBalance))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLedgerService_GetBalance_NeverEarned(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockBalanceRepo, nil)

	svc := NewLedgerService(mockFactory, fixedClock{now: testMonday})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBalanceRepo.On("Get", ctx, userID, "PSP").Return(nil, nil)

	balance, err := svc.GetBalance(ctx, userID, "PSP")

	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, userID, balance.UserID)
	assert.Equal(t, "PSP", balance.TokenType)
	assert.Equal(t, int64(0), balance.Amount)
}

func TestLedgerService_GetHistory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(nil, nil, mockLedgerRepo, nil, nil)

	svc := NewLedgerService(mockFactory, fixedClock{now: testMonday})

	expected := []*models.LedgerEntry{
		{UserID: userID, TokenType: "SHE", Amount: 15},
		{UserID: userID, TokenType: "SHE", Amount: 10},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLedgerRepo.On("GetByUser", ctx, userID, 20).Return(expected, nil)

	entries, err := svc.GetHistory(ctx, userID, 20)

	require.NoError(t, err)
	assert.Equal(t, expected, entries)
}

func TestRecordClaim_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockLedgerRepo := new(MockLedgerRepository)
	mockUoW.SetRepositories(nil, nil, mockLedgerRepo, nil, nil)

	entry := &models.LedgerEntry{
		UserID:    uuid.New(),
		TokenType: "SHE",
		Amount:    -5,
		Reason:    models.LedgerReasonDailyChallenge,
	}

	err := RecordClaim(ctx, mockUoW, entry)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
	mockLedgerRepo.AssertNotCalled(t, "Append")
}
