package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avolve-dao/avolve-sub003/models"
)

// fixedClock pins the claim date for deterministic tests
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Today() time.Time {
	return models.NormalizeDate(c.now)
}

// Monday 2024-03-04
var testMonday = time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)

func mondayChallenge() *models.Challenge {
	return &models.Challenge{
		ID:         2,
		Weekday:    time.Monday,
		TokenType:  "SHE",
		BaseReward: 10,
		Active:     true,
	}
}

func TestClaimService_Claim_FirstClaim(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)
	claimDate := models.NormalizeDate(testMonday)

	// Mock expectations
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(nil, nil) // Never claimed before
	mockStreakRepo.On("Upsert", ctx, mock.MatchedBy(func(r *models.StreakRecord) bool {
		return r.UserID == userID &&
			r.Scope == "SHE" &&
			r.CurrentStreak == 1 &&
			r.LongestStreak == 1
	})).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.UserID == userID &&
			e.TokenType == "SHE" &&
			e.Amount == 10 &&
			e.ChallengeID != nil && *e.ChallengeID == 2 &&
			e.ClaimDate.Equal(claimDate) &&
			e.Reason == models.LedgerReasonDailyChallenge
	})).Return(nil)
	mockBalanceRepo.On("ApplyDelta", ctx, userID, "SHE", int64(10)).Return(nil)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "SHE", receipt.TokenType)
	assert.Equal(t, int64(10), receipt.Amount)
	assert.Equal(t, 1, receipt.NewStreak)
	assert.Equal(t, 1, receipt.LongestStreak)
	assert.Equal(t, 1.0, receipt.Multiplier)
	assert.Equal(t, "1-4-7", receipt.StreakFamily)
	assert.True(t, receipt.ClaimDate.Equal(claimDate))

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockStreakRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
	mockBalanceRepo.AssertExpectations(t)
}

func TestClaimService_Claim_StreakMultiplierApplied(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	// Claimed yesterday with a streak of 2; today makes 3 and enters the
	// 1.5x tier.
	yesterday := models.NormalizeDate(testMonday).AddDate(0, 0, -1)
	existing := &models.StreakRecord{
		UserID:        userID,
		Scope:         "SHE",
		CurrentStreak: 2,
		LongestStreak: 4,
		LastClaimDate: &yesterday,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(existing, nil)
	mockStreakRepo.On("Upsert", ctx, mock.MatchedBy(func(r *models.StreakRecord) bool {
		return r.CurrentStreak == 3 && r.LongestStreak == 4
	})).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Amount == 15
	})).Return(nil)
	mockBalanceRepo.On("ApplyDelta", ctx, userID, "SHE", int64(15)).Return(nil)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(15), receipt.Amount)
	assert.Equal(t, 3, receipt.NewStreak)
	assert.Equal(t, 4, receipt.LongestStreak)
	assert.Equal(t, 1.5, receipt.Multiplier)
	assert.Equal(t, "3-6-9", receipt.StreakFamily)

	mockStreakRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestClaimService_Claim_SameDayConflict(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	today := models.NormalizeDate(testMonday)
	existing := &models.StreakRecord{
		UserID:        userID,
		Scope:         "SHE",
		CurrentStreak: 5,
		LongestStreak: 5,
		LastClaimDate: &today,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(existing, nil)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.True(t, models.IsConflict(err))

	// A rejected claim must leave no side effects behind
	mockStreakRepo.AssertNotCalled(t, "Upsert")
	mockLedgerRepo.AssertNotCalled(t, "Append")
	mockBalanceRepo.AssertNotCalled(t, "ApplyDelta")
	mockUoW.AssertNotCalled(t, "Commit")
	// Conflicts are not retried
	mockFactory.AssertNumberOfCalls(t, "Create", 1)
}

func TestClaimService_Claim_GapResetsStreak(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	threeDaysAgo := models.NormalizeDate(testMonday).AddDate(0, 0, -3)
	existing := &models.StreakRecord{
		UserID:        userID,
		Scope:         "SHE",
		CurrentStreak: 8,
		LongestStreak: 8,
		LastClaimDate: &threeDaysAgo,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(existing, nil)
	mockStreakRepo.On("Upsert", ctx, mock.MatchedBy(func(r *models.StreakRecord) bool {
		return r.CurrentStreak == 1 && r.LongestStreak == 8
	})).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Amount == 10 // Back to the base reward
	})).Return(nil)
	mockBalanceRepo.On("ApplyDelta", ctx, userID, "SHE", int64(10)).Return(nil)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, receipt.NewStreak)
	assert.Equal(t, 8, receipt.LongestStreak)
	assert.Equal(t, 1.0, receipt.Multiplier)
}

func TestClaimService_Claim_DuplicateLedgerBackstop(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(nil, nil)
	mockStreakRepo.On("Upsert", ctx, mock.Anything).Return(nil)
	// The unique index fires even though the streak row said first claim
	mockLedgerRepo.On("Append", ctx, mock.Anything).Return(models.ErrDuplicateClaim)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.True(t, models.IsConflict(err))
	mockBalanceRepo.AssertNotCalled(t, "ApplyDelta")
	mockUoW.AssertNotCalled(t, "Commit")
	mockFactory.AssertNumberOfCalls(t, "Create", 1)
}

func TestClaimService_Claim_TransientFailureRetried(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)

	// First attempt hits a deadlock, second succeeds
	transient := &models.TransientError{Err: errors.New("deadlock detected")}
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(nil, transient).Once()
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(nil, nil).Once()
	mockStreakRepo.On("Upsert", ctx, mock.Anything).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.Anything).Return(nil)
	mockBalanceRepo.On("ApplyDelta", ctx, userID, "SHE", int64(10)).Return(nil)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, int64(10), receipt.Amount)
	mockFactory.AssertNumberOfCalls(t, "Create", 2)
	mockStreakRepo.AssertExpectations(t)
}

func TestClaimService_Claim_TransientFailureExhausted(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)

	transient := &models.TransientError{Err: errors.New("serialization failure")}
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(nil, transient)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.True(t, models.IsTransient(err))
	// All attempts consumed
	mockFactory.AssertNumberOfCalls(t, "Create", 3)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestClaimService_Claim_FatalFailureNotRetried(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)

	fatal := &models.FatalError{Err: errors.New("relation does not exist")}
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(nil, fatal)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.True(t, models.IsFatal(err))
	mockFactory.AssertNumberOfCalls(t, "Create", 1)
}

func TestClaimService_Claim_ChallengeNotConfigured(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(nil, nil)

	receipt, err := svc.Claim(ctx, userID, nil)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.True(t, errors.Is(err, models.ErrChallengeNotConfigured))
	mockStreakRepo.AssertNotCalled(t, "GetForUpdate")
}

func TestClaimService_Claim_ClientDateTooFarOff(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	clientDate := testMonday.AddDate(0, 0, -5)
	receipt, err := svc.Claim(ctx, userID, &clientDate)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.Contains(t, err.Error(), "too far from server date")
	mockFactory.AssertNotCalled(t, "Create")
}

func TestClaimService_Claim_ClientDateWithinSkewSettlesOnServerDate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockChallengeRepo := new(MockChallengeRepository)
	mockStreakRepo := new(MockStreakRecordRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockBalanceRepo := new(MockBalanceRepository)

	mockUoW.SetRepositories(mockChallengeRepo, mockStreakRepo, mockLedgerRepo, mockBalanceRepo, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)
	serverDate := models.NormalizeDate(testMonday)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Server resolves Monday's challenge even though the client thinks it
	// is still Sunday
	mockChallengeRepo.On("GetByWeekday", ctx, time.Monday).Return(mondayChallenge(), nil)
	mockStreakRepo.On("GetForUpdate", ctx, userID, "SHE").Return(nil, nil)
	mockStreakRepo.On("Upsert", ctx, mock.Anything).Return(nil)
	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.ClaimDate.Equal(serverDate)
	})).Return(nil)
	mockBalanceRepo.On("ApplyDelta", ctx, userID, "SHE", int64(10)).Return(nil)

	clientDate := testMonday.AddDate(0, 0, -1)
	receipt, err := svc.Claim(ctx, userID, &clientDate)

	require.NoError(t, err)
	assert.True(t, receipt.ClaimDate.Equal(serverDate))
	mockLedgerRepo.AssertExpectations(t)
}

func TestClaimService_GetStreak_NeverClaimed(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockStreakRepo := new(MockStreakRecordRepository)

	mockUoW.SetRepositories(nil, mockStreakRepo, nil, nil, nil)

	svc := NewClaimService(mockFactory, fixedClock{now: testMonday}, 3, time.Millisecond)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockStreakRepo.On("Get", ctx, userID, "SHE").Return(nil, nil)

	record, err := svc.GetStreak(ctx, userID, "SHE")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 0, record.CurrentStreak)
	assert.Equal(t, 0, record.LongestStreak)
	assert.Nil(t, record.LastClaimDate)
}
