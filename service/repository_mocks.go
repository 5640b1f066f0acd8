package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/avolve-dao/avolve-sub003/events"
	"github.com/avolve-dao/avolve-sub003/models"
)

// MockChallengeRepository is a mock implementation of ChallengeRepository
type MockChallengeRepository struct {
	mock.Mock
}

func (m *MockChallengeRepository) GetByWeekday(ctx context.Context, weekday time.Weekday) (*models.Challenge, error) {
	args := m.Called(ctx, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Challenge), args.Error(1)
}

func (m *MockChallengeRepository) GetAll(ctx context.Context) ([]*models.Challenge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Challenge), args.Error(1)
}

func (m *MockChallengeRepository) GetAllTokenTypes(ctx context.Context) ([]*models.TokenType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TokenType), args.Error(1)
}

// MockStreakRecordRepository is a mock implementation of StreakRecordRepository
type MockStreakRecordRepository struct {
	mock.Mock
}

func (m *MockStreakRecordRepository) Get(ctx context.Context, userID uuid.UUID, scope string) (*models.StreakRecord, error) {
	args := m.Called(ctx, userID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StreakRecord), args.Error(1)
}

func (m *MockStreakRecordRepository) GetForUpdate(ctx context.Context, userID uuid.UUID, scope string) (*models.StreakRecord, error) {
	args := m.Called(ctx, userID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StreakRecord), args.Error(1)
}

func (m *MockStreakRecordRepository) Upsert(ctx context.Context, record *models.StreakRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SumByUserAndToken(ctx context.Context, userID uuid.UUID, tokenType string) (int64, error) {
	args := m.Called(ctx, userID, tokenType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) SumAll(ctx context.Context) ([]*models.LedgerSum, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerSum), args.Error(1)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) Get(ctx context.Context, userID uuid.UUID, tokenType string) (*models.Balance, error) {
	args := m.Called(ctx, userID, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*models.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GetAll(ctx context.Context) ([]*models.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) ApplyDelta(ctx context.Context, userID uuid.UUID, tokenType string, delta int64) error {
	args := m.Called(ctx, userID, tokenType, delta)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that do not assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return the instances set via SetRepositories rather than going through
// the mock call machinery.
type MockUnitOfWork struct {
	mock.Mock

	challengeRepo ChallengeRepository
	streakRepo    StreakRecordRepository
	ledgerRepo    LedgerRepository
	balanceRepo   BalanceRepository
	eventBus      EventPublisher
}

// SetRepositories wires the repositories the unit of work hands out.
// A nil eventBus defaults to a publisher that drops events.
func (m *MockUnitOfWork) SetRepositories(
	challengeRepo ChallengeRepository,
	streakRepo StreakRecordRepository,
	ledgerRepo LedgerRepository,
	balanceRepo BalanceRepository,
	eventBus EventPublisher,
) {
	m.challengeRepo = challengeRepo
	m.streakRepo = streakRepo
	m.ledgerRepo = ledgerRepo
	m.balanceRepo = balanceRepo
	if eventBus == nil {
		eventBus = noopPublisher{}
	}
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ChallengeRepository() ChallengeRepository {
	return m.challengeRepo
}

func (m *MockUnitOfWork) StreakRecordRepository() StreakRecordRepository {
	return m.streakRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) BalanceRepository() BalanceRepository {
	return m.balanceRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
