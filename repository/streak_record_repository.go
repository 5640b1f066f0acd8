package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avolve-dao/avolve-sub003/database"
	"github.com/avolve-dao/avolve-sub003/models"
)

// StreakRecordRepository implements streak record data access
type StreakRecordRepository struct {
	q queryable
}

// NewStreakRecordRepository creates a new streak record repository
func NewStreakRecordRepository(db *database.DB) *StreakRecordRepository {
	return &StreakRecordRepository{q: db.Pool}
}

// newStreakRecordRepositoryWithTx creates a new streak record repository with a transaction
func newStreakRecordRepositoryWithTx(tx queryable) *StreakRecordRepository {
	return &StreakRecordRepository{q: tx}
}

const streakRecordColumns = `user_id, scope, current_streak, longest_streak, last_claim_date, created_at, updated_at`

// Get retrieves a streak record. Returns nil without error when the user
// has never claimed in this scope.
func (r *StreakRecordRepository) Get(ctx context.Context, userID uuid.UUID, scope string) (*models.StreakRecord, error) {
	query := `
		SELECT ` + streakRecordColumns + `
		FROM streak_records
		WHERE user_id = $1 AND scope = $2
	`
	return r.get(ctx, query, userID, scope)
}

// GetForUpdate retrieves a streak record and row-locks it for the duration
// of the surrounding transaction. Concurrent claims for the same user and
// scope serialize on this lock.
func (r *StreakRecordRepository) GetForUpdate(ctx context.Context, userID uuid.UUID, scope string) (*models.StreakRecord, error) {
	query := `
		SELECT ` + streakRecordColumns + `
		FROM streak_records
		WHERE user_id = $1 AND scope = $2
		FOR UPDATE
	`
	return r.get(ctx, query, userID, scope)
}

func (r *StreakRecordRepository) get(ctx context.Context, query string, userID uuid.UUID, scope string) (*models.StreakRecord, error) {
	var record models.StreakRecord
	err := r.q.QueryRow(ctx, query, userID, scope).Scan(
		&record.UserID,
		&record.Scope,
		&record.CurrentStreak,
		&record.LongestStreak,
		&record.LastClaimDate,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak record for user %s scope %s: %w", userID, scope, classifyError(err))
	}

	return &record, nil
}

// Upsert creates or updates a streak record
func (r *StreakRecordRepository) Upsert(ctx context.Context, record *models.StreakRecord) error {
	query := `
		INSERT INTO streak_records (user_id, scope, current_streak, longest_streak, last_claim_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, scope)
		DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_claim_date = EXCLUDED.last_claim_date,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		record.UserID,
		record.Scope,
		record.CurrentStreak,
		record.LongestStreak,
		record.LastClaimDate,
	).Scan(&record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert streak record for user %s scope %s: %w", record.UserID, record.Scope, classifyError(err))
	}

	return nil
}
