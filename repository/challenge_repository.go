package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avolve-dao/avolve-sub003/database"
	"github.com/avolve-dao/avolve-sub003/models"
)

// ChallengeRepository implements challenge reference data access
type ChallengeRepository struct {
	q queryable
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *database.DB) *ChallengeRepository {
	return &ChallengeRepository{q: db.Pool}
}

// newChallengeRepositoryWithTx creates a new challenge repository with a transaction
func newChallengeRepositoryWithTx(tx queryable) *ChallengeRepository {
	return &ChallengeRepository{q: tx}
}

// GetByWeekday retrieves the active challenge configured for a weekday.
// Returns nil without error when no active challenge exists.
func (r *ChallengeRepository) GetByWeekday(ctx context.Context, weekday time.Weekday) (*models.Challenge, error) {
	query := `
		SELECT id, weekday, token_type, base_reward, active, created_at
		FROM challenges
		WHERE weekday = $1 AND active
	`

	var challenge models.Challenge
	var wd int16
	err := r.q.QueryRow(ctx, query, int16(weekday)).Scan(
		&challenge.ID,
		&wd,
		&challenge.TokenType,
		&challenge.BaseReward,
		&challenge.Active,
		&challenge.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge for weekday %d: %w", weekday, classifyError(err))
	}

	challenge.Weekday = time.Weekday(wd)
	return &challenge, nil
}

// GetAllTokenTypes returns the platform's token reference data ordered by
// symbol.
func (r *ChallengeRepository) GetAllTokenTypes(ctx context.Context) ([]*models.TokenType, error) {
	query := `
		SELECT id, symbol, name
		FROM token_types
		ORDER BY symbol
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get token types: %w", classifyError(err))
	}
	defer rows.Close()

	var tokenTypes []*models.TokenType
	for rows.Next() {
		var tokenType models.TokenType
		if err := rows.Scan(&tokenType.ID, &tokenType.Symbol, &tokenType.Name); err != nil {
			return nil, fmt.Errorf("failed to scan token type: %w", err)
		}
		tokenTypes = append(tokenTypes, &tokenType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate token types: %w", classifyError(err))
	}

	return tokenTypes, nil
}

// GetAll returns all challenges ordered by weekday
func (r *ChallengeRepository) GetAll(ctx context.Context) ([]*models.Challenge, error) {
	query := `
		SELECT id, weekday, token_type, base_reward, active, created_at
		FROM challenges
		ORDER BY weekday
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenges: %w", classifyError(err))
	}
	defer rows.Close()

	var challenges []*models.Challenge
	for rows.Next() {
		var challenge models.Challenge
		var wd int16
		err := rows.Scan(
			&challenge.ID,
			&wd,
			&challenge.TokenType,
			&challenge.BaseReward,
			&challenge.Active,
			&challenge.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenge.Weekday = time.Weekday(wd)
		challenges = append(challenges, &challenge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate challenges: %w", classifyError(err))
	}

	return challenges, nil
}
