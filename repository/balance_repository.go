package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avolve-dao/avolve-sub003/database"
	"github.com/avolve-dao/avolve-sub003/models"
)

// BalanceRepository implements derived balance data access
type BalanceRepository struct {
	q queryable
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *database.DB) *BalanceRepository {
	return &BalanceRepository{q: db.Pool}
}

// newBalanceRepositoryWithTx creates a new balance repository with a transaction
func newBalanceRepositoryWithTx(tx queryable) *BalanceRepository {
	return &BalanceRepository{q: tx}
}

// Get retrieves one balance. Returns nil without error when the user has
// never earned this token.
func (r *BalanceRepository) Get(ctx context.Context, userID uuid.UUID, tokenType string) (*models.Balance, error) {
	query := `
		SELECT user_id, token_type, amount, updated_at
		FROM balances
		WHERE user_id = $1 AND token_type = $2
	`

	var balance models.Balance
	err := r.q.QueryRow(ctx, query, userID, tokenType).Scan(
		&balance.UserID,
		&balance.TokenType,
		&balance.Amount,
		&balance.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for user %s token %s: %w", userID, tokenType, classifyError(err))
	}

	return &balance, nil
}

// GetAllByUser returns all balances held by a user
func (r *BalanceRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*models.Balance, error) {
	query := `
		SELECT user_id, token_type, amount, updated_at
		FROM balances
		WHERE user_id = $1
		ORDER BY token_type
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances for user %s: %w", userID, classifyError(err))
	}
	defer rows.Close()

	return scanBalances(rows)
}

// GetAll returns every balance row. Used by the conservation audit.
func (r *BalanceRepository) GetAll(ctx context.Context) ([]*models.Balance, error) {
	query := `
		SELECT user_id, token_type, amount, updated_at
		FROM balances
		ORDER BY user_id, token_type
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", classifyError(err))
	}
	defer rows.Close()

	return scanBalances(rows)
}

// ApplyDelta adjusts a balance by delta, creating the row if needed.
// A delta that would drive the balance negative fails with
// models.ErrInsufficientBalance.
func (r *BalanceRepository) ApplyDelta(ctx context.Context, userID uuid.UUID, tokenType string, delta int64) error {
	query := `
		INSERT INTO balances (user_id, token_type, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, token_type)
		DO UPDATE SET
			amount = balances.amount + EXCLUDED.amount,
			updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, userID, tokenType, delta); err != nil {
		return fmt.Errorf("failed to apply balance delta for user %s token %s: %w", userID, tokenType, classifyError(err))
	}

	return nil
}

func scanBalances(rows pgx.Rows) ([]*models.Balance, error) {
	var balances []*models.Balance
	for rows.Next() {
		var balance models.Balance
		err := rows.Scan(
			&balance.UserID,
			&balance.TokenType,
			&balance.Amount,
			&balance.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, &balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return balances, nil
}
