package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avolve-dao/avolve-sub003/database"
	"github.com/avolve-dao/avolve-sub003/models"
)

// LedgerRepository implements append-only ledger data access
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Append inserts a new ledger entry. A colliding positive entry for the
// same (user, challenge, day) fails with models.ErrDuplicateClaim.
func (r *LedgerRepository) Append(ctx context.Context, entry *models.LedgerEntry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger metadata: %w", err)
	}

	query := `
		INSERT INTO ledger_entries (user_id, token_type, amount, challenge_id, claim_date, reason, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.TokenType,
		entry.Amount,
		entry.ChallengeID,
		entry.ClaimDate,
		entry.Reason,
		metadataJSON,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append ledger entry for user %s: %w", entry.UserID, classifyError(err))
	}

	return nil
}

// GetByUser returns the most recent ledger entries for a user
func (r *LedgerRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, token_type, amount, challenge_id, claim_date, reason, metadata, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for user %s: %w", userID, classifyError(err))
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

// SumByUserAndToken returns the signed sum of a user's entries for one token
func (r *LedgerRepository) SumByUserAndToken(ctx context.Context, userID uuid.UUID, tokenType string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE user_id = $1 AND token_type = $2
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, userID, tokenType).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum ledger entries for user %s: %w", userID, classifyError(err))
	}

	return total, nil
}

// SumAll returns the signed ledger sum for every (user, token) pair
func (r *LedgerRepository) SumAll(ctx context.Context) ([]*models.LedgerSum, error) {
	query := `
		SELECT user_id, token_type, SUM(amount)
		FROM ledger_entries
		GROUP BY user_id, token_type
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger entries: %w", classifyError(err))
	}
	defer rows.Close()

	var sums []*models.LedgerSum
	for rows.Next() {
		var sum models.LedgerSum
		if err := rows.Scan(&sum.UserID, &sum.TokenType, &sum.Total); err != nil {
			return nil, fmt.Errorf("failed to scan ledger sum: %w", err)
		}
		sums = append(sums, &sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger sums: %w", classifyError(err))
	}

	return sums, nil
}

func scanLedgerEntries(rows pgx.Rows) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.TokenType,
			&entry.Amount,
			&entry.ChallengeID,
			&entry.ClaimDate,
			&entry.Reason,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ledger metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
