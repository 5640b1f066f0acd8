package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolve-dao/avolve-sub003/models"
)

// Postgres error codes the engine cares about. Everything retryable maps
// to models.TransientError, unique violations on the claim index map to
// models.ErrDuplicateClaim, and the rest is fatal.
const (
	pgCodeUniqueViolation    = "23505"
	pgCodeCheckViolation     = "23514"
	pgCodeSerializationFail  = "40001"
	pgCodeDeadlockDetected   = "40P01"
	pgCodeLockNotAvailable   = "55P03"
	pgCodeQueryCanceled      = "57014"
	pgCodeTooManyConnections = "53300"
)

const (
	claimUniqueIndexName         = "ledger_entries_user_challenge_day_key"
	balanceNonNegativeConstraint = "balances_amount_nonnegative"
)

// classifyError translates a raw storage error into the engine's error
// taxonomy. Callers wrap the result with operation context.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &models.TransientError{Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			if pgErr.ConstraintName == claimUniqueIndexName {
				return models.ErrDuplicateClaim
			}
			return &models.FatalError{Err: err}
		case pgCodeCheckViolation:
			if pgErr.ConstraintName == balanceNonNegativeConstraint {
				return models.ErrInsufficientBalance
			}
			return &models.FatalError{Err: err}
		case pgCodeSerializationFail, pgCodeDeadlockDetected, pgCodeLockNotAvailable,
			pgCodeQueryCanceled, pgCodeTooManyConnections:
			return &models.TransientError{Err: err}
		}
		return &models.FatalError{Err: err}
	}

	return &models.FatalError{Err: err}
}
