package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerReason describes why a ledger entry was written.
type LedgerReason string

const (
	LedgerReasonDailyChallenge LedgerReason = "daily_challenge"
	LedgerReasonAdjustment     LedgerReason = "adjustment"
)

// LedgerSum is the signed total of one user's entries for one token,
// as recomputed from the ledger by the conservation audit.
type LedgerSum struct {
	UserID    uuid.UUID `db:"user_id"`
	TokenType string    `db:"token_type"`
	Total     int64     `db:"total"`
}

// LedgerEntry is an immutable, append-only record of a single balance
// change. Balances are derived from the signed sum of a user's entries;
// corrections are compensating entries, never edits.
type LedgerEntry struct {
	ID          uuid.UUID      `db:"id"`
	UserID      uuid.UUID      `db:"user_id"`
	TokenType   string         `db:"token_type"`
	Amount      int64          `db:"amount"`
	ChallengeID *int64         `db:"challenge_id"`
	ClaimDate   time.Time      `db:"claim_date"`
	Reason      LedgerReason   `db:"reason"`
	Metadata    map[string]any `db:"metadata"`
	CreatedAt   time.Time      `db:"created_at"`
}
