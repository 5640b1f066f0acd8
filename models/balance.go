package models

import (
	"time"

	"github.com/google/uuid"
)

// Balance is the derived amount of one token held by one user. It must
// always equal the signed sum of the user's ledger entries for that token.
type Balance struct {
	UserID    uuid.UUID `db:"user_id"`
	TokenType string    `db:"token_type"`
	Amount    int64     `db:"amount"`
	UpdatedAt time.Time `db:"updated_at"`
}
