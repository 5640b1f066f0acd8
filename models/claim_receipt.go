package models

import "time"

// ClaimReceipt summarizes one settled claim. Receipts are returned to the
// caller and never persisted; the ledger entry is the durable record.
type ClaimReceipt struct {
	TokenType     string    `json:"token_type"`
	Amount        int64     `json:"amount"`
	NewStreak     int       `json:"new_streak"`
	LongestStreak int       `json:"longest_streak"`
	Multiplier    float64   `json:"multiplier_applied"`
	StreakFamily  string    `json:"streak_family,omitempty"`
	ClaimDate     time.Time `json:"claim_date"`
}
