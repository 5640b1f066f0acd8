package models

import "time"

// Challenge represents the daily challenge configured for one weekday.
// At most one active challenge exists per weekday.
type Challenge struct {
	ID         int64        `db:"id"`
	Weekday    time.Weekday `db:"weekday"`
	TokenType  string       `db:"token_type"`
	BaseReward int64        `db:"base_reward"`
	Active     bool         `db:"active"`
	CreatedAt  time.Time    `db:"created_at"`
}
