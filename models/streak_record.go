package models

import (
	"time"

	"github.com/google/uuid"
)

// StreakRecord tracks a user's consecutive-day claims for one reward scope
// (a token type symbol). Records are created on the first successful claim
// and never deleted.
type StreakRecord struct {
	UserID        uuid.UUID  `db:"user_id"`
	Scope         string     `db:"scope"`
	CurrentStreak int        `db:"current_streak"`
	LongestStreak int        `db:"longest_streak"`
	LastClaimDate *time.Time `db:"last_claim_date"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// NewStreakRecord creates the record for a user's first claim in a scope.
func NewStreakRecord(userID uuid.UUID, scope string, claimDate time.Time) *StreakRecord {
	day := NormalizeDate(claimDate)
	return &StreakRecord{
		UserID:        userID,
		Scope:         scope,
		CurrentStreak: 1,
		LongestStreak: 1,
		LastClaimDate: &day,
	}
}

// Advance applies one claim on claimDate to the streak state machine:
// a claim on the day after the last claim extends the streak, a repeat
// claim on the same day is rejected, and any other date resets to 1.
// LongestStreak is maintained after every successful advance.
func (r *StreakRecord) Advance(claimDate time.Time) error {
	day := NormalizeDate(claimDate)

	if r.LastClaimDate != nil {
		last := NormalizeDate(*r.LastClaimDate)
		switch {
		case day.Equal(last):
			return ErrAlreadyClaimed
		case day.Equal(last.AddDate(0, 0, 1)):
			r.CurrentStreak++
		default:
			// Gap of more than one day, or a claim dated before the last
			// one (clock skew): the streak starts over.
			r.CurrentStreak = 1
		}
	} else {
		r.CurrentStreak = 1
	}

	r.LastClaimDate = &day
	if r.CurrentStreak > r.LongestStreak {
		r.LongestStreak = r.CurrentStreak
	}
	return nil
}
