package service

import (
	"time"

	"github.com/avolve-dao/avolve-sub003/models"
)

// Clock abstracts the current time so claim-date logic is deterministic in
// tests.
type Clock interface {
	// Now returns the current instant in UTC
	Now() time.Time

	// Today returns the current UTC calendar day at midnight
	Today() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock backed by the system time
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	return models.NormalizeDate(time.Now())
}
