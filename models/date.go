package models

import "time"

// NormalizeDate truncates a timestamp to its UTC calendar day. All claim
// dates flowing through the engine are normalized before comparison or
// storage so that "same day" always means the same UTC date.
func NormalizeDate(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// SameDay reports whether two timestamps fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return NormalizeDate(a).Equal(NormalizeDate(b))
}
