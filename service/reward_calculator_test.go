package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateReward(t *testing.T) {
	tests := []struct {
		name       string
		baseReward int64
		streak     int
		expected   int64
	}{
		{"streak 1 no multiplier", 10, 1, 10},
		{"streak 2 no multiplier", 10, 2, 10},
		{"streak 3 enters 1.5x tier", 10, 3, 15},
		{"streak 5 still 1.5x", 10, 5, 15},
		{"streak 6 enters 2x tier", 10, 6, 20},
		{"streak 8 still 2x", 10, 8, 20},
		{"streak 9 enters 3x tier", 10, 9, 30},
		{"streak 30 capped at 3x", 10, 30, 30},
		{"half-up rounding at 1.5x", 5, 3, 8},
		{"half-up rounding odd base", 7, 3, 11},
		{"zero base reward", 0, 9, 0},
		{"negative base reward", -5, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateReward(tt.baseReward, tt.streak))
		})
	}
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, Multiplier(1))
	assert.Equal(t, 1.0, Multiplier(2))
	assert.Equal(t, 1.5, Multiplier(3))
	assert.Equal(t, 1.5, Multiplier(5))
	assert.Equal(t, 2.0, Multiplier(6))
	assert.Equal(t, 2.0, Multiplier(8))
	assert.Equal(t, 3.0, Multiplier(9))
	assert.Equal(t, 3.0, Multiplier(100))
}

func TestDigitalRoot(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{0, 0},
		{-3, 0},
		{1, 1},
		{7, 7},
		{9, 9},
		{10, 1},
		{11, 2},
		{12, 3},
		{18, 9},
		{99, 9},
		{123, 6},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DigitalRoot(tt.n), "DigitalRoot(%d)", tt.n)
	}
}

func TestIsBonusFamily(t *testing.T) {
	for _, n := range []int{3, 6, 9, 12, 18, 21, 30} {
		assert.True(t, IsBonusFamily(n), "expected %d in the bonus family", n)
	}
	for _, n := range []int{0, 1, 2, 4, 5, 7, 8, 10, 11} {
		assert.False(t, IsBonusFamily(n), "expected %d outside the bonus family", n)
	}
}

func TestStreakFamily(t *testing.T) {
	assert.Equal(t, "1-4-7", StreakFamily(1))
	assert.Equal(t, "2-5-8", StreakFamily(2))
	assert.Equal(t, "3-6-9", StreakFamily(3))
	assert.Equal(t, "1-4-7", StreakFamily(10))
	assert.Equal(t, "3-6-9", StreakFamily(9))
	assert.Equal(t, "", StreakFamily(0))
}
