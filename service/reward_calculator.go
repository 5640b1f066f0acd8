package service

// rewardTier maps a minimum streak length to a rational multiplier.
// Tiers are evaluated highest-first and do not overlap.
type rewardTier struct {
	minStreak int
	num, den  int64
}

var rewardTiers = []rewardTier{
	{minStreak: 9, num: 3, den: 1},
	{minStreak: 6, num: 2, den: 1},
	{minStreak: 3, num: 3, den: 2},
}

// CalculateReward computes the token amount earned for a claim given the
// challenge's base reward and the streak after advancing. The multiplier
// is applied in integer arithmetic with half-up rounding, so results are
// exact and deterministic.
func CalculateReward(baseReward int64, currentStreak int) int64 {
	if baseReward <= 0 {
		return 0
	}

	num, den := int64(1), int64(1)
	for _, tier := range rewardTiers {
		if currentStreak >= tier.minStreak {
			num, den = tier.num, tier.den
			break
		}
	}

	// round_half_up(baseReward * num / den); operands are positive.
	return (baseReward*num + den/2) / den
}

// Multiplier returns the multiplier applied at a streak length, for
// reporting on receipts.
func Multiplier(currentStreak int) float64 {
	switch {
	case currentStreak >= 9:
		return 3.0
	case currentStreak >= 6:
		return 2.0
	case currentStreak >= 3:
		return 1.5
	default:
		return 1.0
	}
}

// DigitalRoot reduces n to a single digit by repeated digit summing.
// DigitalRoot(0) = 0; for n > 0 the closed form n mod 9 applies, with
// multiples of nine mapping to 9.
func DigitalRoot(n int) int {
	if n <= 0 {
		return 0
	}
	if n%9 == 0 {
		return 9
	}
	return n % 9
}

// IsBonusFamily reports whether n's digital root falls in {3, 6, 9}.
// This classifies streak lengths for cosmetic tiering only; the reward
// multiplier thresholds above are a separate rule.
func IsBonusFamily(n int) bool {
	switch DigitalRoot(n) {
	case 3, 6, 9:
		return true
	}
	return false
}

// StreakFamily names the digital-root family of a streak length for
// client-side theming. Zero-length streaks have no family.
func StreakFamily(n int) string {
	switch DigitalRoot(n) {
	case 3, 6, 9:
		return "3-6-9"
	case 1, 4, 7:
		return "1-4-7"
	case 2, 5, 8:
		return "2-5-8"
	default:
		return ""
	}
}
