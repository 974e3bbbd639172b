package settlement

// Tier buckets an attendance rate for display.
type Tier string

const (
	TierGood Tier = "good"
	TierWarn Tier = "warn"
	TierBad  Tier = "bad"
)

const (
	// GoodRateThreshold is the minimum rate (percent) for TierGood.
	GoodRateThreshold = 80
	// WarnRateThreshold is the minimum rate (percent) for TierWarn.
	WarnRateThreshold = 60
)

// AttendanceRate returns attended/total as a whole percentage, rounding halves up.
func AttendanceRate(attended, total int) int {
	if total <= 0 || attended <= 0 {
		return 0
	}
	return (200*attended + total) / (2 * total)
}

func RateTier(rate int) Tier {
	switch {
	case rate >= GoodRateThreshold:
		return TierGood
	case rate >= WarnRateThreshold:
		return TierWarn
	default:
		return TierBad
	}
}
