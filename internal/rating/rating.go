package rating

// Rating bounds and defaults
const (
	MinRating     = 100
	MaxRating     = 3000
	DefaultRating = 1200

	// DefaultFieldSize is the number of drivers in a full grid ordering
	DefaultFieldSize = 20
)

// Apply adds a delta to a rating and clamps the result to the valid
// range. The stored rating never leaves [MinRating, MaxRating] even if
// the delta would overshoot it.
func Apply(current, delta int) int {
	next := current + delta
	if next < MinRating {
		return MinRating
	}
	if next > MaxRating {
		return MaxRating
	}
	return next
}
