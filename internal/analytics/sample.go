package analytics

const (
	monthRangeDays   = 30
	quarterRangeDays = 90
	monthPoints      = 15
	quarterPoints    = 12
)

// SampleWeights thins out a date-ordered list for charting.
//
// Ranges of 30 days keep every ceil(n/15)th entry and ranges of 90 days or more every ceil(n/12)th entry. Shorter
// ranges are returned as is. The first and last entries are always kept.
func SampleWeights[T any](entries []T, rangeDays int) []T {
	n := len(entries)
	var points int
	switch {
	case rangeDays >= quarterRangeDays:
		points = quarterPoints
	case rangeDays >= monthRangeDays:
		points = monthPoints
	default:
		return entries
	}
	step := (n + points - 1) / points
	if step <= 1 {
		return entries
	}
	sampled := make([]T, 0, points+1)
	for i, e := range entries {
		if i == 0 || i == n-1 || i%step == 0 {
			sampled = append(sampled, e)
		}
	}
	return sampled
}
