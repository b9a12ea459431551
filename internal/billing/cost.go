// Package billing computes parking charges from reservation time spans. It
// is pure and carries no state so report generation can reuse it standalone.
package billing

import (
	"math"
	"time"
)

// Cost returns the amount owed for a stay that began at start and ended at
// end, billed at pricePerHour. A nil end means the reservation is still open
// and costs nothing yet. Stays are billed per started hour: the duration is
// rounded up to whole hours with a minimum of one billable hour, which also
// covers zero or negative durations caused by clock skew. The result is
// rounded to two decimal places.
func Cost(start time.Time, end *time.Time, pricePerHour float64) float64 {
	if end == nil {
		return 0
	}
	hours := math.Ceil(end.Sub(start).Hours())
	if hours < 1 {
		hours = 1
	}
	return Round2(hours * pricePerHour)
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
