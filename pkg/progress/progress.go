// Package progress derives the remaining-time estimate shown during an
// interview.
package progress

import "math"

// DefaultBaseMinutes is the estimate for an interview with no answers.
const DefaultBaseMinutes = 15

// Estimator converts answered/total counts into minutes remaining.
type Estimator struct {
	BaseMinutes int
}

// New returns an estimator, falling back to DefaultBaseMinutes when base is
// not positive.
func New(base int) Estimator {
	if base <= 0 {
		base = DefaultBaseMinutes
	}
	return Estimator{BaseMinutes: base}
}

// Remaining computes max(1, ceil(base - answered*base/total)). The result is
// always within [1, base]; a schema without fields reports base.
func (e Estimator) Remaining(answered, total int) int {
	base := e.BaseMinutes
	if base <= 0 {
		base = DefaultBaseMinutes
	}
	if total <= 0 {
		return base
	}
	answered = max(0, min(answered, total))

	perField := float64(base) / float64(total)
	remaining := int(math.Ceil(float64(base) - float64(answered)*perField))
	return max(1, min(remaining, base))
}

// Fraction reports answered/total in [0, 1].
func Fraction(answered, total int) float64 {
	if total <= 0 {
		return 0
	}
	answered = max(0, min(answered, total))
	return float64(answered) / float64(total)
}
