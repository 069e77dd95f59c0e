// =============================================================================
// COVID Trends - Series Package: Trend Classifier
// =============================================================================

package series

// Trend is the direction of change between two consecutive derived values.
type Trend int

const (
	// Decreasing means the value fell or stayed the same.
	Decreasing Trend = iota

	// PotentiallyIncreasing means the value rose by less than the threshold.
	PotentiallyIncreasing

	// Increasing means the value rose by at least the threshold.
	Increasing
)

// String returns the wording used in log messages.
func (t Trend) String() string {
	switch t {
	case Decreasing:
		return "Decreasing"
	case PotentiallyIncreasing:
		return "Potentially increasing"
	case Increasing:
		return "Increasing"
	default:
		return "Unknown"
	}
}

// Classify compares current with previous.
//
//	delta <= 0              Decreasing
//	0 < delta < threshold   PotentiallyIncreasing
//	delta >= threshold      Increasing
func Classify(current, previous, threshold float64) Trend {
	delta := current - previous
	switch {
	case delta <= 0:
		return Decreasing
	case delta < threshold:
		return PotentiallyIncreasing
	default:
		return Increasing
	}
}

// Tracker classifies a stream of derived values for one area. The first
// value only primes the tracker.
type Tracker struct {
	Threshold float64

	previous float64
	seen     bool
	last     Trend
	hasLast  bool
}

// NewTracker returns a Tracker for the given variation threshold.
func NewTracker(threshold float64) *Tracker {
	return &Tracker{Threshold: threshold}
}

// Observe feeds the next value. ok is false for the first value.
func (t *Tracker) Observe(value float64) (trend Trend, ok bool) {
	if t.seen {
		trend = Classify(value, t.previous, t.Threshold)
		t.last, t.hasLast, ok = trend, true, true
	}
	t.previous, t.seen = value, true
	return trend, ok
}

// Last returns the most recent classification.
func (t *Tracker) Last() (Trend, bool) {
	return t.last, t.hasLast
}

// Attention reports whether the most recent classification is Increasing.
func (t *Tracker) Attention() bool {
	return t.hasLast && t.last == Increasing
}

// Reset clears all state so the tracker can be reused for the next area.
func (t *Tracker) Reset() {
	t.previous, t.seen, t.last, t.hasLast = 0, false, Decreasing, false
}

// WithinDays reports whether last lies no more than days calendar days
// before today.
func WithinDays(today, last Date, days int) bool {
	return today.DaysSince(last) <= days
}
