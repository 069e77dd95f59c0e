// =============================================================================
// COVID Trends - Series Package: Windowed Aggregator
// =============================================================================
//
// For point i of a date-sorted series the window boundary is the latest
// earlier point j (j < i) whose date lies at least windowDays before the
// date of i. Rolling values are counter[i] - counter[j]; lagged values are
// counter[j] on its own (used as the "recovered" count of the infectious
// estimate). When no boundary exists both are 0.
//
// =============================================================================

package series

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNoNonZeroEntry is returned by LastNonZeroIndex when every value is
	// zero or unparseable.
	ErrNoNonZeroEntry = errors.New("no non-zero entry")

	// ErrDivisionByZero is returned by Percentage when the denominator is 0.
	ErrDivisionByZero = errors.New("division by zero")
)

// Boundary scans backward from index-1 to 0 and returns the first j with
// date[index]-date[j] >= windowDays.
func Boundary(s Series, index, windowDays int) (int, bool) {
	if index <= 0 || index >= len(s) {
		return -1, false
	}
	for j := index - 1; j >= 0; j-- {
		if s[index].Date.DaysSince(s[j].Date) >= windowDays {
			return j, true
		}
	}
	return -1, false
}

// Boundaries returns the window boundary of every point of a date-sorted
// series, -1 where there is none. It walks the series once with two
// pointers and yields the same result as calling Boundary for each index.
func Boundaries(s Series, windowDays int) []int {
	out := make([]int, len(s))
	// k counts the leading points whose date is at least windowDays before
	// the current point; it never moves backward on a sorted series.
	k := 0
	for i := range s {
		for k < len(s) && s[i].Date.DaysSince(s[k].Date) >= windowDays {
			k++
		}
		j := k
		if j > i {
			j = i
		}
		out[i] = j - 1
	}
	return out
}

// RollingValue returns counter[index] - counter[j] for the window boundary j,
// or 0 when there is no boundary.
func RollingValue(s Series, index, windowDays int, counter string) (int64, error) {
	j, ok := Boundary(s, index, windowDays)
	if !ok {
		return 0, nil
	}
	cur, err := s[index].Int(counter)
	if err != nil {
		return 0, err
	}
	prev, err := s[j].Int(counter)
	if err != nil {
		return 0, err
	}
	return cur - prev, nil
}

// LaggedValue returns counter[j] for the window boundary j, or 0 when there
// is no boundary.
func LaggedValue(s Series, index, windowDays int, counter string) (int64, error) {
	j, ok := Boundary(s, index, windowDays)
	if !ok {
		return 0, nil
	}
	return s[j].Int(counter)
}

// Rolling computes RollingValue for every point of a date-sorted series.
func Rolling(s Series, windowDays int, counter string) ([]int64, error) {
	values, err := s.Ints(counter)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(s))
	for i, j := range Boundaries(s, windowDays) {
		if j >= 0 {
			out[i] = values[i] - values[j]
		}
	}
	return out, nil
}

// Lagged computes LaggedValue for every point of a date-sorted series.
func Lagged(s Series, windowDays int, counter string) ([]int64, error) {
	values, err := s.Ints(counter)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(s))
	for i, j := range Boundaries(s, windowDays) {
		if j >= 0 {
			out[i] = values[j]
		}
	}
	return out, nil
}

// LastNonZeroIndex returns the highest index whose value parses to a non-zero
// integer. A fractional part is ignored ("3.0" counts as 3).
func LastNonZeroIndex(values []string) (int, error) {
	for i := len(values) - 1; i >= 0; i-- {
		v := strings.TrimSpace(values[i])
		if dot := strings.IndexByte(v, '.'); dot >= 0 {
			v = v[:dot]
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil && n != 0 {
			return i, nil
		}
	}
	return -1, ErrNoNonZeroEntry
}

// Percentage returns positive/daily*100 rounded to two decimal places.
func Percentage(positive, daily int64) (float64, error) {
	if daily == 0 {
		return 0, ErrDivisionByZero
	}
	p := float64(positive) / float64(daily) * 100
	return math.Round(p*100) / 100, nil
}
