// =============================================================================
// COVID Trends - Upstream Data Corrections
// =============================================================================
//
// The published series occasionally change layout or carry a bad value. Each
// such fix is a named rule with the date it takes effect, kept apart from the
// report logic so it can be dropped once the publisher corrects the data.
//
// RULE TYPES:
//   - DateSubstitution: replaces a malformed raw date string before it is
//     normalized.
//   - ColumnCutover: from an effective date onward, reads some fields from
//     different columns and offsets a cumulative counter so the rolling
//     values stay continuous across the change.
//
// =============================================================================

package correction

import (
	"strings"
	"time"

	"github.com/ginjaninja78/covid-trends/internal/series"
)

// =============================================================================
// DATE SUBSTITUTION
// =============================================================================

// DateSubstitution replaces any raw date starting with Prefix by
// Replacement.
type DateSubstitution struct {
	Name        string
	Prefix      string
	Replacement string
}

// Apply returns the corrected raw date and whether the rule fired.
func (r DateSubstitution) Apply(raw string) (string, bool) {
	if r.Prefix != "" && strings.HasPrefix(raw, r.Prefix) {
		return r.Replacement, true
	}
	return raw, false
}

// =============================================================================
// COLUMN CUTOVER
// =============================================================================

// ColumnCutover remaps columns for rows dated on or after Effective.
type ColumnCutover struct {
	Name      string
	Effective series.Date

	// Columns overrides entries of the source column map.
	Columns series.ColumnMap

	// Counter is the cumulative field whose value is offset by Offset while
	// the cutover is active.
	Counter string
	Offset  int64
}

// Active reports whether the cutover applies to a row dated d.
func (c ColumnCutover) Active(d series.Date) bool {
	return !d.Before(c.Effective)
}

// =============================================================================
// RULE SETS
// =============================================================================

// Set is the collection of corrections applied to one source.
type Set struct {
	Dates    []DateSubstitution
	Cutovers []ColumnCutover
}

// FixDate runs every date substitution over raw. It returns the corrected
// string and the name of the rule that fired, if any.
func (s Set) FixDate(raw string) (string, string) {
	for _, r := range s.Dates {
		if fixed, ok := r.Apply(raw); ok {
			return fixed, r.Name
		}
	}
	return raw, ""
}

// Columns returns the column map in force for a row dated d.
func (s Set) Columns(base series.ColumnMap, d series.Date) series.ColumnMap {
	cols := base
	for _, c := range s.Cutovers {
		if c.Active(d) {
			cols = cols.With(c.Columns)
		}
	}
	return cols
}

// Offset returns the total offset applied to counter for a row dated d.
func (s Set) Offset(counter string, d series.Date) int64 {
	var total int64
	for _, c := range s.Cutovers {
		if c.Counter == counter && c.Active(d) {
			total += c.Offset
		}
	}
	return total
}

// Active returns the names of the cutovers in force on d.
func (s Set) Active(d series.Date) []string {
	var names []string
	for _, c := range s.Cutovers {
		if c.Active(d) {
			names = append(names, c.Name)
		}
	}
	return names
}

// =============================================================================
// PUBLISHED DATA RULES
// =============================================================================

// MalformedSpecimenDate fixes a testing row published in June 2020 with the
// text "the..." instead of a date.
var MalformedSpecimenDate = DateSubstitution{
	Name:        "testing-specimen-date-2020-06-20",
	Prefix:      "the",
	Replacement: "20/06/2020",
}

// TestingCutover covers the testing file layout change of 1 July 2020:
// positives moved from column 10 to 12 and the cumulative positives from
// column 11 to 13, restarting 30301 lower than the old cumulative total.
var TestingCutover = ColumnCutover{
	Name:      "testing-columns-2020-07-01",
	Effective: series.Date{Year: 2020, Month: time.July, Day: 1},
	Columns: series.ColumnMap{
		"Positive":           12,
		"CumulativePositive": 13,
	},
	Counter: "CumulativePositive",
	Offset:  30301,
}

// Testing returns the corrections for the Pillar 2 testing series.
func Testing() Set {
	return Set{
		Dates:    []DateSubstitution{MalformedSpecimenDate},
		Cutovers: []ColumnCutover{TestingCutover},
	}
}
