// =============================================================================
// COVID Trends - Series Package
// =============================================================================
//
// This package is the computational core shared by every report:
//
//   date.go    Date Normalizer
//   filter.go  Row Filter
//   window.go  Windowed Aggregator
//   trend.go   Trend Classifier
//
// A report reads RawRows from a source, selects the rows for its configured
// areas, turns them into Points, sorts each area's Series by date and then
// derives rolling values and trend classifications from it.
//
// =============================================================================

package series

import (
	"fmt"
	"sort"
	"strconv"
)

// =============================================================================
// COLUMN MAP
// =============================================================================

// ColumnMap maps a logical field name to a zero-based column index in a
// RawRow. Maps are built once per data source and never modified.
type ColumnMap map[string]int

// Lookup returns the value of field in row. ok is false when the field is not
// mapped or the row is too short.
func (m ColumnMap) Lookup(row []string, field string) (value string, ok bool) {
	idx, mapped := m[field]
	if !mapped || idx < 0 || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}

// With returns a copy of m with the given fields remapped.
func (m ColumnMap) With(overrides ColumnMap) ColumnMap {
	out := make(ColumnMap, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// =============================================================================
// POINTS AND SERIES
// =============================================================================

// Fields holds the string values of one Point, keyed by logical field name.
type Fields map[string]string

// Point is a single dated observation for one area.
type Point struct {
	Area   string
	Date   Date
	Fields Fields
}

// Int parses the named field as a count.
func (p Point) Int(field string) (int64, error) {
	raw, ok := p.Fields[field]
	if !ok {
		return 0, fmt.Errorf("field %q missing on %s", field, p.Date)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q on %s: %w", field, p.Date, err)
	}
	return v, nil
}

// Series is the ordered sequence of Points for one area.
type Series []Point

// SortByDate orders the series ascending by date. Points sharing a date keep
// their relative order.
func (s Series) SortByDate() {
	if s.IsSorted() {
		return
	}
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// IsSorted reports whether the series is in ascending date order.
func (s Series) IsSorted() bool {
	return sort.SliceIsSorted(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// Ints returns the named counter for every point.
func (s Series) Ints(field string) ([]int64, error) {
	out := make([]int64, len(s))
	for i, p := range s {
		v, err := p.Int(field)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// AreaSeries keeps one Series per area in the order areas were configured.
type AreaSeries struct {
	order  []string
	series map[string]Series
}

// NewAreaSeries creates an AreaSeries with the given areas, each starting
// empty.
func NewAreaSeries(areas ...string) *AreaSeries {
	as := &AreaSeries{series: make(map[string]Series, len(areas))}
	for _, a := range areas {
		as.ensure(a)
	}
	return as
}

func (as *AreaSeries) ensure(area string) {
	if _, ok := as.series[area]; !ok {
		as.order = append(as.order, area)
		as.series[area] = nil
	}
}

// Append adds a point to the series of area.
func (as *AreaSeries) Append(area string, p Point) {
	as.ensure(area)
	as.series[area] = append(as.series[area], p)
}

// Areas returns the areas in configuration order.
func (as *AreaSeries) Areas() []string {
	return append([]string(nil), as.order...)
}

// Get returns the series for area.
func (as *AreaSeries) Get(area string) Series {
	return as.series[area]
}

// SortAll sorts every area's series by date.
func (as *AreaSeries) SortAll() {
	for _, s := range as.series {
		s.SortByDate()
	}
}
