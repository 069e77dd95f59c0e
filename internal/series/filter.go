// =============================================================================
// COVID Trends - Series Package: Row Filter
// =============================================================================
//
// Selects the raw rows whose columns match the configured candidates. Trusts
// are matched by name prefix; tiers, areas and pillars by a regular
// expression anchored at the start of the field.
//
// =============================================================================

package series

import (
	"regexp"
	"strings"

	lev "github.com/agnivade/levenshtein"
)

// Matcher decides whether a single field value is selected.
type Matcher interface {
	Match(field string) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(field string) bool

// Match calls f(field).
func (f MatcherFunc) Match(field string) bool { return f(field) }

// Prefix matches fields that start with candidate.
func Prefix(candidate string) Matcher {
	return MatcherFunc(func(field string) bool {
		return strings.HasPrefix(field, candidate)
	})
}

// Exact matches fields equal to candidate.
func Exact(candidate string) Matcher {
	return MatcherFunc(func(field string) bool { return field == candidate })
}

// Any matches every field.
func Any() Matcher {
	return MatcherFunc(func(string) bool { return true })
}

// None matches no field.
func None() Matcher {
	return MatcherFunc(func(string) bool { return false })
}

// Pattern compiles candidate as a regular expression that must match at the
// start of the field. The match need not cover the whole field.
func Pattern(candidate string) (Matcher, error) {
	re, err := regexp.Compile(`^(?:` + candidate + `)`)
	if err != nil {
		return nil, err
	}
	return MatcherFunc(re.MatchString), nil
}

// Criterion applies a Matcher to one column of a row.
type Criterion struct {
	Column  int
	Matcher Matcher
}

// Accepts reports whether row satisfies the criterion. Rows too short to
// contain the column never match.
func (c Criterion) Accepts(row []string) bool {
	if c.Column < 0 || c.Column >= len(row) {
		return false
	}
	return c.Matcher.Match(row[c.Column])
}

// SelectRows returns, in their original order, the rows that satisfy every
// criterion.
func SelectRows(rows [][]string, criteria ...Criterion) [][]string {
	var out [][]string
	for _, row := range rows {
		if acceptsAll(row, criteria) {
			out = append(out, row)
		}
	}
	return out
}

func acceptsAll(row []string, criteria []Criterion) bool {
	for _, c := range criteria {
		if !c.Accepts(row) {
			return false
		}
	}
	return true
}

// Closest returns the candidate with the smallest edit distance to target.
// It is used to hint at a misspelt area or trust when nothing matched.
func Closest(target string, candidates []string) (string, int) {
	best, bestDist := "", -1
	for _, c := range candidates {
		if c == "" {
			continue
		}
		d := lev.ComputeDistance(strings.ToLower(target), strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// Column returns the distinct values of one column, in first-seen order.
func Column(rows [][]string, column int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		if column < 0 || column >= len(row) {
			continue
		}
		v := row[column]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
