package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRows = [][]string{
	{"London", "E12000007", "region", "2020-07-05", "12", "3000"},
	{"South East", "E12000008", "region", "2020-07-05", "8", "2000"},
	{"Londonderry", "N0001", "ltla", "2020-07-05", "1", "10"},
	{"short"},
}

func TestSelectRowsAlwaysAndNever(t *testing.T) {
	all := SelectRows(sampleRows, Criterion{Column: 0, Matcher: Any()})
	assert.Equal(t, sampleRows, all)

	none := SelectRows(sampleRows, Criterion{Column: 0, Matcher: None()})
	assert.Empty(t, none)
}

func TestSelectRowsPatternAnchoredAtStart(t *testing.T) {
	area, err := Pattern("London")
	require.NoError(t, err)
	tier, err := Pattern("region")
	require.NoError(t, err)

	got := SelectRows(sampleRows,
		Criterion{Column: 0, Matcher: area},
		Criterion{Column: 2, Matcher: tier},
	)
	require.Len(t, got, 1)
	assert.Equal(t, "E12000007", got[0][1])

	east, err := Pattern("East")
	require.NoError(t, err)
	assert.Empty(t, SelectRows(sampleRows, Criterion{Column: 0, Matcher: east}), "pattern must match at the start of the field")
}

func TestSelectRowsPrefix(t *testing.T) {
	got := SelectRows(sampleRows, Criterion{Column: 0, Matcher: Prefix("London")})
	assert.Len(t, got, 2)
	assert.Equal(t, "Londonderry", got[1][0])

	exact := SelectRows(sampleRows, Criterion{Column: 0, Matcher: Exact("London")})
	assert.Len(t, exact, 1)
}

func TestSelectRowsShortRowsNeverMatch(t *testing.T) {
	got := SelectRows(sampleRows, Criterion{Column: 3, Matcher: Any()})
	assert.Len(t, got, 3)
}

func TestPatternInvalid(t *testing.T) {
	_, err := Pattern("(")
	assert.Error(t, err)
}

func TestClosest(t *testing.T) {
	name, dist := Closest("Londn", Column(sampleRows, 0))
	assert.Equal(t, "London", name)
	assert.Equal(t, 1, dist)

	name, dist = Closest("x", nil)
	assert.Empty(t, name)
	assert.Equal(t, -1, dist)
}

func TestColumnMapLookup(t *testing.T) {
	m := ColumnMap{"Area": 0, "Date": 3, "Missing": 99}

	v, ok := m.Lookup(sampleRows[0], "Date")
	assert.True(t, ok)
	assert.Equal(t, "2020-07-05", v)

	_, ok = m.Lookup(sampleRows[0], "Missing")
	assert.False(t, ok)
	_, ok = m.Lookup(sampleRows[0], "Unmapped")
	assert.False(t, ok)

	moved := m.With(ColumnMap{"Date": 4})
	assert.Equal(t, 4, moved["Date"])
	assert.Equal(t, 3, m["Date"], "With must not modify the receiver")
}

func TestAreaSeriesKeepsConfiguredOrder(t *testing.T) {
	as := NewAreaSeries("b", "a")
	as.Append("c", Point{Area: "c"})
	as.Append("a", Point{Area: "a"})

	assert.Equal(t, []string{"b", "a", "c"}, as.Areas())
	assert.Len(t, as.Get("a"), 1)
	assert.Empty(t, as.Get("b"))
}
