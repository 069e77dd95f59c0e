package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		format DateFormat
		want   Date
	}{
		{"abbrev", "05-Jul-20", DayMonthAbbrevYY, Date{2020, time.July, 5}},
		{"abbrev december", "31-Dec-21", DayMonthAbbrevYY, Date{2021, time.December, 31}},
		{"iso", "2020-03-05", YearMonthDay, Date{2020, time.March, 5}},
		{"slash", "20/06/2020", DaySlashMonthSlashYear, Date{2020, time.June, 20}},
		{"slash leap day", "29/02/2020", DaySlashMonthSlashYear, Date{2020, time.February, 29}},
		{"surrounding space", " 2020-07-01 ", YearMonthDay, Date{2020, time.July, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		format DateFormat
	}{
		{"unknown month", "05-Jly-20", DayMonthAbbrevYY},
		{"four digit year in abbrev", "05-Jul-2020", DayMonthAbbrevYY},
		{"too few parts", "2020-07", YearMonthDay},
		{"wrong separator", "2020/07/05", YearMonthDay},
		{"non numeric", "aa/07/2020", DaySlashMonthSlashYear},
		{"impossible day", "31/02/2020", DaySlashMonthSlashYear},
		{"month 13", "2020-13-01", YearMonthDay},
		{"malformed literal", "the 20th", DaySlashMonthSlashYear},
		{"empty", "", YearMonthDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, tt.format)
			assert.ErrorIs(t, err, ErrInvalidDateFormat)
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	dates := []Date{
		{2020, time.January, 1},
		{2020, time.July, 5},
		{2021, time.November, 30},
	}
	formats := []DateFormat{DayMonthAbbrevYY, YearMonthDay, DaySlashMonthSlashYear}

	for _, d := range dates {
		for _, f := range formats {
			got, err := Normalize(d.Format(f), f)
			require.NoError(t, err, "format %s", f)
			assert.Equal(t, d, got)
		}
	}
}

func TestDateArithmetic(t *testing.T) {
	a := Date{2020, time.February, 27}
	b := a.AddDays(3)

	assert.Equal(t, Date{2020, time.March, 1}, b)
	assert.Equal(t, 3, b.DaysSince(a))
	assert.Equal(t, -3, a.DaysSince(b))
	assert.True(t, a.Before(b))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, "2020-03-01", b.String())
	assert.Equal(t, Date{2020, time.March, 1}, DateOf(time.Date(2020, 3, 1, 23, 59, 0, 0, time.UTC)))
}
