// =============================================================================
// COVID Trends - Series Package: Date Normalizer
// =============================================================================
//
// The upstream publishers use three different date encodings:
//
//   DayMonthAbbrevYY        "05-Jul-20"   trust deaths workbook header
//   YearMonthDay            "2020-07-05"  Pillar 1 CSV, Pillar 2 death CSV
//   DaySlashMonthSlashYear  "05/07/2020"  Pillar 2 testing CSV
//
// Every encoding is normalized into a plain calendar Date with no time or
// timezone component. Anything that does not fit the declared encoding is
// rejected with ErrInvalidDateFormat.
//
// =============================================================================

package series

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned when a raw date string does not match the
// encoding declared for its column.
var ErrInvalidDateFormat = errors.New("invalid date format")

// DateFormat identifies one of the supported raw date encodings.
type DateFormat int

const (
	// DayMonthAbbrevYY is "DD-Mon-YY"; the year is 2000+YY.
	DayMonthAbbrevYY DateFormat = iota

	// YearMonthDay is "YYYY-MM-DD".
	YearMonthDay

	// DaySlashMonthSlashYear is "DD/MM/YYYY".
	DaySlashMonthSlashYear
)

// String returns the layout of the format as it appears in the source data.
func (f DateFormat) String() string {
	switch f {
	case DayMonthAbbrevYY:
		return "DD-Mon-YY"
	case YearMonthDay:
		return "YYYY-MM-DD"
	case DaySlashMonthSlashYear:
		return "DD/MM/YYYY"
	default:
		return fmt.Sprintf("DateFormat(%d)", int(f))
	}
}

// monthAbbrev is the 12-entry table used by DayMonthAbbrevYY.
var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// =============================================================================
// DATE TYPE
// =============================================================================

// Date is a calendar date. The zero value is not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date and reports whether the components form a real
// calendar day.
func NewDate(year int, month time.Month, day int) (Date, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// DateOf truncates a time to its calendar date in the time's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysSince returns the whole number of days from o to d (d - o).
func (d Date) DaysSince(o Date) int {
	return int(d.Time().Sub(o.Time()).Hours() / 24)
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// String renders the date as YYYY-MM-DD, which is how every report writes it.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Format renders the date back into one of the source encodings.
func (d Date) Format(f DateFormat) string {
	switch f {
	case DayMonthAbbrevYY:
		return fmt.Sprintf("%02d-%s-%02d", d.Day, monthAbbrev[d.Month-1], d.Year-2000)
	case DaySlashMonthSlashYear:
		return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
	default:
		return d.String()
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// Normalize parses raw according to format.
//
// PARAMETERS:
//   - raw: the date string exactly as it appears in the source column
//   - format: the encoding declared for that column
//
// RETURNS:
//   - The calendar date
//   - An error wrapping ErrInvalidDateFormat when raw does not fit format
func Normalize(raw string, format DateFormat) (Date, error) {
	raw = strings.TrimSpace(raw)

	var (
		year, day int
		month     time.Month
		err       error
	)

	switch format {
	case DayMonthAbbrevYY:
		parts := strings.Split(raw, "-")
		if len(parts) != 3 {
			return Date{}, invalidDate(raw, format)
		}
		if day, err = atoiStrict(parts[0]); err != nil {
			return Date{}, invalidDate(raw, format)
		}
		month = 0
		for i, abbrev := range monthAbbrev {
			if parts[1] == abbrev {
				month = time.Month(i + 1)
				break
			}
		}
		if month == 0 {
			return Date{}, invalidDate(raw, format)
		}
		yy, err := atoiStrict(parts[2])
		if err != nil || len(parts[2]) != 2 {
			return Date{}, invalidDate(raw, format)
		}
		year = 2000 + yy

	case YearMonthDay:
		parts := strings.Split(raw, "-")
		if len(parts) != 3 {
			return Date{}, invalidDate(raw, format)
		}
		if year, month, day, err = numericParts(parts[0], parts[1], parts[2]); err != nil {
			return Date{}, invalidDate(raw, format)
		}

	case DaySlashMonthSlashYear:
		parts := strings.Split(raw, "/")
		if len(parts) != 3 {
			return Date{}, invalidDate(raw, format)
		}
		if year, month, day, err = numericParts(parts[2], parts[1], parts[0]); err != nil {
			return Date{}, invalidDate(raw, format)
		}

	default:
		return Date{}, fmt.Errorf("%w: unknown format %s", ErrInvalidDateFormat, format)
	}

	d, ok := NewDate(year, month, day)
	if !ok {
		return Date{}, invalidDate(raw, format)
	}
	return d, nil
}

func numericParts(y, m, d string) (int, time.Month, int, error) {
	year, err := atoiStrict(y)
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := atoiStrict(m)
	if err != nil {
		return 0, 0, 0, err
	}
	day, err := atoiStrict(d)
	if err != nil {
		return 0, 0, 0, err
	}
	return year, time.Month(month), day, nil
}

// atoiStrict accepts only non-empty runs of ASCII digits.
func atoiStrict(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func invalidDate(raw string, format DateFormat) error {
	return fmt.Errorf("%w: %q is not %s", ErrInvalidDateFormat, raw, format)
}
