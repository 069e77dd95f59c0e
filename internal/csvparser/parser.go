// =============================================================================
// COVID Trends - CSV Source Parser
// =============================================================================
//
// Turns the text of a downloaded CSV file (or a configuration file) into
// RawRows: ordered slices of string fields with no implied schema. Each
// consumer interprets the fields through its own series.ColumnMap.
//
// END OF DATA:
//   Scanning stops at the first empty line. The published files sometimes
//   carry footnotes below a blank line and those must not be read as data.
//
// QUOTING:
//   Each line is read with encoding/csv so that quoted area names such as
//   "Bristol, City of" stay in one field.
//
// =============================================================================

package csvparser

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// =============================================================================
// SETTINGS AND RESULT
// =============================================================================

// Settings controls how source text is split into rows.
type Settings struct {
	// Delimiter separates fields. Zero means a comma.
	Delimiter rune

	// SkipHeader drops the first line of the file.
	SkipHeader bool

	// TrimSpace trims every field. Used for hand-edited configuration files.
	TrimSpace bool

	// SkipBlankLines skips blank lines instead of treating the first one as
	// the end of the data.
	SkipBlankLines bool
}

// Data is the parsed content of one source.
type Data struct {
	// Header is the dropped first line when SkipHeader is set.
	Header []string

	// Rows holds every data row in source order.
	Rows [][]string

	// Malformed counts lines that could not be split into fields.
	Malformed int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse splits text into rows.
//
// PARAMETERS:
//   - text: the whole source file
//   - settings: delimiter, header and trimming options
//
// RETURNS:
//   - The parsed Data. Lines after the first empty line are ignored.
func Parse(text string, settings Settings) *Data {
	data := &Data{}

	var lines []string
	if settings.SkipBlankLines {
		lines = nonBlankLines(text)
	} else {
		lines = SplitLines(text)
	}

	if settings.SkipHeader && len(lines) > 0 {
		if header, err := ParseLine(lines[0], settings); err == nil {
			data.Header = header
		}
		lines = lines[1:]
	}

	for _, line := range lines {
		row, err := ParseLine(line, settings)
		if err != nil {
			data.Malformed++
			continue
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// SplitLines returns the lines of text up to, but not including, the first
// empty line. Both "\n" and "\r\n" line endings are accepted.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseLine splits a single line into fields.
func ParseLine(line string, settings Settings) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	configureReader(reader, settings)

	fields, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse line %q: %w", line, err)
	}
	if settings.TrimSpace {
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
	}
	return fields, nil
}

// configureReader sets up the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	reader.Comma = ','
	if settings.Delimiter != 0 {
		reader.Comma = settings.Delimiter
	}

	// Lines are read one at a time, so the field count is never enforced.
	reader.FieldsPerRecord = -1

	// Stray quotes inside unquoted fields are kept as data.
	reader.LazyQuotes = true
}
