// =============================================================================
// COVID Trends - Report Assembler
// =============================================================================
//
// Every report is a plain CSV file:
//
//   - line 1 is the header (the column names of the report's schema)
//   - every following line is one derived record
//   - fields are joined with a comma, nothing is quoted or escaped
//   - the file is named <base>_[<category>_]YYYYMMDD.csv
//
// SCHEMAS:
//   Pillar 1            Area,Date,Daily,Infectious,Cumulative,Rate
//   Pillar 2 testing    Date,Daily,CumulativeDaily,Positive,Percentage,CumulativePositive,Rolling
//   Pillar 2 death      Date,Daily,Cumulative,Rolling
//   Trust deaths        taken from the workbook header at run time
//
// =============================================================================

package report

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SCHEMA
// =============================================================================

// Column names one field of a report.
type Column string

// Schema is the ordered list of columns written by a report.
type Schema []Column

var (
	// Pillar1Schema is the Pillar 1 case series layout.
	Pillar1Schema = Schema{"Area", "Date", "Daily", "Infectious", "Cumulative", "Rate"}

	// TestingSchema is the Pillar 2 testing series layout.
	TestingSchema = Schema{"Date", "Daily", "CumulativeDaily", "Positive", "Percentage", "CumulativePositive", "Rolling"}

	// DeathSchema is the Pillar 2 death series layout.
	DeathSchema = Schema{"Date", "Daily", "Cumulative", "Rolling"}
)

// Header returns the header line.
func (s Schema) Header() string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = string(c)
	}
	return JoinRow(names)
}

// =============================================================================
// RECORDS
// =============================================================================

// Record is one output row, keyed by column.
type Record map[Column]string

// NewRecord builds a Record and checks that it carries every column of the
// schema.
func NewRecord(schema Schema, values map[Column]string) (Record, error) {
	rec := make(Record, len(schema))
	for _, c := range schema {
		v, ok := values[c]
		if !ok {
			return nil, fmt.Errorf("record is missing column %q", c)
		}
		rec[c] = v
	}
	return rec, nil
}

// Values returns the record's fields in schema order.
func (s Schema) Values(rec Record) ([]string, error) {
	out := make([]string, len(s))
	for i, c := range s {
		v, ok := rec[c]
		if !ok {
			return nil, fmt.Errorf("record is missing column %q", c)
		}
		out[i] = v
	}
	return out, nil
}

// Assemble renders the header followed by one line per record.
func Assemble(schema Schema, records []Record) ([]string, error) {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, schema.Header())
	for i, rec := range records {
		values, err := schema.Values(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		lines = append(lines, JoinRow(values))
	}
	return lines, nil
}

// JoinRow joins fields with commas. Fields are written verbatim.
func JoinRow(fields []string) string {
	return strings.Join(fields, ",")
}

// =============================================================================
// FILE NAMES
// =============================================================================

// FileName returns base_[category_]YYYYMMDD.csv for the given day.
//
// EXAMPLE:
//
//	FileName("pillar1", "region", 2020-03-05) -> "pillar1_region_20200305.csv"
//	FileName("trust_deaths", "", 2020-07-10)  -> "trust_deaths_20200710.csv"
func FileName(base, category string, day time.Time) string {
	name := base
	if category != "" {
		name += "_" + category
	}
	return name + "_" + day.Format("20060102") + ".csv"
}
