// =============================================================================
// COVID Trends - Report Configuration Sources
// =============================================================================
//
// Each report reads a small comma separated configuration file from the
// configuration directory.
//
// TRUST DEATHS (trust_deaths.csv):
//   One or more lines of trust names. A trust is selected when the name in
//   the workbook starts with the configured name.
//
//     <trust 1>,<trust 2>,...
//     <trust a>
//
// PILLAR 1 (pillar1_configuration.csv):
//   A single line.
//
//     <csv url>,<area tier>,<window days>[,<variation>],<area 1>,...,<area n>
//
//   The variation may be left out, in which case the default applies.
//
// PILLAR 2 (pillar2_configuration.csv):
//   One line per data type, in any order.
//
//     <testing|death>,<page url>,<link pattern>,<pillar>,<window days>,<variation>
//
//   Lines with an unknown data type, or that fail validation, are skipped
//   and reported back so they can be logged as warnings.
//
// =============================================================================

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/covid-trends/internal/csvparser"
	"github.com/ginjaninja78/covid-trends/internal/types"
	"github.com/ginjaninja78/covid-trends/internal/validation"
)

var configSettings = csvparser.Settings{TrimSpace: true, SkipBlankLines: true}

// =============================================================================
// TRUST DEATHS
// =============================================================================

// TrustDeathsConfig lists the trusts to report on.
type TrustDeathsConfig struct {
	Trusts []string `validate:"min=1,dive,required"`
}

// ParseTrustDeaths parses the trust deaths configuration file.
func ParseTrustDeaths(content []byte) (*TrustDeathsConfig, error) {
	data := csvparser.Parse(string(content), configSettings)

	cfg := &TrustDeathsConfig{}
	for _, row := range data.Rows {
		for _, name := range row {
			if name != "" {
				cfg.Trusts = append(cfg.Trusts, name)
			}
		}
	}

	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: no trusts configured: %v", ErrConfigurationInvalid, err)
	}
	return cfg, nil
}

// =============================================================================
// PILLAR 1
// =============================================================================

// Pillar1Config selects the Pillar 1 areas to report on.
type Pillar1Config struct {
	// URL is the case series CSV file.
	URL string `validate:"required,url"`

	// Tier is matched against the area type column, e.g. "region", "utla".
	Tier string `validate:"required"`

	// WindowDays is the infectious period.
	WindowDays int `validate:"gt=0"`

	// Variation is the smallest rise in infectious cases treated as an
	// increase.
	Variation float64 `validate:"gte=0"`

	// Areas are matched against the area name column.
	Areas []string `validate:"min=1,dive,required"`
}

// ParsePillar1 parses the Pillar 1 configuration line.
//
// PARAMETERS:
//   - content: the configuration file
//   - defaultVariation: used when the line does not carry a variation
func ParsePillar1(content []byte, defaultVariation float64) (*Pillar1Config, error) {
	data := csvparser.Parse(string(content), configSettings)
	if len(data.Rows) == 0 {
		return nil, fmt.Errorf("%w: no data in Pillar 1 configuration", ErrConfigurationInvalid)
	}

	var fields []string
	for _, row := range data.Rows {
		fields = append(fields, row...)
	}
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: Pillar 1 configuration needs a url, tier, window and at least one area", ErrConfigurationInvalid)
	}

	window, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: window %q is not a number of days", ErrConfigurationInvalid, fields[2])
	}

	cfg := &Pillar1Config{
		URL:        fields[0],
		Tier:       fields[1],
		WindowDays: window,
		Variation:  defaultVariation,
	}

	areas := fields[3:]
	if v, err := strconv.ParseFloat(fields[3], 64); err == nil {
		cfg.Variation = v
		areas = fields[4:]
	}
	for _, a := range areas {
		if a != "" {
			cfg.Areas = append(cfg.Areas, a)
		}
	}

	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigurationInvalid, err)
	}
	return cfg, nil
}

// =============================================================================
// PILLAR 2
// =============================================================================

// SeriesConfig describes one Pillar 2 series.
type SeriesConfig struct {
	// DataType is testing or death.
	DataType types.DataType `validate:"required"`

	// PageURL is the landing page linking to the data file.
	PageURL string `validate:"required,url"`

	// LinkPattern finds the data file URL on the landing page.
	LinkPattern string `validate:"required"`

	// Pillar is matched against the pillar column of the testing series.
	Pillar string

	// WindowDays is the rolling period.
	WindowDays int `validate:"gt=0"`

	// Variation is the smallest rise treated as an increase: percentage
	// points for testing, deaths for death.
	Variation float64 `validate:"gte=0"`

	// Line is the 1-based line in the configuration file.
	Line int
}

// SkippedLine records a configuration line that was not used.
type SkippedLine struct {
	Line   int
	Reason string
}

// Pillar2Config holds the configured Pillar 2 series.
type Pillar2Config struct {
	Series  map[types.DataType]SeriesConfig
	Skipped []SkippedLine
}

// Get returns the configuration of one data type.
func (c *Pillar2Config) Get(dt types.DataType) (SeriesConfig, bool) {
	s, ok := c.Series[dt]
	return s, ok
}

// ParsePillar2 parses the Pillar 2 configuration lines. A later line for
// the same data type replaces an earlier one.
//
// RETURNS:
//   - The usable series and the skipped lines
//   - An error wrapping ErrConfigurationInvalid when no line is usable
func ParsePillar2(content []byte) (*Pillar2Config, error) {
	cfg := &Pillar2Config{Series: make(map[types.DataType]SeriesConfig)}

	for i, line := range strings.Split(string(content), "\n") {
		lineNo := i + 1
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields, err := csvparser.ParseLine(line, configSettings)
		if err != nil {
			cfg.skip(lineNo, err.Error())
			continue
		}

		dt, err := types.ParseDataType(fields[0])
		if err != nil {
			cfg.skip(lineNo, fmt.Sprintf("data type %s is not valid", fields[0]))
			continue
		}

		series, err := parseSeriesLine(dt, fields, lineNo)
		if err != nil {
			cfg.skip(lineNo, err.Error())
			continue
		}
		if _, dup := cfg.Series[dt]; dup {
			cfg.skip(cfg.Series[dt].Line, fmt.Sprintf("replaced by line %d", lineNo))
		}
		cfg.Series[dt] = series
	}

	if len(cfg.Series) == 0 {
		return cfg, fmt.Errorf("%w: no usable lines in Pillar 2 configuration", ErrConfigurationInvalid)
	}
	return cfg, nil
}

func (c *Pillar2Config) skip(line int, reason string) {
	c.Skipped = append(c.Skipped, SkippedLine{Line: line, Reason: reason})
}

func parseSeriesLine(dt types.DataType, fields []string, line int) (SeriesConfig, error) {
	if len(fields) < 6 {
		return SeriesConfig{}, fmt.Errorf("expected 6 fields, found %d", len(fields))
	}

	window, err := strconv.Atoi(fields[4])
	if err != nil {
		return SeriesConfig{}, fmt.Errorf("window %q is not a number of days", fields[4])
	}
	variation, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return SeriesConfig{}, fmt.Errorf("variation %q is not a number", fields[5])
	}

	s := SeriesConfig{
		DataType:    dt,
		PageURL:     fields[1],
		LinkPattern: fields[2],
		Pillar:      fields[3],
		WindowDays:  window,
		Variation:   variation,
		Line:        line,
	}
	if err := validation.Struct(s); err != nil {
		return SeriesConfig{}, err
	}
	if dt == types.DataTypeTesting && s.Pillar == "" {
		return SeriesConfig{}, fmt.Errorf("testing series needs a pillar")
	}
	return s, nil
}
