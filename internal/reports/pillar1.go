package reports

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/ginjaninja78/covid-trends/internal/config"
	"github.com/ginjaninja78/covid-trends/internal/csvparser"
	"github.com/ginjaninja78/covid-trends/internal/report"
	"github.com/ginjaninja78/covid-trends/internal/series"
	"github.com/ginjaninja78/covid-trends/internal/types"
	"github.com/ginjaninja78/covid-trends/internal/validation"
)

// =============================================================================
// PILLAR 1
// =============================================================================
//
// SOURCE COLUMNS:
//
//   0 area name   2 area type   3 specimen date (YYYY-MM-DD)
//   4 daily       5 cumulative  6 rate
//
// The infectious estimate of a day is its cumulative count less the
// cumulative count at the window boundary, i.e. the people still within
// their infectious period.
//
// =============================================================================

// Pillar1Columns maps the case series columns.
var Pillar1Columns = series.ColumnMap{
	"Area":       0,
	"Type":       2,
	"Date":       3,
	"Daily":      4,
	"Cumulative": 5,
	"Rate":       6,
}

// Pillar1Series holds the selected rows of every configured area.
type Pillar1Series struct {
	Areas *series.AreaSeries

	// Rejected counts selected rows skipped for a bad count.
	Rejected int
}

// BuildPillar1Series selects the rows of every configured area of the
// configured tier. A row can belong to more than one configured area.
func BuildPillar1Series(rows [][]string, cfg *config.Pillar1Config) (*Pillar1Series, error) {
	tier, err := series.Pattern(cfg.Tier)
	if err != nil {
		return nil, fmt.Errorf("tier %q: %w", cfg.Tier, err)
	}

	out := &Pillar1Series{Areas: series.NewAreaSeries(cfg.Areas...)}
	for _, area := range cfg.Areas {
		m, err := series.Pattern(area)
		if err != nil {
			return nil, fmt.Errorf("area %q: %w", area, err)
		}
		selected := series.SelectRows(rows,
			series.Criterion{Column: Pillar1Columns["Type"], Matcher: tier},
			series.Criterion{Column: Pillar1Columns["Area"], Matcher: m},
		)
		for _, row := range selected {
			p, ok, err := pillar1Point(row)
			if err != nil {
				return nil, err
			}
			if !ok {
				out.Rejected++
				continue
			}
			out.Areas.Append(area, p)
		}
	}
	out.Areas.SortAll()
	return out, nil
}

func pillar1Point(row []string) (series.Point, bool, error) {
	get := func(field string) string {
		v, _ := Pillar1Columns.Lookup(row, field)
		return v
	}

	cumulative, _, ok := validation.Count(get("Cumulative"))
	if !ok {
		return series.Point{}, false, nil
	}
	daily := validation.NormalizeCount(get("Daily"))

	d, err := series.Normalize(get("Date"), series.YearMonthDay)
	if err != nil {
		return series.Point{}, false, err
	}

	return series.Point{
		Area: get("Area"),
		Date: d,
		Fields: series.Fields{
			"Daily":      daily,
			"Cumulative": cumulative,
			"Rate":       get("Rate"),
		},
	}, true, nil
}

// Pillar1Area is the derived series of one configured area.
type Pillar1Area struct {
	Area      string
	Records   []report.Record
	Attention bool

	// LastInfectious and LastDate describe the final point; LastTrend is
	// its classification when HasTrend is set.
	LastInfectious int64
	LastDate       series.Date
	LastTrend      series.Trend
	HasTrend       bool
}

// DerivePillar1 computes the infectious estimate and its trend for one
// area. observe is called with every classification, in date order.
func DerivePillar1(area string, s series.Series, windowDays int, variation float64, observe func(series.Point, int64, series.Trend)) (*Pillar1Area, error) {
	out := &Pillar1Area{Area: area}
	if len(s) == 0 {
		return out, nil
	}

	cumulative, err := s.Ints("Cumulative")
	if err != nil {
		return nil, err
	}
	recovered, err := series.Lagged(s, windowDays, "Cumulative")
	if err != nil {
		return nil, err
	}

	tracker := series.NewTracker(variation)
	for i, p := range s {
		infectious := cumulative[i] - recovered[i]

		rec, err := report.NewRecord(report.Pillar1Schema, map[report.Column]string{
			"Area":       p.Area,
			"Date":       p.Date.String(),
			"Daily":      p.Fields["Daily"],
			"Infectious": strconv.FormatInt(infectious, 10),
			"Cumulative": p.Fields["Cumulative"],
			"Rate":       p.Fields["Rate"],
		})
		if err != nil {
			return nil, err
		}
		out.Records = append(out.Records, rec)

		if trend, ok := tracker.Observe(float64(infectious)); ok && observe != nil {
			observe(p, infectious, trend)
		}
		out.LastInfectious, out.LastDate = infectious, p.Date
	}
	out.LastTrend, out.HasTrend = tracker.Last()
	out.Attention = tracker.Attention()
	return out, nil
}

// Pillar1 is the Pillar 1 case report.
type Pillar1 struct {
	Env    *Env
	Config *config.Pillar1Config
}

// Run downloads the case series and writes pillar1_<tier>_YYYYMMDD.csv.
// A failed download still writes the header so the day has a file.
func (r *Pillar1) Run(ctx context.Context) (*Result, error) {
	logger := r.Env.entry(types.ReportPillar1)
	logger.Info("Started")
	defer logger.Info("Completed")

	cfg := r.Config
	var rows [][]string

	logger.Infof("Retrieving file %s", cfg.URL)
	body, err := r.Env.Fetcher.Fetch(ctx, cfg.URL)
	if err != nil {
		logger.WithError(err).Errorf("GET operation for %s failed", cfg.URL)
	} else {
		logger.Debugf("Downloaded %s", humanize.Bytes(uint64(len(body))))
		data := csvparser.Parse(string(body), csvparser.Settings{})
		logger.Debugf("%s lines read, %s malformed", humanize.Comma(int64(len(data.Rows))), humanize.Comma(int64(data.Malformed)))
		rows = data.Rows
	}

	selected, err := BuildPillar1Series(rows, cfg)
	if err != nil {
		logger.WithError(err).Error("Could not read the case series")
		return nil, err
	}
	if selected.Rejected > 0 {
		logger.Debugf("%s rows skipped for a missing count", humanize.Comma(int64(selected.Rejected)))
	}

	var records []report.Record
	attention := false
	for _, area := range selected.Areas.Areas() {
		s := selected.Areas.Get(area)
		logger.Infof("%d data rows were found for %s %s", len(s), cfg.Tier, area)
		if len(s) == 0 {
			if len(rows) > 0 {
				r.logUnmatched(logger, area, rows)
			}
			continue
		}

		derived, err := DerivePillar1(area, s, cfg.WindowDays, cfg.Variation, func(p series.Point, infectious int64, trend series.Trend) {
			logger.Debugf("Infectious cases %s in %s on %s", trend, p.Area, p.Date)
		})
		if err != nil {
			logger.WithError(err).Errorf("Could not derive the infectious estimate for %s", area)
			return nil, err
		}
		records = append(records, derived.Records...)

		if derived.LastInfectious == 0 {
			logger.Infof("No infectious Pillar 1 cases in %s on %s", area, derived.LastDate)
		} else if derived.HasTrend {
			entry := logger.WithField("infectious", derived.LastInfectious)
			if derived.Attention {
				entry.Warnf("Infectious cases %s in %s on %s", derived.LastTrend, area, derived.LastDate)
			} else {
				entry.Infof("Infectious cases %s in %s on %s", derived.LastTrend, area, derived.LastDate)
			}
		}
		attention = attention || derived.Attention
	}

	lines, err := report.Assemble(report.Pillar1Schema, records)
	if err != nil {
		return nil, err
	}
	path := r.Env.Files.DataPath(report.FileName(types.ReportPillar1.FileBase(), types.ShortTier(cfg.Tier), r.Env.now()))
	logger.Infof("Writing data to file %s", path)
	if err := report.Write(path, lines); err != nil {
		logger.WithError(err).Error("Could not write the report")
		return nil, err
	}

	if attention {
		logger.Warn("Increase in infectious count detected, please view")
	}
	result := &Result{
		Report: types.ReportPillar1,
		Outputs: []Output{{
			Category:  types.ShortTier(cfg.Tier),
			Path:      path,
			Rows:      len(records),
			Attention: attention,
		}},
	}
	r.Env.surface(logger, result)
	return result, nil
}

func (r *Pillar1) logUnmatched(logger *log.Entry, area string, rows [][]string) {
	tier, err := series.Pattern(r.Config.Tier)
	if err != nil {
		return
	}
	inTier := series.SelectRows(rows, series.Criterion{Column: Pillar1Columns["Type"], Matcher: tier})
	if closest, _ := series.Closest(area, series.Column(inTier, Pillar1Columns["Area"])); closest != "" {
		logger.Warnf("No rows found for area %s, did you mean %s?", area, closest)
	}
}
