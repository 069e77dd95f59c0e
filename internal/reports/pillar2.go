package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/ginjaninja78/covid-trends/internal/config"
	"github.com/ginjaninja78/covid-trends/internal/correction"
	"github.com/ginjaninja78/covid-trends/internal/csvparser"
	"github.com/ginjaninja78/covid-trends/internal/fetch"
	"github.com/ginjaninja78/covid-trends/internal/report"
	"github.com/ginjaninja78/covid-trends/internal/series"
	"github.com/ginjaninja78/covid-trends/internal/types"
	"github.com/ginjaninja78/covid-trends/internal/validation"
)

// =============================================================================
// PILLAR 2
// =============================================================================
//
// TESTING SOURCE (header skipped):
//
//   0 specimen date (DD/MM/YYYY)   3 pillar
//   6 daily tests    7 cumulative tests
//   10 positives     11 cumulative positives   (12 and 13 from 1 July 2020)
//
// DEATH SOURCE (header skipped):
//
//   0 date (DD-Mon-YY)   2 cumulative deaths   3 daily deaths
//
// Testing rolls the cumulative positives and classifies the positivity
// percentage. Death rolls the cumulative deaths and classifies the rolling
// count.
//
// =============================================================================

const adjustedCumulativePositive = "AdjustedCumulativePositive"

var (
	// TestingColumns maps the testing series columns before any cutover.
	TestingColumns = series.ColumnMap{
		"Date":               0,
		"Pillar":             3,
		"Daily":              6,
		"CumulativeDaily":    7,
		"Positive":           10,
		"CumulativePositive": 11,
	}

	// DeathColumns maps the death series columns.
	DeathColumns = series.ColumnMap{
		"Date":       0,
		"Cumulative": 2,
		"Daily":      3,
	}
)

// Ingest holds one Pillar 2 series read from its source.
type Ingest struct {
	Series series.Series

	// Rejected counts rows skipped for a missing or bad count.
	Rejected int

	// Corrected counts rows whose raw date was substituted.
	Corrected int
}

// BuildTestingSeries reads the testing rows of one pillar.
//
// PARAMETERS:
//   - rows: the source rows without the header
//   - pillar: matched at the start of the pillar column
//   - fixes: the corrections applied to dates and columns
//
// RETURNS:
//   - The sorted series. CumulativePositive keeps the published value and
//     AdjustedCumulativePositive carries the cutover offset.
//   - An error when a date cannot be normalized
func BuildTestingSeries(rows [][]string, pillar string, fixes correction.Set) (*Ingest, error) {
	m, err := series.Pattern(pillar)
	if err != nil {
		return nil, fmt.Errorf("pillar %q: %w", pillar, err)
	}

	in := &Ingest{}
	for _, row := range series.SelectRows(rows, series.Criterion{Column: TestingColumns["Pillar"], Matcher: m}) {
		if daily, _ := TestingColumns.Lookup(row, "Daily"); daily == "" {
			in.Rejected++
			continue
		}

		raw, _ := TestingColumns.Lookup(row, "Date")
		fixed, rule := fixes.FixDate(raw)
		if rule != "" {
			in.Corrected++
		}
		d, err := series.Normalize(fixed, series.DaySlashMonthSlashYear)
		if err != nil {
			return nil, err
		}

		cols := fixes.Columns(TestingColumns, d)
		fields := series.Fields{}
		counts := map[string]int64{}
		ok := true
		for _, name := range []string{"Daily", "CumulativeDaily", "Positive", "CumulativePositive"} {
			v, _ := cols.Lookup(row, name)
			normalized, n, valid := validation.Count(v)
			if !valid {
				ok = false
				break
			}
			fields[name] = normalized
			counts[name] = n
		}
		if !ok {
			in.Rejected++
			continue
		}

		adjusted := counts["CumulativePositive"] + fixes.Offset("CumulativePositive", d)
		fields[adjustedCumulativePositive] = strconv.FormatInt(adjusted, 10)

		in.Series = append(in.Series, series.Point{Area: pillar, Date: d, Fields: fields})
	}
	in.Series.SortByDate()
	return in, nil
}

// BuildDeathSeries reads the death rows. Rows without a numeric cumulative
// count (totals and notes) are skipped.
func BuildDeathSeries(rows [][]string) (*Ingest, error) {
	in := &Ingest{}
	for _, row := range rows {
		cum, _ := DeathColumns.Lookup(row, "Cumulative")
		if !validation.IsCount(cum) {
			in.Rejected++
			continue
		}
		dailyRaw, _ := DeathColumns.Lookup(row, "Daily")
		daily, _, ok := validation.Count(dailyRaw)
		if !ok {
			in.Rejected++
			continue
		}

		raw, _ := DeathColumns.Lookup(row, "Date")
		d, err := series.Normalize(raw, series.DayMonthAbbrevYY)
		if err != nil {
			return nil, err
		}

		in.Series = append(in.Series, series.Point{
			Area:   string(types.DataTypeDeath),
			Date:   d,
			Fields: series.Fields{"Daily": daily, "Cumulative": cum},
		})
	}
	in.Series.SortByDate()
	return in, nil
}

// Derived is a Pillar 2 series ready to write.
type Derived struct {
	Records   []report.Record
	Attention bool

	// Undefined lists the dates whose percentage could not be computed.
	Undefined []series.Date

	// Latest is the most recent classified value and its date.
	Latest     string
	LatestDate series.Date
}

// DeriveTesting computes the rolling positives and positivity percentage.
// Rows with no tests keep an empty percentage and are not classified.
func DeriveTesting(s series.Series, windowDays int, variation float64, observe func(series.Point, string, series.Trend)) (*Derived, error) {
	rolling, err := series.Rolling(s, windowDays, adjustedCumulativePositive)
	if err != nil {
		return nil, err
	}

	out := &Derived{}
	tracker := series.NewTracker(variation)
	for i, p := range s {
		positive, err := p.Int("Positive")
		if err != nil {
			return nil, err
		}
		daily, err := p.Int("Daily")
		if err != nil {
			return nil, err
		}

		percentage := ""
		pct, err := series.Percentage(positive, daily)
		if err != nil {
			out.Undefined = append(out.Undefined, p.Date)
		} else {
			percentage = fmt.Sprintf("%.2f", pct)
			out.Latest, out.LatestDate = percentage, p.Date
			if trend, ok := tracker.Observe(pct); ok && observe != nil {
				observe(p, percentage, trend)
			}
		}

		rec, err := report.NewRecord(report.TestingSchema, map[report.Column]string{
			"Date":               p.Date.String(),
			"Daily":              p.Fields["Daily"],
			"CumulativeDaily":    p.Fields["CumulativeDaily"],
			"Positive":           p.Fields["Positive"],
			"Percentage":         percentage,
			"CumulativePositive": p.Fields["CumulativePositive"],
			"Rolling":            strconv.FormatInt(rolling[i], 10),
		})
		if err != nil {
			return nil, err
		}
		out.Records = append(out.Records, rec)
	}
	out.Attention = tracker.Attention()
	return out, nil
}

// DeriveDeath computes the rolling deaths and classifies them.
func DeriveDeath(s series.Series, windowDays int, variation float64, observe func(series.Point, string, series.Trend)) (*Derived, error) {
	rolling, err := series.Rolling(s, windowDays, "Cumulative")
	if err != nil {
		return nil, err
	}

	out := &Derived{}
	tracker := series.NewTracker(variation)
	for i, p := range s {
		value := strconv.FormatInt(rolling[i], 10)
		out.Latest, out.LatestDate = value, p.Date
		if trend, ok := tracker.Observe(float64(rolling[i])); ok && observe != nil {
			observe(p, value, trend)
		}

		rec, err := report.NewRecord(report.DeathSchema, map[report.Column]string{
			"Date":       p.Date.String(),
			"Daily":      p.Fields["Daily"],
			"Cumulative": p.Fields["Cumulative"],
			"Rolling":    value,
		})
		if err != nil {
			return nil, err
		}
		out.Records = append(out.Records, rec)
	}
	out.Attention = tracker.Attention()
	return out, nil
}

// Pillar2 is the Pillar 2 testing and death report.
type Pillar2 struct {
	Env    *Env
	Config *config.Pillar2Config

	// Corrections apply to the testing series.
	Corrections correction.Set
}

// Run writes one file per configured data type. A data type whose source
// cannot be downloaded still gets a header-only file.
func (r *Pillar2) Run(ctx context.Context) (*Result, error) {
	logger := r.Env.entry(types.ReportPillar2)
	logger.Info("Started")
	defer logger.Info("Completed")

	for _, skipped := range r.Config.Skipped {
		logger.Warnf("Line %d of the configuration was skipped: %s", skipped.Line, skipped.Reason)
	}

	result := &Result{Report: types.ReportPillar2}
	for _, dt := range []types.DataType{types.DataTypeTesting, types.DataTypeDeath} {
		cfg, ok := r.Config.Get(dt)
		if !ok {
			continue
		}
		out, err := r.runSeries(ctx, logger.WithField("data_type", string(dt)), cfg)
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, *out)
	}

	r.Env.surface(logger, result)
	return result, nil
}

func (r *Pillar2) runSeries(ctx context.Context, logger *log.Entry, cfg config.SeriesConfig) (*Output, error) {
	dt := cfg.DataType
	rows := r.download(ctx, logger, cfg)

	logger.Infof("Processing %s data file", dt)
	var (
		in      *Ingest
		derived *Derived
		schema  report.Schema
		err     error
	)
	switch dt {
	case types.DataTypeTesting:
		schema = report.TestingSchema
		in, err = BuildTestingSeries(rows, cfg.Pillar, r.Corrections)
		if err == nil {
			if in.Corrected > 0 {
				logger.Debugf("%d specimen dates corrected", in.Corrected)
			}
			if n := len(in.Series); n > 0 {
				last := in.Series[n-1].Date
				if names := r.Corrections.Active(last); len(names) > 0 {
					logger.Debugf("Corrections in force on %s: %s", last, strings.Join(names, ", "))
				}
			}
			derived, err = DeriveTesting(in.Series, cfg.WindowDays, cfg.Variation, func(p series.Point, v string, trend series.Trend) {
				logger.WithField("trend", trend.String()).Debugf("The percentage number of positive tests was %s on %s", v, p.Date)
			})
		}
	case types.DataTypeDeath:
		schema = report.DeathSchema
		in, err = BuildDeathSeries(rows)
		if err == nil {
			derived, err = DeriveDeath(in.Series, cfg.WindowDays, cfg.Variation, func(p series.Point, v string, trend series.Trend) {
				logger.WithField("trend", trend.String()).Debugf("The rolling number of deaths was %s on %s", v, p.Date)
			})
		}
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownDataType, dt)
	}
	if err != nil {
		logger.WithError(err).Errorf("Could not process the %s data", dt)
		return nil, err
	}

	logger.Infof("%s data rows were found for %s %s", humanize.Comma(int64(len(in.Series))), dt, cfg.Pillar)
	if in.Rejected > 0 {
		logger.Debugf("%s rows skipped for a missing count", humanize.Comma(int64(in.Rejected)))
	}
	for _, d := range derived.Undefined {
		logger.Warnf("No tests reported on %s, percentage left empty", d)
	}
	r.logLatest(logger, dt, derived)

	lines, err := report.Assemble(schema, derived.Records)
	if err != nil {
		return nil, err
	}
	path := r.Env.Files.DataPath(report.FileName(types.ReportPillar2.FileBase(), string(dt), r.Env.now()))
	logger.Infof("Writing data to file %s", path)
	if err := report.Write(path, lines); err != nil {
		logger.WithError(err).Error("Could not write the report")
		return nil, err
	}

	return &Output{
		Category:  string(dt),
		Path:      path,
		Rows:      len(derived.Records),
		Attention: derived.Attention,
	}, nil
}

// download resolves and fetches the data file. Failures are logged and
// yield no rows.
func (r *Pillar2) download(ctx context.Context, logger *log.Entry, cfg config.SeriesConfig) [][]string {
	link, err := fetch.ResolveLink(ctx, r.Env.Fetcher, cfg.PageURL, cfg.LinkPattern)
	if err != nil {
		logger.WithError(err).Errorf("GET operation for %s failed", cfg.PageURL)
		return nil
	}

	logger.Infof("Retrieving %s data file", cfg.DataType)
	body, err := r.Env.Fetcher.Fetch(ctx, link)
	if err != nil {
		logger.WithError(err).Errorf("GET operation for %s failed", link)
		return nil
	}
	logger.Debugf("Downloaded %s from %s", humanize.Bytes(uint64(len(body))), link)

	data := csvparser.Parse(string(body), csvparser.Settings{SkipHeader: true})
	logger.Debugf("%s lines read, %s malformed", humanize.Comma(int64(len(data.Rows))), humanize.Comma(int64(data.Malformed)))
	return data.Rows
}

// logLatest logs the most recent value, as a warning when it raised
// attention.
func (r *Pillar2) logLatest(logger *log.Entry, dt types.DataType, d *Derived) {
	if d.Latest == "" {
		return
	}
	msg := "The rolling number of deaths was %s on %s"
	if dt == types.DataTypeTesting {
		msg = "The percentage number of positive tests was %s on %s"
	}
	if d.Attention {
		logger.Warnf(msg, d.Latest, d.LatestDate)
		return
	}
	logger.Infof(msg, d.Latest, d.LatestDate)
}
