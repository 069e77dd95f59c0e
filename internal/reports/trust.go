package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/ginjaninja78/covid-trends/internal/config"
	"github.com/ginjaninja78/covid-trends/internal/fetch"
	"github.com/ginjaninja78/covid-trends/internal/report"
	"github.com/ginjaninja78/covid-trends/internal/series"
	"github.com/ginjaninja78/covid-trends/internal/types"
	"github.com/ginjaninja78/covid-trends/internal/xlsxparser"
)

// =============================================================================
// TRUST DEATHS
// =============================================================================
//
// WORKBOOK LAYOUT (after the leading rows are removed):
//
//   row 0        header; column 4 is "Name", columns 6.. are dates
//   rows 1..     one row per trust
//
// The last 18 columns hold totals and notes and are not dates. The last 14
// are dropped from the report, which keeps four of the summary columns.
//
// =============================================================================

const (
	trustNameColumn  = 4
	trustFirstColumn = 6
	trustTrailing    = 18
	trustKept        = 14
)

// ErrUnexpectedLayout is returned when the workbook does not have the
// expected shape.
var ErrUnexpectedLayout = errors.New("unexpected workbook layout")

// TrustFinding is the last-death result for one configured trust.
type TrustFinding struct {
	// Trust is the configured name; Name is the one in the workbook.
	Trust string
	Name  string

	// LastDeath is the most recent day with a death. Zero when NoDeaths.
	LastDeath series.Date
	NoDeaths  bool

	// Recent is set when LastDeath is within the recent window.
	Recent bool
}

// TrustTable is the trust deaths report built from a workbook.
type TrustTable struct {
	Lines     []string
	Findings  []TrustFinding
	Unmatched []string
}

// Attention reports whether any trust had a recent death.
func (t *TrustTable) Attention() bool {
	for _, f := range t.Findings {
		if f.Recent {
			return true
		}
	}
	return false
}

// BuildTrustTable selects the configured trusts from the workbook rows and
// finds the last death of each.
//
// PARAMETERS:
//   - rows: the extracted workbook rows, header first, all the same width
//   - trusts: the configured trust names, matched as prefixes
//   - today: the run date
//   - recentDays: a last death this close to today is recent
//
// RETURNS:
//   - The report lines (header first) and one finding per selected row
//   - An error when the layout is unexpected or a header date is invalid
func BuildTrustTable(rows [][]string, trusts []string, today series.Date, recentDays int) (*TrustTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrUnexpectedLayout)
	}
	header := rows[0]
	width := len(header)
	if width < trustFirstColumn+trustTrailing {
		return nil, fmt.Errorf("%w: header has %d columns", ErrUnexpectedLayout, width)
	}

	dateCells := header[trustFirstColumn : width-trustTrailing]
	dates := make([]series.Date, len(dateCells))
	for i, cell := range dateCells {
		d, err := series.Normalize(cell, series.DayMonthAbbrevYY)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}

	table := &TrustTable{}
	table.Lines = append(table.Lines, trustLine(header, width))

	matchers := make([]series.Matcher, len(trusts))
	for i, t := range trusts {
		matchers[i] = series.Prefix(t)
	}
	matched := make([]bool, len(trusts))

	for _, row := range rows[1:] {
		if len(row) != width {
			continue
		}
		name := row[trustNameColumn]
		for i, m := range matchers {
			if !m.Match(name) {
				continue
			}
			matched[i] = true
			table.Lines = append(table.Lines, trustLine(row, width))
			table.Findings = append(table.Findings, lastDeath(trusts[i], name, row[trustFirstColumn:width-trustTrailing], dates, today, recentDays))
			break
		}
	}

	for i, ok := range matched {
		if !ok {
			table.Unmatched = append(table.Unmatched, trusts[i])
		}
	}
	return table, nil
}

func trustLine(row []string, width int) string {
	fields := make([]string, 0, width-trustFirstColumn-trustKept+1)
	fields = append(fields, row[trustNameColumn])
	fields = append(fields, row[trustFirstColumn:width-trustKept]...)
	return report.JoinRow(fields)
}

func lastDeath(trust, name string, daily []string, dates []series.Date, today series.Date, recentDays int) TrustFinding {
	f := TrustFinding{Trust: trust, Name: name}
	idx, err := series.LastNonZeroIndex(daily)
	if err != nil {
		f.NoDeaths = true
		return f
	}
	f.LastDeath = dates[idx]
	f.Recent = series.WithinDays(today, f.LastDeath, recentDays)
	return f
}

// TrustDeaths is the NHS England trust deaths report.
type TrustDeaths struct {
	Env      *Env
	Settings config.TrustDeathsSettings
	Config   *config.TrustDeathsConfig
}

// Run downloads the workbook, writes trust_deaths_YYYYMMDD.csv and logs the
// last death of every configured trust.
func (r *TrustDeaths) Run(ctx context.Context) (*Result, error) {
	logger := r.Env.entry(types.ReportTrustDeaths)
	logger.Info("Started")
	defer logger.Info("Completed")

	link, err := fetch.ResolveLink(ctx, r.Env.Fetcher, r.Settings.PageURL, r.Settings.LinkPattern)
	if err != nil {
		logger.WithError(err).Errorf("GET operation for %s failed", r.Settings.PageURL)
		return nil, err
	}

	logger.Infof("Downloading file %s", link)
	data, err := r.Env.Fetcher.Fetch(ctx, link)
	if err != nil {
		logger.WithError(err).Errorf("GET operation for %s failed", link)
		return nil, err
	}
	logger.Debugf("Downloaded %s", humanize.Bytes(uint64(len(data))))

	workbook, err := r.Env.Files.SaveTemp(r.Settings.DownloadFile, data)
	if err != nil {
		logger.WithError(err).Error("Could not save the workbook")
		return nil, err
	}

	logger.Infof("Converting Excel file %s", workbook)
	rows, err := xlsxparser.ExtractFile(workbook, r.Settings.Workbook)
	if err != nil {
		logger.WithError(err).Error("Could not read the workbook")
		return nil, err
	}

	now := r.Env.now()
	table, err := BuildTrustTable(rows, r.Config.Trusts, series.DateOf(now), r.Settings.RecentDays)
	if err != nil {
		logger.WithError(err).Error("Could not build the trust deaths report")
		return nil, err
	}

	for _, t := range table.Unmatched {
		r.logUnmatched(logger, t, rows)
	}

	path := r.Env.Files.DataPath(report.FileName(types.ReportTrustDeaths.FileBase(), "", now))
	logger.Infof("Writing data to file %s", path)
	if err := report.Write(path, table.Lines); err != nil {
		logger.WithError(err).Error("Could not write the report")
		return nil, err
	}

	for _, f := range table.Findings {
		switch {
		case f.NoDeaths:
			logger.Infof("No deaths recorded in %s", f.Trust)
		case f.Recent:
			logger.Warnf("The last death in %s was on %s which is a week or less ago", f.Trust, f.LastDeath.Format(series.DayMonthAbbrevYY))
		default:
			logger.Infof("The last death in %s was on %s", f.Trust, f.LastDeath.Format(series.DayMonthAbbrevYY))
		}
	}

	result := &Result{
		Report: types.ReportTrustDeaths,
		Outputs: []Output{{
			Path:      path,
			Rows:      len(table.Lines) - 1,
			Attention: table.Attention(),
		}},
	}
	r.Env.surface(logger, result)
	return result, nil
}

func (r *TrustDeaths) logUnmatched(logger *log.Entry, trust string, rows [][]string) {
	names := series.Column(rows[1:], trustNameColumn)
	if closest, _ := series.Closest(trust, names); closest != "" {
		logger.Warnf("No rows found for trust %s, did you mean %s?", trust, closest)
		return
	}
	logger.Warnf("No rows found for trust %s", trust)
}
