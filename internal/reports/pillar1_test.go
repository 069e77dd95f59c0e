package reports

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/covid-trends/internal/config"
	"github.com/ginjaninja78/covid-trends/internal/csvparser"
	"github.com/ginjaninja78/covid-trends/internal/series"
)

const casesURL = "https://coronavirus.data.gov.uk/downloads/csv/coronavirus-cases_latest.csv"

// casesCSV is published newest first.
var casesCSV = strings.Join([]string{
	"Area name,Area code,Area type,Specimen date,Daily lab-confirmed cases,Cumulative lab-confirmed cases,Cumulative lab-confirmed cases rate",
	"London,E12000007,region,2020-07-10,5,50,0.6",
	"South East,E12000008,region,2020-07-02,9.0,10,0.1",
	"London,E12000007,region,2020-07-07,10,45,0.5",
	"Londonderry,N09000005,utla,2020-07-07,1,1,0.0",
	"South East,E12000008,region,2020-07-01,1,1,0.0",
	"London,E12000007,region,2020-07-03,15,35,0.4",
	"London,E12000007,region,2020-07-02,,n/a,",
	"London,E12000007,region,2020-07-01,20,20,0.2",
}, "\n") + "\n"

func casesConfig() *config.Pillar1Config {
	return &config.Pillar1Config{
		URL:        casesURL,
		Tier:       "region",
		WindowDays: 7,
		Variation:  5,
		Areas:      []string{"London", "South East"},
	}
}

func TestBuildPillar1Series(t *testing.T) {
	rows := csvparser.Parse(casesCSV, csvparser.Settings{}).Rows

	selected, err := BuildPillar1Series(rows, casesConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"London", "South East"}, selected.Areas.Areas())
	assert.Equal(t, 1, selected.Rejected, "the n/a row")

	london := selected.Areas.Get("London")
	require.Len(t, london, 4, "the utla row is not in the tier")
	assert.True(t, london.IsSorted())
	assert.Equal(t, series.Date{Year: 2020, Month: time.July, Day: 1}, london[0].Date)

	se := selected.Areas.Get("South East")
	require.Len(t, se, 2)
	assert.Equal(t, "9", se[1].Fields["Daily"], "fraction stripped")
}

func TestBuildPillar1SeriesInvalidDate(t *testing.T) {
	rows := [][]string{{"London", "E12000007", "region", "10/07/2020", "5", "50", "0.6"}}
	_, err := BuildPillar1Series(rows, casesConfig())
	assert.ErrorIs(t, err, series.ErrInvalidDateFormat)
}

func TestDerivePillar1(t *testing.T) {
	rows := csvparser.Parse(casesCSV, csvparser.Settings{}).Rows
	selected, err := BuildPillar1Series(rows, casesConfig())
	require.NoError(t, err)

	var trends []series.Trend
	london, err := DerivePillar1("London", selected.Areas.Get("London"), 7, 5, func(_ series.Point, _ int64, tr series.Trend) {
		trends = append(trends, tr)
	})
	require.NoError(t, err)

	var infectious []string
	for _, rec := range london.Records {
		infectious = append(infectious, rec["Infectious"])
	}
	// Only 2020-07-10 reaches back a full week, to the 35 of 2020-07-03.
	assert.Equal(t, []string{"20", "35", "45", "15"}, infectious)
	assert.Equal(t, []series.Trend{series.Increasing, series.Increasing, series.Decreasing}, trends)
	assert.False(t, london.Attention)
	assert.Equal(t, int64(15), london.LastInfectious)
	assert.True(t, london.HasTrend)
	assert.Equal(t, series.Decreasing, london.LastTrend)

	se, err := DerivePillar1("South East", selected.Areas.Get("South East"), 7, 5, nil)
	require.NoError(t, err)
	assert.True(t, se.Attention, "1 to 10 is a rise of at least 5")
}

func TestPillar1Run(t *testing.T) {
	env, v, hook := newTestEnv(t, fakeFetcher{casesURL: []byte(casesCSV)})

	cfg := casesConfig()
	cfg.Areas = append(cfg.Areas, "Lundon")
	result, err := (&Pillar1{Env: env, Config: cfg}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Outputs, 1)
	out := result.Outputs[0]
	assert.Equal(t, filepath.Join(env.Files.DataDir, "pillar1_region_20200710.csv"), out.Path)
	assert.Equal(t, 6, out.Rows)
	assert.True(t, out.Attention)
	assert.Equal(t, []string{out.Path}, v.opened)

	lines := readLines(t, out.Path)
	require.Len(t, lines, 7)
	assert.Equal(t, "Area,Date,Daily,Infectious,Cumulative,Rate", lines[0])
	assert.Equal(t, "London,2020-07-01,20,20,20,0.2", lines[1])
	assert.Equal(t, "London,2020-07-10,5,15,50,0.6", lines[4])
	assert.Equal(t, "South East,2020-07-02,9,10,10,0.1", lines[6])

	infos := messages(hook, log.InfoLevel)
	assert.Contains(t, infos, "4 data rows were found for region London")
	assert.Contains(t, infos, "0 data rows were found for region Lundon")
	assert.Contains(t, infos, "Infectious cases Decreasing in London on 2020-07-10")

	warnings := messages(hook, log.WarnLevel)
	assert.Contains(t, warnings, "Infectious cases Increasing in South East on 2020-07-02")
	assert.Contains(t, warnings, "No rows found for area Lundon, did you mean London?")

	assert.Contains(t, messages(hook, log.DebugLevel), "9 lines read, 0 malformed")
}

func TestPillar1RunDownloadFailureWritesHeader(t *testing.T) {
	env, v, hook := newTestEnv(t, fakeFetcher{})

	result, err := (&Pillar1{Env: env, Config: casesConfig()}).Run(context.Background())
	require.NoError(t, err)

	out := result.Outputs[0]
	assert.Zero(t, out.Rows)
	assert.False(t, out.Attention)
	assert.Empty(t, v.opened)
	assert.Equal(t, []string{"Area,Date,Daily,Infectious,Cumulative,Rate"}, readLines(t, out.Path))
	assert.Contains(t, messages(hook, log.ErrorLevel), "GET operation for "+casesURL+" failed")
}
