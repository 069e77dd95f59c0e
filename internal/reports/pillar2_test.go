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
	"github.com/ginjaninja78/covid-trends/internal/correction"
	"github.com/ginjaninja78/covid-trends/internal/csvparser"
	"github.com/ginjaninja78/covid-trends/internal/series"
	"github.com/ginjaninja78/covid-trends/internal/types"
)

// testingRow lays out one testing row. Positives before the July 2020
// cutover go in columns 10 and 11, after it in 12 and 13.
func testingRow(date, pillar, daily, cumDaily, pos, cumPos, newPos, newCumPos string) string {
	return strings.Join([]string{
		date, "UK", "K02000001", pillar, "", "",
		daily, cumDaily, "", "",
		pos, cumPos, newPos, newCumPos,
	}, ",")
}

var testingCSV = strings.Join([]string{
	"Date,Nation,Code,Pillar,a,b,Daily,Cumulative,c,d,Positive,CumulativePositive,Positive,CumulativePositive",
	testingRow("04/07/2020", "Pillar 2", "0", "1200", "", "", "0", "50"),
	testingRow("03/07/2020", "Pillar 2", "", "1200", "", "", "1", "50"),
	testingRow("02/07/2020", "Pillar 1", "500", "9000", "", "", "20", "900"),
	testingRow("01/07/2020", "Pillar 2", "200", "1200", "", "", "30", "50"),
	testingRow("30/06/2020", "Pillar 2", "100", "1000", "10", "30000", "", ""),
	testingRow("the 20th", "Pillar 2", "50", "900", "5", "29990", "", ""),
}, "\n") + "\n"

var deathCSV = strings.Join([]string{
	"Date,Nation,Cumulative,Daily",
	"05-Jul-20,UK,100,3",
	"04-Jul-20,UK,97,2.0",
	"Total,,n/a,",
}, "\n") + "\n"

func testingRows() [][]string {
	return csvparser.Parse(testingCSV, csvparser.Settings{SkipHeader: true}).Rows
}

func TestBuildTestingSeries(t *testing.T) {
	in, err := BuildTestingSeries(testingRows(), "Pillar 2", correction.Testing())
	require.NoError(t, err)

	assert.Equal(t, 1, in.Rejected, "the row without daily tests")
	assert.Equal(t, 1, in.Corrected)
	require.Len(t, in.Series, 4)
	assert.True(t, in.Series.IsSorted())

	first := in.Series[0]
	assert.Equal(t, series.Date{Year: 2020, Month: time.June, Day: 20}, first.Date)
	assert.Equal(t, "29990", first.Fields["CumulativePositive"])
	assert.Equal(t, "29990", first.Fields[adjustedCumulativePositive])

	cutover := in.Series[2]
	assert.Equal(t, series.Date{Year: 2020, Month: time.July, Day: 1}, cutover.Date)
	assert.Equal(t, "30", cutover.Fields["Positive"])
	assert.Equal(t, "50", cutover.Fields["CumulativePositive"])
	assert.Equal(t, "30351", cutover.Fields[adjustedCumulativePositive])
}

func TestBuildTestingSeriesWithoutCorrections(t *testing.T) {
	_, err := BuildTestingSeries(testingRows(), "Pillar 2", correction.Set{})
	assert.ErrorIs(t, err, series.ErrInvalidDateFormat)
}

func TestDeriveTesting(t *testing.T) {
	in, err := BuildTestingSeries(testingRows(), "Pillar 2", correction.Testing())
	require.NoError(t, err)

	var trends []series.Trend
	derived, err := DeriveTesting(in.Series, 7, 0.5, func(_ series.Point, _ string, tr series.Trend) {
		trends = append(trends, tr)
	})
	require.NoError(t, err)

	require.Len(t, derived.Records, 4)
	var pct, rolling []string
	for _, rec := range derived.Records {
		pct = append(pct, rec["Percentage"])
		rolling = append(rolling, rec["Rolling"])
	}
	assert.Equal(t, []string{"10.00", "10.00", "15.00", ""}, pct)
	assert.Equal(t, []string{"0", "10", "361", "361"}, rolling)
	assert.Equal(t, "50", derived.Records[3]["CumulativePositive"], "published value is written")

	assert.Equal(t, []series.Trend{series.Decreasing, series.Increasing}, trends)
	assert.True(t, derived.Attention)
	assert.Equal(t, []series.Date{{Year: 2020, Month: time.July, Day: 4}}, derived.Undefined)
}

func TestBuildAndDeriveDeath(t *testing.T) {
	rows := csvparser.Parse(deathCSV, csvparser.Settings{SkipHeader: true}).Rows
	in, err := BuildDeathSeries(rows)
	require.NoError(t, err)

	assert.Equal(t, 1, in.Rejected)
	require.Len(t, in.Series, 2)
	assert.Equal(t, "2", in.Series[0].Fields["Daily"])

	derived, err := DeriveDeath(in.Series, 1, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "0", derived.Records[0]["Rolling"])
	assert.Equal(t, "3", derived.Records[1]["Rolling"])
	assert.True(t, derived.Attention)

	derived, err = DeriveDeath(in.Series, 1, 5, nil)
	require.NoError(t, err)
	assert.False(t, derived.Attention, "a rise of 3 is below the variation")
}

const (
	testingPage = "https://www.gov.uk/government/publications/testing"
	testingLink = "https://assets.publishing.service.gov.uk/media/tests_2020-07-10.csv"
	deathPage   = "https://www.gov.uk/government/publications/deaths"
)

func pillar2Config() *config.Pillar2Config {
	return &config.Pillar2Config{
		Series: map[types.DataType]config.SeriesConfig{
			types.DataTypeTesting: {
				DataType:    types.DataTypeTesting,
				PageURL:     testingPage,
				LinkPattern: `https://assets\.publishing\.service\.gov\.uk/media/tests_.*\.csv`,
				Pillar:      "Pillar 2",
				WindowDays:  7,
				Variation:   0.5,
				Line:        1,
			},
			types.DataTypeDeath: {
				DataType:    types.DataTypeDeath,
				PageURL:     deathPage,
				LinkPattern: `https://assets\.publishing\.service\.gov\.uk/media/deaths_.*\.csv`,
				WindowDays:  7,
				Variation:   3,
				Line:        2,
			},
		},
		Skipped: []config.SkippedLine{{Line: 3, Reason: `unknown data type "hospital"`}},
	}
}

func TestPillar2Run(t *testing.T) {
	fetcher := fakeFetcher{
		testingPage: []byte(`<a href="` + testingLink + `">Testing data</a>`),
		testingLink: []byte(testingCSV),
	}
	env, v, hook := newTestEnv(t, fetcher)

	r := &Pillar2{Env: env, Config: pillar2Config(), Corrections: correction.Testing()}
	result, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Outputs, 2)
	tests, death := result.Outputs[0], result.Outputs[1]

	assert.Equal(t, "testing", tests.Category)
	assert.Equal(t, filepath.Join(env.Files.DataDir, "pillar2_testing_20200710.csv"), tests.Path)
	assert.Equal(t, 4, tests.Rows)
	assert.True(t, tests.Attention)

	lines := readLines(t, tests.Path)
	require.Len(t, lines, 5)
	assert.Equal(t, "Date,Daily,CumulativeDaily,Positive,Percentage,CumulativePositive,Rolling", lines[0])
	assert.Equal(t, "2020-07-01,200,1200,30,15.00,50,361", lines[3])
	assert.Equal(t, "2020-07-04,0,1200,0,,50,361", lines[4])

	assert.Equal(t, "death", death.Category)
	assert.False(t, death.Attention)
	assert.Equal(t, []string{"Date,Daily,Cumulative,Rolling"}, readLines(t, death.Path))

	assert.Equal(t, []string{tests.Path}, v.opened)

	warnings := messages(hook, log.WarnLevel)
	assert.Contains(t, warnings, `Line 3 of the configuration was skipped: unknown data type "hospital"`)
	assert.Contains(t, warnings, "No tests reported on 2020-07-04, percentage left empty")
	assert.Contains(t, warnings, "The percentage number of positive tests was 15.00 on 2020-07-01")
	assert.Contains(t, messages(hook, log.ErrorLevel), "GET operation for "+deathPage+" failed")

	debugs := messages(hook, log.DebugLevel)
	assert.Contains(t, debugs, "6 lines read, 0 malformed")
	assert.Contains(t, debugs, "1 specimen dates corrected")
	assert.Contains(t, debugs, "Corrections in force on 2020-07-04: "+correction.TestingCutover.Name)
}
