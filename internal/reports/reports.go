// =============================================================================
// COVID Trends - Report Generators
// =============================================================================
//
// This package assembles the three reports from the shared pieces:
//
//   TrustDeaths  NHS England deaths per trust (xlsx workbook)
//   Pillar1      Pillar 1 cases per area with an infectious estimate
//   Pillar2      Pillar 2 testing positivity and rolling deaths
//
// REPORT PIPELINE:
//   1. Read the report configuration
//   2. Download the source (resolving the link from a landing page if needed)
//   3. Select the configured rows and normalize their dates
//   4. Sort each series and derive rolling / infectious / percentage values
//   5. Classify the trend of each derived value
//   6. Write the dated report file
//   7. Log and surface the attention flag (open the file in the viewer)
//
// Reports run sequentially and independently. One report failing does not
// stop the others when they are run together.
//
// =============================================================================

package reports

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ginjaninja78/covid-trends/internal/fetch"
	"github.com/ginjaninja78/covid-trends/internal/types"
	"github.com/ginjaninja78/covid-trends/internal/viewer"
	"github.com/ginjaninja78/covid-trends/pkg/utils"
)

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Env carries the collaborators shared by every report.
type Env struct {
	// Fetcher downloads pages and data files.
	Fetcher fetch.Fetcher

	// Viewer opens a report that needs attention.
	Viewer viewer.Viewer

	// ViewerApp is passed to Viewer.Open. Empty selects the platform default.
	ViewerApp string

	// Files resolves configuration, data and temp paths.
	Files *utils.FileManager

	// Logger is the base entry; each report adds its module prefix.
	Logger *log.Entry

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) entry(r types.Report) *log.Entry {
	return e.Logger.WithField("prefix", string(r))
}

// =============================================================================
// RESULTS
// =============================================================================

// Output describes one generated report file.
type Output struct {
	// Category distinguishes files of the same report, e.g. "testing".
	Category string

	// Path is the file written.
	Path string

	// Rows is the number of data rows written, excluding the header.
	Rows int

	// Attention is set when the file should be looked at.
	Attention bool
}

// Result is the outcome of one report run.
type Result struct {
	Report  types.Report
	Outputs []Output
}

// Attention reports whether any output needs attention.
func (r *Result) Attention() bool {
	for _, o := range r.Outputs {
		if o.Attention {
			return true
		}
	}
	return false
}

// Runner is implemented by every report.
type Runner interface {
	Run(ctx context.Context) (*Result, error)
}

// =============================================================================
// ATTENTION
// =============================================================================

// surface logs every output needing attention and opens it in the viewer.
// The viewer is not waited on; a failure to start it is only logged.
func (e *Env) surface(logger *log.Entry, result *Result) {
	for _, o := range result.Outputs {
		if !o.Attention {
			continue
		}
		logger.Warnf("Attention flag set for %s please view", o.Path)
		if e.Viewer == nil {
			continue
		}
		if err := e.Viewer.Open(e.ViewerApp, o.Path); err != nil {
			logger.WithError(err).Warnf("Could not open %s", o.Path)
		}
	}
}
