// =============================================================================
// COVID Trends - Report Commands
// =============================================================================
//
// COMMAND USAGE:
//   covid-trends trust-deaths [--file trust_deaths.csv]
//   covid-trends pillar1 [configuration file]
//   covid-trends pillar2 [--file pillar2_configuration.csv]
//   covid-trends all
//
// Configuration file names are resolved against config_dir unless they are
// absolute or already exist relative to the working directory.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/covid-trends/internal/reports"
	"github.com/ginjaninja78/covid-trends/internal/types"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// trustFile overrides the trust deaths configuration file.
var trustFile string

// pillar2File overrides the Pillar 2 configuration file.
var pillar2File string

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var trustDeathsCmd = &cobra.Command{
	Use:   "trust-deaths",
	Short: "Report the last COVID-19 death in each configured NHS trust",
	Long: `Downloads the NHS England "total announced deaths" workbook, selects the
trusts listed in the trust deaths configuration and writes
trust_deaths_YYYYMMDD.csv.

A trust whose last death was a week or less ago is logged as a warning and the
report is opened in the viewer.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReports(cmd, job{types.ReportTrustDeaths, func(a *app) (reports.Runner, error) {
			return a.trustDeaths(trustFile)
		}})
	},
}

var pillar1Cmd = &cobra.Command{
	Use:   "pillar1 [configuration file]",
	Short: "Report Pillar 1 cases and the infectious estimate per area",
	Long: `Downloads the Pillar 1 case series, selects the configured areas of the
configured tier and writes pillar1_<tier>_YYYYMMDD.csv with the number of
people still within the infectious window.

An area whose infectious estimate rose by at least the variation on the
latest day is logged as a warning and the report is opened in the viewer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := ""
		if len(args) == 1 {
			file = args[0]
		}
		return runReports(cmd, job{types.ReportPillar1, func(a *app) (reports.Runner, error) {
			return a.pillar1(file)
		}})
	},
}

var pillar2Cmd = &cobra.Command{
	Use:   "pillar2",
	Short: "Report Pillar 2 testing positivity and rolling deaths",
	Long: `Finds the current testing and death files on their landing pages and writes
pillar2_testing_YYYYMMDD.csv and pillar2_death_YYYYMMDD.csv.

A rising positivity percentage or rolling death count is logged as a warning
and the report is opened in the viewer.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReports(cmd, job{types.ReportPillar2, func(a *app) (reports.Runner, error) {
			return a.pillar2(pillar2File)
		}})
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every report",
	Long: `Runs trust-deaths, pillar1 and pillar2 one after the other with their default
configuration files. A failing report does not stop the others.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReports(cmd,
			job{types.ReportTrustDeaths, func(a *app) (reports.Runner, error) { return a.trustDeaths("") }},
			job{types.ReportPillar1, func(a *app) (reports.Runner, error) { return a.pillar1("") }},
			job{types.ReportPillar2, func(a *app) (reports.Runner, error) { return a.pillar2("") }},
		)
	},
}

// runReports sets up the app and runs the jobs.
func runReports(cmd *cobra.Command, jobs ...job) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	return a.run(cmd.Context(), jobs...)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(trustDeathsCmd, pillar1Cmd, pillar2Cmd, allCmd)

	trustDeathsCmd.Flags().StringVar(
		&trustFile,
		"file",
		"",
		"Trust deaths configuration file (default from config.yaml)",
	)

	pillar2Cmd.Flags().StringVar(
		&pillar2File,
		"file",
		"",
		"Pillar 2 configuration file (default from config.yaml)",
	)
}
