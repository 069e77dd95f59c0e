// =============================================================================
// COVID Trends - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every report is a
// subcommand of it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (covid-trends)
//   ├── trustDeathsCmd (covid-trends trust-deaths)
//   ├── pillar1Cmd     (covid-trends pillar1 [configuration file])
//   ├── pillar2Cmd     (covid-trends pillar2)
//   ├── allCmd         (covid-trends all)
//   └── versionCmd     (covid-trends version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-level)
//   2. Binding flags and COVIDTRENDS_* environment variables through Viper
//   3. Loading config.yaml and setting up logging (see app.go)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// envPrefix is the prefix of the environment variables read by Viper,
// e.g. COVIDTRENDS_LOG_LEVEL or COVIDTRENDS_DATA_DIR.
const envPrefix = "COVIDTRENDS"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "covid-trends",
	Short: "COVID Trends - daily COVID-19 reports with trend alerts",

	Long: `COVID Trends downloads the published COVID-19 statistics, extracts the
trusts and areas you are interested in, derives rolling figures from them and
writes a dated CSV report for each run.

Reports:
  trust-deaths   NHS England deaths by trust, flags a death in the last week
  pillar1        Pillar 1 cases by area with an infectious estimate
  pillar2        Pillar 2 testing positivity and rolling deaths

A report whose latest figures are rising is logged as a warning and opened in
the configured viewer.

Example Usage:
  covid-trends all                               # Run every report
  covid-trends pillar1 my_areas.csv              # Use another Pillar 1 configuration
  covid-trends pillar2 --config ./prod.yaml      # Use a custom configuration file
  COVIDTRENDS_LOG_LEVEL=debug covid-trends trust-deaths`,

	// SilenceUsage keeps a failed download from printing the usage text.
	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().String(
		"log-level",
		"",
		"Log level (debug, info, warn, error); overrides config.yaml",
	)

	rootCmd.PersistentFlags().String(
		"data-dir",
		"",
		"Directory receiving the reports; overrides config.yaml",
	)

	rootCmd.PersistentFlags().Bool(
		"no-viewer",
		false,
		"Never open a report, even when it needs attention",
	)

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("disable_viewer", rootCmd.PersistentFlags().Lookup("no-viewer"))
}

// initConfig binds the environment. The YAML file itself is read by
// config.LoadMainConfig so that its defaults and validation apply; Viper only
// supplies the overrides.
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("config_dir")
	viper.BindEnv("temp_dir")
	viper.BindEnv("log_file")
	viper.BindEnv("viewer")
}
