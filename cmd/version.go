// =============================================================================
// COVID Trends - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version, build information and the configuration the reports would use.
//
// COMMAND USAGE:
//   covid-trends version
//
// OUTPUT:
//   COVID Trends
//   Version:    1.1.0
//   Build Date: 2020-07-10
//   Go Version: go1.24.11
//
//   Config:       config.yaml
//   Trust deaths: https://www.england.nhs.uk/statistics/... (config/trust_deaths.csv)
//   Pillar 1:     config/pillar1_configuration.csv
//   Pillar 2:     config/pillar2_configuration.csv
//   Reports to:   ./data
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/covid-trends/internal/config"
	"github.com/ginjaninja78/covid-trends/pkg/utils"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/covid-trends/cmd.Version=1.1.0'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "1.1.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long: `Display the application version, build date and Go runtime version,
followed by the data sources and files the reports would use.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			cfg = config.Default()
		}
		applyOverrides(cfg)
		writeVersion(cmd.OutOrStdout(), cfgFile, cfg)
	},
}

// writeVersion prints the build information and where each report reads
// its configuration from.
func writeVersion(w io.Writer, configFile string, cfg *config.MainConfig) {
	files := utils.NewFileManager(cfg.ConfigDir, cfg.DataDir, cfg.LogDir(), cfg.TempDir)

	fmt.Fprintln(w, "COVID Trends")
	fmt.Fprintf(w, "Version:    %s\n", Version)
	fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Config:       %s\n", configFile)
	fmt.Fprintf(w, "Trust deaths: %s (%s)\n", cfg.TrustDeaths.PageURL, files.ConfigPath(cfg.TrustDeaths.ConfigFile))
	fmt.Fprintf(w, "Pillar 1:     %s\n", files.ConfigPath(cfg.Pillar1.ConfigFile))
	fmt.Fprintf(w, "Pillar 2:     %s\n", files.ConfigPath(cfg.Pillar2.ConfigFile))
	fmt.Fprintf(w, "Reports to:   %s\n", cfg.DataDir)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
