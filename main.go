// =============================================================================
// COVID Trends - Main Entry Point
// =============================================================================
//
// This is the main entry point for the COVID Trends CLI application. It
// delegates command execution to the cmd package.
//
// USAGE:
//   covid-trends trust-deaths   - Last death per configured NHS trust
//   covid-trends pillar1        - Pillar 1 cases and infectious estimate
//   covid-trends pillar2        - Pillar 2 testing positivity and deaths
//   covid-trends all            - Every report, one after the other
//   covid-trends version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : report logic (not for external import)
//   - pkg/           : shared utilities
//   - config/        : the report configuration files
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/covid-trends/cmd"
)

func main() {
	cmd.Execute()
}
