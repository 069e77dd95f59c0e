// =============================================================================
// COVID Trends - Configuration Module
// =============================================================================
//
// This module loads the two layers of configuration:
//
//   1. Main Config (config.yaml): directories, logging, the viewer, HTTP
//      settings and the fixed source details of each report.
//   2. Report Configs (config/*.csv): the user's selection of trusts, areas
//      and series, in the comma separated formats described in sources.go.
//
// The main config file is optional. Every setting has a default, and
// environment variables / flags are layered on top in cmd/root.go.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/covid-trends/internal/validation"
	"github.com/ginjaninja78/covid-trends/internal/xlsxparser"
)

// ErrConfigurationInvalid is returned when a configuration value is missing
// or malformed.
var ErrConfigurationInvalid = errors.New("configuration invalid")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// DataDir receives the dated report files.
	// Default: "./data"
	DataDir string `yaml:"data_dir" validate:"required"`

	// ConfigDir holds the report configuration files.
	// Default: "./config"
	ConfigDir string `yaml:"config_dir" validate:"required"`

	// TempDir receives downloaded workbooks.
	// Default: "<os temp dir>/covid-trends"
	TempDir string `yaml:"temp_dir" validate:"required"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the shared, append-only log.
	// Default: "./log/log.txt"
	LogFile string `yaml:"log_file" validate:"required"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "warning", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn warning error"`

	// =========================================================================
	// VIEWER SETTINGS
	// =========================================================================

	// Viewer is the application used to open a report that needs attention.
	// Empty uses the platform's default opener.
	Viewer string `yaml:"viewer"`

	// DisableViewer stops reports from being opened at all.
	DisableViewer bool `yaml:"disable_viewer"`

	// =========================================================================
	// HTTP SETTINGS
	// =========================================================================

	HTTP HTTPConfig `yaml:"http"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	TrustDeaths TrustDeathsSettings `yaml:"trust_deaths"`
	Pillar1     Pillar1Settings     `yaml:"pillar1"`
	Pillar2     Pillar2Settings     `yaml:"pillar2"`
}

// HTTPConfig controls downloads.
type HTTPConfig struct {
	// Timeout bounds each request.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
}

// TrustDeathsSettings describes where the trust deaths workbook comes from.
type TrustDeathsSettings struct {
	// ConfigFile lists the trusts to report on.
	// Default: "trust_deaths.csv"
	ConfigFile string `yaml:"config_file" validate:"required"`

	// PageURL is the NHS England statistics page linking to the workbook.
	PageURL string `yaml:"page_url" validate:"required,url"`

	// LinkPattern finds the workbook URL on PageURL.
	LinkPattern string `yaml:"link_pattern" validate:"required"`

	// Workbook locates the data inside the downloaded workbook.
	Workbook xlsxparser.SheetLayout `yaml:"workbook"`

	// DownloadFile is the name the workbook is saved under in TempDir.
	// Default: "trust_deaths.xlsx"
	DownloadFile string `yaml:"download_file" validate:"required"`

	// RecentDays raises attention when a trust's last death is no older.
	// Default: 7
	RecentDays int `yaml:"recent_days" validate:"gt=0"`
}

// Pillar1Settings holds the Pillar 1 defaults.
type Pillar1Settings struct {
	// ConfigFile holds the Pillar 1 configuration line.
	// Default: "pillar1_configuration.csv"
	ConfigFile string `yaml:"config_file" validate:"required"`

	// DefaultVariation is used when the configuration line has none.
	// Default: 5
	DefaultVariation float64 `yaml:"default_variation" validate:"gte=0"`
}

// Pillar2Settings holds the Pillar 2 defaults.
type Pillar2Settings struct {
	// ConfigFile holds the Pillar 2 configuration lines.
	// Default: "pillar2_configuration.csv"
	ConfigFile string `yaml:"config_file" validate:"required"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultTrustDeathsPage is the NHS England COVID-19 daily deaths page.
	DefaultTrustDeathsPage = "https://www.england.nhs.uk/statistics/statistical-work-areas/covid-19-daily-deaths/"

	// DefaultTrustDeathsPattern matches the "total announced deaths" workbook link.
	DefaultTrustDeathsPattern = `https://www.england.nhs.uk/statistics/wp-content/uploads/sites/2/\d{4}/\d{2}/COVID-19-total-announced-deaths-\d*-.*-\d{4}.*.xlsx`
)

// Default returns a MainConfig with every default applied.
func Default() *MainConfig {
	cfg := newMainConfig()
	applyMainConfigDefaults(cfg)
	return cfg
}

// newMainConfig presets the options whose zero value is meaningful, so
// they are set before the YAML is read instead of after.
func newMainConfig() *MainConfig {
	return &MainConfig{
		Pillar1: Pillar1Settings{DefaultVariation: 5},
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.DataDir == "" {
		config.DataDir = "./data"
	}
	if config.ConfigDir == "" {
		config.ConfigDir = "./config"
	}
	if config.TempDir == "" {
		config.TempDir = filepath.Join(os.TempDir(), "covid-trends")
	}
	if config.LogFile == "" {
		config.LogFile = "./log/log.txt"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.HTTP.Timeout == 0 {
		config.HTTP.Timeout = 60 * time.Second
	}

	td := &config.TrustDeaths
	if td.ConfigFile == "" {
		td.ConfigFile = "trust_deaths.csv"
	}
	if td.PageURL == "" {
		td.PageURL = DefaultTrustDeathsPage
	}
	if td.LinkPattern == "" {
		td.LinkPattern = DefaultTrustDeathsPattern
	}
	if td.Workbook.Sheet == "" {
		td.Workbook = xlsxparser.DefaultTrustDeathsLayout()
	}
	if td.DownloadFile == "" {
		td.DownloadFile = "trust_deaths.xlsx"
	}
	if td.RecentDays == 0 {
		td.RecentDays = 7
	}

	if config.Pillar1.ConfigFile == "" {
		config.Pillar1.ConfigFile = "pillar1_configuration.csv"
	}

	if config.Pillar2.ConfigFile == "" {
		config.Pillar2.ConfigFile = "pillar2_configuration.csv"
	}
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A missing file
//     is not an error; the defaults are used.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or a value is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config := newMainConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config file: %v", ErrConfigurationInvalid, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyMainConfigDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every field of the configuration.
func (c *MainConfig) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigurationInvalid, err)
	}
	return nil
}

// LogDir is the directory holding the log file.
func (c *MainConfig) LogDir() string {
	return filepath.Dir(c.LogFile)
}
