// =============================================================================
// COVID Trends - Command Plumbing
// =============================================================================
//
// Every report command goes through the same steps:
//
//   1. Load config.yaml and apply the flag / environment overrides
//   2. Set up the log file and the working directories
//   3. Read the report's own configuration file
//   4. Run the report(s) one after the other
//   5. Print a summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/covid-trends/internal/config"
	"github.com/ginjaninja78/covid-trends/internal/correction"
	"github.com/ginjaninja78/covid-trends/internal/fetch"
	"github.com/ginjaninja78/covid-trends/internal/logging"
	"github.com/ginjaninja78/covid-trends/internal/reports"
	"github.com/ginjaninja78/covid-trends/internal/types"
	"github.com/ginjaninja78/covid-trends/internal/viewer"
	"github.com/ginjaninja78/covid-trends/pkg/utils"
)

// app holds everything a report command needs.
type app struct {
	cfg    *config.MainConfig
	sink   *logging.Sink
	env    *reports.Env
	logger *log.Entry
}

// newApp loads the configuration and prepares logging and directories.
func newApp() (*app, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	applyOverrides(cfg)
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = "covid-trends/" + Version
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	files := utils.NewFileManager(cfg.ConfigDir, cfg.DataDir, cfg.LogDir(), cfg.TempDir)
	dirErr := files.EnsureDirectories()

	sink, err := logging.Setup(cfg.LogFile, cfg.LogLevel, os.Stdout)
	logger := sink.Entry("covid-trends")
	if err != nil {
		logger.WithError(err).Warn("Logging to the console only")
	}
	if dirErr != nil {
		sink.Close()
		return nil, dirErr
	}

	var v viewer.Viewer = viewer.Exec{}
	if cfg.DisableViewer {
		v = viewer.Nop{}
	}

	logger.Debugf("Main configuration %s, run %s", cfgFile, sink.RunID)

	return &app{
		cfg:  cfg,
		sink: sink,
		env: &reports.Env{
			Fetcher:   fetch.New(cfg.HTTP.Timeout, cfg.HTTP.UserAgent),
			Viewer:    v,
			ViewerApp: cfg.Viewer,
			Files:     files,
			Logger:    logger,
		},
		logger: logger,
	}, nil
}

// applyOverrides layers the flags and COVIDTRENDS_* variables over the
// values read from config.yaml.
func applyOverrides(cfg *config.MainConfig) {
	if s := viper.GetString("data_dir"); s != "" {
		cfg.DataDir = s
	}
	if s := viper.GetString("config_dir"); s != "" {
		cfg.ConfigDir = s
	}
	if s := viper.GetString("temp_dir"); s != "" {
		cfg.TempDir = s
	}
	if s := viper.GetString("log_file"); s != "" {
		cfg.LogFile = s
	}
	if s := viper.GetString("log_level"); s != "" {
		cfg.LogLevel = s
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if s := viper.GetString("viewer"); s != "" {
		cfg.Viewer = s
	}
	if viper.GetBool("disable_viewer") {
		cfg.DisableViewer = true
	}
}

func (a *app) close() {
	a.sink.Close()
}

// =============================================================================
// REPORT CONSTRUCTION
// =============================================================================

// readConfig reads a report configuration file, logging what was read.
func (a *app) readConfig(name string) ([]byte, error) {
	a.logger.Infof("Reading configuration file %s", a.env.Files.ConfigPath(name))
	return a.env.Files.ReadConfig(name)
}

func (a *app) trustDeaths(file string) (reports.Runner, error) {
	if file == "" {
		file = a.cfg.TrustDeaths.ConfigFile
	}
	content, err := a.readConfig(file)
	if err != nil {
		return nil, err
	}
	cfg, err := config.ParseTrustDeaths(content)
	if err != nil {
		return nil, err
	}
	return &reports.TrustDeaths{Env: a.env, Settings: a.cfg.TrustDeaths, Config: cfg}, nil
}

func (a *app) pillar1(file string) (reports.Runner, error) {
	if file == "" {
		file = a.cfg.Pillar1.ConfigFile
	}
	content, err := a.readConfig(file)
	if err != nil {
		return nil, err
	}
	cfg, err := config.ParsePillar1(content, a.cfg.Pillar1.DefaultVariation)
	if err != nil {
		return nil, err
	}
	return &reports.Pillar1{Env: a.env, Config: cfg}, nil
}

func (a *app) pillar2(file string) (reports.Runner, error) {
	if file == "" {
		file = a.cfg.Pillar2.ConfigFile
	}
	content, err := a.readConfig(file)
	if err != nil {
		return nil, err
	}
	cfg, err := config.ParsePillar2(content)
	if err != nil {
		for _, s := range cfg.Skipped {
			a.logger.Warnf("Line %d of %s was skipped: %s", s.Line, file, s.Reason)
		}
		return nil, err
	}
	return &reports.Pillar2{Env: a.env, Config: cfg, Corrections: correction.Testing()}, nil
}

// =============================================================================
// RUNNING
// =============================================================================

// job is one report to run; build is deferred so a bad configuration file
// only fails its own report.
type job struct {
	report types.Report
	build  func(a *app) (reports.Runner, error)
}

// run executes the jobs one after the other and prints a summary. It returns
// an error when any of them failed.
func (a *app) run(ctx context.Context, jobs ...job) error {
	startTime := time.Now()
	a.logger.Info("Started")

	var failed []string
	for _, j := range jobs {
		result, err := a.runJob(ctx, j)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", j.report, err))
			a.logger.WithError(err).Errorf("Report %s failed", j.report)
			fmt.Printf("  ✗ %s: %v\n", j.report, err)
			continue
		}
		for _, o := range result.Outputs {
			mark := "✓"
			if o.Attention {
				mark = "!"
			}
			fmt.Printf("  %s %s -> %s (%d rows)\n", mark, j.report, filepath.Base(o.Path), o.Rows)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Reports Complete ===")
	fmt.Printf("Reports:         %d\n", len(jobs))
	fmt.Printf("Successful:      %d\n", len(jobs)-len(failed))
	fmt.Printf("Errors:          %d\n", len(failed))
	fmt.Printf("Time elapsed:    %s\n", elapsed.Round(time.Millisecond))

	a.logger.Info("Completed")
	if len(failed) > 0 {
		return errors.New(joinFailures(failed))
	}
	return nil
}

func (a *app) runJob(ctx context.Context, j job) (*reports.Result, error) {
	runner, err := j.build(a)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

func joinFailures(failed []string) string {
	if len(failed) == 1 {
		return failed[0]
	}
	return fmt.Sprintf("%d reports failed: %v", len(failed), failed)
}
