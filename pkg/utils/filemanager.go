// =============================================================================
// COVID Trends - File Manager Utility
// =============================================================================
//
// This module owns the working directories of a run:
//
//   config/  report configuration files (read only)
//   data/    generated reports, one dated file per report per day
//   log/     the shared append-only log
//   temp     downloaded workbooks kept for inspection until the next run
//
// A run rewrites today's report files; files from earlier days are left
// untouched.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrIOUnavailable is returned when a required directory or file cannot be
// created, read or written.
var ErrIOUnavailable = errors.New("io unavailable")

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager resolves and prepares the working directories.
type FileManager struct {
	// ConfigDir holds the report configuration files.
	ConfigDir string

	// DataDir receives the generated reports.
	DataDir string

	// LogDir holds the log file.
	LogDir string

	// TempDir receives downloaded intermediate files.
	TempDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(configDir, dataDir, logDir, tempDir string) *FileManager {
	return &FileManager{
		ConfigDir: configDir,
		DataDir:   dataDir,
		LogDir:    logDir,
		TempDir:   tempDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the writable directories if they don't exist.
// The configuration directory is not created; it must be provided.
//
// RETURNS:
//   - An error wrapping ErrIOUnavailable if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.DataDir, fm.LogDir, fm.TempDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: failed to create directory %s: %v", ErrIOUnavailable, dir, err)
		}
	}
	return nil
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigPath resolves a configuration file name. Absolute paths and paths
// that already exist relative to the working directory are used as given.
func (fm *FileManager) ConfigPath(name string) string {
	if filepath.IsAbs(name) || filepath.Dir(name) != "." && FileExists(name) {
		return name
	}
	return filepath.Join(fm.ConfigDir, name)
}

// DataPath returns the path of a report file in the data directory.
func (fm *FileManager) DataPath(name string) string {
	return filepath.Join(fm.DataDir, name)
}

// TempPath returns the path of an intermediate file in the temp directory.
func (fm *FileManager) TempPath(name string) string {
	return filepath.Join(fm.TempDir, name)
}

// =============================================================================
// FILE OPERATIONS
// =============================================================================

// ReadConfig reads a configuration file from the configuration directory.
func (fm *FileManager) ReadConfig(name string) ([]byte, error) {
	path := fm.ConfigPath(name)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s: %v", ErrIOUnavailable, path, err)
	}
	return content, nil
}

// SaveTemp writes data to name in the temp directory, replacing any
// earlier copy, and returns the path written.
func (fm *FileManager) SaveTemp(name string, data []byte) (string, error) {
	if err := os.MkdirAll(fm.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create directory %s: %v", ErrIOUnavailable, fm.TempDir, err)
	}
	path := fm.TempPath(name)
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: could not write %s: %v", ErrIOUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: could not replace %s: %v", ErrIOUnavailable, path, err)
	}
	return path, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
