// =============================================================================
// COVID Trends - Logging
// =============================================================================
//
// All reports share one append-only log file (log/log.txt by default). Each
// entry carries:
//
//   - a timestamp
//   - the level (INFO, WARNING or ERROR in the report's own wording;
//     logrus Info, Warn and Error here)
//   - the module that wrote it, as the formatter prefix
//   - the run id, so the lines of one invocation can be picked out
//
// Entries are also echoed to stdout.
//
// =============================================================================

package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// ErrLogUnavailable is returned by Setup when the log file cannot be opened.
// The returned Sink still works and writes to the console only.
var ErrLogUnavailable = errors.New("log file unavailable")

// Sink owns the process-wide logger and its log file.
type Sink struct {
	Logger *log.Logger
	RunID  string

	file *os.File
}

// Setup creates the logger.
//
// PARAMETERS:
//   - path: the log file, created (with its directory) if missing and
//     always appended to
//   - level: a logrus level name; unknown names select debug
//   - console: where entries are echoed, usually os.Stdout; nil disables it
//
// RETURNS:
//   - A usable Sink, even on error
//   - An error wrapping ErrLogUnavailable when the file could not be opened
func Setup(path, level string, console io.Writer) (*Sink, error) {
	logger := log.New()

	logLevel, err := log.ParseLevel(level)
	if err != nil {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(logLevel)
	}

	logger.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
		DisableColors:   true,
	})

	sink := &Sink{Logger: logger, RunID: uuid.New().String()}

	writers := make([]io.Writer, 0, 2)
	if console != nil {
		writers = append(writers, console)
	}

	var setupErr error
	if path != "" {
		file, err := openAppend(path)
		if err != nil {
			setupErr = fmt.Errorf("%w: %v", ErrLogUnavailable, err)
		} else {
			sink.file = file
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return sink, setupErr
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Entry returns a logger for one module.
func (s *Sink) Entry(module string) *log.Entry {
	return Module(s.Logger, module).WithField("run", s.RunID)
}

// Close closes the log file.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Module returns an entry of logger prefixed with the module name.
func Module(logger *log.Logger, module string) *log.Entry {
	return logger.WithField("prefix", module)
}
