// =============================================================================
// COVID Trends - External Viewer
// =============================================================================
//
// When a report raises its attention flag the generated CSV file is opened
// in a spreadsheet application. The viewer is started and left running; the
// report does not wait for it or check how it exits.
//
// =============================================================================

package viewer

import (
	"errors"
	"os/exec"
	"runtime"
)

// Viewer opens a file in an external application.
type Viewer interface {
	Open(app, path string) error
}

// Exec starts the viewer as a separate process.
type Exec struct {
	// GOOS selects the platform opener. Empty means runtime.GOOS.
	GOOS string
}

// Open starts app with path as its only argument. When app is empty the
// platform's default opener is used.
func (e Exec) Open(app, path string) error {
	if path == "" {
		return errors.New("viewer: no file to open")
	}
	return Command(e.goos(), app, path).Start()
}

func (e Exec) goos() string {
	if e.GOOS != "" {
		return e.GOOS
	}
	return runtime.GOOS
}

// Command builds the command that opens path on the given platform.
func Command(goos, app, path string) *exec.Cmd {
	if app != "" {
		return exec.Command(app, path)
	}

	switch goos {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// Nop is a Viewer that opens nothing. It is used when viewing is disabled.
type Nop struct{}

// Open does nothing.
func (Nop) Open(string, string) error { return nil }
