// =============================================================================
// COVID Trends - Report Writer
// =============================================================================

package report

import (
	"bufio"
	"fmt"
	"os"
)

// Write creates (or truncates) the file at path and writes every line
// followed by a newline.
//
// RETURNS:
//   - An error if the file cannot be created or written. A partially written
//     file is left in place so the failure can be inspected.
func Write(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	writer := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			file.Close()
			return fmt.Errorf("failed to write report file: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush report file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return nil
}
