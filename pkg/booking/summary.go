package booking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteSummary writes res as indented JSON to path, creating parent directories.
func WriteSummary(path string, res *Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}
