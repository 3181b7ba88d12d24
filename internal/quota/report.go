package quota

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveReport writes the analysis as an indented JSON document.
func SaveReport(a *Analysis, path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize quota analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write quota report %s: %w", path, err)
	}
	return nil
}
