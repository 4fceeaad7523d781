// Package artifacts persists and publishes the evidence of a verification run.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arnavsurve/smokeshot/pkg/core"
	"github.com/arnavsurve/smokeshot/pkg/fileutil"
)

// WriteReport writes outcome as indented JSON to path, replacing any previous report.
func WriteReport(path string, outcome *core.Outcome) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}
	if err := fileutil.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing run report %q: %w", path, err)
	}
	return nil
}
