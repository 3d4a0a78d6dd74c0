package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"prepfiles/internal/metadata"
	"prepfiles/internal/renamer"
)

// Summary aggregates the per-stage reports of one run. A stage that was not
// selected leaves its report nil.
type Summary struct {
	Root       string
	Rename     *renamer.ExecutionReport
	Tagging    *metadata.TaggingReport
	ScanErrors []error       // Artist or album directories that could not be read
	Duration   time.Duration // Total processing time
}

// HasErrors returns true if any stage reported a failure.
func (s *Summary) HasErrors() bool {
	if len(s.ScanErrors) > 0 {
		return true
	}
	if s.Rename != nil && s.Rename.HasFailures() {
		return true
	}
	return s.Tagging != nil && s.Tagging.HasFailures()
}

// PrintSummary returns a formatted summary string.
func (s *Summary) PrintSummary() string {
	var lines []string

	if r := s.Rename; r != nil {
		if r.Declined {
			lines = append(lines, "Renames: declined")
		} else {
			lines = append(lines, fmt.Sprintf(
				"Renames: %d applied, %d unchanged, %d skipped, %d collisions, %d errors",
				r.Applied, r.Unchanged, r.Skipped, r.Collisions, r.Failed+len(s.ScanErrors)))
		}
	}
	if t := s.Tagging; t != nil {
		lines = append(lines, fmt.Sprintf(
			"Tags: %d updated, %d unchanged, %d skipped, %d errors",
			t.Tagged, t.Unchanged, t.Skipped, t.Failed))
	}

	return strings.Join(lines, "\n")
}
