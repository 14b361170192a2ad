package recon

import (
	"fmt"
	"strings"

	"github.com/sells-group/posm-recon/internal/model"
)

// FormatReport renders a completion result as a human-readable summary.
func FormatReport(result *model.CompletionResult) string {
	var b strings.Builder

	b.WriteString("# POSM Completion Report\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Assignments evaluated: %d\n", result.Global.Assignments)
	fmt.Fprintf(&b, "- POSM required: %d, confirmed: %d\n", result.Global.RequiredTotal, result.Global.CompletedTotal)
	fmt.Fprintf(&b, "- Global completion: %.1f%%\n", result.Global.CompletionRate)
	fmt.Fprintf(&b, "- Cap warnings: %d\n", len(result.CapWarnings))
	fmt.Fprintf(&b, "- Orphaned submissions: %d\n", len(result.Orphans))
	fmt.Fprintf(&b, "- Invalid submissions excluded: %d\n", result.InvalidSubs)
	fmt.Fprintf(&b, "- Malformed records skipped: %d\n\n", result.SkippedRecords)

	b.WriteString("## Stores\n")
	if len(result.PerStore) == 0 {
		b.WriteString("No assigned stores.\n\n")
	} else {
		for _, s := range result.PerStore {
			fmt.Fprintf(&b, "- %s: %.1f%% (%d/%d across %d models)\n",
				s.Key, s.CompletionRate, s.CompletedTotal, s.RequiredTotal, s.Assignments)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Regions\n")
	for _, s := range result.PerRegion {
		fmt.Fprintf(&b, "- %s: %.1f%% (%d/%d)\n",
			s.Key, s.CompletionRate, s.CompletedTotal, s.RequiredTotal)
	}

	if len(result.CapWarnings) > 0 {
		b.WriteString("\n## Cap Warnings\n")
		for _, w := range result.CapWarnings {
			fmt.Fprintf(&b, "- %s / %s: confirmed %d exceeds required %d\n",
				w.StoreID, w.Model, w.Raw, w.Required)
		}
	}

	return b.String()
}
