// Package report renders aggregated metrics as markdown documents.
// Rendering is a pure function of its inputs: the same metrics always
// produce byte-identical text.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/pr-weekly-report/internal/domain"
)

const noActivitySentence = "No pull request activity in this period."

// RenderRangeReport renders the bounded-range report for one repository.
// Zero-valued averages render as "N/A" in this mode.
func RenderRangeReport(repo string, m *domain.AggregateMetrics, start, end time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Pull Request Report: %s\n\n", repo)
	fmt.Fprintf(&b, "Period: %s - %s\n\n", start.Format("1/2/2006"), end.Format("1/2/2006"))
	fmt.Fprintf(&b, "- New PRs: %d\n", m.NewPRs)
	fmt.Fprintf(&b, "- Merged PRs: %d\n", m.MergedPRs)
	fmt.Fprintf(&b, "- Open PRs: %d\n", m.OpenPRs)
	fmt.Fprintf(&b, "- Average Time to Merge (h): %s\n", hoursOrNA(m.AvgTimeToMerge()))
	fmt.Fprintf(&b, "- Average Time to First Review (h): %s\n\n", hoursOrNA(m.AvgTimeToFirstReview()))

	if len(m.Contributors) == 0 {
		b.WriteString(noActivitySentence)
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("| Contributor | New PRs | Merged PRs | Open PRs | Comments |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range contributorsByName(m) {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n",
			c.Author, c.NewPRs, c.MergedPRs, c.OpenPRs, c.TotalComments)
	}
	return b.String()
}

// RenderWeeklyReport renders the rolling-week report across all
// configured repositories, with contributors in ranked order.
// Zero-valued averages render as "0.0" in this mode.
func RenderWeeklyReport(owner string, repos []string, m *domain.AggregateMetrics, window domain.Window) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Weekly Pull Request Report (%s - %s)\n\n",
		window.Start.Format("1/2/2006"), window.End.Format("1/2/2006"))
	fmt.Fprintf(&b, "Pull request activity for the %s repositories over the trailing week.\n", owner)
	b.WriteString("Contributors are ranked by merged PRs, then new PRs, then open PRs.\n\n")

	b.WriteString("| Contributor | New PRs | Merged PRs | Open PRs | Closed PRs | Avg Time to Merge (h) | Avg Comments |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, c := range m.RankedContributors() {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %.1f | %.1f |\n",
			c.Author, c.NewPRs, c.MergedPRs, c.OpenPRs, c.ClosedPRs,
			c.AvgTimeToMerge(), c.AvgComments())
	}

	b.WriteString("\n## Summary Statistics\n\n")
	fmt.Fprintf(&b, "- Total New PRs: %d\n", m.NewPRs)
	fmt.Fprintf(&b, "- Total Merged PRs: %d\n", m.MergedPRs)
	fmt.Fprintf(&b, "- Total Open PRs: %d\n", m.OpenPRs)
	fmt.Fprintf(&b, "- Total Closed PRs: %d\n", m.ClosedPRs)
	fmt.Fprintf(&b, "- Total Comments: %d\n", m.TotalComments)
	fmt.Fprintf(&b, "- Average Time to Merge (h): %.1f\n", m.AvgTimeToMerge())
	fmt.Fprintf(&b, "- Median Time to Merge (h): %.1f\n", medianHours(m.MergeTimeSamples))
	fmt.Fprintf(&b, "- Repositories: %s\n", strings.Join(repos, ", "))
	return b.String()
}

// hoursOrNA formats a bounded-mode average: exactly zero means no data.
func hoursOrNA(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", v)
}

func medianHours(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	median, err := stats.Median(samples)
	if err != nil {
		return 0
	}
	return median
}

// contributorsByName orders contributors alphabetically; the bounded
// report has no ranking policy but must render deterministically.
func contributorsByName(m *domain.AggregateMetrics) []*domain.ContributorMetrics {
	out := make([]*domain.ContributorMetrics, 0, len(m.Contributors))
	for _, c := range m.Contributors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Author < out[j].Author })
	return out
}
