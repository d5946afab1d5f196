// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"sort"
	"time"
)

// PR lifecycle states as reported by the GitHub API.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// Review states relevant to the aggregation; anything else is counted
// only toward the review total.
const (
	ReviewApproved         = "APPROVED"
	ReviewChangesRequested = "CHANGES_REQUESTED"
)

// PullRequest is one pull request as observed at fetch time, tagged with
// its owning repository. MergedAt and ClosedAt are nil unless the PR was
// merged/closed; a merged PR is always closed.
type PullRequest struct {
	Number     int
	Repository string
	Author     string
	State      string
	CreatedAt  time.Time
	MergedAt   *time.Time
	ClosedAt   *time.Time
	UpdatedAt  time.Time
}

// Comment is a discussion or review comment; only counts are consumed
// downstream.
type Comment struct {
	Author    string
	CreatedAt time.Time
}

// Review is a formal review event on a pull request.
type Review struct {
	State       string
	SubmittedAt time.Time
}

// PRDetail holds the per-PR discussion/review counts derived from three
// independent fetches. The zero value doubles as the record for a PR
// whose detail fetch failed.
type PRDetail struct {
	DiscussionComments int
	ReviewComments     int
	TotalComments      int
	ReviewCount        int
	Approvals          int
	ChangesRequested   int
	// FirstReviewedAt is the earliest review submission time, or the
	// zero time when the PR has no reviews.
	FirstReviewedAt time.Time
}

// ContributorMetrics accumulates one author's activity across all
// repositories examined during a run.
type ContributorMetrics struct {
	Author        string
	NewPRs        int
	MergedPRs     int
	OpenPRs       int
	ClosedPRs     int
	TotalComments int
	// MergedPRCount and TotalMergeTime (fractional hours) back the
	// average-time-to-merge; every counted merge contributes exactly
	// one sample, so MergedPRCount always equals MergedPRs.
	MergedPRCount  int
	TotalMergeTime float64
}

// AvgTimeToMerge returns the contributor's average merge time in hours,
// or 0 when no merges were counted.
func (c *ContributorMetrics) AvgTimeToMerge() float64 {
	if c.MergedPRCount == 0 {
		return 0
	}
	return c.TotalMergeTime / float64(c.MergedPRCount)
}

// AvgComments returns the contributor's average comments per counted PR.
// Open PRs are excluded from the denominator.
func (c *ContributorMetrics) AvgComments() float64 {
	counted := c.NewPRs + c.MergedPRs + c.ClosedPRs
	if counted == 0 {
		return 0
	}
	return float64(c.TotalComments) / float64(counted)
}

// AggregateMetrics is the run-level reduction: global counters plus the
// per-contributor breakdown. Averages are derived on demand, never
// stored pre-divided.
type AggregateMetrics struct {
	NewPRs        int
	MergedPRs     int
	OpenPRs       int
	ClosedPRs     int
	TotalComments int

	MergedPRCount  int
	TotalMergeTime float64
	// MergeTimeSamples holds each counted merge's duration in hours,
	// used for the median statistic in the weekly summary.
	MergeTimeSamples []float64

	// ReviewedPRCount and TotalFirstReviewTime back the bounded-mode
	// average time to first review.
	ReviewedPRCount      int
	TotalFirstReviewTime float64

	Contributors map[string]*ContributorMetrics
}

// NewAggregateMetrics returns an empty metrics record with an
// initialized contributor map.
func NewAggregateMetrics() *AggregateMetrics {
	return &AggregateMetrics{Contributors: make(map[string]*ContributorMetrics)}
}

// Contributor returns the record for the given author, creating it on
// first observation.
func (m *AggregateMetrics) Contributor(author string) *ContributorMetrics {
	c, ok := m.Contributors[author]
	if !ok {
		c = &ContributorMetrics{Author: author}
		m.Contributors[author] = c
	}
	return c
}

// AvgTimeToMerge returns the global average merge time in hours, or 0
// when nothing was merged.
func (m *AggregateMetrics) AvgTimeToMerge() float64 {
	if m.MergedPRCount == 0 {
		return 0
	}
	return m.TotalMergeTime / float64(m.MergedPRCount)
}

// AvgTimeToFirstReview returns the average hours from PR creation to
// the earliest review, over counted PRs that received at least one
// review. Returns 0 when no such PR exists.
func (m *AggregateMetrics) AvgTimeToFirstReview() float64 {
	if m.ReviewedPRCount == 0 {
		return 0
	}
	return m.TotalFirstReviewTime / float64(m.ReviewedPRCount)
}

// RankedContributors returns the contributors ordered by the report
// ranking policy: merged PRs descending, then new PRs, then open PRs.
// Fully tied contributors keep their relative order under a stable sort.
func (m *AggregateMetrics) RankedContributors() []*ContributorMetrics {
	ranked := make([]*ContributorMetrics, 0, len(m.Contributors))
	for _, c := range m.Contributors {
		ranked = append(ranked, c)
	}
	// Pre-sort by author so the stable ranking below is deterministic
	// regardless of map iteration order.
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Author < ranked[j].Author
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.MergedPRs != b.MergedPRs {
			return a.MergedPRs > b.MergedPRs
		}
		if a.NewPRs != b.NewPRs {
			return a.NewPRs > b.NewPRs
		}
		return a.OpenPRs > b.OpenPRs
	})
	return ranked
}
