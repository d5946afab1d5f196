package usecase

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/pr-weekly-report/internal/domain"
	"github.com/naka-gawa/pr-weekly-report/internal/gateway"
)

// windowRules parameterize the shared accumulator. The two report modes
// differ only in which PRs are considered at all (include), what counts
// as new, and how merges and closes are gated on the window.
type windowRules struct {
	include  func(domain.PullRequest) bool
	isNew    func(domain.PullRequest) bool
	mergedIn func(domain.PullRequest) bool
	closedIn func(domain.PullRequest) bool
}

// boundedRules cover the ad-hoc [start, end] report: membership is
// decided solely by creation time, and PRs created outside the range
// contribute to no counter. Closed-without-merge is not tracked.
func boundedRules(start, end time.Time) windowRules {
	created := func(pr domain.PullRequest) bool {
		return domain.InRange(pr.CreatedAt, start, end)
	}
	return windowRules{
		include:  created,
		isNew:    created,
		mergedIn: func(pr domain.PullRequest) bool { return pr.MergedAt != nil },
		closedIn: func(domain.PullRequest) bool { return false },
	}
}

// rollingRules cover the weekly report: every fetched PR is examined,
// open PRs reflect the present-moment backlog regardless of the window,
// and merges/closes count only when they happened after the window start.
func rollingRules(start time.Time) windowRules {
	return windowRules{
		include: func(domain.PullRequest) bool { return true },
		isNew: func(pr domain.PullRequest) bool {
			return domain.SinceStart(pr.CreatedAt, start)
		},
		mergedIn: func(pr domain.PullRequest) bool {
			return pr.MergedAt != nil && domain.SinceStart(*pr.MergedAt, start)
		},
		closedIn: func(pr domain.PullRequest) bool {
			return pr.MergedAt == nil && pr.ClosedAt != nil && domain.SinceStart(*pr.ClosedAt, start)
		},
	}
}

// reduce folds pull requests and their details into aggregate metrics.
// It is a pure function of its inputs; details are looked up by
// repository and number, and a missing entry reads as the zero record.
// The open / merged / closed branches are mutually exclusive per PR.
func reduce(prs []domain.PullRequest, details map[string]map[int]domain.PRDetail, r windowRules) *domain.AggregateMetrics {
	m := domain.NewAggregateMetrics()
	for _, pr := range prs {
		if !r.include(pr) {
			continue
		}
		c := m.Contributor(pr.Author)
		d := details[pr.Repository][pr.Number]

		if r.isNew(pr) {
			m.NewPRs++
			c.NewPRs++
			if d.ReviewCount > 0 && !d.FirstReviewedAt.IsZero() {
				m.ReviewedPRCount++
				m.TotalFirstReviewTime += d.FirstReviewedAt.Sub(pr.CreatedAt).Hours()
			}
		}

		switch {
		case pr.State == domain.StateOpen:
			m.OpenPRs++
			c.OpenPRs++
		case r.mergedIn(pr):
			hours := pr.MergedAt.Sub(pr.CreatedAt).Hours()
			m.MergedPRs++
			c.MergedPRs++
			m.MergedPRCount++
			c.MergedPRCount++
			m.TotalMergeTime += hours
			c.TotalMergeTime += hours
			m.MergeTimeSamples = append(m.MergeTimeSamples, hours)
		case r.closedIn(pr):
			m.ClosedPRs++
			c.ClosedPRs++
		}

		c.TotalComments += d.TotalComments
		m.TotalComments += d.TotalComments
	}
	return m
}

// Aggregator is the use case for computing pull-request metrics.
// It orchestrates the fetching and the reduction.
type Aggregator struct {
	collector *Collector
	logger    *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger) *Aggregator {
	return &Aggregator{
		collector: NewCollector(fetcher, logger),
		logger:    logger,
	}
}

// ComputeRangeMetrics produces bounded-range metrics for one repository.
// Only PRs created within [start, end] contribute to any counter.
func (a *Aggregator) ComputeRangeMetrics(ctx context.Context, owner, repo string, start, end time.Time) (*domain.AggregateMetrics, error) {
	a.logger.Printf("Usecase: computing range metrics for %s/%s...\n", owner, repo)
	prs, err := a.collector.PullRequests(ctx, owner, repo, start)
	if err != nil {
		return nil, err
	}
	details := map[string]map[int]domain.PRDetail{
		repo: a.collector.Details(ctx, owner, repo, prNumbers(prs)),
	}
	return reduce(prs, details, boundedRules(start, end)), nil
}

// ComputeWeeklyMetrics produces rolling-week metrics across all
// configured repositories. PR fetches fan out per repository, as do the
// per-repository detail batches; each goroutine writes only its own
// pre-partitioned slot and the reduction runs after the join.
func (a *Aggregator) ComputeWeeklyMetrics(ctx context.Context, owner string, repos []string, window domain.Window) (*domain.AggregateMetrics, error) {
	a.logger.Printf("Usecase: computing weekly metrics for %d repositories...\n", len(repos))

	prsByRepo := make([][]domain.PullRequest, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		eg.Go(func() error {
			prs, err := a.collector.PullRequests(egCtx, owner, repo, window.Start)
			if err != nil {
				return err
			}
			prsByRepo[i] = prs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	detailsByRepo := make([]map[int]domain.PRDetail, len(repos))
	eg, egCtx = errgroup.WithContext(ctx)
	for i, repo := range repos {
		eg.Go(func() error {
			detailsByRepo[i] = a.collector.Details(egCtx, owner, repo, prNumbers(prsByRepo[i]))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var prs []domain.PullRequest
	details := make(map[string]map[int]domain.PRDetail, len(repos))
	for i, repo := range repos {
		prs = append(prs, prsByRepo[i]...)
		details[repo] = detailsByRepo[i]
	}

	a.logger.Printf("Usecase: reducing %d pull requests.\n", len(prs))
	return reduce(prs, details, rollingRules(window.Start)), nil
}

func prNumbers(prs []domain.PullRequest) []int {
	numbers := make([]int, 0, len(prs))
	for _, pr := range prs {
		numbers = append(numbers, pr.Number)
	}
	return numbers
}
