// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/pr-weekly-report/internal/domain"
	"github.com/naka-gawa/pr-weekly-report/internal/gateway"
)

// Collector retrieves pull-request activity through the gateway and
// absorbs retrieval failures so a flaky API degrades the report instead
// of aborting the run.
type Collector struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, logger *log.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		logger:  logger,
	}
}

// PullRequests returns the repository's PRs updated at or after since.
// Retrieval failures are logged and yield an empty result; a malformed
// record is a broken data contract and is returned as an error.
func (c *Collector) PullRequests(ctx context.Context, owner, repo string, since time.Time) ([]domain.PullRequest, error) {
	prs, err := c.fetcher.ListPullRequests(ctx, owner, repo, since)
	if errors.Is(err, gateway.ErrMalformedRecord) {
		return nil, err
	}
	if err != nil {
		c.logger.Printf("Pull request fetch failed for %s/%s, continuing with empty set: %v\n", owner, repo, err)
		return nil, nil
	}
	return prs, nil
}

// Details fetches and reduces the discussion comments, review comments
// and reviews of each listed PR. The returned map has exactly one entry
// per requested number; a PR whose fetch failed gets the zero record
// without affecting its siblings.
func (c *Collector) Details(ctx context.Context, owner, repo string, numbers []int) map[int]domain.PRDetail {
	details := make(map[int]domain.PRDetail, len(numbers))
	for _, number := range numbers {
		details[number] = c.detail(ctx, owner, repo, number)
	}
	return details
}

// detail runs the three per-PR sub-fetches concurrently and reduces
// them into counts.
func (c *Collector) detail(ctx context.Context, owner, repo string, number int) domain.PRDetail {
	var discussion, reviewComments []domain.Comment
	var reviews []domain.Review

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		discussion, err = c.fetcher.ListIssueComments(egCtx, owner, repo, number)
		return err
	})
	eg.Go(func() error {
		var err error
		reviewComments, err = c.fetcher.ListReviewComments(egCtx, owner, repo, number)
		return err
	})
	eg.Go(func() error {
		var err error
		reviews, err = c.fetcher.ListReviews(egCtx, owner, repo, number)
		return err
	})
	if err := eg.Wait(); err != nil {
		c.logger.Printf("Detail fetch failed for %s/%s#%d, recording zero counts: %v\n", owner, repo, number, err)
		return domain.PRDetail{}
	}

	d := domain.PRDetail{
		DiscussionComments: len(discussion),
		ReviewComments:     len(reviewComments),
		TotalComments:      len(discussion) + len(reviewComments),
		ReviewCount:        len(reviews),
	}
	for _, r := range reviews {
		switch r.State {
		case domain.ReviewApproved:
			d.Approvals++
		case domain.ReviewChangesRequested:
			d.ChangesRequested++
		}
		if !r.SubmittedAt.IsZero() && (d.FirstReviewedAt.IsZero() || r.SubmittedAt.Before(d.FirstReviewedAt)) {
			d.FirstReviewedAt = r.SubmittedAt
		}
	}
	return d
}
