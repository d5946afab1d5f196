// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/pr-weekly-report/internal/domain"
)

// ErrMalformedRecord marks an API record missing a required field.
// Unlike retrieval failures it is never absorbed: it means the data
// contract with the API is broken and the run must abort.
var ErrMalformedRecord = errors.New("malformed pull request record")

// Fetcher defines the behavior of a gateway for retrieving pull-request
// activity from GitHub.
type Fetcher interface {
	// ListPullRequests returns every PR of the repository updated at or
	// after since, any state, newest-updated first.
	ListPullRequests(ctx context.Context, owner, repo string, since time.Time) ([]domain.PullRequest, error)
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]domain.Comment, error)
	ListReviewComments(ctx context.Context, owner, repo string, number int) ([]domain.Comment, error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]domain.Review, error)
}

// GitHubFetcher is the concrete implementation of the Fetcher interface.
type GitHubFetcher struct {
	client *github.Client
	logger *log.Logger
}

// NewGitHubFetcher is a constructor that creates a new instance of GitHubFetcher.
func NewGitHubFetcher(token string, logger *log.Logger) (*GitHubFetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubFetcher{
		client: github.NewClient(httpClient),
		logger: logger,
	}, nil
}

// ListPullRequests pages through the repository's PRs sorted by update
// time descending and stops once a page crosses below since. The pulls
// endpoint has no since parameter, so the cutoff is applied client-side.
func (g *GitHubFetcher) ListPullRequests(ctx context.Context, owner, repo string, since time.Time) ([]domain.PullRequest, error) {
	g.logger.Printf("Fetching pull requests for %s/%s updated since %s...\n", owner, repo, since.Format("2006-01-02"))
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var prs []domain.PullRequest
	for {
		page, resp, err := g.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s/%s: %w", owner, repo, err)
		}
		done := false
		for _, raw := range page {
			if raw.GetUpdatedAt().Time.Before(since) {
				done = true
				break
			}
			pr, err := toPullRequest(repo, raw)
			if err != nil {
				return nil, err
			}
			prs = append(prs, pr)
		}
		if done || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of pull requests...")
	}
	g.logger.Printf("Fetched %d pull requests for %s/%s.\n", len(prs), owner, repo)
	return prs, nil
}

// ListIssueComments returns the discussion comments of one pull request.
func (g *GitHubFetcher) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]domain.Comment, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var comments []domain.Comment
	for {
		page, resp, err := g.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issue comments for %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, c := range page {
			comments = append(comments, domain.Comment{
				Author:    c.GetUser().GetLogin(),
				CreatedAt: c.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// ListReviewComments returns the inline review comments of one pull request.
func (g *GitHubFetcher) ListReviewComments(ctx context.Context, owner, repo string, number int) ([]domain.Comment, error) {
	opts := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var comments []domain.Comment
	for {
		page, resp, err := g.client.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list review comments for %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, c := range page {
			comments = append(comments, domain.Comment{
				Author:    c.GetUser().GetLogin(),
				CreatedAt: c.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// ListReviews returns the formal reviews of one pull request.
func (g *GitHubFetcher) ListReviews(ctx context.Context, owner, repo string, number int) ([]domain.Review, error) {
	opts := &github.ListOptions{PerPage: 100}
	var reviews []domain.Review
	for {
		page, resp, err := g.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, r := range page {
			reviews = append(reviews, domain.Review{
				State:       r.GetState(),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return reviews, nil
}

// toPullRequest converts an API record into the domain representation.
// A record missing a required field indicates a broken data contract
// and aborts the run rather than being skipped.
func toPullRequest(repo string, raw *github.PullRequest) (domain.PullRequest, error) {
	if raw.GetNumber() == 0 || raw.GetUser().GetLogin() == "" ||
		raw.GetCreatedAt().Time.IsZero() || raw.GetUpdatedAt().Time.IsZero() {
		return domain.PullRequest{}, fmt.Errorf("%w in %s (number=%d)", ErrMalformedRecord, repo, raw.GetNumber())
	}
	pr := domain.PullRequest{
		Number:     raw.GetNumber(),
		Repository: repo,
		Author:     raw.GetUser().GetLogin(),
		State:      raw.GetState(),
		CreatedAt:  raw.GetCreatedAt().Time,
		UpdatedAt:  raw.GetUpdatedAt().Time,
	}
	if raw.MergedAt != nil {
		t := raw.MergedAt.Time
		pr.MergedAt = &t
	}
	if raw.ClosedAt != nil {
		t := raw.ClosedAt.Time
		pr.ClosedAt = &t
	}
	return pr, nil
}
