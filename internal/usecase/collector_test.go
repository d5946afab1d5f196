package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/pr-weekly-report/internal/domain"
	"github.com/naka-gawa/pr-weekly-report/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the GitHub gateway without real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListPullRequests(ctx context.Context, owner, repo string, since time.Time) ([]domain.PullRequest, error) {
	args := m.Called(ctx, owner, repo, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PullRequest), args.Error(1)
}

func (m *mockFetcher) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]domain.Comment, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *mockFetcher) ListReviewComments(ctx context.Context, owner, repo string, number int) ([]domain.Comment, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *mockFetcher) ListReviews(ctx context.Context, owner, repo string, number int) ([]domain.Review, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func newTestCollector(fetcher gateway.Fetcher) *Collector {
	return NewCollector(fetcher, log.New(io.Discard, "", 0))
}

func TestCollector_PullRequests_FailToEmpty(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListPullRequests", mock.Anything, "org", "repo-a", mock.Anything).
		Return(nil, errors.New("github api error"))

	prs, err := newTestCollector(fetcher).PullRequests(context.Background(), "org", "repo-a", time.Now())

	assert.NoError(t, err, "a retrieval failure must be absorbed, not escalated")
	assert.Empty(t, prs)
	fetcher.AssertExpectations(t)
}

func TestCollector_PullRequests_MalformedRecordEscalates(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListPullRequests", mock.Anything, "org", "repo-a", mock.Anything).
		Return(nil, fmt.Errorf("%w in repo-a (number=0)", gateway.ErrMalformedRecord))

	_, err := newTestCollector(fetcher).PullRequests(context.Background(), "org", "repo-a", time.Now())

	assert.ErrorIs(t, err, gateway.ErrMalformedRecord)
}

// TestCollector_Details_FailureIsolation checks that one PR's detail
// fetch failure produces the zero record for that PR only.
func TestCollector_Details_FailureIsolation(t *testing.T) {
	firstReview := time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)
	laterReview := time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC)

	fetcher := new(mockFetcher)
	fetcher.On("ListIssueComments", mock.Anything, "org", "repo-a", 100).
		Return([]domain.Comment{{Author: "user1"}, {Author: "user2"}}, nil)
	fetcher.On("ListReviewComments", mock.Anything, "org", "repo-a", 100).
		Return([]domain.Comment{{Author: "user2"}}, nil)
	fetcher.On("ListReviews", mock.Anything, "org", "repo-a", 100).
		Return([]domain.Review{
			{State: domain.ReviewChangesRequested, SubmittedAt: laterReview},
			{State: domain.ReviewApproved, SubmittedAt: firstReview},
		}, nil)

	// PR 123's review fetch fails; its sibling sub-fetches may or may
	// not complete, but the PR must reduce to the zero record.
	fetcher.On("ListIssueComments", mock.Anything, "org", "repo-a", 123).
		Return([]domain.Comment{{Author: "user1"}}, nil).Maybe()
	fetcher.On("ListReviewComments", mock.Anything, "org", "repo-a", 123).
		Return([]domain.Comment{}, nil).Maybe()
	fetcher.On("ListReviews", mock.Anything, "org", "repo-a", 123).
		Return(nil, errors.New("rate limited"))

	details := newTestCollector(fetcher).Details(context.Background(), "org", "repo-a", []int{100, 123})

	assert.Len(t, details, 2, "exactly one entry per requested number")
	assert.Equal(t, domain.PRDetail{
		DiscussionComments: 2,
		ReviewComments:     1,
		TotalComments:      3,
		ReviewCount:        2,
		Approvals:          1,
		ChangesRequested:   1,
		FirstReviewedAt:    firstReview,
	}, details[100])
	assert.Equal(t, domain.PRDetail{}, details[123])
}

// TestAggregator_ComputeWeeklyMetrics runs the full weekly path against
// the mocked gateway: one healthy repository and one whose fetch fails,
// which degrades the report instead of aborting it.
func TestAggregator_ComputeWeeklyMetrics(t *testing.T) {
	window := domain.Window{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC),
	}
	mergedAt := time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC)
	createdAt := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)

	fetcher := new(mockFetcher)
	fetcher.On("ListPullRequests", mock.Anything, "org", "repo-a", window.Start).
		Return([]domain.PullRequest{{
			Number: 2, Repository: "repo-a", Author: "user1", State: domain.StateClosed,
			CreatedAt: createdAt, UpdatedAt: mergedAt,
			MergedAt: &mergedAt, ClosedAt: &mergedAt,
		}}, nil)
	fetcher.On("ListPullRequests", mock.Anything, "org", "repo-b", window.Start).
		Return(nil, errors.New("network error"))
	fetcher.On("ListIssueComments", mock.Anything, "org", "repo-a", 2).
		Return([]domain.Comment{{Author: "user2"}}, nil)
	fetcher.On("ListReviewComments", mock.Anything, "org", "repo-a", 2).
		Return([]domain.Comment{}, nil)
	fetcher.On("ListReviews", mock.Anything, "org", "repo-a", 2).
		Return([]domain.Review{{State: domain.ReviewApproved, SubmittedAt: mergedAt}}, nil)

	aggregator := NewAggregator(fetcher, log.New(io.Discard, "", 0))
	m, err := aggregator.ComputeWeeklyMetrics(context.Background(), "org", []string{"repo-a", "repo-b"}, window)

	assert.NoError(t, err)
	assert.Equal(t, 1, m.NewPRs)
	assert.Equal(t, 1, m.MergedPRs)
	assert.Equal(t, 1, m.TotalComments)

	user1 := m.Contributors["user1"]
	assert.Equal(t, 1, user1.MergedPRs)
	assert.InDelta(t, 24.0, user1.TotalMergeTime, 1e-9)
	fetcher.AssertExpectations(t)
}
