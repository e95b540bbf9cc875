// Package leetcode fetches solved-problem counts from the LeetCode GraphQL API.
package leetcode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

const userStatsQuery = `
query userStats($username: String!) {
  matchedUser(username: $username) {
    submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

type Client struct {
	http    *resty.Client
	retries uint64
}

// NewClient builds a client for baseURL. Every request is bounded by timeout;
// transient failures are retried up to retries extra times.
func NewClient(baseURL string, timeout time.Duration, retries uint64) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "LeetCode-Tracker/1.0").
		SetTimeout(timeout)

	return &Client{http: c, retries: retries}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type userStatsResponse struct {
	Data struct {
		MatchedUser *struct {
			SubmitStatsGlobal *struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
	} `json:"data"`
}

// FetchCounts returns the user's accepted-submission totals. Unknown users
// yield domain.ErrNotFound; every other failure wraps domain.ErrUpstreamUnavailable.
func (c *Client) FetchCounts(ctx context.Context, username string) (domain.Counts, error) {
	var counts domain.Counts

	op := func() error {
		var err error
		counts, err = c.fetchOnce(ctx, username)
		if errors.Is(err, domain.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(200*time.Millisecond),
		), c.retries),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Counts{}, err
		}
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return domain.Counts{}, err
		}
		return domain.Counts{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return counts, nil
}

func (c *Client) fetchOnce(ctx context.Context, username string) (domain.Counts, error) {
	var out userStatsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: userStatsQuery, Variables: map[string]any{"username": username}}).
		SetResult(&out).
		Post("/graphql")
	if err != nil {
		return domain.Counts{}, fmt.Errorf("%w: leetcode request: %v", domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.Counts{}, fmt.Errorf("%w: leetcode status %d", domain.ErrUpstreamUnavailable, resp.StatusCode())
	}

	user := out.Data.MatchedUser
	if user == nil || user.SubmitStatsGlobal == nil {
		return domain.Counts{}, fmt.Errorf("leetcode user %q: %w", username, domain.ErrNotFound)
	}

	var counts domain.Counts
	for _, s := range user.SubmitStatsGlobal.AcSubmissionNum {
		switch strings.ToLower(s.Difficulty) {
		case "easy":
			counts.Easy = s.Count
		case "medium":
			counts.Medium = s.Count
		case "hard":
			counts.Hard = s.Count
		}
	}
	return counts, nil
}
