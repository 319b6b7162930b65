package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/pkg/logger"
)

// ErrTwitterNotConfigured is returned when no bearer token is configured;
// callers fall back to mock evidence.
var ErrTwitterNotConfigured = errors.New("twitter bearer token not configured")

// TwitterRepository searches the social API for short-form posts.
type TwitterRepository interface {
	SearchPosts(ctx context.Context, query string, maxResults int) ([]dto.TwitterPost, []dto.TwitterUser, error)
}

type twitterRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	client *http.Client
}

// NewTwitterRepository creates a new instance of TwitterRepository.
func NewTwitterRepository(cfg *config.Config, log *logger.Logger) TwitterRepository {
	return &twitterRepository{
		cfg:    cfg,
		logger: log,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchPosts issues one recent-search request with author expansion.
// maxResults is clamped to the API's accepted 10-100 range.
func (r *twitterRepository) SearchPosts(ctx context.Context, query string, maxResults int) ([]dto.TwitterPost, []dto.TwitterUser, error) {
	if r.cfg.Twitter.BearerToken == "" {
		return nil, nil, ErrTwitterNotConfigured
	}

	if maxResults < 10 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	params := url.Values{
		"query":        {query},
		"max_results":  {strconv.Itoa(maxResults)},
		"tweet.fields": {"created_at,public_metrics,author_id"},
		"expansions":   {"author_id"},
		"user.fields":  {"username,name"},
	}

	reqURL := r.cfg.Twitter.BaseURL + "/tweets/search/recent?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create twitter request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.Twitter.BearerToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to call twitter API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from twitter API",
			logger.IntField("status_code", resp.StatusCode),
		)
		return nil, nil, fmt.Errorf("received non-OK response from twitter API: %d - %s", resp.StatusCode, string(body))
	}

	var searchResp dto.TwitterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, nil, fmt.Errorf("failed to decode twitter response: %w", err)
	}

	r.logger.Info("Fetched posts from twitter API",
		logger.StringField("query", query),
		logger.IntField("count", len(searchResp.Data)),
	)

	return searchResp.Data, searchResp.Includes.Users, nil
}
