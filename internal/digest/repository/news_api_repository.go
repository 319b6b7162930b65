package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"context"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/pkg/logger"
	"sf-weekly-pulse/pkg/utils"
)

// categoryQueries maps each digest category to the search terms combined
// with the San Francisco anchor in every query.
var categoryQueries = map[dto.Category]string{
	dto.CategoryTech:     `AI OR technology OR startup`,
	dto.CategoryPolitics: `politics OR mayor OR "city hall" OR election`,
	dto.CategoryEconomy:  `economy OR housing OR business OR "real estate"`,
	dto.CategorySFLocal:  `community OR neighborhood OR transit OR culture`,
}

// NewsAPIRepository fetches articles from the keyed news search API.
type NewsAPIRepository interface {
	Search(ctx context.Context, category dto.Category, from time.Time, to *time.Time) ([]dto.NewsArticle, error)
}

type newsAPIRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	client *http.Client
}

// NewNewsAPIRepository creates a new instance of NewsAPIRepository.
func NewNewsAPIRepository(cfg *config.Config, log *logger.Logger) NewsAPIRepository {
	return &newsAPIRepository{
		cfg:    cfg,
		logger: log,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Search issues one GET against the keyed API for the category's query and
// maps the provider shape into the uniform NewsArticle.
func (r *newsAPIRepository) Search(ctx context.Context, category dto.Category, from time.Time, to *time.Time) ([]dto.NewsArticle, error) {
	query, ok := categoryQueries[category]
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", category)
	}

	params := url.Values{
		"q":        {fmt.Sprintf(`"San Francisco" AND (%s)`, query)},
		"from":     {from.Format("2006-01-02")},
		"language": {r.language()},
		"sortBy":   {"publishedAt"},
		"pageSize": {fmt.Sprintf("%d", r.pageSize())},
	}
	if to != nil {
		params.Set("to", to.Format("2006-01-02"))
	}
	if r.cfg.NewsAPI.Domains != "" {
		params.Set("domains", r.cfg.NewsAPI.Domains)
	}

	reqURL := r.cfg.NewsAPI.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create news API request: %w", err)
	}
	req.Header.Set("X-Api-Key", r.cfg.NewsAPI.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call news API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from news API",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("category", string(category)),
		)
		return nil, fmt.Errorf("received non-OK response from news API: %d - %s", resp.StatusCode, string(body))
	}

	var apiResp dto.NewsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode news API response: %w", err)
	}
	if apiResp.Status != "ok" {
		return nil, fmt.Errorf("news API returned status %q", apiResp.Status)
	}

	articles := make([]dto.NewsArticle, 0, len(apiResp.Articles))
	for _, a := range apiResp.Articles {
		if a.URL == "" || a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		snippet := a.Description
		if snippet == "" {
			snippet = a.Content
		}
		articles = append(articles, dto.NewsArticle{
			Title:         utils.CleanToValidUTF8(a.Title),
			URL:           a.URL,
			Snippet:       utils.CleanToValidUTF8(snippet),
			PublishedDate: a.PublishedAt,
			Source:        a.Source.Name,
		})
	}

	r.logger.Info("Fetched articles from news API",
		logger.StringField("category", string(category)),
		logger.IntField("count", len(articles)),
	)

	return articles, nil
}

func (r *newsAPIRepository) language() string {
	if r.cfg.NewsAPI.Language != "" {
		return r.cfg.NewsAPI.Language
	}
	return "en"
}

func (r *newsAPIRepository) pageSize() int {
	if r.cfg.NewsAPI.PageSize > 0 {
		return r.cfg.NewsAPI.PageSize
	}
	return 20
}
