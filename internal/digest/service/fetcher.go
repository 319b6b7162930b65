package service

import (
	"context"
	"strings"
	"time"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/pkg/logger"
)

// sfPlaceTokens is the geography gate: an article must mention at least one
// of these (case-insensitive, title+snippet) to count as San Francisco news,
// regardless of what the source claims.
var sfPlaceTokens = []string{
	"san francisco",
	"sf ",
	"bay area",
	"sfpd",
	"sfmta",
	"bart",
	"muni",
	"mission district",
	"soma",
	"tenderloin",
	"castro",
	"chinatown",
	"nob hill",
	"golden gate",
	"oakland",
	"berkeley",
	"silicon valley",
	"presidio",
	"embarcadero",
	"fisherman's wharf",
	"haight",
	"city hall",
}

// NewsFetcher composes the keyed API and RSS adapters behind a single
// fetch-with-fallback operation.
type NewsFetcher struct {
	newsAPI repository.NewsAPIRepository
	rss     repository.RSSRepository
	logger  *logger.Logger
}

// NewNewsFetcher creates a new NewsFetcher.
func NewNewsFetcher(newsAPI repository.NewsAPIRepository, rss repository.RSSRepository, log *logger.Logger) *NewsFetcher {
	return &NewsFetcher{newsAPI: newsAPI, rss: rss, logger: log}
}

// FetchWithFallback tries the keyed API first; adapter errors are logged and
// treated as zero results. A zero-result API response falls back to RSS.
// Whatever survives then passes through the geography gate.
func (f *NewsFetcher) FetchWithFallback(ctx context.Context, category dto.Category, from time.Time) []dto.NewsArticle {
	articles, err := f.newsAPI.Search(ctx, category, from, nil)
	if err != nil {
		f.logger.Warn("News API fetch failed, falling back to RSS",
			logger.StringField("category", string(category)),
			logger.ErrorField(err),
		)
		articles = nil
	}

	if len(articles) == 0 {
		rssArticles, err := f.rss.Fetch(ctx, category)
		if err != nil {
			f.logger.Error("RSS fallback fetch failed",
				logger.StringField("category", string(category)),
				logger.ErrorField(err),
			)
		} else {
			articles = rssArticles
		}
	}

	relevant := FilterSFRelevant(articles)
	f.logger.Info("Fetched category articles",
		logger.StringField("category", string(category)),
		logger.IntField("fetched", len(articles)),
		logger.IntField("relevant", len(relevant)),
	)
	return relevant
}

// FilterSFRelevant drops articles that never mention a known San Francisco
// place token. This is the binding correctness gate for a category.
func FilterSFRelevant(articles []dto.NewsArticle) []dto.NewsArticle {
	var kept []dto.NewsArticle
	for _, a := range articles {
		if IsSFRelevant(a) {
			kept = append(kept, a)
		}
	}
	return kept
}

// IsSFRelevant reports whether the article's title or snippet mentions a
// known San Francisco place token.
func IsSFRelevant(a dto.NewsArticle) bool {
	// Pad with spaces so the short "sf " token can match at string edges.
	text := " " + strings.ToLower(a.Title+" "+a.Snippet) + " "
	for _, token := range sfPlaceTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
