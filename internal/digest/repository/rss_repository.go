package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/pkg/logger"
	"sf-weekly-pulse/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const defaultRSSMaxItems = 10

// categoryRSSTerms maps each category to the search terms used against the
// unauthenticated RSS feed.
var categoryRSSTerms = map[dto.Category]string{
	dto.CategoryTech:     "San Francisco technology",
	dto.CategoryPolitics: "San Francisco politics",
	dto.CategoryEconomy:  "San Francisco economy",
	dto.CategorySFLocal:  "San Francisco local news",
}

// RSSRepository fetches articles from the RSS fallback feed.
type RSSRepository interface {
	Fetch(ctx context.Context, category dto.Category) ([]dto.NewsArticle, error)
}

type rssRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	parser *gofeed.Parser
}

// NewRSSRepository creates a new instance of RSSRepository.
func NewRSSRepository(cfg *config.Config, log *logger.Logger) RSSRepository {
	return &rssRepository{
		cfg:    cfg,
		logger: log,
		parser: gofeed.NewParser(),
	}
}

// Fetch parses the feed for the category and maps items into NewsArticle,
// capped at the configured item limit.
func (r *rssRepository) Fetch(ctx context.Context, category dto.Category) ([]dto.NewsArticle, error) {
	terms, ok := categoryRSSTerms[category]
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", category)
	}

	feedURL := fmt.Sprintf("%s/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		r.cfg.RSS.BaseURL, url.QueryEscape(terms))

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	maxItems := r.cfg.RSS.MaxItems
	if maxItems <= 0 {
		maxItems = defaultRSSMaxItems
	}

	var articles []dto.NewsArticle
	for _, item := range feed.Items {
		if len(articles) >= maxItems {
			break
		}
		if item.Link == "" || item.Title == "" {
			continue
		}

		source := ""
		if item.Extensions != nil {
			// Google News carries the publisher in a <source> element.
			if exts, found := item.Extensions[""]; found {
				if srcs, found := exts["source"]; found && len(srcs) > 0 {
					source = srcs[0].Value
				}
			}
		}
		if source == "" {
			if u, err := url.Parse(item.Link); err == nil {
				source = u.Hostname()
			}
		}

		published := item.Published
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Format(time.RFC3339)
		}

		articles = append(articles, dto.NewsArticle{
			Title:         utils.CleanToValidUTF8(item.Title),
			URL:           item.Link,
			Snippet:       stripHTML(item.Description),
			PublishedDate: published,
			Source:        source,
		})
	}

	r.logger.Info("Fetched articles from RSS feed",
		logger.StringField("category", string(category)),
		logger.IntField("count", len(articles)),
	)

	return articles, nil
}

// stripHTML reduces an RSS description to plain text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return utils.CleanToValidUTF8(strings.TrimSpace(doc.Text()))
}
