package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/pkg/logger"
)

// NarrativeService turns raw articles or social posts into structured
// summaries via the AI provider, with retry and a deterministic fallback.
type NarrativeService interface {
	// Summarize never fails: after retries are exhausted it substitutes a
	// programmatically-assembled fallback summary and tags the result.
	Summarize(ctx context.Context, category dto.Category, articles []dto.NewsArticle) *dto.SummaryGeneration
	// AnalyzeNarratives surfaces the final error after retries; social topics
	// have no meaningful template fallback.
	AnalyzeNarratives(ctx context.Context, topic, combinedPosts string) (*dto.NarrativeAnalysisResult, error)
}

// NewNarrativeService creates a new NarrativeService.
func NewNarrativeService(cfg *config.Config, aiRepo repository.AIRepository, log *logger.Logger) NarrativeService {
	return &narrativeService{
		cfg:    cfg,
		aiRepo: aiRepo,
		logger: log,
		sleep:  time.Sleep,
	}
}

type narrativeService struct {
	cfg    *config.Config
	aiRepo repository.AIRepository
	logger *logger.Logger
	sleep  func(time.Duration)
}

func (s *narrativeService) Summarize(ctx context.Context, category dto.Category, articles []dto.NewsArticle) *dto.SummaryGeneration {
	var result *dto.NewsSummaryResult

	err := withRetry(ctx, s.cfg.Aggregator.MaxRetries, s.cfg.Aggregator.RetryBaseDelay, s.sleep, func() error {
		// The per-call timeout applies to category summaries only; narrative
		// analysis relies on the HTTP client timeout. Kept asymmetric on
		// purpose, matching observed production behavior.
		callCtx := ctx
		if s.cfg.Aggregator.SummaryTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.cfg.Aggregator.SummaryTimeout)
			defer cancel()
		}

		r, err := s.aiRepo.GenerateCategorySummary(callCtx, category, articles)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		s.logger.Warn("Category summary generation failed, using fallback",
			logger.StringField("category", string(category)),
			logger.ErrorField(err),
		)
		return &dto.SummaryGeneration{
			Kind:   dto.GenerationFallback,
			Reason: err.Error(),
			Result: buildFallbackSummary(category, articles),
		}
	}

	return &dto.SummaryGeneration{Kind: dto.GenerationLive, Result: *result}
}

func (s *narrativeService) AnalyzeNarratives(ctx context.Context, topic, combinedPosts string) (*dto.NarrativeAnalysisResult, error) {
	var result *dto.NarrativeAnalysisResult

	err := withRetry(ctx, s.cfg.Aggregator.MaxRetries, s.cfg.Aggregator.RetryBaseDelay, s.sleep, func() error {
		r, err := s.aiRepo.AnalyzeNarratives(ctx, topic, combinedPosts)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// buildFallbackSummary assembles a summary from article titles and snippets
// alone. It does no network I/O and must never fail.
func buildFallbackSummary(category dto.Category, articles []dto.NewsArticle) dto.NewsSummaryResult {
	if len(articles) == 0 {
		return StubSummary(category)
	}

	var bullets []string
	for _, a := range articles {
		if len(bullets) >= 7 {
			break
		}
		bullets = append(bullets, a.Title)
	}

	var detailed strings.Builder
	for _, a := range articles {
		detailed.WriteString(a.Title)
		if a.Snippet != "" {
			detailed.WriteString(": ")
			detailed.WriteString(a.Snippet)
		}
		detailed.WriteString(" ")
	}

	keywords := ExtractKeywords(articles, DefaultMaxKeywords)
	if len(keywords) == 0 {
		keywords = []string{"San Francisco"}
	}

	return dto.NewsSummaryResult{
		SummaryShort: fmt.Sprintf("This week in San Francisco %s: %d stories including %q.",
			category, len(articles), articles[0].Title),
		SummaryDetailed: strings.TrimSpace(detailed.String()),
		Bullets:         bullets,
		Keywords:        keywords,
	}
}

// StubSummary is the fixed section used when a category has no articles at
// all; no LLM call is made for it.
func StubSummary(category dto.Category) dto.NewsSummaryResult {
	return dto.NewsSummaryResult{
		SummaryShort:    fmt.Sprintf("No %s news available for San Francisco this week.", category),
		SummaryDetailed: fmt.Sprintf("No %s news stories were found for San Francisco this week. Check back next week.", category),
		Bullets:         []string{"No news available"},
		Keywords:        []string{"San Francisco"},
	}
}
