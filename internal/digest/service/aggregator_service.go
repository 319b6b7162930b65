package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/internal/entity"
	"sf-weekly-pulse/pkg/logger"
	"sf-weekly-pulse/pkg/telegram"
	"sf-weekly-pulse/pkg/utils"
)

// AggregatorService runs the weekly news digest pipeline end to end.
type AggregatorService interface {
	// RunWeekly aggregates, summarizes and persists one week's digest.
	// targetWeek selects a specific week; nil means the current week.
	RunWeekly(ctx context.Context, targetWeek *time.Time) (*dto.RunReport, error)
}

// NewAggregatorService creates a new AggregatorService.
func NewAggregatorService(
	cfg *config.Config,
	fetcher *NewsFetcher,
	narrative NarrativeService,
	weeklyNewsRepo repository.WeeklyNewsRepository,
	notifier telegram.Notifier,
	log *logger.Logger,
) AggregatorService {
	return &aggregatorService{
		cfg:            cfg,
		fetcher:        fetcher,
		narrative:      narrative,
		weeklyNewsRepo: weeklyNewsRepo,
		notifier:       notifier,
		logger:         log,
		sleep:          time.Sleep,
	}
}

type aggregatorService struct {
	cfg            *config.Config
	fetcher        *NewsFetcher
	narrative      NarrativeService
	weeklyNewsRepo repository.WeeklyNewsRepository
	notifier       telegram.Notifier
	logger         *logger.Logger
	sleep          func(time.Duration)
}

func (s *aggregatorService) RunWeekly(ctx context.Context, targetWeek *time.Time) (*dto.RunReport, error) {
	weekOf := utils.WeekKey(utils.TimeNowSF())
	if targetWeek != nil {
		weekOf = utils.WeekKey(*targetWeek)
	}

	s.logger.Info("Starting weekly aggregation", logger.Field("week_of", weekOf))

	// Category fetches are independent network calls; fan out.
	categoryArticles := make(map[dto.Category][]dto.NewsArticle)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, category := range dto.AllCategories() {
		wg.Add(1)
		cat := category
		utils.GoSafe(func() {
			defer wg.Done()
			fetched := s.fetcher.FetchWithFallback(ctx, cat, weekOf)
			kept := FilterByStartDate(fetched, weekOf)
			kept = AggregateArticles(kept, dto.AggregateOptions{
				Deduplicate: true,
				Rank:        true,
				MaxArticles: s.maxArticles(),
			})
			mu.Lock()
			categoryArticles[cat] = kept
			mu.Unlock()
		})
	}
	wg.Wait()

	total := 0
	var allArticles []dto.NewsArticle
	for _, articles := range categoryArticles {
		total += len(articles)
		allArticles = append(allArticles, articles...)
	}
	if total == 0 {
		return nil, fmt.Errorf("no articles found for any category in week %s", weekOf.Format("2006-01-02"))
	}

	report := &dto.RunReport{
		WeekOf:     weekOf,
		Errors:     []string{},
		Categories: make(map[string]string),
	}

	news := &entity.WeeklyNews{WeekOf: weekOf}

	// LLM calls run sequentially with a pacing delay, a self-imposed rate
	// limit against the provider quota.
	first := true
	for _, category := range dto.AllCategories() {
		if !utils.ShouldContinue(ctx, s.logger) {
			report.Errors = append(report.Errors, "aggregation cancelled")
			report.Failed++
			break
		}

		articles := categoryArticles[category]

		var generation *dto.SummaryGeneration
		if len(articles) == 0 {
			generation = &dto.SummaryGeneration{
				Kind:   dto.GenerationStub,
				Result: StubSummary(category),
			}
		} else {
			if !first {
				s.sleep(s.cfg.Aggregator.LLMDelay)
			}
			first = false
			generation = s.narrative.Summarize(ctx, category, articles)
		}

		report.Processed++
		report.Categories[string(category)] = generation.Kind
		if generation.Kind == dto.GenerationFallback {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", category, generation.Reason))
		}

		if err := s.fillCategory(news, category, articles, generation); err != nil {
			report.Failed++
			report.Processed--
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", category, err.Error()))
		}
	}

	news.WeeklyKeywords = ExtractKeywords(allArticles, DefaultMaxKeywords)

	if err := s.weeklyNewsRepo.Upsert(ctx, news); err != nil {
		return nil, fmt.Errorf("failed to upsert weekly news: %w", err)
	}

	s.logger.Info("Weekly aggregation finished",
		logger.Field("week_of", weekOf),
		logger.IntField("processed", report.Processed),
		logger.IntField("failed", report.Failed),
	)

	if err := s.notifier.SendMessage(telegram.FormatDigestRunForTelegram(telegram.DigestRunSummary{
		WeekOf:     weekOf,
		Processed:  report.Processed,
		Failed:     report.Failed,
		Errors:     report.Errors,
		Categories: report.Categories,
	})); err != nil {
		s.logger.Error("Failed to send Telegram notification", logger.ErrorField(err))
	}

	return report, nil
}

func (s *aggregatorService) fillCategory(news *entity.WeeklyNews, category dto.Category, articles []dto.NewsArticle, generation *dto.SummaryGeneration) error {
	sourcesJSON, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	columns := news.CategoryColumnsFor(string(category))
	if columns == nil {
		return fmt.Errorf("unknown category: %s", category)
	}
	columns.SummaryShort = generation.Result.SummaryShort
	columns.SummaryDetailed = generation.Result.SummaryDetailed
	columns.Bullets = generation.Result.Bullets
	columns.Keywords = generation.Result.Keywords
	columns.Sources = sourcesJSON
	return nil
}

func (s *aggregatorService) maxArticles() int {
	if s.cfg.Aggregator.MaxArticles > 0 {
		return s.cfg.Aggregator.MaxArticles
	}
	return DefaultMaxArticles
}
