package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/internal/entity"
	"sf-weekly-pulse/pkg/cache"
	"sf-weekly-pulse/pkg/logger"
	"sf-weekly-pulse/pkg/utils"
)

const defaultSocialCacheTTL = 7 * 24 * time.Hour

var hypeKeywords = []string{"amazing", "love", "excited", "incredible", "awesome", "game changer"}

var backlashKeywords = []string{"terrible", "hate", "awful", "disappointed", "worst", "overhyped"}

// SocialService fetches short-form post evidence for a topic, split into
// hype and backlash buckets, and drives the weekly topic pipeline.
type SocialService interface {
	// FetchSentimentPosts returns posts for one sentiment bucket. The kind
	// return distinguishes live results from the deterministic mock fallback.
	FetchSentimentPosts(ctx context.Context, topic, sentiment string, maxResults int) ([]dto.StructuredTweet, string)
	// FetchTopicPosts is the quota-efficient variant: one unfiltered fetch,
	// classified client-side by keyword presence.
	FetchTopicPosts(ctx context.Context, topic string) (hype, backlash []dto.StructuredTweet, kind string)
	// ProcessWeeklyTopics runs the narrative analysis for every configured
	// topic sequentially, isolating per-topic failures.
	ProcessWeeklyTopics(ctx context.Context, topics []string) (*dto.RunReport, error)
}

// NewSocialService creates a new SocialService.
func NewSocialService(
	cfg *config.Config,
	twitterRepo repository.TwitterRepository,
	narrative NarrativeService,
	eventRepo repository.TimelineEventRepository,
	store cache.Store,
	log *logger.Logger,
) SocialService {
	return &socialService{
		cfg:         cfg,
		twitterRepo: twitterRepo,
		narrative:   narrative,
		eventRepo:   eventRepo,
		store:       store,
		logger:      log,
		sleep:       time.Sleep,
	}
}

type socialService struct {
	cfg         *config.Config
	twitterRepo repository.TwitterRepository
	narrative   NarrativeService
	eventRepo   repository.TimelineEventRepository
	store       cache.Store
	logger      *logger.Logger
	sleep       func(time.Duration)
}

func (s *socialService) FetchSentimentPosts(ctx context.Context, topic, sentiment string, maxResults int) ([]dto.StructuredTweet, string) {
	cacheKey := fmt.Sprintf("social:%s:%s", topic, sentiment)
	if cached, found, err := s.store.Get(ctx, cacheKey); err == nil && found {
		var tweets []dto.StructuredTweet
		if err := json.Unmarshal(cached, &tweets); err == nil && len(tweets) > 0 {
			return tweets, dto.GenerationLive
		}
	}

	query := buildSentimentQuery(topic, sentiment)
	posts, users, err := s.twitterRepo.SearchPosts(ctx, query, maxResults)
	if err != nil || len(posts) == 0 {
		if err != nil {
			s.logger.Warn("Social search failed, using mock posts",
				logger.StringField("topic", topic),
				logger.StringField("sentiment", sentiment),
				logger.ErrorField(err),
			)
		}
		return MockPosts(topic, sentiment), dto.GenerationFallback
	}

	tweets := mapPosts(posts, users, sentiment)

	if encoded, err := json.Marshal(tweets); err == nil {
		if err := s.store.Set(ctx, cacheKey, encoded, s.cacheTTL()); err != nil {
			s.logger.Warn("Failed to write social cache", logger.ErrorField(err))
		}
	}

	return tweets, dto.GenerationLive
}

func (s *socialService) FetchTopicPosts(ctx context.Context, topic string) ([]dto.StructuredTweet, []dto.StructuredTweet, string) {
	posts, users, err := s.twitterRepo.SearchPosts(ctx, fmt.Sprintf("%q lang:en -is:retweet", topic), 20)
	if err != nil || len(posts) == 0 {
		if err != nil {
			s.logger.Warn("Social search failed, using mock posts",
				logger.StringField("topic", topic),
				logger.ErrorField(err),
			)
		}
		return MockPosts(topic, dto.SentimentHype), MockPosts(topic, dto.SentimentBacklash), dto.GenerationFallback
	}

	var hype, backlash []dto.StructuredTweet
	for _, t := range mapPosts(posts, users, "") {
		switch ClassifyPost(t.Text) {
		case dto.SentimentHype:
			t.Sentiment = dto.SentimentHype
			hype = append(hype, t)
		case dto.SentimentBacklash:
			t.Sentiment = dto.SentimentBacklash
			backlash = append(backlash, t)
		}
	}
	return hype, backlash, dto.GenerationLive
}

func (s *socialService) ProcessWeeklyTopics(ctx context.Context, topics []string) (*dto.RunReport, error) {
	currentWeek := utils.WeekKey(utils.TimeNowSF())

	report := &dto.RunReport{
		WeekOf: currentWeek,
		Errors: []string{},
	}

	for i, topic := range topics {
		if !utils.ShouldContinue(ctx, s.logger) {
			report.Errors = append(report.Errors, "topic processing cancelled")
			report.Failed++
			break
		}
		if i > 0 {
			s.sleep(s.topicDelay())
		}

		// Topics are ordered most recent first; each maps to its own week.
		weekOf := currentWeek.AddDate(0, 0, -7*i)
		if err := s.processTopic(ctx, topic, weekOf); err != nil {
			s.logger.Error("Failed to process topic",
				logger.StringField("topic", topic),
				logger.ErrorField(err),
			)
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", topic, err.Error()))
			continue
		}
		report.Processed++
	}

	return report, nil
}

func (s *socialService) processTopic(ctx context.Context, topic string, weekOf time.Time) error {
	var hype, backlash []dto.StructuredTweet
	if s.cfg.Twitter.EfficientMode {
		hype, backlash, _ = s.FetchTopicPosts(ctx, topic)
	} else {
		hype, _ = s.FetchSentimentPosts(ctx, topic, dto.SentimentHype, 10)
		backlash, _ = s.FetchSentimentPosts(ctx, topic, dto.SentimentBacklash, 10)
	}

	analysis, err := s.narrative.AnalyzeNarratives(ctx, topic, combinePostText(hype, backlash))
	if err != nil {
		return fmt.Errorf("narrative analysis failed: %w", err)
	}

	hypeJSON, err := json.Marshal(hype)
	if err != nil {
		return fmt.Errorf("failed to marshal hype tweets: %w", err)
	}
	backlashJSON, err := json.Marshal(backlash)
	if err != nil {
		return fmt.Errorf("failed to marshal backlash tweets: %w", err)
	}

	event := &entity.TimelineEvent{
		WeekOf:          weekOf,
		Headline:        topic,
		HypeSummary:     analysis.HypeSummary,
		BacklashSummary: analysis.BacklashSummary,
		WeeklyPulse:     analysis.WeeklyPulse,
		HypeTweets:      hypeJSON,
		BacklashTweets:  backlashJSON,
	}
	if err := s.eventRepo.Upsert(ctx, event); err != nil {
		return fmt.Errorf("failed to upsert timeline event: %w", err)
	}

	s.logger.Info("Processed weekly topic",
		logger.StringField("topic", topic),
		logger.Field("week_of", weekOf),
		logger.IntField("hype_posts", len(hype)),
		logger.IntField("backlash_posts", len(backlash)),
	)
	return nil
}

func (s *socialService) cacheTTL() time.Duration {
	if s.cfg.Twitter.CacheTTL > 0 {
		return s.cfg.Twitter.CacheTTL
	}
	return defaultSocialCacheTTL
}

func (s *socialService) topicDelay() time.Duration {
	if s.cfg.Aggregator.TopicDelay > 0 {
		return s.cfg.Aggregator.TopicDelay
	}
	return 2 * time.Second
}

// buildSentimentQuery embeds the topic plus an OR-list of sentiment
// indicative keywords. The query itself does the filtering, so results are
// tagged with the requested sentiment wholesale.
func buildSentimentQuery(topic, sentiment string) string {
	keywords := hypeKeywords
	if sentiment == dto.SentimentBacklash {
		keywords = backlashKeywords
	}
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return fmt.Sprintf("%q (%s) lang:en -is:retweet", topic, strings.Join(quoted, " OR "))
}

// ClassifyPost buckets a post by keyword presence, returning an empty string
// when neither bucket matches.
func ClassifyPost(text string) string {
	lower := strings.ToLower(text)
	for _, k := range hypeKeywords {
		if strings.Contains(lower, k) {
			return dto.SentimentHype
		}
	}
	for _, k := range backlashKeywords {
		if strings.Contains(lower, k) {
			return dto.SentimentBacklash
		}
	}
	return ""
}

func mapPosts(posts []dto.TwitterPost, users []dto.TwitterUser, sentiment string) []dto.StructuredTweet {
	usersByID := make(map[string]dto.TwitterUser, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	tweets := make([]dto.StructuredTweet, 0, len(posts))
	for _, p := range posts {
		author := usersByID[p.AuthorID]
		tweets = append(tweets, dto.StructuredTweet{
			ID:        p.ID,
			Text:      p.Text,
			Author:    author.Name,
			Username:  author.Username,
			Timestamp: p.CreatedAt,
			Likes:     p.PublicMetrics.LikeCount,
			Retweets:  p.PublicMetrics.RetweetCount,
			Sentiment: sentiment,
		})
	}
	return tweets
}

// MockPosts returns the deterministic fallback evidence set for a sentiment,
// parameterized by topic so downstream consumers always receive non-empty,
// schema-valid posts.
func MockPosts(topic, sentiment string) []dto.StructuredTweet {
	templates := map[string][]string{
		dto.SentimentHype: {
			"Honestly %s is the most exciting thing happening in SF right now.",
			"Just tried %s and I'm blown away. The city needed this.",
			"%s is exactly why I love living in the Bay Area.",
			"Can't stop talking about %s. Huge week for San Francisco.",
		},
		dto.SentimentBacklash: {
			"Everyone hyping %s has clearly not thought this through.",
			"%s is the most overhyped thing in SF this year.",
			"Tired of hearing about %s. The city has bigger problems.",
			"Hot take: %s will not age well.",
		},
	}

	lines := templates[sentiment]
	tweets := make([]dto.StructuredTweet, len(lines))
	for i, line := range lines {
		tweets[i] = dto.StructuredTweet{
			ID:        fmt.Sprintf("mock-%s-%d", sentiment, i+1),
			Text:      fmt.Sprintf(line, topic),
			Author:    "SF Pulse Bot",
			Username:  "sfpulse_mock",
			Timestamp: "2025-01-05T12:00:00Z",
			Likes:     (i + 1) * 10,
			Retweets:  (i + 1) * 2,
			Sentiment: sentiment,
		}
	}
	return tweets
}

func combinePostText(hype, backlash []dto.StructuredTweet) string {
	var b strings.Builder
	b.WriteString("Enthusiastic posts:\n")
	for _, t := range hype {
		b.WriteString("- ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	b.WriteString("\nCritical posts:\n")
	for _, t := range backlash {
		b.WriteString("- ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return b.String()
}
