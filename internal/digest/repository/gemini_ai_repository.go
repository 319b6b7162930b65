package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/pkg/logger"
	"sf-weekly-pulse/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an AIRepository implementation backed by the Google
// Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	maxReq := cfg.Gemini.MaxRequestPerMinute
	if maxReq <= 0 {
		maxReq = 10
	}
	secondsPerRequest := time.Minute / time.Duration(maxReq)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	maxTok := cfg.Gemini.MaxTokenPerMinute
	if maxTok <= 0 {
		maxTok = 100000
	}
	tokenLimiter := ratelimit.NewTokenLimiter(maxTok)

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiAIRepository) GenerateCategorySummary(ctx context.Context, category dto.Category, articles []dto.NewsArticle) (*dto.NewsSummaryResult, error) {
	prompt := BuildCategorySummaryPrompt(category, articles)

	text, err := r.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result dto.NewsSummaryResult
	if err := parseStructuredJSON(text, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid summary schema: %w", err)
	}

	return &result, nil
}

func (r *geminiAIRepository) AnalyzeNarratives(ctx context.Context, topic, combinedPosts string) (*dto.NarrativeAnalysisResult, error) {
	prompt := BuildNarrativeAnalysisPrompt(topic, combinedPosts)

	text, err := r.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result dto.NarrativeAnalysisResult
	if err := parseStructuredJSON(text, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid narrative schema: %w", err)
	}

	return &result, nil
}

func (r *geminiAIRepository) Chat(ctx context.Context, messages []dto.Message) (string, error) {
	// Gemini has no role-tagged chat endpoint in this wrapper; flatten the
	// history into a single prompt.
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(fmt.Sprintf("%s: %s\n\n", m.Role, m.Content))
	}
	return r.generate(ctx, b.String())
}

func (r *geminiAIRepository) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	if int(tokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from Gemini API: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no content found in Gemini response")
	}

	return text, nil
}
