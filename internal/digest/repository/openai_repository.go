package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/pkg/logger"
	"sf-weekly-pulse/pkg/ratelimit"

	"golang.org/x/time/rate"
)

type openaiRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewOpenAIRepository creates an AIRepository backed by an OpenAI-compatible
// chat-completion endpoint.
func NewOpenAIRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	maxReq := cfg.OpenAI.MaxRequestPerMinute
	if maxReq <= 0 {
		maxReq = 20
	}
	secondsPerRequest := time.Minute / time.Duration(maxReq)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	maxTok := cfg.OpenAI.MaxTokenPerMinute
	if maxTok <= 0 {
		maxTok = 100000
	}
	tokenLimiter := ratelimit.NewTokenLimiter(maxTok)

	return &openaiRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
	}
}

func (r *openaiRepository) GenerateCategorySummary(ctx context.Context, category dto.Category, articles []dto.NewsArticle) (*dto.NewsSummaryResult, error) {
	prompt := BuildCategorySummaryPrompt(category, articles)

	content, err := r.sendRequest(ctx, []dto.Message{{Role: "user", Content: prompt}}, true)
	if err != nil {
		return nil, err
	}

	var result dto.NewsSummaryResult
	if err := parseStructuredJSON(content, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid summary schema: %w", err)
	}

	return &result, nil
}

func (r *openaiRepository) AnalyzeNarratives(ctx context.Context, topic, combinedPosts string) (*dto.NarrativeAnalysisResult, error) {
	prompt := BuildNarrativeAnalysisPrompt(topic, combinedPosts)

	content, err := r.sendRequest(ctx, []dto.Message{{Role: "user", Content: prompt}}, true)
	if err != nil {
		return nil, err
	}

	var result dto.NarrativeAnalysisResult
	if err := parseStructuredJSON(content, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid narrative schema: %w", err)
	}

	return &result, nil
}

func (r *openaiRepository) Chat(ctx context.Context, messages []dto.Message) (string, error) {
	return r.sendRequest(ctx, messages, false)
}

func (r *openaiRepository) sendRequest(ctx context.Context, messages []dto.Message, jsonMode bool) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.logger.Error("failed to wait for request limit", logger.ErrorField(err))
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.ChatCompletionRequest{
		Model:       r.cfg.OpenAI.Model,
		Messages:    messages,
		Temperature: r.cfg.OpenAI.Temperature,
		MaxTokens:   r.cfg.OpenAI.MaxTokens,
	}
	if jsonMode {
		payload.ResponseFormat = &dto.ResponseFormat{Type: "json_object"}
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.OpenAI.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.OpenAI.APIKey))

	r.logger.Debug("Sending request to completion API",
		logger.StringField("url", r.cfg.OpenAI.BaseURL),
		logger.StringField("model", r.cfg.OpenAI.Model),
	)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from completion API",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("model", r.cfg.OpenAI.Model),
		)
		return "", fmt.Errorf("received non-OK response from completion API: %d - %s", resp.StatusCode, string(body))
	}

	var completionResp dto.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(completionResp.Choices) == 0 || completionResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no content found in completion response")
	}

	if err := r.tokenLimiter.Wait(ctx, completionResp.Usage.TotalTokens); err != nil {
		r.logger.Error("failed to wait for token limit", logger.ErrorField(err))
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}

	return completionResp.Choices[0].Message.Content, nil
}

// parseStructuredJSON strips a Markdown code fence if the model wrapped its
// output in one, then unmarshals into result.
func parseStructuredJSON(content string, result interface{}) error {
	raw := strings.TrimSpace(content)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
	}

	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return fmt.Errorf("failed to unmarshal structured output: %w", err)
	}
	return nil
}
