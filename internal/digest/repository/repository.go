package repository

import (
	"context"
	"fmt"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/pkg/logger"

	"google.golang.org/genai"
)

// AIRepository is the narrative generator's view of a chat-completion
// provider. All methods validate the structured output before returning it;
// schema failures surface as errors so the retry wrapper treats them like
// transport failures.
type AIRepository interface {
	GenerateCategorySummary(ctx context.Context, category dto.Category, articles []dto.NewsArticle) (*dto.NewsSummaryResult, error)
	AnalyzeNarratives(ctx context.Context, topic, combinedPosts string) (*dto.NarrativeAnalysisResult, error)
	Chat(ctx context.Context, messages []dto.Message) (string, error)
}

// NewAIRepository creates the provider selected by ai.provider.
func NewAIRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	switch cfg.AI.Provider {
	case "openai", "":
		return NewOpenAIRepository(cfg, log), nil
	case "gemini":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.Gemini.APIKey})
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		return NewGeminiAIRepository(cfg, log, genAiClient)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AI.Provider)
	}
}
