package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/internal/entity"
	"sf-weekly-pulse/pkg/logger"
)

// ErrEmptyChat is returned when the chat request carries no messages.
var ErrEmptyChat = errors.New("chat request must contain at least one message")

// ChatService answers free-form questions grounded in the latest digest.
type ChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

// NewChatService creates a new ChatService.
func NewChatService(
	aiRepo repository.AIRepository,
	newsRepo repository.WeeklyNewsRepository,
	eventRepo repository.TimelineEventRepository,
	log *logger.Logger,
) ChatService {
	return &chatService{
		aiRepo:    aiRepo,
		newsRepo:  newsRepo,
		eventRepo: eventRepo,
		logger:    log,
	}
}

type chatService struct {
	aiRepo    repository.AIRepository
	newsRepo  repository.WeeklyNewsRepository
	eventRepo repository.TimelineEventRepository
	logger    *logger.Logger
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, ErrEmptyChat
	}

	contextBlock := s.buildContextBlock(ctx)

	messages := make([]dto.Message, 0, len(req.Messages)+1)
	messages = append(messages, dto.Message{
		Role:    "system",
		Content: repository.BuildChatSystemPrompt(contextBlock),
	})
	messages = append(messages, req.Messages...)

	reply, err := s.aiRepo.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return &dto.ChatResponse{Reply: reply}, nil
}

// buildContextBlock assembles the latest digest and timeline event into a
// text block for the system prompt. Missing data degrades to a shorter block
// instead of failing the chat.
func (s *chatService) buildContextBlock(ctx context.Context) string {
	var b strings.Builder

	news, err := s.newsRepo.FindLatest(ctx)
	if err != nil {
		s.logger.Warn("Failed to load latest digest for chat context", logger.ErrorField(err))
	}
	if news != nil {
		b.WriteString(fmt.Sprintf("Weekly digest for the week of %s:\n\n", news.WeekOf.Format("January 2, 2006")))
		writeCategoryContext(&b, "Tech", &news.Tech)
		writeCategoryContext(&b, "Politics", &news.Politics)
		writeCategoryContext(&b, "Economy", &news.Economy)
		writeCategoryContext(&b, "SF Local", &news.SFLocal)
		if len(news.WeeklyKeywords) > 0 {
			b.WriteString(fmt.Sprintf("Keywords of the week: %s\n\n", strings.Join(news.WeeklyKeywords, ", ")))
		}
	}

	event, err := s.eventRepo.FindLatest(ctx)
	if err != nil {
		s.logger.Warn("Failed to load latest timeline event for chat context", logger.ErrorField(err))
	}
	if event != nil {
		b.WriteString(fmt.Sprintf("Trending topic: %s\n", event.Headline))
		b.WriteString(fmt.Sprintf("Enthusiast view: %s\n", event.HypeSummary))
		b.WriteString(fmt.Sprintf("Critic view: %s\n", event.BacklashSummary))
		b.WriteString(fmt.Sprintf("Pulse: %s\n", event.WeeklyPulse))
		b.WriteString(fmt.Sprintf("Community sentiment: %d%% hype, %d%% backlash across %d votes.\n",
			event.SentimentHype, event.SentimentBacklash, event.TotalVotes))
	}

	if b.Len() == 0 {
		return "No digest has been published yet."
	}
	return b.String()
}

func writeCategoryContext(b *strings.Builder, label string, cols *entity.CategoryColumns) {
	if cols.SummaryShort == "" {
		return
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", label, cols.SummaryShort))
	for _, bullet := range cols.Bullets {
		b.WriteString(fmt.Sprintf("  - %s\n", bullet))
	}
	b.WriteString("\n")
}
