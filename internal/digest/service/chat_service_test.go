package service

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/entity"
)

func TestChatRejectsEmptyRequest(t *testing.T) {
	svc := NewChatService(&fakeAI{}, &fakeWeeklyNewsRepo{}, &fakeTimelineEventRepo{}, newTestLogger(t))

	_, err := svc.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyChat)

	_, err = svc.Chat(context.Background(), &dto.ChatRequest{})
	assert.ErrorIs(t, err, ErrEmptyChat)
}

func TestChatPrependsGroundingContext(t *testing.T) {
	ai := &fakeAI{chatReply: "Muni added overnight routes this week."}
	news := &fakeWeeklyNewsRepo{latest: &entity.WeeklyNews{
		WeekOf: time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		SFLocal: entity.CategoryColumns{
			SummaryShort: "Muni expanded overnight service.",
			Bullets:      pq.StringArray{"Overnight routes added"},
		},
		WeeklyKeywords: pq.StringArray{"Muni", "Transit"},
	}}
	events := &fakeTimelineEventRepo{latest: &entity.TimelineEvent{
		Headline:          "Waymo",
		HypeSummary:       "Riders are thrilled.",
		BacklashSummary:   "Critics cite blocked intersections.",
		WeeklyPulse:       "Sentiment is split.",
		SentimentHype:     61,
		SentimentBacklash: 39,
		TotalVotes:        42,
	}}

	svc := NewChatService(ai, news, events, newTestLogger(t))
	resp, err := svc.Chat(context.Background(), &dto.ChatRequest{Messages: []dto.Message{
		{Role: "user", Content: "What happened with Muni?"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Muni added overnight routes this week.", resp.Reply)

	require.Len(t, ai.chatMessages, 2)
	system := ai.chatMessages[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "June 8, 2025")
	assert.Contains(t, system.Content, "Muni expanded overnight service.")
	assert.Contains(t, system.Content, "Overnight routes added")
	assert.Contains(t, system.Content, "Waymo")
	assert.Contains(t, system.Content, "61% hype, 39% backlash across 42 votes")
	assert.Equal(t, "user", ai.chatMessages[1].Role)
}

func TestChatDegradesWithoutDigest(t *testing.T) {
	ai := &fakeAI{chatReply: "No digest yet."}
	svc := NewChatService(ai, &fakeWeeklyNewsRepo{}, &fakeTimelineEventRepo{}, newTestLogger(t))

	resp, err := svc.Chat(context.Background(), &dto.ChatRequest{Messages: []dto.Message{
		{Role: "user", Content: "Anything new?"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "No digest yet.", resp.Reply)
	assert.Contains(t, ai.chatMessages[0].Content, "No digest has been published yet.")
}
