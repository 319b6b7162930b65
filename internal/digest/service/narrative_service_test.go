package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sf-weekly-pulse/internal/digest/dto"
)

func newNarrativeForTest(t *testing.T, ai *fakeAI, delays *[]time.Duration) *narrativeService {
	t.Helper()
	return &narrativeService{
		cfg:    newTestConfig(),
		aiRepo: ai,
		logger: newTestLogger(t),
		sleep: func(d time.Duration) {
			*delays = append(*delays, d)
		},
	}
}

func TestSummarizeSucceedsOnThirdAttempt(t *testing.T) {
	ai := &fakeAI{errs: []error{errors.New("503"), errors.New("503")}}
	var delays []time.Duration
	svc := newNarrativeForTest(t, ai, &delays)

	articles := []dto.NewsArticle{{Title: "San Francisco tech story"}}
	gen := svc.Summarize(context.Background(), dto.CategoryTech, articles)

	assert.Equal(t, dto.GenerationLive, gen.Kind)
	assert.Equal(t, "short", gen.Result.SummaryShort)
	assert.Equal(t, 3, ai.calls)
	// Backoff doubles per attempt: base, then 2x base. No delay after the
	// final outcome.
	require.Len(t, delays, 2)
	assert.Equal(t, 10*time.Millisecond, delays[0])
	assert.Equal(t, 20*time.Millisecond, delays[1])
}

func TestSummarizeFallsBackAfterAllRetries(t *testing.T) {
	ai := &fakeAI{errs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")}}
	var delays []time.Duration
	svc := newNarrativeForTest(t, ai, &delays)

	articles := []dto.NewsArticle{
		{Title: "Waymo expands in San Francisco", Snippet: "Robotaxi coverage grows"},
		{Title: "Startup raises funding round"},
	}
	gen := svc.Summarize(context.Background(), dto.CategoryTech, articles)

	assert.Equal(t, dto.GenerationFallback, gen.Kind)
	assert.Contains(t, gen.Reason, "boom")
	assert.Equal(t, 3, ai.calls)
	require.Len(t, delays, 2)

	// The fallback is assembled from the articles themselves.
	assert.Contains(t, gen.Result.SummaryShort, "2 stories")
	assert.Contains(t, gen.Result.SummaryShort, "Waymo expands in San Francisco")
	assert.Equal(t, []string{"Waymo expands in San Francisco", "Startup raises funding round"}, []string(gen.Result.Bullets))
	assert.NotEmpty(t, gen.Result.Keywords)
}

func TestSummarizeFallbackNeverFailsWithoutArticles(t *testing.T) {
	ai := &fakeAI{errs: []error{errors.New("x"), errors.New("x"), errors.New("x")}}
	var delays []time.Duration
	svc := newNarrativeForTest(t, ai, &delays)

	gen := svc.Summarize(context.Background(), dto.CategoryEconomy, nil)

	assert.Equal(t, dto.GenerationFallback, gen.Kind)
	assert.Contains(t, gen.Result.SummaryShort, "No economy news")
	assert.Equal(t, []string{"San Francisco"}, []string(gen.Result.Keywords))
}

func TestAnalyzeNarrativesSurfacesFinalError(t *testing.T) {
	ai := &fakeAI{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	var delays []time.Duration
	svc := newNarrativeForTest(t, ai, &delays)

	result, err := svc.AnalyzeNarratives(context.Background(), "Waymo", "posts")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Contains(t, err.Error(), "c")
}

func TestAnalyzeNarrativesSucceeds(t *testing.T) {
	ai := &fakeAI{}
	var delays []time.Duration
	svc := newNarrativeForTest(t, ai, &delays)

	result, err := svc.AnalyzeNarratives(context.Background(), "Waymo", "posts")

	require.NoError(t, err)
	assert.Equal(t, "hype", result.HypeSummary)
	assert.Empty(t, delays)
}

func TestWithRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := withRetry(ctx, 3, time.Millisecond, func(time.Duration) {}, func() error {
		calls++
		cancel()
		return errors.New("fail")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
