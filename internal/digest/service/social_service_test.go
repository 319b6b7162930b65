package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
)

func newSocialForTest(t *testing.T, twitter *fakeTwitter, ai *fakeAI, events *fakeTimelineEventRepo, store *fakeCacheStore) *socialService {
	t.Helper()
	cfg := newTestConfig()
	var delays []time.Duration
	narrative := &narrativeService{
		cfg:    cfg,
		aiRepo: ai,
		logger: newTestLogger(t),
		sleep:  func(d time.Duration) { delays = append(delays, d) },
	}
	return &socialService{
		cfg:         cfg,
		twitterRepo: twitter,
		narrative:   narrative,
		eventRepo:   events,
		store:       store,
		logger:      newTestLogger(t),
		sleep:       func(time.Duration) {},
	}
}

func livePosts() ([]dto.TwitterPost, []dto.TwitterUser) {
	posts := []dto.TwitterPost{
		{ID: "1", Text: "This robotaxi rollout is amazing, love it", AuthorID: "u1", CreatedAt: "2025-06-09T10:00:00Z"},
		{ID: "2", Text: "Honestly the whole thing is terrible and overhyped", AuthorID: "u2", CreatedAt: "2025-06-09T11:00:00Z"},
		{ID: "3", Text: "Took one downtown yesterday, no opinion yet", AuthorID: "u1", CreatedAt: "2025-06-09T12:00:00Z"},
	}
	users := []dto.TwitterUser{
		{ID: "u1", Username: "rider_one", Name: "Rider One"},
		{ID: "u2", Username: "skeptic_two", Name: "Skeptic Two"},
	}
	return posts, users
}

func TestFetchSentimentPostsLive(t *testing.T) {
	posts, users := livePosts()
	twitter := &fakeTwitter{posts: posts, users: users}
	store := newFakeCacheStore()
	svc := newSocialForTest(t, twitter, &fakeAI{}, &fakeTimelineEventRepo{}, store)

	tweets, kind := svc.FetchSentimentPosts(context.Background(), "Waymo", dto.SentimentHype, 10)

	assert.Equal(t, dto.GenerationLive, kind)
	require.Len(t, tweets, 3)
	// The query does the sentiment filtering, results are tagged wholesale.
	assert.Equal(t, dto.SentimentHype, tweets[0].Sentiment)
	assert.Equal(t, "Rider One", tweets[0].Author)
	assert.Equal(t, "rider_one", tweets[0].Username)
	assert.Equal(t, 1, store.sets)
}

func TestFetchSentimentPostsCacheHitSkipsNetwork(t *testing.T) {
	cached := []dto.StructuredTweet{{ID: "c1", Text: "cached", Sentiment: dto.SentimentHype}}
	encoded, err := json.Marshal(cached)
	require.NoError(t, err)

	store := newFakeCacheStore()
	store.data["social:Waymo:hype"] = encoded

	twitter := &fakeTwitter{err: errors.New("must not be called")}
	svc := newSocialForTest(t, twitter, &fakeAI{}, &fakeTimelineEventRepo{}, store)

	tweets, kind := svc.FetchSentimentPosts(context.Background(), "Waymo", dto.SentimentHype, 10)

	assert.Equal(t, dto.GenerationLive, kind)
	require.Len(t, tweets, 1)
	assert.Equal(t, "c1", tweets[0].ID)
	assert.Equal(t, 0, twitter.calls)
}

func TestFetchSentimentPostsFallsBackToMock(t *testing.T) {
	tests := []struct {
		name    string
		twitter *fakeTwitter
	}{
		{name: "unconfigured", twitter: &fakeTwitter{err: repository.ErrTwitterNotConfigured}},
		{name: "network error", twitter: &fakeTwitter{err: errors.New("timeout")}},
		{name: "empty result", twitter: &fakeTwitter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeCacheStore()
			svc := newSocialForTest(t, tt.twitter, &fakeAI{}, &fakeTimelineEventRepo{}, store)

			tweets, kind := svc.FetchSentimentPosts(context.Background(), "Waymo", dto.SentimentBacklash, 10)

			assert.Equal(t, dto.GenerationFallback, kind)
			require.NotEmpty(t, tweets)
			for _, tw := range tweets {
				assert.Equal(t, dto.SentimentBacklash, tw.Sentiment)
				assert.Contains(t, tw.Text, "Waymo")
			}
			// Mock results are never cached.
			assert.Equal(t, 0, store.sets)
		})
	}
}

func TestFetchTopicPostsClassifiesClientSide(t *testing.T) {
	posts, users := livePosts()
	twitter := &fakeTwitter{posts: posts, users: users}
	svc := newSocialForTest(t, twitter, &fakeAI{}, &fakeTimelineEventRepo{}, newFakeCacheStore())

	hype, backlash, kind := svc.FetchTopicPosts(context.Background(), "Waymo")

	assert.Equal(t, dto.GenerationLive, kind)
	require.Len(t, hype, 1)
	require.Len(t, backlash, 1)
	assert.Equal(t, "1", hype[0].ID)
	assert.Equal(t, "2", backlash[0].ID)
	// The neutral post lands in neither bucket.
	assert.Equal(t, 1, twitter.calls)
}

func TestClassifyPost(t *testing.T) {
	assert.Equal(t, dto.SentimentHype, ClassifyPost("This is AMAZING news"))
	assert.Equal(t, dto.SentimentBacklash, ClassifyPost("what a terrible idea"))
	assert.Equal(t, "", ClassifyPost("a neutral observation"))
}

func TestProcessWeeklyTopicsPartialSuccess(t *testing.T) {
	// First narrative call fails through all retries, then all succeed.
	ai := &fakeAI{errs: []error{errors.New("x"), errors.New("x"), errors.New("x")}}
	events := &fakeTimelineEventRepo{}
	svc := newSocialForTest(t, &fakeTwitter{err: repository.ErrTwitterNotConfigured}, ai, events, newFakeCacheStore())

	report, err := svc.ProcessWeeklyTopics(context.Background(), []string{"Waymo", "GPT-5", "APEC"})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Waymo")
	require.Len(t, events.upserted, 2)
	assert.Equal(t, "GPT-5", events.upserted[0].Headline)
	assert.Equal(t, "APEC", events.upserted[1].Headline)
}

func TestProcessWeeklyTopicsAssignsDescendingWeeks(t *testing.T) {
	events := &fakeTimelineEventRepo{}
	svc := newSocialForTest(t, &fakeTwitter{err: repository.ErrTwitterNotConfigured}, &fakeAI{}, events, newFakeCacheStore())

	_, err := svc.ProcessWeeklyTopics(context.Background(), []string{"Waymo", "GPT-5"})
	require.NoError(t, err)

	require.Len(t, events.upserted, 2)
	first := events.upserted[0].WeekOf
	second := events.upserted[1].WeekOf
	assert.Equal(t, 7*24*time.Hour, first.Sub(second))
	assert.Equal(t, time.Sunday, first.Weekday())
}

func TestProcessWeeklyTopicsPersistsEvidence(t *testing.T) {
	events := &fakeTimelineEventRepo{}
	svc := newSocialForTest(t, &fakeTwitter{err: repository.ErrTwitterNotConfigured}, &fakeAI{}, events, newFakeCacheStore())

	_, err := svc.ProcessWeeklyTopics(context.Background(), []string{"Waymo"})
	require.NoError(t, err)

	require.Len(t, events.upserted, 1)
	event := events.upserted[0]
	assert.Equal(t, "hype", event.HypeSummary)
	assert.Equal(t, "backlash", event.BacklashSummary)

	var hype []dto.StructuredTweet
	require.NoError(t, json.Unmarshal(event.HypeTweets, &hype))
	assert.NotEmpty(t, hype)
}
