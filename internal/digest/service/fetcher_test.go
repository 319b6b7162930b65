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

func TestIsSFRelevant(t *testing.T) {
	tests := []struct {
		name    string
		article dto.NewsArticle
		want    bool
	}{
		{
			name:    "city name in title",
			article: dto.NewsArticle{Title: "San Francisco approves new housing"},
			want:    true,
		},
		{
			name:    "neighborhood in snippet",
			article: dto.NewsArticle{Title: "Crime report", Snippet: "Incidents in the Tenderloin rose"},
			want:    true,
		},
		{
			name:    "short token at start of title",
			article: dto.NewsArticle{Title: "SF budget passes"},
			want:    true,
		},
		{
			name:    "sf inside another word does not match",
			article: dto.NewsArticle{Title: "Transfer window closes for soccer clubs"},
			want:    false,
		},
		{
			name:    "no geography at all",
			article: dto.NewsArticle{Title: "National markets rally", Snippet: "Stocks up across the country"},
			want:    false,
		},
		{
			name:    "case insensitive",
			article: dto.NewsArticle{Title: "BAY AREA transit strike looms"},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSFRelevant(tt.article))
		})
	}
}

func TestFetchWithFallbackPrefersAPI(t *testing.T) {
	api := &fakeNewsAPI{articles: []dto.NewsArticle{
		{Title: "San Francisco tech layoffs", URL: "https://a.test/1"},
	}}
	rss := &fakeRSS{articles: []dto.NewsArticle{
		{Title: "San Francisco rss story", URL: "https://r.test/1"},
	}}

	fetcher := NewNewsFetcher(api, rss, newTestLogger(t))
	got := fetcher.FetchWithFallback(context.Background(), dto.CategoryTech, time.Now())

	require.Len(t, got, 1)
	assert.Equal(t, "https://a.test/1", got[0].URL)
	assert.Equal(t, 0, rss.calls)
}

func TestFetchWithFallbackUsesRSSOnAPIError(t *testing.T) {
	api := &fakeNewsAPI{err: errors.New("401 unauthorized")}
	rss := &fakeRSS{articles: []dto.NewsArticle{
		{Title: "Mission District festival returns", URL: "https://r.test/1"},
	}}

	fetcher := NewNewsFetcher(api, rss, newTestLogger(t))
	got := fetcher.FetchWithFallback(context.Background(), dto.CategorySFLocal, time.Now())

	require.Len(t, got, 1)
	assert.Equal(t, "https://r.test/1", got[0].URL)
	assert.Equal(t, 1, rss.calls)
}

func TestFetchWithFallbackUsesRSSOnEmptyAPI(t *testing.T) {
	api := &fakeNewsAPI{}
	rss := &fakeRSS{articles: []dto.NewsArticle{
		{Title: "Muni adds overnight routes", URL: "https://r.test/1"},
	}}

	fetcher := NewNewsFetcher(api, rss, newTestLogger(t))
	got := fetcher.FetchWithFallback(context.Background(), dto.CategorySFLocal, time.Now())

	require.Len(t, got, 1)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, 1, rss.calls)
}

func TestFetchWithFallbackDropsIrrelevantArticles(t *testing.T) {
	api := &fakeNewsAPI{articles: []dto.NewsArticle{
		{Title: "San Francisco housing vote", URL: "https://a.test/1"},
		{Title: "National election coverage", URL: "https://a.test/2"},
	}}
	rss := &fakeRSS{}

	fetcher := NewNewsFetcher(api, rss, newTestLogger(t))
	got := fetcher.FetchWithFallback(context.Background(), dto.CategoryPolitics, time.Now())

	require.Len(t, got, 1)
	assert.Equal(t, "https://a.test/1", got[0].URL)
}

func TestFetchWithFallbackBothFailReturnsEmpty(t *testing.T) {
	api := &fakeNewsAPI{err: errors.New("api down")}
	rss := &fakeRSS{err: errors.New("rss down")}

	fetcher := NewNewsFetcher(api, rss, newTestLogger(t))
	got := fetcher.FetchWithFallback(context.Background(), dto.CategoryEconomy, time.Now())

	assert.Empty(t, got)
}
