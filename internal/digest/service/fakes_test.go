package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/entity"
	"sf-weekly-pulse/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func newTestConfig() *config.Config {
	return &config.Config{
		Aggregator: config.Aggregator{
			MaxRetries:     3,
			RetryBaseDelay: 10 * time.Millisecond,
			LLMDelay:       time.Millisecond,
			TopicDelay:     time.Millisecond,
			MaxArticles:    10,
		},
	}
}

// fakeNewsAPI is safe for the aggregator's concurrent category fetches.
type fakeNewsAPI struct {
	mu         sync.Mutex
	articles   []dto.NewsArticle
	byCategory map[dto.Category][]dto.NewsArticle
	err        error
	calls      int
}

func (f *fakeNewsAPI) Search(ctx context.Context, category dto.Category, from time.Time, to *time.Time) ([]dto.NewsArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.byCategory != nil {
		return f.byCategory[category], f.err
	}
	return f.articles, f.err
}

type fakeRSS struct {
	mu       sync.Mutex
	articles []dto.NewsArticle
	err      error
	calls    int
}

func (f *fakeRSS) Fetch(ctx context.Context, category dto.Category) ([]dto.NewsArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.articles, f.err
}

// fakeAI scripts per-call errors: errs[i] is returned for call i, nil past
// the end of the slice.
type fakeAI struct {
	summary      *dto.NewsSummaryResult
	narrative    *dto.NarrativeAnalysisResult
	chatReply    string
	chatMessages []dto.Message
	errs         []error
	calls        int
}

func (f *fakeAI) nextErr() error {
	i := f.calls
	f.calls++
	if i < len(f.errs) {
		return f.errs[i]
	}
	return nil
}

func (f *fakeAI) GenerateCategorySummary(ctx context.Context, category dto.Category, articles []dto.NewsArticle) (*dto.NewsSummaryResult, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	if f.summary != nil {
		return f.summary, nil
	}
	return &dto.NewsSummaryResult{
		SummaryShort:    "short",
		SummaryDetailed: "detailed",
		Bullets:         []string{"one"},
		Keywords:        []string{"Keyword"},
	}, nil
}

func (f *fakeAI) AnalyzeNarratives(ctx context.Context, topic, combinedPosts string) (*dto.NarrativeAnalysisResult, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	if f.narrative != nil {
		return f.narrative, nil
	}
	return &dto.NarrativeAnalysisResult{
		HypeSummary:     "hype",
		BacklashSummary: "backlash",
		WeeklyPulse:     "pulse",
	}, nil
}

func (f *fakeAI) Chat(ctx context.Context, messages []dto.Message) (string, error) {
	f.chatMessages = messages
	if err := f.nextErr(); err != nil {
		return "", err
	}
	return f.chatReply, nil
}

type fakeTwitter struct {
	posts []dto.TwitterPost
	users []dto.TwitterUser
	err   error
	calls int
}

func (f *fakeTwitter) SearchPosts(ctx context.Context, query string, maxResults int) ([]dto.TwitterPost, []dto.TwitterUser, error) {
	f.calls++
	return f.posts, f.users, f.err
}

type fakeWeeklyNewsRepo struct {
	upserted []*entity.WeeklyNews
	latest   *entity.WeeklyNews
	err      error
}

func (f *fakeWeeklyNewsRepo) Upsert(ctx context.Context, news *entity.WeeklyNews) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, news)
	return nil
}

func (f *fakeWeeklyNewsRepo) FindByWeek(ctx context.Context, weekOf time.Time) (*entity.WeeklyNews, error) {
	return f.latest, f.err
}

func (f *fakeWeeklyNewsRepo) FindLatest(ctx context.Context) (*entity.WeeklyNews, error) {
	return f.latest, f.err
}

func (f *fakeWeeklyNewsRepo) FindRecent(ctx context.Context, limit int) ([]entity.WeeklyNews, error) {
	if f.latest == nil {
		return nil, f.err
	}
	return []entity.WeeklyNews{*f.latest}, f.err
}

type fakeTimelineEventRepo struct {
	upserted       []*entity.TimelineEvent
	byID           map[uint]*entity.TimelineEvent
	latest         *entity.TimelineEvent
	sentimentCalls []struct {
		ID                         uint
		Hype, Backlash, TotalVotes int
	}
	err error
}

func (f *fakeTimelineEventRepo) Upsert(ctx context.Context, event *entity.TimelineEvent) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, event)
	return nil
}

func (f *fakeTimelineEventRepo) FindByID(ctx context.Context, id uint) (*entity.TimelineEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakeTimelineEventRepo) FindByWeek(ctx context.Context, weekOf time.Time) (*entity.TimelineEvent, error) {
	return f.latest, f.err
}

func (f *fakeTimelineEventRepo) FindLatest(ctx context.Context) (*entity.TimelineEvent, error) {
	return f.latest, f.err
}

func (f *fakeTimelineEventRepo) FindRecent(ctx context.Context, limit int) ([]entity.TimelineEvent, error) {
	if f.latest == nil {
		return nil, f.err
	}
	return []entity.TimelineEvent{*f.latest}, f.err
}

func (f *fakeTimelineEventRepo) UpdateCommunitySentiment(ctx context.Context, id uint, hype, backlash, totalVotes int) error {
	if f.err != nil {
		return f.err
	}
	f.sentimentCalls = append(f.sentimentCalls, struct {
		ID                         uint
		Hype, Backlash, TotalVotes int
	}{id, hype, backlash, totalVotes})
	return nil
}

type fakeVoteRepo struct {
	votes []entity.UserVote
	err   error
}

func (f *fakeVoteRepo) Create(ctx context.Context, vote *entity.UserVote) error {
	if f.err != nil {
		return f.err
	}
	f.votes = append(f.votes, *vote)
	return nil
}

func (f *fakeVoteRepo) FindByEventID(ctx context.Context, eventID uint) ([]entity.UserVote, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.UserVote
	for _, v := range f.votes {
		if v.EventID == eventID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeCacheStore struct {
	data map[string][]byte
	sets int
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{data: make(map[string][]byte)}
}

func (f *fakeCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.sets++
	f.data[key] = value
	return nil
}
