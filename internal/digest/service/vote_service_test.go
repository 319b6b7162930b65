package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/entity"
)

func newVoteForTest(t *testing.T, events *fakeTimelineEventRepo, votes *fakeVoteRepo) VoteService {
	t.Helper()
	return NewVoteService(events, votes, newTestLogger(t))
}

func TestRecordVoteValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *dto.VoteRequest
	}{
		{name: "nil request", req: nil},
		{name: "hype below zero", req: &dto.VoteRequest{HypePercentage: -1, BacklashPercentage: 101}},
		{name: "hype above hundred", req: &dto.VoteRequest{HypePercentage: 120, BacklashPercentage: -20}},
		{name: "sum too low", req: &dto.VoteRequest{HypePercentage: 40, BacklashPercentage: 40}},
		{name: "sum too high", req: &dto.VoteRequest{HypePercentage: 80, BacklashPercentage: 80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newVoteForTest(t, &fakeTimelineEventRepo{}, &fakeVoteRepo{})
			_, err := svc.RecordVote(context.Background(), 1, tt.req, "1.2.3.4", "test-agent")
			assert.ErrorIs(t, err, ErrInvalidVote)
		})
	}
}

func TestRecordVoteAllowsSliderRounding(t *testing.T) {
	events := &fakeTimelineEventRepo{byID: map[uint]*entity.TimelineEvent{
		1: {ID: 1, Headline: "Waymo"},
	}}
	svc := newVoteForTest(t, events, &fakeVoteRepo{})

	// 49.5 + 50.5 sums to exactly 100; 49.6 + 49.6 is off by 0.8, within
	// the one point tolerance.
	_, err := svc.RecordVote(context.Background(), 1, &dto.VoteRequest{HypePercentage: 49.6, BacklashPercentage: 49.6}, "1.2.3.4", "ua")
	assert.NoError(t, err)
}

func TestRecordVoteUnknownEvent(t *testing.T) {
	svc := newVoteForTest(t, &fakeTimelineEventRepo{byID: map[uint]*entity.TimelineEvent{}}, &fakeVoteRepo{})

	_, err := svc.RecordVote(context.Background(), 99, &dto.VoteRequest{HypePercentage: 60, BacklashPercentage: 40}, "1.2.3.4", "ua")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRecordVoteRecomputesFromFullLog(t *testing.T) {
	events := &fakeTimelineEventRepo{byID: map[uint]*entity.TimelineEvent{
		1: {ID: 1, Headline: "Waymo"},
	}}
	votes := &fakeVoteRepo{votes: []entity.UserVote{
		{EventID: 1, HypePercentage: 80, BacklashPercentage: 20},
		{EventID: 1, HypePercentage: 60, BacklashPercentage: 40},
		{EventID: 2, HypePercentage: 0, BacklashPercentage: 100},
	}}
	svc := newVoteForTest(t, events, votes)

	sentiment, err := svc.RecordVote(context.Background(), 1, &dto.VoteRequest{HypePercentage: 10, BacklashPercentage: 90}, "1.2.3.4", "ua")
	require.NoError(t, err)

	// Mean of 80, 60 and 10 rounds to 50; votes on other events are ignored.
	assert.Equal(t, 50, sentiment.Hype)
	assert.Equal(t, 50, sentiment.Backlash)
	assert.Equal(t, 3, sentiment.TotalVotes)

	require.Len(t, events.sentimentCalls, 1)
	assert.Equal(t, uint(1), events.sentimentCalls[0].ID)
	assert.Equal(t, 50, events.sentimentCalls[0].Hype)
	assert.Equal(t, 3, events.sentimentCalls[0].TotalVotes)
}

func TestRecordVoteStoresRequestMetadata(t *testing.T) {
	events := &fakeTimelineEventRepo{byID: map[uint]*entity.TimelineEvent{
		1: {ID: 1, Headline: "Waymo"},
	}}
	votes := &fakeVoteRepo{}
	svc := newVoteForTest(t, events, votes)

	_, err := svc.RecordVote(context.Background(), 1, &dto.VoteRequest{HypePercentage: 70, BacklashPercentage: 30}, "203.0.113.5", "Mozilla/5.0")
	require.NoError(t, err)

	require.Len(t, votes.votes, 1)
	assert.Equal(t, "203.0.113.5", votes.votes[0].IPAddress)
	assert.Equal(t, "Mozilla/5.0", votes.votes[0].UserAgent)
	assert.Equal(t, 70.0, votes.votes[0].HypePercentage)
}

func TestComputeSentimentEmptyLog(t *testing.T) {
	sentiment := computeSentiment(nil)
	assert.Equal(t, 50, sentiment.Hype)
	assert.Equal(t, 50, sentiment.Backlash)
	assert.Equal(t, 0, sentiment.TotalVotes)
}
