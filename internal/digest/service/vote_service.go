package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/internal/entity"
	"sf-weekly-pulse/pkg/logger"
)

var (
	// ErrInvalidVote is returned when the vote percentages are out of range
	// or do not sum to roughly one hundred.
	ErrInvalidVote = errors.New("invalid vote: percentages must be 0-100 and sum to 100")
	// ErrEventNotFound is returned when the voted event does not exist.
	ErrEventNotFound = errors.New("timeline event not found")
)

// VoteService records community votes on timeline events and maintains the
// aggregated sentiment derived from them.
type VoteService interface {
	RecordVote(ctx context.Context, eventID uint, req *dto.VoteRequest, ipAddress, userAgent string) (*dto.CommunitySentiment, error)
}

// NewVoteService creates a new VoteService.
func NewVoteService(
	eventRepo repository.TimelineEventRepository,
	voteRepo repository.UserVoteRepository,
	log *logger.Logger,
) VoteService {
	return &voteService{
		eventRepo: eventRepo,
		voteRepo:  voteRepo,
		logger:    log,
	}
}

type voteService struct {
	eventRepo repository.TimelineEventRepository
	voteRepo  repository.UserVoteRepository
	logger    *logger.Logger
}

func (s *voteService) RecordVote(ctx context.Context, eventID uint, req *dto.VoteRequest, ipAddress, userAgent string) (*dto.CommunitySentiment, error) {
	if err := validateVote(req); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	vote := &entity.UserVote{
		EventID:            eventID,
		HypePercentage:     req.HypePercentage,
		BacklashPercentage: req.BacklashPercentage,
		IPAddress:          ipAddress,
		UserAgent:          userAgent,
	}
	if err := s.voteRepo.Create(ctx, vote); err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	// The aggregate is recomputed from the full vote log rather than
	// adjusted incrementally, so a stale read self-corrects on the next vote.
	votes, err := s.voteRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	sentiment := computeSentiment(votes)
	if err := s.eventRepo.UpdateCommunitySentiment(ctx, eventID, sentiment.Hype, sentiment.Backlash, sentiment.TotalVotes); err != nil {
		return nil, fmt.Errorf("failed to update community sentiment: %w", err)
	}

	s.logger.Info("Recorded vote",
		logger.IntField("event_id", int(eventID)),
		logger.IntField("hype", sentiment.Hype),
		logger.IntField("backlash", sentiment.Backlash),
		logger.IntField("total_votes", sentiment.TotalVotes),
	)

	return sentiment, nil
}

func validateVote(req *dto.VoteRequest) error {
	if req == nil {
		return ErrInvalidVote
	}
	if req.HypePercentage < 0 || req.HypePercentage > 100 {
		return ErrInvalidVote
	}
	if req.BacklashPercentage < 0 || req.BacklashPercentage > 100 {
		return ErrInvalidVote
	}
	// Sliders can land on 49.5/50.5, allow a one point tolerance.
	if math.Abs(req.HypePercentage+req.BacklashPercentage-100) > 1 {
		return ErrInvalidVote
	}
	return nil
}

func computeSentiment(votes []entity.UserVote) *dto.CommunitySentiment {
	if len(votes) == 0 {
		return &dto.CommunitySentiment{Hype: 50, Backlash: 50, TotalVotes: 0}
	}

	var hypeSum, backlashSum float64
	for _, v := range votes {
		hypeSum += v.HypePercentage
		backlashSum += v.BacklashPercentage
	}
	n := float64(len(votes))
	return &dto.CommunitySentiment{
		Hype:       int(math.Round(hypeSum / n)),
		Backlash:   int(math.Round(backlashSum / n)),
		TotalVotes: len(votes),
	}
}
