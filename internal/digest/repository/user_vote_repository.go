package repository

import (
	"context"

	"sf-weekly-pulse/internal/entity"

	"gorm.io/gorm"
)

// UserVoteRepository defines the interface for the append-only vote log.
type UserVoteRepository interface {
	Create(ctx context.Context, vote *entity.UserVote) error
	FindByEventID(ctx context.Context, eventID uint) ([]entity.UserVote, error)
}

// NewUserVoteRepository creates a new instance of UserVoteRepository.
func NewUserVoteRepository(db *gorm.DB) UserVoteRepository {
	return &userVoteRepository{db: db}
}

type userVoteRepository struct {
	db *gorm.DB
}

// Create appends a vote to the log.
func (r *userVoteRepository) Create(ctx context.Context, vote *entity.UserVote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

// FindByEventID returns every vote for the event in creation order. The vote
// service averages over the full set rather than keeping a running mean.
func (r *userVoteRepository) FindByEventID(ctx context.Context, eventID uint) ([]entity.UserVote, error) {
	var votes []entity.UserVote
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at asc").Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}
