package repository

import (
	"context"
	"time"

	"sf-weekly-pulse/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TimelineEventRepository defines the interface for interacting with
// social-topic timeline events.
type TimelineEventRepository interface {
	Upsert(ctx context.Context, event *entity.TimelineEvent) error
	FindByID(ctx context.Context, id uint) (*entity.TimelineEvent, error)
	FindByWeek(ctx context.Context, weekOf time.Time) (*entity.TimelineEvent, error)
	FindLatest(ctx context.Context) (*entity.TimelineEvent, error)
	FindRecent(ctx context.Context, limit int) ([]entity.TimelineEvent, error)
	UpdateCommunitySentiment(ctx context.Context, id uint, hype, backlash, totalVotes int) error
}

// NewTimelineEventRepository creates a new instance of TimelineEventRepository.
func NewTimelineEventRepository(db *gorm.DB) TimelineEventRepository {
	return &timelineEventRepository{db: db}
}

type timelineEventRepository struct {
	db *gorm.DB
}

func (r *timelineEventRepository) Upsert(ctx context.Context, event *entity.TimelineEvent) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "week_of"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"headline", "hype_summary", "backlash_summary", "weekly_pulse",
			"hype_tweets", "backlash_tweets", "updated_at",
		}),
	}).Create(event).Error
}

func (r *timelineEventRepository) FindByID(ctx context.Context, id uint) (*entity.TimelineEvent, error) {
	var event entity.TimelineEvent
	result := r.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &event, nil
}

func (r *timelineEventRepository) FindByWeek(ctx context.Context, weekOf time.Time) (*entity.TimelineEvent, error) {
	var event entity.TimelineEvent
	result := r.db.WithContext(ctx).Where("week_of = ?", weekOf).First(&event)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &event, nil
}

func (r *timelineEventRepository) FindLatest(ctx context.Context) (*entity.TimelineEvent, error) {
	var event entity.TimelineEvent
	result := r.db.WithContext(ctx).Order("week_of desc").First(&event)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &event, nil
}

func (r *timelineEventRepository) FindRecent(ctx context.Context, limit int) ([]entity.TimelineEvent, error) {
	var events []entity.TimelineEvent
	err := r.db.WithContext(ctx).Order("week_of desc").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateCommunitySentiment replaces the running aggregate with values
// recomputed from the full vote log.
func (r *timelineEventRepository) UpdateCommunitySentiment(ctx context.Context, id uint, hype, backlash, totalVotes int) error {
	return r.db.WithContext(ctx).Model(&entity.TimelineEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"sentiment_hype":     hype,
			"sentiment_backlash": backlash,
			"total_votes":        totalVotes,
		}).Error
}
