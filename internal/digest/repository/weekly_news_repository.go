package repository

import (
	"context"
	"time"

	"sf-weekly-pulse/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WeeklyNewsRepository defines the interface for interacting with weekly
// digest records.
type WeeklyNewsRepository interface {
	Upsert(ctx context.Context, news *entity.WeeklyNews) error
	FindByWeek(ctx context.Context, weekOf time.Time) (*entity.WeeklyNews, error)
	FindLatest(ctx context.Context) (*entity.WeeklyNews, error)
	FindRecent(ctx context.Context, limit int) ([]entity.WeeklyNews, error)
}

// NewWeeklyNewsRepository creates a new instance of WeeklyNewsRepository.
func NewWeeklyNewsRepository(db *gorm.DB) WeeklyNewsRepository {
	return &weeklyNewsRepository{db: db}
}

type weeklyNewsRepository struct {
	db *gorm.DB
}

// Upsert creates the week's record or replaces its digest columns when a
// record for the same week_of already exists.
func (r *weeklyNewsRepository) Upsert(ctx context.Context, news *entity.WeeklyNews) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "week_of"}},
		UpdateAll: true,
	}).Create(news).Error
}

func (r *weeklyNewsRepository) FindByWeek(ctx context.Context, weekOf time.Time) (*entity.WeeklyNews, error) {
	var news entity.WeeklyNews
	result := r.db.WithContext(ctx).Where("week_of = ?", weekOf).First(&news)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &news, nil
}

func (r *weeklyNewsRepository) FindLatest(ctx context.Context) (*entity.WeeklyNews, error) {
	var news entity.WeeklyNews
	result := r.db.WithContext(ctx).Order("week_of desc").First(&news)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &news, nil
}

func (r *weeklyNewsRepository) FindRecent(ctx context.Context, limit int) ([]entity.WeeklyNews, error) {
	var news []entity.WeeklyNews
	err := r.db.WithContext(ctx).Order("week_of desc").Limit(limit).Find(&news).Error
	if err != nil {
		return nil, err
	}
	return news, nil
}
