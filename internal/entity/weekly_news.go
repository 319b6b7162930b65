package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// CategoryColumns holds the denormalized per-category digest fields embedded
// into WeeklyNews. Sources is a JSON array of the articles behind the summary.
type CategoryColumns struct {
	SummaryShort    string         `gorm:"type:text" json:"summary_short"`
	SummaryDetailed string         `gorm:"type:text" json:"summary_detailed"`
	Bullets         pq.StringArray `gorm:"type:text[]" json:"bullets"`
	Keywords        pq.StringArray `gorm:"type:text[]" json:"keywords"`
	Sources         datatypes.JSON `json:"sources"`
}

// WeeklyNews is one week's San Francisco news digest. WeekOf is normalized to
// the most recent Sunday at midnight and is unique, so re-running a week
// updates the existing record in place.
type WeeklyNews struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	WeekOf         time.Time       `gorm:"uniqueIndex;not null" json:"week_of"`
	Tech           CategoryColumns `gorm:"embedded;embeddedPrefix:tech_" json:"tech"`
	Politics       CategoryColumns `gorm:"embedded;embeddedPrefix:politics_" json:"politics"`
	Economy        CategoryColumns `gorm:"embedded;embeddedPrefix:economy_" json:"economy"`
	SFLocal        CategoryColumns `gorm:"embedded;embeddedPrefix:sf_local_" json:"sf_local"`
	WeeklyKeywords pq.StringArray  `gorm:"type:text[]" json:"weekly_keywords"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the WeeklyNews model.
func (WeeklyNews) TableName() string {
	return "weekly_news"
}

// CategoryColumnsFor returns the column group for the given category name, or
// nil for an unknown category.
func (w *WeeklyNews) CategoryColumnsFor(category string) *CategoryColumns {
	switch category {
	case "tech":
		return &w.Tech
	case "politics":
		return &w.Politics
	case "economy":
		return &w.Economy
	case "sf-local":
		return &w.SFLocal
	default:
		return nil
	}
}
