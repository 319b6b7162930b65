package entity

import (
	"time"

	"gorm.io/datatypes"
)

// TimelineEvent is one week's social-topic narrative: the hype and backlash
// summaries produced from tweet evidence, plus the running community
// sentiment aggregate. Sentiment fields are recomputed from the full vote log
// on every vote write.
type TimelineEvent struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	WeekOf            time.Time      `gorm:"uniqueIndex;not null" json:"week_of"`
	Headline          string         `gorm:"not null" json:"headline"`
	HypeSummary       string         `gorm:"type:text" json:"hype_summary"`
	BacklashSummary   string         `gorm:"type:text" json:"backlash_summary"`
	WeeklyPulse       string         `gorm:"type:text" json:"weekly_pulse"`
	HypeTweets        datatypes.JSON `json:"hype_tweets,omitempty"`
	BacklashTweets    datatypes.JSON `json:"backlash_tweets,omitempty"`
	SentimentHype     int            `gorm:"default:50" json:"sentiment_hype"`
	SentimentBacklash int            `gorm:"default:50" json:"sentiment_backlash"`
	TotalVotes        int            `gorm:"default:0" json:"total_votes"`
	Votes             []UserVote     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the TimelineEvent model.
func (TimelineEvent) TableName() string {
	return "timeline_events"
}
