package entity

import "time"

// UserVote is one community vote on a timeline event. Votes are append-only;
// hype and backlash percentages must sum to 100 (validated at write time with
// a one-point rounding tolerance).
type UserVote struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	EventID            uint      `gorm:"not null;index:idx_user_votes_event_created,priority:1" json:"event_id"`
	HypePercentage     float64   `gorm:"not null" json:"hype_percentage"`
	BacklashPercentage float64   `gorm:"not null" json:"backlash_percentage"`
	IPAddress          string    `json:"ip_address"`
	UserAgent          string    `json:"user_agent"`
	CreatedAt          time.Time `gorm:"autoCreateTime;index:idx_user_votes_event_created,priority:2" json:"created_at"`
}

// TableName specifies the table name for the UserVote model.
func (UserVote) TableName() string {
	return "user_votes"
}
