package models

// HistoryDateLayout is the fixed local timestamp format of HistoryRecord.Date.
const HistoryDateLayout = "2006-01-02 15:04:05"

type HistoryRecord struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string  `gorm:"type:text;index" json:"username"`
	Role          string  `gorm:"type:text" json:"role"`
	ATSScore      float64 `gorm:"column:ats_score" json:"ats_score"`
	Repositories  int     `json:"repositories"`
	Followers     int     `json:"followers"`
	Contributions int     `json:"contributions"`
	Points        int     `gorm:"not null;default:0" json:"points"`
	Date          string  `gorm:"type:text" json:"date"`
}

func (HistoryRecord) TableName() string {
	return "history"
}

// HistoryEntry is the input of a save; points and date are derived by the store.
type HistoryEntry struct {
	Username      string
	Role          string
	ATSScore      float64
	Repositories  int
	Followers     int
	Contributions int
}

type LeaderboardRow struct {
	Username           string  `json:"username"`
	AvgATSScore        float64 `gorm:"column:avg_ats_score" json:"avg_ats_score"`
	TotalContributions int     `gorm:"column:total_contributions" json:"total_contributions"`
	TotalPoints        int     `gorm:"column:total_points" json:"total_points"`
}
