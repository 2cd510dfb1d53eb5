package entity

import (
	"time"
)

// MatchParticipant представляет игрока в рамках одного матча.
// Пара (MatchID, UserID) уникальна; CompletedAt проставляется ровно один раз,
// когда число ответов достигает размера набора вопросов.
type MatchParticipant struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	MatchID      uint       `gorm:"not null;index;uniqueIndex:idx_match_user" json:"match_id"`
	UserID       uint       `gorm:"not null;index;uniqueIndex:idx_match_user" json:"user_id"`
	TotalScore   int        `gorm:"not null;default:0" json:"total_score"`
	TotalTimeSec int        `gorm:"not null;default:0" json:"total_time_sec"`
	Answers      []Answer   `gorm:"foreignKey:MatchID,UserID;references:MatchID,UserID" json:"answers,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (MatchParticipant) TableName() string {
	return "match_participants"
}

// IsFinished проверяет, закончил ли участник отвечать
func (p *MatchParticipant) IsFinished() bool {
	return p.CompletedAt != nil
}
