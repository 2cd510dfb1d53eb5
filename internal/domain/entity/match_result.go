package entity

import (
	"time"
)

// MatchResult представляет итог завершённого матча.
// Создаётся ровно один раз в момент обнаружения завершения (уникальный индекс
// по match_id защищает от гонки двух одновременно финишировавших участников)
// и далее неизменяем.
type MatchResult struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MatchID        uint      `gorm:"not null;uniqueIndex" json:"match_id"`
	WinnerID       *uint     `json:"winner_id,omitempty"` // nil при ничьей
	IsDraw         bool      `gorm:"not null;default:false" json:"is_draw"`
	Player1ID      uint      `gorm:"not null" json:"player1_id"`
	Player2ID      uint      `gorm:"not null" json:"player2_id"`
	Player1Score   int       `gorm:"not null;default:0" json:"player1_score"`
	Player2Score   int       `gorm:"not null;default:0" json:"player2_score"`
	Player1TimeSec int       `gorm:"not null;default:0" json:"player1_time_sec"`
	Player2TimeSec int       `gorm:"not null;default:0" json:"player2_time_sec"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (MatchResult) TableName() string {
	return "match_results"
}
