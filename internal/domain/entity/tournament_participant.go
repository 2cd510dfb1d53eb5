package entity

import (
	"time"
)

// TournamentParticipant представляет игрока, записанного в турнир.
// Seat — порядковый номер присоединения (1..4), по нему строится посев.
type TournamentParticipant struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TournamentID uint      `gorm:"not null;index;uniqueIndex:idx_tournament_user" json:"tournament_id"`
	UserID       uint      `gorm:"not null;index;uniqueIndex:idx_tournament_user" json:"user_id"`
	Seat         int       `gorm:"not null" json:"seat"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (TournamentParticipant) TableName() string {
	return "tournament_participants"
}
