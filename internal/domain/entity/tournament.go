package entity

import (
	"time"
)

// Константы статусов турнира
const (
	TournamentStatusWaiting   = "waiting"
	TournamentStatusActive    = "active"
	TournamentStatusCompleted = "completed"
	TournamentStatusCancelled = "cancelled"
)

// TournamentSize — сетка всегда на четырёх игроков: два полуфинала и финал
const TournamentSize = 4

// Tournament представляет турнир на выбывание для четырёх игроков.
// Переходит в active в момент присоединения четвёртого участника,
// в completed — после завершения финального матча.
type Tournament struct {
	ID           uint                    `gorm:"primaryKey" json:"id"`
	Status       string                  `gorm:"size:20;not null;default:'waiting';index" json:"status"`
	IsPrivate    bool                    `gorm:"not null;default:false" json:"is_private"`
	JoinCode     *string                 `gorm:"size:6" json:"join_code,omitempty"`
	CategoryID   *uint                   `gorm:"index" json:"category_id,omitempty"` // nil = случайные вопросы
	CreatorID    uint                    `gorm:"not null;index" json:"creator_id"`
	Participants []TournamentParticipant `gorm:"foreignKey:TournamentID" json:"participants,omitempty"`
	Rounds       []TournamentMatch       `gorm:"foreignKey:TournamentID" json:"rounds,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	CompletedAt  *time.Time              `json:"completed_at,omitempty"`
	ExpiresAt    time.Time               `gorm:"not null;index" json:"expires_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Tournament) TableName() string {
	return "tournaments"
}

// IsLive проверяет, что турнир не в терминальном статусе
func (t *Tournament) IsLive() bool {
	return t.Status == TournamentStatusWaiting || t.Status == TournamentStatusActive
}

// IsWaiting проверяет, идёт ли набор участников
func (t *Tournament) IsWaiting() bool {
	return t.Status == TournamentStatusWaiting
}

// IsExpired проверяет, истёк ли TTL турнира
func (t *Tournament) IsExpired(now time.Time) bool {
	return t.IsLive() && now.After(t.ExpiresAt)
}

// HasParticipant проверяет, записан ли пользователь в турнир
func (t *Tournament) HasParticipant(userID uint) bool {
	for _, p := range t.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
