package entity

import (
	"time"
)

// DailyUsage хранит счётчики создания матчей и турниров в скользящем
// 24-часовом окне. Окно отсчитывается от первого создания (WindowStartedAt),
// а не от календарных суток.
type DailyUsage struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	WindowStartedAt    time.Time `gorm:"not null" json:"window_started_at"`
	MatchesCreated     int       `gorm:"not null;default:0" json:"matches_created"`
	TournamentsCreated int       `gorm:"not null;default:0" json:"tournaments_created"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (DailyUsage) TableName() string {
	return "daily_usage"
}

// WindowResetAt возвращает момент сброса текущего окна
func (u *DailyUsage) WindowResetAt() time.Time {
	return u.WindowStartedAt.Add(24 * time.Hour)
}

// IsWindowElapsed проверяет, истекло ли текущее окно
func (u *DailyUsage) IsWindowElapsed(now time.Time) bool {
	return !now.Before(u.WindowResetAt())
}
