package entity

import (
	"time"
)

// SkipOption — значение SelectedOption для пропущенного вопроса
const SkipOption = 0

// Answer представляет ответ участника на один вопрос матча.
// Уникальный индекс (match_id, user_id, question_id) делает запись идемпотентной:
// повторная отправка отклоняется, а не перезаписывается.
type Answer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MatchID        uint      `gorm:"not null;index;uniqueIndex:idx_match_user_question" json:"match_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_match_user_question" json:"user_id"`
	QuestionID     uint      `gorm:"not null;uniqueIndex:idx_match_user_question" json:"question_id"`
	SelectedOption int       `gorm:"not null;default:0" json:"selected_option"` // 0 = пропуск, 1..4
	IsCorrect      bool      `gorm:"not null" json:"is_correct"` // вычисляется только сервером
	TimeSpentSec   int       `gorm:"not null;default:0" json:"time_spent_sec"`
	PointsAwarded  int       `gorm:"not null;default:0" json:"points_awarded"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "answers"
}

// IsSkip проверяет, был ли вопрос пропущен
func (a *Answer) IsSkip() bool {
	return a.SelectedOption == SkipOption
}
