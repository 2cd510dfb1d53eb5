package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Константы статусов матча
const (
	MatchStatusWaiting   = "waiting"
	MatchStatusActive    = "active"
	MatchStatusCompleted = "completed"
	MatchStatusCancelled = "cancelled"
)

// MaxMatchParticipants — матч всегда дуэль: не более двух участников
const MaxMatchParticipants = 2

// MatchQuestionCount — фиксированный размер набора вопросов матча
const MatchQuestionCount = 5

// UintArray - пользовательский тип для упорядоченного списка ID в JSONB
type UintArray []uint

// Scan реализует интерфейс sql.Scanner для UintArray
func (a *UintArray) Scan(value interface{}) error {
	if value == nil {
		*a = UintArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}
	if len(bytes) == 0 {
		*a = UintArray{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для UintArray
func (a UintArray) Value() (driver.Value, error) {
	if a == nil || len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Match представляет дуэльный матч между двумя игроками.
// Порядок вопросов фиксируется в QuestionIDs при создании.
type Match struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	Status       string             `gorm:"size:20;not null;default:'waiting';index" json:"status"`
	IsPrivate    bool               `gorm:"not null;default:false" json:"is_private"`
	JoinCode     *string            `gorm:"size:6" json:"join_code,omitempty"` // partial unique среди живых матчей
	CreatorID    uint               `gorm:"not null;index" json:"creator_id"`
	QuestionIDs  UintArray          `gorm:"type:jsonb;not null" json:"question_ids"`
	Participants []MatchParticipant `gorm:"foreignKey:MatchID" json:"participants,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	ExpiresAt    time.Time          `gorm:"not null;index" json:"expires_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Match) TableName() string {
	return "matches"
}

// IsLive проверяет, что матч не в терминальном статусе
func (m *Match) IsLive() bool {
	return m.Status == MatchStatusWaiting || m.Status == MatchStatusActive
}

// IsActive проверяет, идёт ли матч
func (m *Match) IsActive() bool {
	return m.Status == MatchStatusActive
}

// IsWaiting проверяет, ждёт ли матч второго участника
func (m *Match) IsWaiting() bool {
	return m.Status == MatchStatusWaiting
}

// IsExpired проверяет, истёк ли TTL матча
func (m *Match) IsExpired(now time.Time) bool {
	return m.IsLive() && now.After(m.ExpiresAt)
}

// HasParticipant проверяет, участвует ли пользователь в матче
func (m *Match) HasParticipant(userID uint) bool {
	for _, p := range m.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
