package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос дуэльной викторины.
// Варианты ответа нумеруются с 1; SelectedOption == 0 в Answer означает пропуск.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	CategoryID    *uint       `gorm:"index" json:"category_id,omitempty"` // nil = общий пул
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null" json:"-"` // 1..4, скрыто от клиента
	TimeLimitSec  int         `gorm:"not null;default:15" json:"time_limit_sec"`
	Difficulty    int         `gorm:"not null;default:3" json:"difficulty"`
	PointValue    int         `gorm:"not null;default:10" json:"point_value"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным.
// Пропуск (selectedOption == 0) всегда неверен.
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption != 0 && selectedOption == q.CorrectOption
}

// IsValidOption проверяет, является ли выбранный вариант допустимым.
// 0 — валидный вариант "без ответа".
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption <= len(q.Options)
}

// CalculatePoints рассчитывает очки за ответ: базовые очки вопроса плюс
// бонус за скорость, пропорциональный оставшемуся времени (до половины базы).
// Неправильный ответ или пропуск — 0 очков.
func (q *Question) CalculatePoints(isCorrect bool, timeSpentSec int) int {
	if !isCorrect {
		return 0
	}
	points := q.PointValue
	if q.TimeLimitSec > 0 && timeSpentSec >= 0 && timeSpentSec < q.TimeLimitSec {
		remaining := q.TimeLimitSec - timeSpentSec
		points += q.PointValue * remaining / (2 * q.TimeLimitSec)
	}
	return points
}

// WrongOptions возвращает номера (1..N) неправильных вариантов ответа
func (q *Question) WrongOptions() []int {
	wrong := make([]int, 0, len(q.Options)-1)
	for i := 1; i <= len(q.Options); i++ {
		if i != q.CorrectOption {
			wrong = append(wrong, i)
		}
	}
	return wrong
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}
