package repository

import (
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
)

// UsageRepository определяет методы учёта скользящих 24-часовых квот.
// Окно лениво сбрасывается внутри Consume*: отдельного фонового сброса нет.
type UsageRepository interface {
	// GetOrCreate возвращает счётчик пользователя, создавая пустой при первом
	// обращении (окно стартует с now).
	GetOrCreate(userID uint, now time.Time) (*entity.DailyUsage, error)
	// ConsumeMatchSlot атомарно инкрементирует matches_created, предварительно
	// сбросив окно, если оно истекло. ErrQuotaReached на лимите.
	ConsumeMatchSlot(userID uint, limit int, now time.Time) error
	// ConsumeTournamentSlot — то же для турниров.
	ConsumeTournamentSlot(userID uint, limit int, now time.Time) error
}
