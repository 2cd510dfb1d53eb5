package repository

import (
	"github.com/yourusername/quizduel-api/internal/domain/entity"
)

// ResultRepository определяет методы для работы с итогами матчей
type ResultRepository interface {
	// Create сохраняет итог матча. ErrResultExists, если итог уже записан
	// конкурирующей транзакцией (уникальный индекс по match_id).
	Create(result *entity.MatchResult) error
	GetByMatchID(matchID uint) (*entity.MatchResult, error)
	// ListByUser возвращает итоги матчей пользователя с пагинацией (новые первыми)
	ListByUser(userID uint, limit, offset int) ([]entity.MatchResult, int64, error)
	// ListRecent возвращает последние итоги всех матчей (административный экспорт)
	ListRecent(limit int) ([]entity.MatchResult, error)
}
