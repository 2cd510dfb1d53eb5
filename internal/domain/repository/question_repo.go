package repository

import (
	"github.com/yourusername/quizduel-api/internal/domain/entity"
)

// QuestionRepository — контракт поставщика вопросов (Question Supply).
// Ядро только читает вопросы; авторинг контента — внешняя подсистема.
type QuestionRepository interface {
	GetByID(id uint) (*entity.Question, error)
	// GetByIDs возвращает вопросы по списку ID; порядок не гарантируется,
	// вызывающий восстанавливает его по исходному списку.
	GetByIDs(ids []uint) ([]entity.Question, error)
	// DrawRandom возвращает limit случайных вопросов; categoryID == nil — весь пул
	DrawRandom(limit int, categoryID *uint) ([]entity.Question, error)
}
