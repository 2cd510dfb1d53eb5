package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByIDs возвращает вопросы по списку ID (порядок восстанавливает вызывающий)
func (r *QuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// DrawRandom возвращает limit случайных вопросов.
// ORDER BY RANDOM() достаточно: пул вопросов дуэлей измеряется тысячами,
// а розыгрыш происходит раз на матч, не на запрос.
func (r *QuestionRepo) DrawRandom(limit int, categoryID *uint) ([]entity.Question, error) {
	var questions []entity.Question
	query := r.db
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}
