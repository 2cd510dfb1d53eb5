package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
)

// ResultRepo реализует repository.ResultRepository
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo создает новый репозиторий итогов матчей
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Create сохраняет итог матча. Уникальный индекс по match_id разрешает гонку
// двух одновременно финишировавших участников: второй insert получает
// ErrResultExists, и уже записанный итог остаётся неизменным.
func (r *ResultRepo) Create(result *entity.MatchResult) error {
	if err := r.db.Create(result).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: match #%d", repository.ErrResultExists, result.MatchID)
		}
		return err
	}
	return nil
}

// GetByMatchID возвращает итог матча
func (r *ResultRepo) GetByMatchID(matchID uint) (*entity.MatchResult, error) {
	var result entity.MatchResult
	err := r.db.Where("match_id = ?", matchID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// ListByUser возвращает итоги матчей пользователя с пагинацией (новые первыми)
func (r *ResultRepo) ListByUser(userID uint, limit, offset int) ([]entity.MatchResult, int64, error) {
	var results []entity.MatchResult
	var total int64

	query := r.db.Model(&entity.MatchResult{}).
		Where("player1_id = ? OR player2_id = ?", userID, userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("id DESC").Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// ListRecent возвращает последние итоги всех матчей (новые первыми)
func (r *ResultRepo) ListRecent(limit int) ([]entity.MatchResult, error) {
	var results []entity.MatchResult
	err := r.db.Order("id DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
