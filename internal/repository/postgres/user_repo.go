package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeductPoints условно списывает очки: UPDATE проходит, только если баланса
// хватает. Две конкурентные подсказки не могут увести баланс в минус.
func (r *UserRepo) DeductPoints(userID uint, amount int) (int, error) {
	var remaining int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.User{}).
			Where("id = ? AND points >= ?", userID, amount).
			Update("points", gorm.Expr("points - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Различаем "нет пользователя" и "не хватило баланса"
			var count int64
			if err := tx.Model(&entity.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("%w: user #%d, cost %d", repository.ErrInsufficientBalance, userID, amount)
		}

		return tx.Model(&entity.User{}).
			Where("id = ?", userID).
			Pluck("points", &remaining).Error
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// CreditPoints начисляет очки пользователю
func (r *UserRepo) CreditPoints(userID uint, amount int) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", amount)).Error
}

// StoreRepo реализует repository.StoreRepository (чтение активных покупок)
type StoreRepo struct {
	db *gorm.DB
}

// NewStoreRepo создает новый репозиторий бонусов магазина
func NewStoreRepo(db *gorm.DB) *StoreRepo {
	return &StoreRepo{db: db}
}

// ActiveBonuses агрегирует действующие покупки пользователя
func (r *StoreRepo) ActiveBonuses(userID uint, now time.Time) (*entity.ActiveBonuses, error) {
	var purchases []entity.StorePurchase
	err := r.db.
		Where("user_id = ? AND expires_at > ?", userID, now).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	bonuses := &entity.ActiveBonuses{}
	for _, p := range purchases {
		switch p.ItemType {
		case entity.PurchaseExtraMatches:
			bonuses.MatchesBonus += p.Amount
		case entity.PurchaseExtraTournaments:
			bonuses.TournamentsBonus += p.Amount
		case entity.PurchaseMentorMode:
			bonuses.MentorMode = true
		}
	}
	return bonuses, nil
}
