package repository

import (
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
)

// UserRepository — узкий контракт identity-подсистемы и журнала очков
type UserRepository interface {
	GetByID(id uint) (*entity.User, error)
	// DeductPoints условно списывает очки: UPDATE ... WHERE points >= amount.
	// ErrInsufficientBalance, если баланса не хватает.
	DeductPoints(userID uint, amount int) (remaining int, err error)
	// CreditPoints начисляет очки (компенсация при откате подсказки)
	CreditPoints(userID uint, amount int) error
}

// StoreRepository — чтение активных бонусов из покупок магазина
type StoreRepository interface {
	// ActiveBonuses агрегирует действующие покупки пользователя
	ActiveBonuses(userID uint, now time.Time) (*entity.ActiveBonuses, error)
}
