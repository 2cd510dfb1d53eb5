package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
)

// UsageRepo реализует repository.UsageRepository
type UsageRepo struct {
	db *gorm.DB
}

// NewUsageRepo создает новый репозиторий счётчиков квот
func NewUsageRepo(db *gorm.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// GetOrCreate возвращает счётчик пользователя, создавая пустой при первом обращении
func (r *UsageRepo) GetOrCreate(userID uint, now time.Time) (*entity.DailyUsage, error) {
	var usage entity.DailyUsage
	err := r.db.Where("user_id = ?", userID).First(&usage).Error
	if err == nil {
		return &usage, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	usage = entity.DailyUsage{UserID: userID, WindowStartedAt: now}
	if err := r.db.Create(&usage).Error; err != nil {
		// Гонка двух первых обращений: проигравший insert перечитывает строку
		if isUniqueViolation(err) {
			if err := r.db.Where("user_id = ?", userID).First(&usage).Error; err != nil {
				return nil, err
			}
			return &usage, nil
		}
		return nil, err
	}
	return &usage, nil
}

// ConsumeMatchSlot атомарно инкрементирует matches_created в пределах лимита
func (r *UsageRepo) ConsumeMatchSlot(userID uint, limit int, now time.Time) error {
	return r.consume(userID, limit, now, "matches_created")
}

// ConsumeTournamentSlot атомарно инкрементирует tournaments_created в пределах лимита
func (r *UsageRepo) ConsumeTournamentSlot(userID uint, limit int, now time.Time) error {
	return r.consume(userID, limit, now, "tournaments_created")
}

// consume выполняет ленивый сброс окна и инкремент счётчика под блокировкой
// строки. Скользящее окно: стартует с первого создания, а не с полуночи.
func (r *UsageRepo) consume(userID uint, limit int, now time.Time, column string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var usage entity.DailyUsage
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&usage).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			usage = entity.DailyUsage{UserID: userID, WindowStartedAt: now}
			if err := tx.Create(&usage).Error; err != nil {
				if isUniqueViolation(err) {
					// Конкурент создал строку первым — перечитываем под блокировкой
					if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
						Where("user_id = ?", userID).
						First(&usage).Error; err != nil {
						return err
					}
				} else {
					return err
				}
			}
		}

		counters := map[string]int{
			"matches_created":     usage.MatchesCreated,
			"tournaments_created": usage.TournamentsCreated,
		}

		if usage.IsWindowElapsed(now) {
			// Новое окно: обнуляем оба счётчика, окно стартует с этого создания
			if err := tx.Model(&entity.DailyUsage{}).
				Where("id = ?", usage.ID).
				Updates(map[string]interface{}{
					"window_started_at":   now,
					"matches_created":     0,
					"tournaments_created": 0,
				}).Error; err != nil {
				return err
			}
			counters["matches_created"] = 0
			counters["tournaments_created"] = 0
		}

		if counters[column] >= limit {
			return fmt.Errorf("%w: user #%d, %s=%d, limit=%d",
				repository.ErrQuotaReached, userID, column, counters[column], limit)
		}

		return tx.Model(&entity.DailyUsage{}).
			Where("id = ?", usage.ID).
			Update(column, gorm.Expr(column+" + ?", 1)).Error
	})
}
