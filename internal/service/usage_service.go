package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
)

// DailyLimits — срез квот пользователя для клиента
type DailyLimits struct {
	MatchLimit         int       `json:"match_limit"`
	TournamentLimit    int       `json:"tournament_limit"`
	MatchesCreated     int       `json:"matches_created"`
	TournamentsCreated int       `json:"tournaments_created"`
	MentorMode         bool      `json:"mentor_mode"`
	WindowResetAt      time.Time `json:"window_reset_at"`
}

// UsageService учитывает скользящие 24-часовые квоты создания.
// Эффективный лимит = базовый из конфигурации + активные бонусы магазина.
type UsageService struct {
	usageRepo           repository.UsageRepository
	storeRepo           repository.StoreRepository
	baseMatchLimit      int
	baseTournamentLimit int
}

// NewUsageService создает новый сервис квот
func NewUsageService(
	usageRepo repository.UsageRepository,
	storeRepo repository.StoreRepository,
	baseMatchLimit int,
	baseTournamentLimit int,
) *UsageService {
	return &UsageService{
		usageRepo:           usageRepo,
		storeRepo:           storeRepo,
		baseMatchLimit:      baseMatchLimit,
		baseTournamentLimit: baseTournamentLimit,
	}
}

// GetDailyLimits возвращает лимиты и текущие счётчики пользователя
func (s *UsageService) GetDailyLimits(userID uint) (*DailyLimits, error) {
	now := time.Now()
	usage, err := s.usageRepo.GetOrCreate(userID, now)
	if err != nil {
		return nil, err
	}
	bonuses, err := s.activeBonuses(userID, now)
	if err != nil {
		return nil, err
	}

	matchesCreated := usage.MatchesCreated
	tournamentsCreated := usage.TournamentsCreated
	resetAt := usage.WindowResetAt()
	// Истекшее окно показываем как пустое: фактический сброс выполнит
	// следующий Consume*
	if usage.IsWindowElapsed(now) {
		matchesCreated = 0
		tournamentsCreated = 0
		resetAt = now.Add(24 * time.Hour)
	}

	return &DailyLimits{
		MatchLimit:         s.baseMatchLimit + bonuses.MatchesBonus,
		TournamentLimit:    s.baseTournamentLimit + bonuses.TournamentsBonus,
		MatchesCreated:     matchesCreated,
		TournamentsCreated: tournamentsCreated,
		MentorMode:         bonuses.MentorMode,
		WindowResetAt:      resetAt,
	}, nil
}

// ConsumeMatchSlot расходует слот создания матча в пределах эффективного лимита
func (s *UsageService) ConsumeMatchSlot(userID uint, now time.Time) error {
	bonuses, err := s.activeBonuses(userID, now)
	if err != nil {
		return err
	}
	limit := s.baseMatchLimit + bonuses.MatchesBonus
	if err := s.usageRepo.ConsumeMatchSlot(userID, limit, now); err != nil {
		if errors.Is(err, repository.ErrQuotaReached) {
			return fmt.Errorf("%w: daily match limit %d reached", apperrors.ErrQuotaExceeded, limit)
		}
		return err
	}
	return nil
}

// ConsumeTournamentSlot расходует слот создания турнира
func (s *UsageService) ConsumeTournamentSlot(userID uint, now time.Time) error {
	bonuses, err := s.activeBonuses(userID, now)
	if err != nil {
		return err
	}
	limit := s.baseTournamentLimit + bonuses.TournamentsBonus
	if err := s.usageRepo.ConsumeTournamentSlot(userID, limit, now); err != nil {
		if errors.Is(err, repository.ErrQuotaReached) {
			return fmt.Errorf("%w: daily tournament limit %d reached", apperrors.ErrQuotaExceeded, limit)
		}
		return err
	}
	return nil
}

// HasMentorMode проверяет активную покупку режима ментора
func (s *UsageService) HasMentorMode(userID uint) (bool, error) {
	bonuses, err := s.activeBonuses(userID, time.Now())
	if err != nil {
		return false, err
	}
	return bonuses.MentorMode, nil
}

func (s *UsageService) activeBonuses(userID uint, now time.Time) (*entity.ActiveBonuses, error) {
	bonuses, err := s.storeRepo.ActiveBonuses(userID, now)
	if err != nil {
		return nil, err
	}
	if bonuses == nil {
		bonuses = &entity.ActiveBonuses{}
	}
	return bonuses, nil
}
