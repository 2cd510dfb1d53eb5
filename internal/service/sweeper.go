package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/repository"
)

// Sweeper периодически отменяет живые матчи и турниры с истекшим TTL.
// Проход идемпотентен: терминальные записи не затрагиваются, поэтому
// совместная работа нескольких экземпляров безопасна.
type Sweeper struct {
	matchRepo      repository.MatchRepository
	tournamentRepo repository.TournamentRepository
	interval       time.Duration
}

// NewSweeper создает новый sweeper
func NewSweeper(
	matchRepo repository.MatchRepository,
	tournamentRepo repository.TournamentRepository,
	interval time.Duration,
) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		interval:       interval,
	}
}

// Run запускает периодические проходы до отмены контекста.
// Первый проход выполняется сразу: после рестарта могли накопиться
// истекшие записи.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("[Sweeper] Запущен с интервалом %s", s.interval)
	s.Sweep(time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Sweeper] Остановлен")
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// Sweep выполняет один проход отмены истекших записей
func (s *Sweeper) Sweep(now time.Time) {
	// Сначала турниры с каскадом: у матча сетки собственный дедлайн
	// (финал стартует позже активации), поэтому общая отмена по TTL ниже
	// его не подберёт
	expiredTournaments, err := s.tournamentRepo.CancelExpired(now)
	if err != nil {
		log.Printf("[Sweeper] Ошибка отмены истекших турниров: %v", err)
	}
	for _, tournamentID := range expiredTournaments {
		matchIDs, err := s.tournamentRepo.LiveChildMatchIDs(tournamentID)
		if err != nil {
			log.Printf("[Sweeper] Ошибка поиска матчей сетки турнира %d: %v", tournamentID, err)
			continue
		}
		for _, matchID := range matchIDs {
			if err := s.matchRepo.AtomicCancel(matchID, now); err != nil && !errors.Is(err, repository.ErrNotCancellable) {
				log.Printf("[Sweeper] Ошибка отмены матча %d сетки турнира %d: %v", matchID, tournamentID, err)
			}
		}
	}

	matches, err := s.matchRepo.CancelExpired(now)
	if err != nil {
		log.Printf("[Sweeper] Ошибка отмены истекших матчей: %v", err)
	}

	if matches > 0 || len(expiredTournaments) > 0 {
		log.Printf("[Sweeper] Отменено по TTL: матчей %d, турниров %d", matches, len(expiredTournaments))
	}
}
