package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
)

// TournamentRepo реализует repository.TournamentRepository
type TournamentRepo struct {
	db *gorm.DB
}

// NewTournamentRepo создает новый репозиторий турниров
func NewTournamentRepo(db *gorm.DB) *TournamentRepo {
	return &TournamentRepo{db: db}
}

// CreateWithCreator создаёт waiting-турнир вместе с создателем на месте 1
func (r *TournamentRepo) CreateWithCreator(tournament *entity.Tournament) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tournament).Error; err != nil {
			return err
		}
		creator := entity.TournamentParticipant{
			TournamentID: tournament.ID,
			UserID:       tournament.CreatorID,
			Seat:         1,
		}
		return tx.Create(&creator).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", repository.ErrJoinCodeTaken, derefCode(tournament.JoinCode))
		}
		return err
	}
	return nil
}

// GetByID возвращает турнир по ID
func (r *TournamentRepo) GetByID(id uint) (*entity.Tournament, error) {
	var tournament entity.Tournament
	err := r.db.First(&tournament, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tournament, nil
}

// GetWithParticipants возвращает турнир с участниками и слотами сетки
func (r *TournamentRepo) GetWithParticipants(id uint) (*entity.Tournament, error) {
	var tournament entity.Tournament
	err := r.db.
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("seat") }).
		Preload("Rounds").
		First(&tournament, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tournament, nil
}

// GetLiveByJoinCode ищет живой турнир по коду приглашения (без учёта регистра)
func (r *TournamentRepo) GetLiveByJoinCode(code string) (*entity.Tournament, error) {
	var tournament entity.Tournament
	err := r.db.
		Where("UPPER(join_code) = UPPER(?) AND status IN ?", code, []string{entity.TournamentStatusWaiting, entity.TournamentStatusActive}).
		First(&tournament).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tournament, nil
}

// AtomicJoin добавляет участника под блокировкой строки турнира.
// Блокировка FOR UPDATE сериализует конкурентные join: место и переход
// waiting→active на четвёртом участнике вычисляются без гонки.
func (r *TournamentRepo) AtomicJoin(tournamentID, userID uint) (int, bool, error) {
	var seat int
	var activated bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var tournament entity.Tournament
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tournament, tournamentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		if !tournament.IsWaiting() {
			return fmt.Errorf("%w: tournament #%d", repository.ErrNotJoinable, tournamentID)
		}

		var count int64
		if err := tx.Model(&entity.TournamentParticipant{}).
			Where("tournament_id = ?", tournamentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= entity.TournamentSize {
			return fmt.Errorf("%w: tournament #%d", repository.ErrTournamentFull, tournamentID)
		}

		participant := entity.TournamentParticipant{
			TournamentID: tournamentID,
			UserID:       userID,
			Seat:         int(count) + 1,
		}
		if err := tx.Create(&participant).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: tournament #%d, user #%d", repository.ErrDuplicateParticipant, tournamentID, userID)
			}
			return err
		}
		seat = participant.Seat

		if seat == entity.TournamentSize {
			result := tx.Model(&entity.Tournament{}).
				Where("id = ? AND status = ?", tournamentID, entity.TournamentStatusWaiting).
				Update("status", entity.TournamentStatusActive)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: tournament #%d", repository.ErrNotJoinable, tournamentID)
			}
			activated = true
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return seat, activated, nil
}

// AtomicCancel переводит живой турнир в cancelled
func (r *TournamentRepo) AtomicCancel(tournamentID uint, completedAt time.Time) error {
	result := r.db.Model(&entity.Tournament{}).
		Where("id = ? AND status IN ?", tournamentID, []string{entity.TournamentStatusWaiting, entity.TournamentStatusActive}).
		Updates(map[string]interface{}{
			"status":       entity.TournamentStatusCancelled,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: tournament #%d", repository.ErrNotCancellable, tournamentID)
	}
	return nil
}

// AtomicComplete переводит active→completed после финала. Повторный вызов — no-op.
func (r *TournamentRepo) AtomicComplete(tournamentID uint, completedAt time.Time) error {
	return r.db.Model(&entity.Tournament{}).
		Where("id = ? AND status = ?", tournamentID, entity.TournamentStatusActive).
		Updates(map[string]interface{}{
			"status":       entity.TournamentStatusCompleted,
			"completed_at": completedAt,
		}).Error
}

// ExtendExpiry переносит дедлайн живого турнира
func (r *TournamentRepo) ExtendExpiry(tournamentID uint, expiresAt time.Time) error {
	return r.db.Model(&entity.Tournament{}).
		Where("id = ? AND status IN ?", tournamentID, []string{entity.TournamentStatusWaiting, entity.TournamentStatusActive}).
		Update("expires_at", expiresAt).Error
}

// CancelExpired массово отменяет живые турниры с истекшим TTL.
// Возвращает ID отменённых турниров: их живые матчи сетки могут иметь более
// поздний дедлайн (финал стартует позже активации), поэтому каскадную отмену
// выполняет вызывающий по этому списку.
func (r *TournamentRepo) CancelExpired(now time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Tournament{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status IN ? AND expires_at < ?", []string{entity.TournamentStatusWaiting, entity.TournamentStatusActive}, now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&entity.Tournament{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":       entity.TournamentStatusCancelled,
				"completed_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateRounds сохраняет слоты сетки одним батчем
func (r *TournamentRepo) CreateRounds(rounds []entity.TournamentMatch) error {
	return r.db.Create(&rounds).Error
}

// GetRounds возвращает слоты сетки турнира (semi1, semi2, final)
func (r *TournamentRepo) GetRounds(tournamentID uint) ([]entity.TournamentMatch, error) {
	var rounds []entity.TournamentMatch
	err := r.db.Where("tournament_id = ?", tournamentID).Order("id").Find(&rounds).Error
	if err != nil {
		return nil, err
	}
	return rounds, nil
}

// GetRoundByMatchID — обратный поиск слота сетки по ID матча
func (r *TournamentRepo) GetRoundByMatchID(matchID uint) (*entity.TournamentMatch, error) {
	var round entity.TournamentMatch
	err := r.db.Where("match_id = ?", matchID).First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &round, nil
}

// SetRoundWinner проставляет победителя слота, только если он ещё не задан.
// Хук завершения матча может сработать дважды — второй вызов ничего не меняет.
func (r *TournamentRepo) SetRoundWinner(roundID, winnerID uint) error {
	return r.db.Model(&entity.TournamentMatch{}).
		Where("id = ? AND winner_id IS NULL", roundID).
		Update("winner_id", winnerID).Error
}

// SetRoundStarted привязывает созданный матч к слоту сетки
func (r *TournamentRepo) SetRoundStarted(roundID, matchID uint) error {
	return r.db.Model(&entity.TournamentMatch{}).
		Where("id = ? AND match_id IS NULL", roundID).
		Update("match_id", matchID).Error
}

// UpdateFinalPlayers заполняет игроков финала победителями полуфиналов
func (r *TournamentRepo) UpdateFinalPlayers(tournamentID uint, player1ID, player2ID uint) error {
	return r.db.Model(&entity.TournamentMatch{}).
		Where("tournament_id = ? AND round = ?", tournamentID, entity.RoundFinal).
		Updates(map[string]interface{}{
			"player1_id": player1ID,
			"player2_id": player2ID,
		}).Error
}

// LiveChildMatchIDs возвращает ID живых матчей сетки для каскадной отмены
func (r *TournamentRepo) LiveChildMatchIDs(tournamentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.Match{}).
		Where("id IN (?)",
			r.db.Model(&entity.TournamentMatch{}).
				Select("match_id").
				Where("tournament_id = ? AND match_id IS NOT NULL", tournamentID)).
		Where("status IN ?", []string{entity.MatchStatusWaiting, entity.MatchStatusActive}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
