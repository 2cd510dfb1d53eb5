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

// MatchRepo реализует repository.MatchRepository
type MatchRepo struct {
	db *gorm.DB
}

// NewMatchRepo создает новый репозиторий матчей
func NewMatchRepo(db *gorm.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// CreateWithCreator создаёт waiting-матч вместе с первым участником в одной транзакции
func (r *MatchRepo) CreateWithCreator(match *entity.Match) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return err
		}
		creator := entity.MatchParticipant{
			MatchID: match.ID,
			UserID:  match.CreatorID,
		}
		return tx.Create(&creator).Error
	})
	if err != nil {
		// Единственный уникальный индекс, который может сработать при создании —
		// partial index по join_code среди живых матчей.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", repository.ErrJoinCodeTaken, derefCode(match.JoinCode))
		}
		return err
	}
	return nil
}

// CreateForPair создаёт сразу активный матч с двумя участниками.
// Используется турнирной сеткой, где пары известны заранее.
func (r *MatchRepo) CreateForPair(match *entity.Match, player1ID, player2ID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return err
		}
		participants := []entity.MatchParticipant{
			{MatchID: match.ID, UserID: player1ID},
			{MatchID: match.ID, UserID: player2ID},
		}
		return tx.Create(&participants).Error
	})
}

func derefCode(code *string) string {
	if code == nil {
		return ""
	}
	return *code
}

// GetByID возвращает матч по ID
func (r *MatchRepo) GetByID(id uint) (*entity.Match, error) {
	var match entity.Match
	err := r.db.First(&match, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// GetWithParticipants возвращает матч вместе с участниками в порядке присоединения
func (r *MatchRepo) GetWithParticipants(id uint) (*entity.Match, error) {
	var match entity.Match
	err := r.db.
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&match, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// GetLiveByJoinCode ищет живой матч по коду приглашения (без учёта регистра)
func (r *MatchRepo) GetLiveByJoinCode(code string) (*entity.Match, error) {
	var match entity.Match
	err := r.db.
		Where("UPPER(join_code) = UPPER(?) AND status IN ?", code, []string{entity.MatchStatusWaiting, entity.MatchStatusActive}).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// FindPublicWaiting возвращает самый старый публичный waiting-матч другого создателя
func (r *MatchRepo) FindPublicWaiting(excludeCreatorID uint) (*entity.Match, error) {
	var match entity.Match
	err := r.db.
		Where("status = ? AND is_private = false AND creator_id <> ?", entity.MatchStatusWaiting, excludeCreatorID).
		Order("created_at").
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// AtomicJoin атомарно переводит матч waiting→active и вставляет второго участника.
// Гонка двух одновременных join разрешается условным UPDATE: ровно одна
// транзакция увидит status='waiting', вторая получит ErrNotJoinable.
func (r *MatchRepo) AtomicJoin(matchID, userID uint, startedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Match{}).
			Where("id = ? AND status = ?", matchID, entity.MatchStatusWaiting).
			Updates(map[string]interface{}{
				"status":     entity.MatchStatusActive,
				"started_at": startedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: match #%d", repository.ErrNotJoinable, matchID)
		}

		participant := entity.MatchParticipant{MatchID: matchID, UserID: userID}
		if err := tx.Create(&participant).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: match #%d, user #%d", repository.ErrDuplicateParticipant, matchID, userID)
			}
			return err
		}
		return nil
	})
}

// AtomicCancel переводит живой матч в cancelled, completed_at — аудиторская метка
func (r *MatchRepo) AtomicCancel(matchID uint, completedAt time.Time) error {
	result := r.db.Model(&entity.Match{}).
		Where("id = ? AND status IN ?", matchID, []string{entity.MatchStatusWaiting, entity.MatchStatusActive}).
		Updates(map[string]interface{}{
			"status":       entity.MatchStatusCancelled,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: match #%d", repository.ErrNotCancellable, matchID)
	}
	return nil
}

// AtomicComplete переводит active→completed. RowsAffected==0 — не ошибка:
// переход уже выполнила транзакция второго финишировавшего участника.
func (r *MatchRepo) AtomicComplete(matchID uint, completedAt time.Time) error {
	return r.db.Model(&entity.Match{}).
		Where("id = ? AND status = ?", matchID, entity.MatchStatusActive).
		Updates(map[string]interface{}{
			"status":       entity.MatchStatusCompleted,
			"completed_at": completedAt,
		}).Error
}

// ExtendExpiry переносит дедлайн живого матча
func (r *MatchRepo) ExtendExpiry(matchID uint, expiresAt time.Time) error {
	return r.db.Model(&entity.Match{}).
		Where("id = ? AND status IN ?", matchID, []string{entity.MatchStatusWaiting, entity.MatchStatusActive}).
		Update("expires_at", expiresAt).Error
}

// CancelExpired массово отменяет живые матчи с истекшим TTL.
// Терминальные записи не затрагиваются, повторный запуск безопасен.
func (r *MatchRepo) CancelExpired(now time.Time) (int64, error) {
	result := r.db.Model(&entity.Match{}).
		Where("status IN ? AND expires_at < ?", []string{entity.MatchStatusWaiting, entity.MatchStatusActive}, now).
		Updates(map[string]interface{}{
			"status":       entity.MatchStatusCancelled,
			"completed_at": now,
		})
	return result.RowsAffected, result.Error
}

// GetParticipant возвращает участника матча
func (r *MatchRepo) GetParticipant(matchID, userID uint) (*entity.MatchParticipant, error) {
	var participant entity.MatchParticipant
	err := r.db.Where("match_id = ? AND user_id = ?", matchID, userID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// GetParticipants возвращает всех участников матча в порядке присоединения
func (r *MatchRepo) GetParticipants(matchID uint) ([]entity.MatchParticipant, error) {
	var participants []entity.MatchParticipant
	err := r.db.Where("match_id = ?", matchID).Order("id").Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// AppendAnswer в одной транзакции добавляет ответ, обновляет итоги участника
// и проставляет completed_at на последнем вопросе. Участник блокируется
// FOR UPDATE, чтобы счётчик ответов не разошёлся при конкурентных запросах.
func (r *MatchRepo) AppendAnswer(answer *entity.Answer, questionCount int) (bool, error) {
	finished := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var participant entity.MatchParticipant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("match_id = ? AND user_id = ?", answer.MatchID, answer.UserID).
			First(&participant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		if participant.IsFinished() {
			return fmt.Errorf("%w: match #%d, user #%d", repository.ErrParticipantFinished, answer.MatchID, answer.UserID)
		}

		if err := tx.Create(answer).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: question #%d", repository.ErrDuplicateAnswer, answer.QuestionID)
			}
			return err
		}

		var answered int64
		if err := tx.Model(&entity.Answer{}).
			Where("match_id = ? AND user_id = ?", answer.MatchID, answer.UserID).
			Count(&answered).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"total_score":    gorm.Expr("total_score + ?", answer.PointsAwarded),
			"total_time_sec": gorm.Expr("total_time_sec + ?", answer.TimeSpentSec),
		}
		if int(answered) >= questionCount {
			updates["completed_at"] = time.Now()
			finished = true
		}

		return tx.Model(&entity.MatchParticipant{}).
			Where("id = ?", participant.ID).
			Updates(updates).Error
	})
	if err != nil {
		return false, err
	}
	return finished, nil
}

// GetAnswers возвращает ответы участника в порядке отправки
func (r *MatchRepo) GetAnswers(matchID, userID uint) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.Where("match_id = ? AND user_id = ?", matchID, userID).Order("id").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}
