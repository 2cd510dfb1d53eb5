package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
	"github.com/yourusername/quizduel-api/internal/websocket"
)

// joinCodeAlphabet — без похожих символов (0/O, 1/I/L), чтобы код
// легко диктовался голосом
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// joinCodeLength — длина кода приглашения
const joinCodeLength = 6

// joinCodeRetries — попыток генерации при коллизии кода
const joinCodeRetries = 5

// MatchService управляет жизненным циклом дуэльных матчей:
// создание, авто-подбор пары, присоединение, отмена.
type MatchService struct {
	matchRepo    repository.MatchRepository
	questionRepo repository.QuestionRepository
	usageService *UsageService
	wsManager    *websocket.Manager
	waitingTTL   time.Duration
	activeTTL    time.Duration
}

// NewMatchService создает новый сервис матчей
func NewMatchService(
	matchRepo repository.MatchRepository,
	questionRepo repository.QuestionRepository,
	usageService *UsageService,
	wsManager *websocket.Manager,
	waitingTTL time.Duration,
	activeTTL time.Duration,
) *MatchService {
	return &MatchService{
		matchRepo:    matchRepo,
		questionRepo: questionRepo,
		usageService: usageService,
		wsManager:    wsManager,
		waitingTTL:   waitingTTL,
		activeTTL:    activeTTL,
	}
}

// CreateMatch создаёт матч или присоединяет пользователя к существующему.
// Для публичных матчей сначала ищется чужой waiting-матч (авто-подбор пары);
// квота расходуется только при реальном создании. Приватный матч получает
// код приглашения и ждёт соперника по коду.
func (s *MatchService) CreateMatch(userID uint, isPrivate bool, categoryID *uint) (*entity.Match, error) {
	// Авто-подбор: присоединяемся к чужому публичному матчу вместо создания
	if !isPrivate {
		waiting, err := s.matchRepo.FindPublicWaiting(userID)
		if err == nil {
			joined, joinErr := s.join(waiting.ID, userID)
			if joinErr == nil {
				log.Printf("[MatchService] Авто-подбор: пользователь %d присоединён к матчу %d", userID, waiting.ID)
				return joined, nil
			}
			// Матч перехватили или пользователь уже в нём — создаём свой
			if !errors.Is(joinErr, repository.ErrNotJoinable) && !errors.Is(joinErr, repository.ErrDuplicateParticipant) {
				return nil, joinErr
			}
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	now := time.Now()
	if err := s.usageService.ConsumeMatchSlot(userID, now); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.DrawRandom(entity.MatchQuestionCount, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to draw questions: %w", err)
	}
	if len(questions) < entity.MatchQuestionCount {
		return nil, fmt.Errorf("%w: question pool too small (%d of %d)",
			apperrors.ErrValidation, len(questions), entity.MatchQuestionCount)
	}

	questionIDs := make(entity.UintArray, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}

	match := &entity.Match{
		Status:      entity.MatchStatusWaiting,
		IsPrivate:   isPrivate,
		CreatorID:   userID,
		QuestionIDs: questionIDs,
		ExpiresAt:   now.Add(s.waitingTTL),
	}

	// Код приглашения нужен только приватным матчам
	if isPrivate {
		for attempt := 0; ; attempt++ {
			code, err := generateJoinCode()
			if err != nil {
				return nil, err
			}
			match.JoinCode = &code
			err = s.matchRepo.CreateWithCreator(match)
			if err == nil {
				break
			}
			if errors.Is(err, repository.ErrJoinCodeTaken) && attempt < joinCodeRetries {
				log.Printf("[MatchService] Коллизия кода приглашения %s, повторная генерация", code)
				continue
			}
			return nil, err
		}
	} else {
		if err := s.matchRepo.CreateWithCreator(match); err != nil {
			return nil, err
		}
	}

	log.Printf("[MatchService] Создан матч %d (private=%t) пользователем %d", match.ID, isPrivate, userID)
	return match, nil
}

// JoinMatch присоединяет пользователя к waiting-матчу по ID
func (s *MatchService) JoinMatch(matchID, userID uint) (*entity.Match, error) {
	return s.join(matchID, userID)
}

// JoinMatchByCode присоединяет пользователя к приватному матчу по коду приглашения
func (s *MatchService) JoinMatchByCode(code string, userID uint) (*entity.Match, error) {
	match, err := s.matchRepo.GetLiveByJoinCode(code)
	if err != nil {
		return nil, err
	}
	return s.join(match.ID, userID)
}

// join выполняет фактическое присоединение с переводом ошибок
// репозитория в ошибки приложения
func (s *MatchService) join(matchID, userID uint) (*entity.Match, error) {
	match, err := s.matchRepo.GetByID(matchID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if match.IsExpired(now) {
		return nil, fmt.Errorf("%w: match #%d expired", apperrors.ErrExpired, matchID)
	}

	if err := s.matchRepo.AtomicJoin(matchID, userID, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotJoinable):
			return nil, fmt.Errorf("%w: match #%d is not joinable", apperrors.ErrConflict, matchID)
		case errors.Is(err, repository.ErrDuplicateParticipant):
			return nil, fmt.Errorf("%w: already joined match #%d", apperrors.ErrConflict, matchID)
		default:
			return nil, err
		}
	}

	// TTL активного матча отсчитывается от старта
	if err := s.matchRepo.ExtendExpiry(matchID, now.Add(s.activeTTL)); err != nil {
		log.Printf("[MatchService] Не удалось продлить TTL матча %d: %v", matchID, err)
	}

	joined, err := s.matchRepo.GetWithParticipants(matchID)
	if err != nil {
		return nil, err
	}

	s.wsManager.BroadcastToMatch(matchID, websocket.MATCH_JOINED, map[string]interface{}{
		"match_id":   matchID,
		"user_id":    userID,
		"started_at": joined.StartedAt,
	})

	return joined, nil
}

// GetMatch возвращает матч с участниками
func (s *MatchService) GetMatch(matchID uint) (*entity.Match, error) {
	return s.matchRepo.GetWithParticipants(matchID)
}

// GetMatchByJoinCode возвращает живой матч по коду приглашения (превью перед join)
func (s *MatchService) GetMatchByJoinCode(code string) (*entity.Match, error) {
	return s.matchRepo.GetLiveByJoinCode(code)
}

// GetMatchQuestions возвращает вопросы матча в зафиксированном порядке.
// Доступно только участникам; правильные ответы скрыты сериализацией.
func (s *MatchService) GetMatchQuestions(matchID, userID uint) ([]entity.Question, error) {
	match, err := s.matchRepo.GetWithParticipants(matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: not a participant of match #%d", apperrors.ErrForbidden, matchID)
	}

	questions, err := s.questionRepo.GetByIDs(match.QuestionIDs)
	if err != nil {
		return nil, err
	}

	// Восстанавливаем зафиксированный порядок
	byID := make(map[uint]entity.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]entity.Question, 0, len(match.QuestionIDs))
	for _, id := range match.QuestionIDs {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// CancelMatch отменяет живой матч. Разрешено любому участнику (выход из
// матча — кооперативная отмена, ответы сохраняются) и администратору.
func (s *MatchService) CancelMatch(matchID, userID uint, isAdmin bool) error {
	match, err := s.matchRepo.GetWithParticipants(matchID)
	if err != nil {
		return err
	}
	if !match.HasParticipant(userID) && !isAdmin {
		return fmt.Errorf("%w: only a participant or admin can cancel match #%d", apperrors.ErrForbidden, matchID)
	}

	if err := s.matchRepo.AtomicCancel(matchID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotCancellable) {
			return fmt.Errorf("%w: match #%d is already finished", apperrors.ErrConflict, matchID)
		}
		return err
	}

	s.wsManager.BroadcastToMatch(matchID, websocket.MATCH_CANCELLED, map[string]interface{}{
		"match_id": matchID,
	})
	log.Printf("[MatchService] Матч %d отменён пользователем %d", matchID, userID)
	return nil
}

// generateJoinCode генерирует криптослучайный код приглашения
func generateJoinCode() (string, error) {
	code := make([]byte, joinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
