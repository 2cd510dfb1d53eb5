package service

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
	"github.com/yourusername/quizduel-api/internal/websocket"
)

// hintTTL — время жизни записи подсказки в Redis; с запасом больше
// максимального TTL активного матча
const hintTTL = 6 * time.Hour

// AnswerOutcome — результат приёма ответа
type AnswerOutcome struct {
	IsCorrect     bool `json:"is_correct"`
	PointsAwarded int  `json:"points_awarded"`
	CorrectOption int  `json:"correct_option"`
	Finished      bool `json:"finished"`
	MatchComplete bool `json:"match_complete"`
}

// HintOutcome — результат применения подсказки
type HintOutcome struct {
	HintType        string `json:"hint_type"`
	DisabledOptions []int  `json:"disabled_options,omitempty"`
	ExtraSeconds    int    `json:"extra_seconds,omitempty"`
	PointsRemaining int    `json:"points_remaining"`
}

// GameService обрабатывает игровой процесс активного матча:
// приём ответов и применение подсказок.
type GameService struct {
	matchRepo     repository.MatchRepository
	questionRepo  repository.QuestionRepository
	userRepo      repository.UserRepository
	cacheRepo     repository.CacheRepository
	usageService  *UsageService
	resultService *ResultService
	wsManager     *websocket.Manager
}

// NewGameService создает новый игровой сервис
func NewGameService(
	matchRepo repository.MatchRepository,
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	usageService *UsageService,
	resultService *ResultService,
	wsManager *websocket.Manager,
) *GameService {
	return &GameService{
		matchRepo:     matchRepo,
		questionRepo:  questionRepo,
		userRepo:      userRepo,
		cacheRepo:     cacheRepo,
		usageService:  usageService,
		resultService: resultService,
		wsManager:     wsManager,
	}
}

// hintKey — ключ записи подсказки: не больше одной на (матч, вопрос, участник)
func hintKey(matchID, userID, questionID uint) string {
	return fmt.Sprintf("match:%d:hint:%d:%d", matchID, userID, questionID)
}

// SubmitAnswer принимает ответ участника на вопрос матча.
// Правильность и очки вычисляются только сервером; клиентское время
// ответа обрезается лимитом вопроса (с учётом купленного time_boost).
func (s *GameService) SubmitAnswer(matchID, userID, questionID uint, selectedOption, timeSpentSec int) (*AnswerOutcome, error) {
	match, err := s.matchRepo.GetByID(matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsActive() {
		return nil, fmt.Errorf("%w: match #%d is not active", apperrors.ErrConflict, matchID)
	}
	if match.IsExpired(time.Now()) {
		return nil, fmt.Errorf("%w: match #%d expired", apperrors.ErrExpired, matchID)
	}

	// Вопрос должен входить в зафиксированный набор матча
	inSet := false
	for _, id := range match.QuestionIDs {
		if id == questionID {
			inSet = true
			break
		}
	}
	if !inSet {
		return nil, fmt.Errorf("%w: question #%d is not part of match #%d", apperrors.ErrValidation, questionID, matchID)
	}

	if _, err := s.matchRepo.GetParticipant(matchID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a participant of match #%d", apperrors.ErrForbidden, matchID)
		}
		return nil, err
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if !question.IsValidOption(selectedOption) {
		return nil, fmt.Errorf("%w: option %d out of range", apperrors.ErrValidation, selectedOption)
	}
	if timeSpentSec < 0 {
		return nil, fmt.Errorf("%w: negative time spent", apperrors.ErrValidation)
	}

	// time_boost расширяет допустимое время ответа
	effectiveLimit := question.TimeLimitSec
	var usage entity.HintUsage
	if err := s.cacheRepo.GetJSON(hintKey(matchID, userID, questionID), &usage); err == nil {
		effectiveLimit += usage.ExtraSeconds
	}

	// Ответ после дедлайна засчитывается как пропуск
	if timeSpentSec > effectiveLimit {
		selectedOption = entity.SkipOption
		timeSpentSec = effectiveLimit
	}

	isCorrect := question.IsCorrect(selectedOption)
	answer := &entity.Answer{
		MatchID:        matchID,
		UserID:         userID,
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		IsCorrect:      isCorrect,
		TimeSpentSec:   timeSpentSec,
		PointsAwarded:  question.CalculatePoints(isCorrect, timeSpentSec),
	}

	finished, err := s.matchRepo.AppendAnswer(answer, len(match.QuestionIDs))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateAnswer):
			return nil, fmt.Errorf("%w: answer for question #%d already submitted", apperrors.ErrConflict, questionID)
		case errors.Is(err, repository.ErrParticipantFinished):
			return nil, fmt.Errorf("%w: already finished match #%d", apperrors.ErrConflict, matchID)
		default:
			return nil, err
		}
	}

	outcome := &AnswerOutcome{
		IsCorrect:     isCorrect,
		PointsAwarded: answer.PointsAwarded,
		CorrectOption: question.CorrectOption,
		Finished:      finished,
	}

	if finished {
		log.Printf("[GameService] Участник %d финишировал в матче %d", userID, matchID)
		s.wsManager.BroadcastToMatch(matchID, websocket.OPPONENT_FINISHED, map[string]interface{}{
			"match_id": matchID,
			"user_id":  userID,
		})
		complete, err := s.resultService.CheckMatchCompletion(matchID)
		if err != nil {
			// Завершение доделает повторная проверка или sweeper, ответ уже принят
			log.Printf("[GameService] Ошибка проверки завершения матча %d: %v", matchID, err)
		} else {
			outcome.MatchComplete = complete
		}
	}

	return outcome, nil
}

// UseHint применяет подсказку к вопросу матча. Платные подсказки списывают
// очки; ментор требует активной покупки mentor_mode. SetNX в Redis
// гарантирует не больше одной подсказки на вопрос.
func (s *GameService) UseHint(matchID, userID, questionID uint, hintType string) (*HintOutcome, error) {
	switch hintType {
	case entity.HintMentor, entity.HintDisableOne, entity.HintDisableTwo, entity.HintTimeBoost:
	default:
		return nil, fmt.Errorf("%w: unknown hint type %q", apperrors.ErrValidation, hintType)
	}

	match, err := s.matchRepo.GetByID(matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsActive() {
		return nil, fmt.Errorf("%w: match #%d is not active", apperrors.ErrConflict, matchID)
	}
	if match.IsExpired(time.Now()) {
		return nil, fmt.Errorf("%w: match #%d expired", apperrors.ErrExpired, matchID)
	}

	participant, err := s.matchRepo.GetParticipant(matchID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a participant of match #%d", apperrors.ErrForbidden, matchID)
		}
		return nil, err
	}
	if participant.IsFinished() {
		return nil, fmt.Errorf("%w: already finished match #%d", apperrors.ErrConflict, matchID)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	// На отвеченный вопрос подсказка не выдаётся
	answers, err := s.matchRepo.GetAnswers(matchID, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		if a.QuestionID == questionID {
			return nil, fmt.Errorf("%w: question #%d already answered", apperrors.ErrConflict, questionID)
		}
	}

	if hintType == entity.HintMentor {
		hasMentor, err := s.usageService.HasMentorMode(userID)
		if err != nil {
			return nil, err
		}
		if !hasMentor {
			return nil, fmt.Errorf("%w: mentor mode is not active", apperrors.ErrForbidden)
		}
	}

	usage := entity.HintUsage{HintType: hintType}
	switch hintType {
	case entity.HintDisableOne, entity.HintMentor:
		usage.DisabledOptions = pickWrongOptions(question, 1)
	case entity.HintDisableTwo:
		usage.DisabledOptions = pickWrongOptions(question, 2)
	case entity.HintTimeBoost:
		usage.ExtraSeconds = entity.TimeBoostSeconds
	}

	// Замок "одна подсказка на вопрос": выигрывает ровно один вызов
	key := hintKey(matchID, userID, questionID)
	acquired, err := s.cacheRepo.SetNXJSON(key, usage, hintTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%w: hint already used for question #%d", apperrors.ErrConflict, questionID)
	}

	// Списание после замка: при нехватке очков замок снимается
	remaining := 0
	if cost := entity.HintCost(hintType); cost > 0 {
		remaining, err = s.userRepo.DeductPoints(userID, cost)
		if err != nil {
			if delErr := s.cacheRepo.Delete(key); delErr != nil {
				log.Printf("[GameService] Не удалось снять замок подсказки %s: %v", key, delErr)
			}
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return nil, fmt.Errorf("%w: hint %s costs %d points", apperrors.ErrInsufficientPoints, hintType, cost)
			}
			return nil, err
		}
	}

	log.Printf("[GameService] Подсказка %s применена: матч %d, вопрос %d, пользователь %d",
		hintType, matchID, questionID, userID)

	return &HintOutcome{
		HintType:        hintType,
		DisabledOptions: usage.DisabledOptions,
		ExtraSeconds:    usage.ExtraSeconds,
		PointsRemaining: remaining,
	}, nil
}

// GetProgress возвращает ответы участника (восстановление состояния клиента)
func (s *GameService) GetProgress(matchID, userID uint) ([]entity.Answer, error) {
	if _, err := s.matchRepo.GetParticipant(matchID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a participant of match #%d", apperrors.ErrForbidden, matchID)
		}
		return nil, err
	}
	return s.matchRepo.GetAnswers(matchID, userID)
}

// pickWrongOptions выбирает n случайных неправильных вариантов для отключения
func pickWrongOptions(question *entity.Question, n int) []int {
	wrong := question.WrongOptions()
	rand.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})
	if n > len(wrong) {
		n = len(wrong)
	}
	return wrong[:n]
}
