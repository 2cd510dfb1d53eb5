package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
	"github.com/yourusername/quizduel-api/internal/websocket"
)

// BracketHook получает уведомление о решённом матче турнирной сетки.
// Реализуется турнирным сервисом; подключается после создания обоих
// сервисов, чтобы разорвать циклическую зависимость конструкторов.
type BracketHook interface {
	OnRoundDecided(round *entity.TournamentMatch, winnerID uint) error
}

// ResultService фиксирует завершение матчей и формирует неизменяемые итоги
type ResultService struct {
	matchRepo      repository.MatchRepository
	resultRepo     repository.ResultRepository
	tournamentRepo repository.TournamentRepository
	wsManager      *websocket.Manager
	bracketHook    BracketHook
}

// NewResultService создает новый сервис итогов
func NewResultService(
	matchRepo repository.MatchRepository,
	resultRepo repository.ResultRepository,
	tournamentRepo repository.TournamentRepository,
	wsManager *websocket.Manager,
) *ResultService {
	return &ResultService{
		matchRepo:      matchRepo,
		resultRepo:     resultRepo,
		tournamentRepo: tournamentRepo,
		wsManager:      wsManager,
	}
}

// SetBracketHook подключает обработчик решённых матчей сетки
func (s *ResultService) SetBracketHook(hook BracketHook) {
	s.bracketHook = hook
}

// CheckMatchCompletion проверяет, финишировали ли оба участника, и при
// необходимости завершает матч. Возвращает true, если матч завершён
// (этим вызовом или раньше). Вызов идемпотентен: гонку двух одновременных
// финишей разрешает уникальный индекс итогов по match_id.
func (s *ResultService) CheckMatchCompletion(matchID uint) (bool, error) {
	match, err := s.matchRepo.GetWithParticipants(matchID)
	if err != nil {
		return false, err
	}
	if match.Status == entity.MatchStatusCompleted {
		return true, nil
	}
	if !match.IsActive() {
		return false, nil
	}

	if len(match.Participants) < entity.MaxMatchParticipants {
		return false, nil
	}
	for _, p := range match.Participants {
		if !p.IsFinished() {
			return false, nil
		}
	}

	return true, s.finalizeMatch(match)
}

// finalizeMatch определяет победителя, записывает итог и рассылает события.
// Для матчей турнирной сетки ничья запрещена: равный счёт разрешается
// меньшим суммарным временем, затем меньшим местом в турнире.
func (s *ResultService) finalizeMatch(match *entity.Match) error {
	// Участники в порядке присоединения: создатель (или первый по посеву) первым
	p1, p2 := match.Participants[0], match.Participants[1]

	round, err := s.tournamentRepo.GetRoundByMatchID(match.ID)
	isBracket := err == nil
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	result := &entity.MatchResult{
		MatchID:        match.ID,
		Player1ID:      p1.UserID,
		Player2ID:      p2.UserID,
		Player1Score:   p1.TotalScore,
		Player2Score:   p2.TotalScore,
		Player1TimeSec: p1.TotalTimeSec,
		Player2TimeSec: p2.TotalTimeSec,
	}

	switch {
	case p1.TotalScore > p2.TotalScore:
		result.WinnerID = &p1.UserID
	case p2.TotalScore > p1.TotalScore:
		result.WinnerID = &p2.UserID
	case isBracket:
		winnerID, err := s.resolveBracketTie(round, &p1, &p2)
		if err != nil {
			return err
		}
		result.WinnerID = &winnerID
	default:
		result.IsDraw = true
	}

	// Сначала итог, затем переход статуса: если запись итога сорвётся,
	// матч останется active и следующая проверка завершения повторит
	// финализацию. Обратный порядок оставлял бы completed-матч без итога.
	if err := s.resultRepo.Create(result); err != nil {
		if !errors.Is(err, repository.ErrResultExists) {
			return err
		}
		// Конкурент записал итог первым; доводим переход статуса по его данным
		existing, getErr := s.resultRepo.GetByMatchID(match.ID)
		if getErr != nil {
			return getErr
		}
		result = existing
		log.Printf("[ResultService] Итог матча %d уже зафиксирован конкурентом", match.ID)
	}

	if err := s.matchRepo.AtomicComplete(match.ID, time.Now()); err != nil {
		return err
	}

	log.Printf("[ResultService] Матч %d завершён: winner=%v, draw=%t", match.ID, result.WinnerID, result.IsDraw)
	s.wsManager.BroadcastToMatch(match.ID, websocket.MATCH_COMPLETED, result)

	if isBracket && s.bracketHook != nil && result.WinnerID != nil {
		if err := s.bracketHook.OnRoundDecided(round, *result.WinnerID); err != nil {
			// Сетку доведёт повторная проверка турнира, итог матча уже записан
			log.Printf("[ResultService] Ошибка продвижения сетки турнира %d: %v", round.TournamentID, err)
		}
	}

	return nil
}

// resolveBracketTie разрешает равный счёт в матче сетки:
// меньшее суммарное время, при равенстве — меньшее место в турнире
func (s *ResultService) resolveBracketTie(round *entity.TournamentMatch, p1, p2 *entity.MatchParticipant) (uint, error) {
	if p1.TotalTimeSec != p2.TotalTimeSec {
		if p1.TotalTimeSec < p2.TotalTimeSec {
			return p1.UserID, nil
		}
		return p2.UserID, nil
	}

	tournament, err := s.tournamentRepo.GetWithParticipants(round.TournamentID)
	if err != nil {
		return 0, err
	}
	seats := make(map[uint]int, len(tournament.Participants))
	for _, tp := range tournament.Participants {
		seats[tp.UserID] = tp.Seat
	}
	if seats[p1.UserID] <= seats[p2.UserID] {
		return p1.UserID, nil
	}
	return p2.UserID, nil
}

// MatchReview — полный итог завершённого матча: результат и ответы обоих
// игроков для послематчевого разбора
type MatchReview struct {
	Result         *entity.MatchResult
	Player1Answers []entity.Answer
	Player2Answers []entity.Answer
}

// GetMatchResult возвращает итог завершённого матча вместе с ответами
// обоих игроков. До завершения матча итога не существует (404);
// ответы соперника раскрываются только здесь, после завершения.
func (s *ResultService) GetMatchResult(matchID uint) (*MatchReview, error) {
	result, err := s.resultRepo.GetByMatchID(matchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Различаем "матча нет" и "матч ещё идёт"
			if _, mErr := s.matchRepo.GetByID(matchID); mErr != nil {
				return nil, mErr
			}
			return nil, fmt.Errorf("%w: match #%d has no result yet", apperrors.ErrNotFound, matchID)
		}
		return nil, err
	}

	player1Answers, err := s.matchRepo.GetAnswers(matchID, result.Player1ID)
	if err != nil {
		return nil, err
	}
	player2Answers, err := s.matchRepo.GetAnswers(matchID, result.Player2ID)
	if err != nil {
		return nil, err
	}

	return &MatchReview{
		Result:         result,
		Player1Answers: player1Answers,
		Player2Answers: player2Answers,
	}, nil
}

// GetScoreboard возвращает текущее табло матча: итоги участников без
// раскрытия правильных ответов. Доступно и во время игры.
func (s *ResultService) GetScoreboard(matchID uint) (*entity.Match, []entity.MatchParticipant, error) {
	match, err := s.matchRepo.GetByID(matchID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := s.matchRepo.GetParticipants(matchID)
	if err != nil {
		return nil, nil, err
	}
	return match, participants, nil
}

// ListRecentResults возвращает последние итоги всех матчей (экспорт администратора)
func (s *ResultService) ListRecentResults(limit int) ([]entity.MatchResult, error) {
	if limit <= 0 || limit > 10000 {
		limit = 1000
	}
	return s.resultRepo.ListRecent(limit)
}

// ListUserResults возвращает историю итогов пользователя с пагинацией
func (s *ResultService) ListUserResults(userID uint, limit, offset int) ([]entity.MatchResult, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.resultRepo.ListByUser(userID, limit, offset)
}
