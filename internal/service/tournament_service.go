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

// TournamentService управляет турнирами на выбывание: набор участников,
// построение сетки, продвижение победителей, каскадная отмена.
// Реализует BracketHook для сервиса итогов.
type TournamentService struct {
	tournamentRepo   repository.TournamentRepository
	matchRepo        repository.MatchRepository
	questionRepo     repository.QuestionRepository
	usageService     *UsageService
	wsManager        *websocket.Manager
	waitingTTL       time.Duration
	activeTTL        time.Duration
	randomizeSeeding bool
}

// NewTournamentService создает новый турнирный сервис
func NewTournamentService(
	tournamentRepo repository.TournamentRepository,
	matchRepo repository.MatchRepository,
	questionRepo repository.QuestionRepository,
	usageService *UsageService,
	wsManager *websocket.Manager,
	waitingTTL time.Duration,
	activeTTL time.Duration,
	randomizeSeeding bool,
) *TournamentService {
	return &TournamentService{
		tournamentRepo:   tournamentRepo,
		matchRepo:        matchRepo,
		questionRepo:     questionRepo,
		usageService:     usageService,
		wsManager:        wsManager,
		waitingTTL:       waitingTTL,
		activeTTL:        activeTTL,
		randomizeSeeding: randomizeSeeding,
	}
}

// CreateTournament создаёт waiting-турнир; создатель занимает место 1
func (s *TournamentService) CreateTournament(userID uint, isPrivate bool, categoryID *uint) (*entity.Tournament, error) {
	now := time.Now()
	if err := s.usageService.ConsumeTournamentSlot(userID, now); err != nil {
		return nil, err
	}

	tournament := &entity.Tournament{
		Status:     entity.TournamentStatusWaiting,
		IsPrivate:  isPrivate,
		CategoryID: categoryID,
		CreatorID:  userID,
		ExpiresAt:  now.Add(s.waitingTTL),
	}

	if isPrivate {
		for attempt := 0; ; attempt++ {
			code, err := generateJoinCode()
			if err != nil {
				return nil, err
			}
			tournament.JoinCode = &code
			err = s.tournamentRepo.CreateWithCreator(tournament)
			if err == nil {
				break
			}
			if errors.Is(err, repository.ErrJoinCodeTaken) && attempt < joinCodeRetries {
				log.Printf("[TournamentService] Коллизия кода приглашения %s, повторная генерация", code)
				continue
			}
			return nil, err
		}
	} else {
		if err := s.tournamentRepo.CreateWithCreator(tournament); err != nil {
			return nil, err
		}
	}

	log.Printf("[TournamentService] Создан турнир %d (private=%t) пользователем %d", tournament.ID, isPrivate, userID)
	return tournament, nil
}

// JoinTournament записывает пользователя в турнир. Четвёртый участник
// активирует турнир: строится сетка и стартуют оба полуфинала.
func (s *TournamentService) JoinTournament(tournamentID, userID uint) (*entity.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.IsExpired(time.Now()) {
		return nil, fmt.Errorf("%w: tournament #%d expired", apperrors.ErrExpired, tournamentID)
	}

	seat, activated, err := s.tournamentRepo.AtomicJoin(tournamentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotJoinable), errors.Is(err, repository.ErrTournamentFull):
			return nil, fmt.Errorf("%w: tournament #%d is not joinable", apperrors.ErrConflict, tournamentID)
		case errors.Is(err, repository.ErrDuplicateParticipant):
			return nil, fmt.Errorf("%w: already joined tournament #%d", apperrors.ErrConflict, tournamentID)
		default:
			return nil, err
		}
	}
	log.Printf("[TournamentService] Пользователь %d занял место %d в турнире %d", userID, seat, tournamentID)

	if activated {
		if err := s.activateBracket(tournamentID); err != nil {
			// Турнир уже active; недостроенную сетку доведёт первое чтение
			// GetTournament, иначе sweeper отменит по TTL
			log.Printf("[TournamentService] Ошибка построения сетки турнира %d: %v", tournamentID, err)
			return nil, err
		}
	}

	return s.tournamentRepo.GetWithParticipants(tournamentID)
}

// JoinTournamentByCode записывает пользователя по коду приглашения
func (s *TournamentService) JoinTournamentByCode(code string, userID uint) (*entity.Tournament, error) {
	tournament, err := s.tournamentRepo.GetLiveByJoinCode(code)
	if err != nil {
		return nil, err
	}
	return s.JoinTournament(tournament.ID, userID)
}

// activateBracket строит сетку и запускает оба полуфинала.
// Посев по порядку присоединения: места 1-2 в первый полуфинал, 3-4 во второй;
// флаг randomizeSeeding перемешивает пары.
// Метод возобновляем: если прошлый вызов оборвался после создания слотов,
// повторный пропускает готовые шаги и дозапускает матчи без пары.
func (s *TournamentService) activateBracket(tournamentID uint) error {
	tournament, err := s.tournamentRepo.GetWithParticipants(tournamentID)
	if err != nil {
		return err
	}
	if len(tournament.Participants) != entity.TournamentSize {
		return fmt.Errorf("tournament #%d has %d participants, expected %d",
			tournamentID, len(tournament.Participants), entity.TournamentSize)
	}

	now := time.Now()
	rounds := tournament.Rounds
	if len(rounds) == 0 {
		players := make([]uint, 0, entity.TournamentSize)
		for _, p := range tournament.Participants {
			players = append(players, p.UserID)
		}
		if s.randomizeSeeding {
			rand.Shuffle(len(players), func(i, j int) {
				players[i], players[j] = players[j], players[i]
			})
		}

		rounds = []entity.TournamentMatch{
			{TournamentID: tournamentID, Round: entity.RoundSemifinal1, Player1ID: &players[0], Player2ID: &players[1]},
			{TournamentID: tournamentID, Round: entity.RoundSemifinal2, Player1ID: &players[2], Player2ID: &players[3]},
			{TournamentID: tournamentID, Round: entity.RoundFinal},
		}
		if err := s.tournamentRepo.CreateRounds(rounds); err != nil {
			return err
		}

		// Активному турниру — собственный TTL на всю сетку
		if err := s.tournamentRepo.ExtendExpiry(tournamentID, now.Add(s.activeTTL)); err != nil {
			log.Printf("[TournamentService] Не удалось продлить TTL турнира %d: %v", tournamentID, err)
		}
	}

	for i := range rounds {
		if rounds[i].Round == entity.RoundFinal || rounds[i].IsStarted() {
			continue
		}
		if err := s.startRoundMatch(tournament, &rounds[i], now); err != nil {
			return err
		}
	}

	s.wsManager.BroadcastToTournament(tournamentID, websocket.TOURNAMENT_BRACKET_READY, map[string]interface{}{
		"tournament_id": tournamentID,
		"rounds":        rounds,
	})
	log.Printf("[TournamentService] Сетка турнира %d построена, полуфиналы запущены", tournamentID)
	return nil
}

// startRoundMatch создаёт активный матч для слота сетки и привязывает его
func (s *TournamentService) startRoundMatch(tournament *entity.Tournament, round *entity.TournamentMatch, now time.Time) error {
	questions, err := s.questionRepo.DrawRandom(entity.MatchQuestionCount, tournament.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to draw questions for round %s: %w", round.Round, err)
	}
	if len(questions) < entity.MatchQuestionCount {
		return fmt.Errorf("question pool too small for round %s (%d of %d)",
			round.Round, len(questions), entity.MatchQuestionCount)
	}
	questionIDs := make(entity.UintArray, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}

	startedAt := now
	match := &entity.Match{
		Status:      entity.MatchStatusActive,
		IsPrivate:   true, // в матч сетки нельзя войти со стороны
		CreatorID:   *round.Player1ID,
		QuestionIDs: questionIDs,
		StartedAt:   &startedAt,
		ExpiresAt:   now.Add(s.activeTTL),
	}
	if err := s.matchRepo.CreateForPair(match, *round.Player1ID, *round.Player2ID); err != nil {
		return err
	}
	if err := s.tournamentRepo.SetRoundStarted(round.ID, match.ID); err != nil {
		return err
	}
	round.MatchID = &match.ID
	return nil
}

// OnRoundDecided — хук сервиса итогов: продвигает победителя по сетке.
// Идемпотентен: повторный вызов для уже решённого слота ничего не меняет.
func (s *TournamentService) OnRoundDecided(round *entity.TournamentMatch, winnerID uint) error {
	if err := s.tournamentRepo.SetRoundWinner(round.ID, winnerID); err != nil {
		return err
	}

	s.wsManager.BroadcastToTournament(round.TournamentID, websocket.TOURNAMENT_ROUND_COMPLETED, map[string]interface{}{
		"tournament_id": round.TournamentID,
		"round":         round.Round,
		"winner_id":     winnerID,
	})

	if round.Round == entity.RoundFinal {
		return s.completeTournament(round.TournamentID, winnerID)
	}
	return s.tryStartFinal(round.TournamentID)
}

// tryStartFinal создаёт финал, когда оба полуфинала решены.
// Игроки финала заполняются строго победителями полуфиналов.
func (s *TournamentService) tryStartFinal(tournamentID uint) error {
	tournament, err := s.tournamentRepo.GetWithParticipants(tournamentID)
	if err != nil {
		return err
	}

	var semi1, semi2, final *entity.TournamentMatch
	for i := range tournament.Rounds {
		switch tournament.Rounds[i].Round {
		case entity.RoundSemifinal1:
			semi1 = &tournament.Rounds[i]
		case entity.RoundSemifinal2:
			semi2 = &tournament.Rounds[i]
		case entity.RoundFinal:
			final = &tournament.Rounds[i]
		}
	}
	if semi1 == nil || semi2 == nil || final == nil {
		return fmt.Errorf("tournament #%d bracket is incomplete", tournamentID)
	}
	if !semi1.IsDecided() || !semi2.IsDecided() {
		return nil
	}
	if final.IsStarted() {
		// Конкурирующий хук уже запустил финал
		return nil
	}

	if err := s.tournamentRepo.UpdateFinalPlayers(tournamentID, *semi1.WinnerID, *semi2.WinnerID); err != nil {
		return err
	}
	final.Player1ID = semi1.WinnerID
	final.Player2ID = semi2.WinnerID

	if err := s.startRoundMatch(tournament, final, time.Now()); err != nil {
		return err
	}

	s.wsManager.BroadcastToTournament(tournamentID, websocket.TOURNAMENT_FINAL_READY, map[string]interface{}{
		"tournament_id": tournamentID,
		"match_id":      final.MatchID,
		"player1_id":    final.Player1ID,
		"player2_id":    final.Player2ID,
	})
	log.Printf("[TournamentService] Финал турнира %d запущен: %d vs %d",
		tournamentID, *final.Player1ID, *final.Player2ID)
	return nil
}

// completeTournament завершает турнир после финала
func (s *TournamentService) completeTournament(tournamentID, championID uint) error {
	if err := s.tournamentRepo.AtomicComplete(tournamentID, time.Now()); err != nil {
		return err
	}
	s.wsManager.BroadcastToTournament(tournamentID, websocket.TOURNAMENT_COMPLETED, map[string]interface{}{
		"tournament_id": tournamentID,
		"champion_id":   championID,
	})
	log.Printf("[TournamentService] Турнир %d завершён, чемпион — пользователь %d", tournamentID, championID)
	return nil
}

// GetTournament возвращает турнир с участниками и сеткой.
// Активный турнир с недостроенной сеткой (построение оборвалось после
// активирующего join) достраивается при первом чтении.
func (s *TournamentService) GetTournament(tournamentID uint) (*entity.Tournament, error) {
	tournament, err := s.tournamentRepo.GetWithParticipants(tournamentID)
	if err != nil {
		return nil, err
	}

	if tournament.Status == entity.TournamentStatusActive && bracketIncomplete(tournament) {
		if err := s.activateBracket(tournamentID); err != nil {
			// Чтение не падает: сетку достроит следующее обращение или sweeper отменит по TTL
			log.Printf("[TournamentService] Не удалось достроить сетку турнира %d: %v", tournamentID, err)
			return tournament, nil
		}
		return s.tournamentRepo.GetWithParticipants(tournamentID)
	}
	return tournament, nil
}

// bracketIncomplete — активирован, но слоты не созданы либо полуфинал без матча
func bracketIncomplete(t *entity.Tournament) bool {
	if len(t.Rounds) == 0 {
		return true
	}
	for _, r := range t.Rounds {
		if r.Round != entity.RoundFinal && !r.IsStarted() {
			return true
		}
	}
	return false
}

// CheckTournamentMatch — обратный поиск: к какому турниру и раунду сетки
// относится матч. Для обычных матчей возвращает ErrNotFound.
func (s *TournamentService) CheckTournamentMatch(matchID uint) (*entity.TournamentMatch, error) {
	return s.tournamentRepo.GetRoundByMatchID(matchID)
}

// GetTournamentByJoinCode возвращает живой турнир по коду приглашения
func (s *TournamentService) GetTournamentByJoinCode(code string) (*entity.Tournament, error) {
	return s.tournamentRepo.GetLiveByJoinCode(code)
}

// CancelTournament отменяет живой турнир и каскадно все его живые матчи.
// Разрешено любому участнику и администратору.
func (s *TournamentService) CancelTournament(tournamentID, userID uint, isAdmin bool) error {
	tournament, err := s.tournamentRepo.GetWithParticipants(tournamentID)
	if err != nil {
		return err
	}
	if !tournament.HasParticipant(userID) && !isAdmin {
		return fmt.Errorf("%w: only a participant or admin can cancel tournament #%d", apperrors.ErrForbidden, tournamentID)
	}

	now := time.Now()
	if err := s.tournamentRepo.AtomicCancel(tournamentID, now); err != nil {
		if errors.Is(err, repository.ErrNotCancellable) {
			return fmt.Errorf("%w: tournament #%d is already finished", apperrors.ErrConflict, tournamentID)
		}
		return err
	}

	// Каскад: живые матчи сетки тоже отменяются
	matchIDs, err := s.tournamentRepo.LiveChildMatchIDs(tournamentID)
	if err != nil {
		return err
	}
	for _, matchID := range matchIDs {
		if err := s.matchRepo.AtomicCancel(matchID, now); err != nil && !errors.Is(err, repository.ErrNotCancellable) {
			log.Printf("[TournamentService] Не удалось отменить матч %d сетки турнира %d: %v", matchID, tournamentID, err)
		}
	}

	s.wsManager.BroadcastToTournament(tournamentID, websocket.TOURNAMENT_CANCELLED, map[string]interface{}{
		"tournament_id": tournamentID,
	})
	log.Printf("[TournamentService] Турнир %d отменён пользователем %d (отменено матчей сетки: %d)",
		tournamentID, userID, len(matchIDs))
	return nil
}
