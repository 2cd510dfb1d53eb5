package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizduel-api/internal/pkg/errors"
)

func createTestTournamentService(
	tournamentRepo *MockTournamentRepo,
	matchRepo *MockMatchRepo,
	questionRepo *MockQuestionRepo,
	usageRepo *MockUsageRepo,
	storeRepo *MockStoreRepo,
) *TournamentService {
	return NewTournamentService(
		tournamentRepo,
		matchRepo,
		questionRepo,
		newTestUsageService(usageRepo, storeRepo, 10, 3),
		newTestWSManager(),
		30*time.Minute,
		120*time.Minute,
		false, // посев по порядку присоединения, без перемешивания
	)
}

func fullTournament() *entity.Tournament {
	return &entity.Tournament{
		ID:        2,
		Status:    entity.TournamentStatusActive,
		CreatorID: 10,
		ExpiresAt: time.Now().Add(time.Hour),
		Participants: []entity.TournamentParticipant{
			{TournamentID: 2, UserID: 10, Seat: 1},
			{TournamentID: 2, UserID: 20, Seat: 2},
			{TournamentID: 2, UserID: 30, Seat: 3},
			{TournamentID: 2, UserID: 40, Seat: 4},
		},
	}
}

func TestTournamentService_CreateTournament_QuotaExceeded(t *testing.T) {
	// Arrange
	tournamentRepo := new(MockTournamentRepo)
	usageRepo := new(MockUsageRepo)
	storeRepo := new(MockStoreRepo)

	storeRepo.On("ActiveBonuses", uint(10), mock.Anything).Return(&entity.ActiveBonuses{}, nil)
	usageRepo.On("ConsumeTournamentSlot", uint(10), 3, mock.Anything).Return(repository.ErrQuotaReached)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), usageRepo, storeRepo)

	// Act
	_, err := svc.CreateTournament(10, false, nil)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
}

func TestTournamentService_JoinTournament_FourthJoinActivatesBracket(t *testing.T) {
	// Arrange: четвёртый участник активирует турнир, строится сетка
	// и стартуют оба полуфинала
	tournamentRepo := new(MockTournamentRepo)
	matchRepo := new(MockMatchRepo)
	questionRepo := new(MockQuestionRepo)

	waiting := &entity.Tournament{
		ID:        2,
		Status:    entity.TournamentStatusWaiting,
		CreatorID: 10,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	tournamentRepo.On("GetByID", uint(2)).Return(waiting, nil)
	tournamentRepo.On("AtomicJoin", uint(2), uint(40)).Return(4, true, nil)
	tournamentRepo.On("GetWithParticipants", uint(2)).Return(fullTournament(), nil)

	var createdRounds []entity.TournamentMatch
	tournamentRepo.On("CreateRounds", mock.AnythingOfType("[]entity.TournamentMatch")).
		Run(func(args mock.Arguments) {
			createdRounds = args.Get(0).([]entity.TournamentMatch)
		}).
		Return(nil)
	tournamentRepo.On("ExtendExpiry", uint(2), mock.Anything).Return(nil)

	questionRepo.On("DrawRandom", entity.MatchQuestionCount, (*uint)(nil)).Return(fiveQuestions(), nil)

	var nextMatchID uint = 100
	matchRepo.On("CreateForPair", mock.AnythingOfType("*entity.Match"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			nextMatchID++
			args.Get(0).(*entity.Match).ID = nextMatchID
		}).
		Return(nil)
	tournamentRepo.On("SetRoundStarted", mock.Anything, mock.Anything).Return(nil)

	svc := createTestTournamentService(tournamentRepo, matchRepo, questionRepo, new(MockUsageRepo), new(MockStoreRepo))

	// Act
	tournament, err := svc.JoinTournament(2, 40)

	// Assert: сетка из трёх слотов, посев по порядку присоединения
	require.NoError(t, err)
	require.NotNil(t, tournament)
	require.Len(t, createdRounds, 3)
	assert.Equal(t, entity.RoundSemifinal1, createdRounds[0].Round)
	assert.Equal(t, uint(10), *createdRounds[0].Player1ID)
	assert.Equal(t, uint(20), *createdRounds[0].Player2ID)
	assert.Equal(t, entity.RoundSemifinal2, createdRounds[1].Round)
	assert.Equal(t, uint(30), *createdRounds[1].Player1ID)
	assert.Equal(t, uint(40), *createdRounds[1].Player2ID)
	assert.Equal(t, entity.RoundFinal, createdRounds[2].Round)
	assert.Nil(t, createdRounds[2].Player1ID, "Игроки финала неизвестны до полуфиналов")

	matchRepo.AssertNumberOfCalls(t, "CreateForPair", 2)
	tournamentRepo.AssertNumberOfCalls(t, "SetRoundStarted", 2)
}

func TestTournamentService_JoinTournament_NonActivatingJoin(t *testing.T) {
	// Arrange: второй участник — сетка не строится
	tournamentRepo := new(MockTournamentRepo)

	waiting := &entity.Tournament{
		ID:        2,
		Status:    entity.TournamentStatusWaiting,
		CreatorID: 10,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	tournamentRepo.On("GetByID", uint(2)).Return(waiting, nil)
	tournamentRepo.On("AtomicJoin", uint(2), uint(20)).Return(2, false, nil)
	tournamentRepo.On("GetWithParticipants", uint(2)).Return(waiting, nil)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	_, err := svc.JoinTournament(2, 20)

	// Assert: CreateRounds на моке не ожидается — вызов привёл бы к панике
	require.NoError(t, err)
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_JoinTournament_Duplicate(t *testing.T) {
	// Arrange
	tournamentRepo := new(MockTournamentRepo)

	waiting := &entity.Tournament{
		ID:        2,
		Status:    entity.TournamentStatusWaiting,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	tournamentRepo.On("GetByID", uint(2)).Return(waiting, nil)
	tournamentRepo.On("AtomicJoin", uint(2), uint(10)).Return(0, false, repository.ErrDuplicateParticipant)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	_, err := svc.JoinTournament(2, 10)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestTournamentService_OnRoundDecided_SemifinalStartsFinalWhenBothDecided(t *testing.T) {
	// Arrange: оба полуфинала решены — финал заполняется победителями
	tournamentRepo := new(MockTournamentRepo)
	matchRepo := new(MockMatchRepo)
	questionRepo := new(MockQuestionRepo)

	winner1, winner2 := uint(10), uint(30)
	tournament := fullTournament()
	tournament.Rounds = []entity.TournamentMatch{
		{ID: 8, TournamentID: 2, Round: entity.RoundSemifinal1, WinnerID: &winner1},
		{ID: 9, TournamentID: 2, Round: entity.RoundSemifinal2, WinnerID: &winner2},
		{ID: 10, TournamentID: 2, Round: entity.RoundFinal},
	}

	decided := &entity.TournamentMatch{ID: 9, TournamentID: 2, Round: entity.RoundSemifinal2}
	tournamentRepo.On("SetRoundWinner", uint(9), winner2).Return(nil)
	tournamentRepo.On("GetWithParticipants", uint(2)).Return(tournament, nil)
	tournamentRepo.On("UpdateFinalPlayers", uint(2), winner1, winner2).Return(nil)
	questionRepo.On("DrawRandom", entity.MatchQuestionCount, (*uint)(nil)).Return(fiveQuestions(), nil)

	var finalMatch *entity.Match
	matchRepo.On("CreateForPair", mock.AnythingOfType("*entity.Match"), winner1, winner2).
		Run(func(args mock.Arguments) {
			finalMatch = args.Get(0).(*entity.Match)
			finalMatch.ID = 200
		}).
		Return(nil)
	tournamentRepo.On("SetRoundStarted", uint(10), uint(200)).Return(nil)

	svc := createTestTournamentService(tournamentRepo, matchRepo, questionRepo, new(MockUsageRepo), new(MockStoreRepo))

	// Act
	err := svc.OnRoundDecided(decided, winner2)

	// Assert: финал стартовал сразу активным матчем победителей
	require.NoError(t, err)
	require.NotNil(t, finalMatch)
	assert.Equal(t, entity.MatchStatusActive, finalMatch.Status)
	assert.True(t, finalMatch.IsPrivate, "В матч сетки нельзя войти со стороны")
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_OnRoundDecided_FirstSemifinalWaitsForSecond(t *testing.T) {
	// Arrange: решён только первый полуфинал
	tournamentRepo := new(MockTournamentRepo)

	winner1 := uint(10)
	tournament := fullTournament()
	tournament.Rounds = []entity.TournamentMatch{
		{ID: 8, TournamentID: 2, Round: entity.RoundSemifinal1, WinnerID: &winner1},
		{ID: 9, TournamentID: 2, Round: entity.RoundSemifinal2},
		{ID: 10, TournamentID: 2, Round: entity.RoundFinal},
	}

	decided := &entity.TournamentMatch{ID: 8, TournamentID: 2, Round: entity.RoundSemifinal1}
	tournamentRepo.On("SetRoundWinner", uint(8), winner1).Return(nil)
	tournamentRepo.On("GetWithParticipants", uint(2)).Return(tournament, nil)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	err := svc.OnRoundDecided(decided, winner1)

	// Assert: финал не создаётся (UpdateFinalPlayers не ожидается)
	require.NoError(t, err)
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_OnRoundDecided_FinalCompletesTournament(t *testing.T) {
	// Arrange: решён финал — турнир завершается
	tournamentRepo := new(MockTournamentRepo)

	champion := uint(30)
	final := &entity.TournamentMatch{ID: 10, TournamentID: 2, Round: entity.RoundFinal}
	tournamentRepo.On("SetRoundWinner", uint(10), champion).Return(nil)
	tournamentRepo.On("AtomicComplete", uint(2), mock.Anything).Return(nil)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	err := svc.OnRoundDecided(final, champion)

	// Assert
	require.NoError(t, err)
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_CancelTournament_CascadesToLiveMatches(t *testing.T) {
	// Arrange: отмена турнира отменяет его живые матчи сетки
	tournamentRepo := new(MockTournamentRepo)
	matchRepo := new(MockMatchRepo)

	tournament := fullTournament()
	tournamentRepo.On("GetWithParticipants", uint(2)).Return(tournament, nil)
	tournamentRepo.On("AtomicCancel", uint(2), mock.Anything).Return(nil)
	tournamentRepo.On("LiveChildMatchIDs", uint(2)).Return([]uint{101, 102}, nil)
	matchRepo.On("AtomicCancel", uint(101), mock.Anything).Return(nil)
	matchRepo.On("AtomicCancel", uint(102), mock.Anything).Return(nil)

	svc := createTestTournamentService(tournamentRepo, matchRepo, new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	err := svc.CancelTournament(2, 10, false)

	// Assert
	require.NoError(t, err)
	matchRepo.AssertNumberOfCalls(t, "AtomicCancel", 2)
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_CancelTournament_ParticipantCanCancel(t *testing.T) {
	// Arrange: участник с последнего места, не создатель
	tournamentRepo := new(MockTournamentRepo)

	tournamentRepo.On("GetWithParticipants", uint(2)).Return(fullTournament(), nil)
	tournamentRepo.On("AtomicCancel", uint(2), mock.Anything).Return(nil)
	tournamentRepo.On("LiveChildMatchIDs", uint(2)).Return([]uint{}, nil)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	err := svc.CancelTournament(2, 40, false)

	// Assert
	require.NoError(t, err)
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_CancelTournament_NotParticipantForbidden(t *testing.T) {
	// Arrange
	tournamentRepo := new(MockTournamentRepo)
	tournamentRepo.On("GetWithParticipants", uint(2)).Return(fullTournament(), nil)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act: отменяет посторонний пользователь
	err := svc.CancelTournament(2, 77, false)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTournamentService_CancelTournament_AdminCanCancel(t *testing.T) {
	// Arrange: администратор отменяет чужой турнир
	tournamentRepo := new(MockTournamentRepo)

	tournamentRepo.On("GetWithParticipants", uint(2)).Return(fullTournament(), nil)
	tournamentRepo.On("AtomicCancel", uint(2), mock.Anything).Return(nil)
	tournamentRepo.On("LiveChildMatchIDs", uint(2)).Return([]uint{}, nil)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	err := svc.CancelTournament(2, 77, true)

	// Assert
	require.NoError(t, err)
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_GetTournament_RebuildsMissingBracket(t *testing.T) {
	// Arrange: турнир активирован, но построение сетки оборвалось —
	// первое чтение достраивает её
	tournamentRepo := new(MockTournamentRepo)
	matchRepo := new(MockMatchRepo)
	questionRepo := new(MockQuestionRepo)

	bare := fullTournament() // active, без Rounds
	withRounds := fullTournament()
	matchID1, matchID2 := uint(101), uint(102)
	withRounds.Rounds = []entity.TournamentMatch{
		{ID: 8, TournamentID: 2, Round: entity.RoundSemifinal1, MatchID: &matchID1},
		{ID: 9, TournamentID: 2, Round: entity.RoundSemifinal2, MatchID: &matchID2},
		{ID: 10, TournamentID: 2, Round: entity.RoundFinal},
	}

	// Первое чтение и повторное внутри достройки видят турнир без сетки,
	// финальное — уже достроенный
	tournamentRepo.On("GetWithParticipants", uint(2)).Return(bare, nil).Twice()
	tournamentRepo.On("GetWithParticipants", uint(2)).Return(withRounds, nil).Once()
	tournamentRepo.On("CreateRounds", mock.AnythingOfType("[]entity.TournamentMatch")).Return(nil)
	tournamentRepo.On("ExtendExpiry", uint(2), mock.Anything).Return(nil)
	questionRepo.On("DrawRandom", entity.MatchQuestionCount, (*uint)(nil)).Return(fiveQuestions(), nil)
	matchRepo.On("CreateForPair", mock.AnythingOfType("*entity.Match"), mock.Anything, mock.Anything).Return(nil)
	tournamentRepo.On("SetRoundStarted", mock.Anything, mock.Anything).Return(nil)

	svc := createTestTournamentService(tournamentRepo, matchRepo, questionRepo, new(MockUsageRepo), new(MockStoreRepo))

	// Act
	tournament, err := svc.GetTournament(2)

	// Assert: полуфиналы дозапущены, клиент видит полную сетку
	require.NoError(t, err)
	require.Len(t, tournament.Rounds, 3)
	matchRepo.AssertNumberOfCalls(t, "CreateForPair", 2)
	tournamentRepo.AssertNumberOfCalls(t, "SetRoundStarted", 2)
}

func TestTournamentService_CheckTournamentMatch_BracketMatch(t *testing.T) {
	// Arrange
	tournamentRepo := new(MockTournamentRepo)

	matchID := uint(200)
	round := &entity.TournamentMatch{ID: 10, TournamentID: 2, Round: entity.RoundFinal, MatchID: &matchID}
	tournamentRepo.On("GetRoundByMatchID", uint(200)).Return(round, nil)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	found, err := svc.CheckTournamentMatch(200)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(2), found.TournamentID)
	assert.Equal(t, entity.RoundFinal, found.Round)
}

func TestTournamentService_CheckTournamentMatch_PlainMatchNotFound(t *testing.T) {
	// Arrange: обычный матч не принадлежит сетке
	tournamentRepo := new(MockTournamentRepo)
	tournamentRepo.On("GetRoundByMatchID", uint(3)).Return(nil, apperrors.ErrNotFound)

	svc := createTestTournamentService(tournamentRepo, new(MockMatchRepo), new(MockQuestionRepo), new(MockUsageRepo), new(MockStoreRepo))

	// Act
	_, err := svc.CheckTournamentMatch(3)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
