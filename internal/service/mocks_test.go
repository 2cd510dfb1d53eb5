package service

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/websocket"
)

// ============================================================================
// Моки репозиториев, общие для тестов сервисов
// ============================================================================

// MockMatchRepo реализует repository.MatchRepository
type MockMatchRepo struct {
	mock.Mock
}

func (m *MockMatchRepo) CreateWithCreator(match *entity.Match) error {
	args := m.Called(match)
	return args.Error(0)
}

func (m *MockMatchRepo) CreateForPair(match *entity.Match, player1ID, player2ID uint) error {
	args := m.Called(match, player1ID, player2ID)
	return args.Error(0)
}

func (m *MockMatchRepo) GetByID(id uint) (*entity.Match, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Match), args.Error(1)
}

func (m *MockMatchRepo) GetWithParticipants(id uint) (*entity.Match, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Match), args.Error(1)
}

func (m *MockMatchRepo) GetLiveByJoinCode(code string) (*entity.Match, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Match), args.Error(1)
}

func (m *MockMatchRepo) FindPublicWaiting(excludeCreatorID uint) (*entity.Match, error) {
	args := m.Called(excludeCreatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Match), args.Error(1)
}

func (m *MockMatchRepo) AtomicJoin(matchID, userID uint, startedAt time.Time) error {
	args := m.Called(matchID, userID, startedAt)
	return args.Error(0)
}

func (m *MockMatchRepo) AtomicCancel(matchID uint, completedAt time.Time) error {
	args := m.Called(matchID, completedAt)
	return args.Error(0)
}

func (m *MockMatchRepo) AtomicComplete(matchID uint, completedAt time.Time) error {
	args := m.Called(matchID, completedAt)
	return args.Error(0)
}

func (m *MockMatchRepo) ExtendExpiry(matchID uint, expiresAt time.Time) error {
	args := m.Called(matchID, expiresAt)
	return args.Error(0)
}

func (m *MockMatchRepo) CancelExpired(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMatchRepo) GetParticipant(matchID, userID uint) (*entity.MatchParticipant, error) {
	args := m.Called(matchID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MatchParticipant), args.Error(1)
}

func (m *MockMatchRepo) GetParticipants(matchID uint) ([]entity.MatchParticipant, error) {
	args := m.Called(matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MatchParticipant), args.Error(1)
}

func (m *MockMatchRepo) AppendAnswer(answer *entity.Answer, questionCount int) (bool, error) {
	args := m.Called(answer, questionCount)
	return args.Bool(0), args.Error(1)
}

func (m *MockMatchRepo) GetAnswers(matchID, userID uint) ([]entity.Answer, error) {
	args := m.Called(matchID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Answer), args.Error(1)
}

// MockTournamentRepo реализует repository.TournamentRepository
type MockTournamentRepo struct {
	mock.Mock
}

func (m *MockTournamentRepo) CreateWithCreator(tournament *entity.Tournament) error {
	args := m.Called(tournament)
	return args.Error(0)
}

func (m *MockTournamentRepo) GetByID(id uint) (*entity.Tournament, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tournament), args.Error(1)
}

func (m *MockTournamentRepo) GetWithParticipants(id uint) (*entity.Tournament, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tournament), args.Error(1)
}

func (m *MockTournamentRepo) GetLiveByJoinCode(code string) (*entity.Tournament, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tournament), args.Error(1)
}

func (m *MockTournamentRepo) AtomicJoin(tournamentID, userID uint) (int, bool, error) {
	args := m.Called(tournamentID, userID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockTournamentRepo) AtomicCancel(tournamentID uint, completedAt time.Time) error {
	args := m.Called(tournamentID, completedAt)
	return args.Error(0)
}

func (m *MockTournamentRepo) AtomicComplete(tournamentID uint, completedAt time.Time) error {
	args := m.Called(tournamentID, completedAt)
	return args.Error(0)
}

func (m *MockTournamentRepo) ExtendExpiry(tournamentID uint, expiresAt time.Time) error {
	args := m.Called(tournamentID, expiresAt)
	return args.Error(0)
}

func (m *MockTournamentRepo) CancelExpired(now time.Time) ([]uint, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockTournamentRepo) CreateRounds(rounds []entity.TournamentMatch) error {
	args := m.Called(rounds)
	return args.Error(0)
}

func (m *MockTournamentRepo) GetRounds(tournamentID uint) ([]entity.TournamentMatch, error) {
	args := m.Called(tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TournamentMatch), args.Error(1)
}

func (m *MockTournamentRepo) GetRoundByMatchID(matchID uint) (*entity.TournamentMatch, error) {
	args := m.Called(matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TournamentMatch), args.Error(1)
}

func (m *MockTournamentRepo) SetRoundWinner(roundID, winnerID uint) error {
	args := m.Called(roundID, winnerID)
	return args.Error(0)
}

func (m *MockTournamentRepo) SetRoundStarted(roundID, matchID uint) error {
	args := m.Called(roundID, matchID)
	return args.Error(0)
}

func (m *MockTournamentRepo) UpdateFinalPlayers(tournamentID uint, player1ID, player2ID uint) error {
	args := m.Called(tournamentID, player1ID, player2ID)
	return args.Error(0)
}

func (m *MockTournamentRepo) LiveChildMatchIDs(tournamentID uint) ([]uint, error) {
	args := m.Called(tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockQuestionRepo реализует repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) DrawRandom(limit int, categoryID *uint) ([]entity.Question, error) {
	args := m.Called(limit, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

// MockResultRepo реализует repository.ResultRepository
type MockResultRepo struct {
	mock.Mock
}

func (m *MockResultRepo) Create(result *entity.MatchResult) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockResultRepo) GetByMatchID(matchID uint) (*entity.MatchResult, error) {
	args := m.Called(matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MatchResult), args.Error(1)
}

func (m *MockResultRepo) ListByUser(userID uint, limit, offset int) ([]entity.MatchResult, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.MatchResult), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepo) ListRecent(limit int) ([]entity.MatchResult, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MatchResult), args.Error(1)
}

// MockUserRepo реализует repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) DeductPoints(userID uint, amount int) (int, error) {
	args := m.Called(userID, amount)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepo) CreditPoints(userID uint, amount int) error {
	args := m.Called(userID, amount)
	return args.Error(0)
}

// MockStoreRepo реализует repository.StoreRepository
type MockStoreRepo struct {
	mock.Mock
}

func (m *MockStoreRepo) ActiveBonuses(userID uint, now time.Time) (*entity.ActiveBonuses, error) {
	args := m.Called(userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ActiveBonuses), args.Error(1)
}

// MockUsageRepo реализует repository.UsageRepository
type MockUsageRepo struct {
	mock.Mock
}

func (m *MockUsageRepo) GetOrCreate(userID uint, now time.Time) (*entity.DailyUsage, error) {
	args := m.Called(userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DailyUsage), args.Error(1)
}

func (m *MockUsageRepo) ConsumeMatchSlot(userID uint, limit int, now time.Time) error {
	args := m.Called(userID, limit, now)
	return args.Error(0)
}

func (m *MockUsageRepo) ConsumeTournamentSlot(userID uint, limit int, now time.Time) error {
	args := m.Called(userID, limit, now)
	return args.Error(0)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) ExpireAt(key string, expiration time.Time) error {
	args := m.Called(key, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) SetNXJSON(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// newTestWSManager возвращает менеджер с реальным hub'ом без подписчиков:
// каналы рассылки буферизованы, поэтому Run() для тестов не нужен
func newTestWSManager() *websocket.Manager {
	return websocket.NewManager(websocket.NewHub())
}

// newTestUsageService собирает сервис квот на моках
func newTestUsageService(usageRepo *MockUsageRepo, storeRepo *MockStoreRepo, matchLimit, tournamentLimit int) *UsageService {
	return NewUsageService(usageRepo, storeRepo, matchLimit, tournamentLimit)
}
