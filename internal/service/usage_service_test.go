package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
)

func TestUsageService_GetDailyLimits_ActiveWindow(t *testing.T) {
	// Arrange
	usageRepo := new(MockUsageRepo)
	storeRepo := new(MockStoreRepo)

	usage := &entity.DailyUsage{
		UserID:             42,
		WindowStartedAt:    time.Now().Add(-2 * time.Hour),
		MatchesCreated:     4,
		TournamentsCreated: 1,
	}
	usageRepo.On("GetOrCreate", uint(42), mock.Anything).Return(usage, nil)
	storeRepo.On("ActiveBonuses", uint(42), mock.Anything).Return(&entity.ActiveBonuses{
		MatchesBonus: 5,
		MentorMode:   true,
	}, nil)

	svc := newTestUsageService(usageRepo, storeRepo, 10, 3)

	// Act
	limits, err := svc.GetDailyLimits(42)

	// Assert: лимиты с учётом бонусов, счётчики текущего окна
	require.NoError(t, err)
	assert.Equal(t, 15, limits.MatchLimit)
	assert.Equal(t, 3, limits.TournamentLimit)
	assert.Equal(t, 4, limits.MatchesCreated)
	assert.Equal(t, 1, limits.TournamentsCreated)
	assert.True(t, limits.MentorMode)
	assert.Equal(t, usage.WindowResetAt(), limits.WindowResetAt)
}

func TestUsageService_GetDailyLimits_ElapsedWindowShownEmpty(t *testing.T) {
	// Arrange: окно истекло, но фактический сброс выполнит следующий Consume
	usageRepo := new(MockUsageRepo)
	storeRepo := new(MockStoreRepo)

	usage := &entity.DailyUsage{
		UserID:             42,
		WindowStartedAt:    time.Now().Add(-30 * time.Hour),
		MatchesCreated:     10,
		TournamentsCreated: 3,
	}
	usageRepo.On("GetOrCreate", uint(42), mock.Anything).Return(usage, nil)
	storeRepo.On("ActiveBonuses", uint(42), mock.Anything).Return(&entity.ActiveBonuses{}, nil)

	svc := newTestUsageService(usageRepo, storeRepo, 10, 3)

	// Act
	limits, err := svc.GetDailyLimits(42)

	// Assert: исчерпанные счётчики прошлого окна не показываются
	require.NoError(t, err)
	assert.Equal(t, 0, limits.MatchesCreated, "Счётчики истекшего окна показываются пустыми")
	assert.Equal(t, 0, limits.TournamentsCreated)
	assert.True(t, limits.WindowResetAt.After(time.Now()), "Сброс нового окна в будущем")
}

func TestUsageService_HasMentorMode(t *testing.T) {
	// Arrange
	storeRepo := new(MockStoreRepo)
	storeRepo.On("ActiveBonuses", uint(42), mock.Anything).Return(&entity.ActiveBonuses{MentorMode: true}, nil)

	svc := newTestUsageService(new(MockUsageRepo), storeRepo, 10, 3)

	// Act
	hasMentor, err := svc.HasMentorMode(42)

	// Assert
	require.NoError(t, err)
	assert.True(t, hasMentor)
}
