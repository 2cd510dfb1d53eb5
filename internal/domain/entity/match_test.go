package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_IsLive(t *testing.T) {
	assert.True(t, (&Match{Status: MatchStatusWaiting}).IsLive())
	assert.True(t, (&Match{Status: MatchStatusActive}).IsLive())
	assert.False(t, (&Match{Status: MatchStatusCompleted}).IsLive())
	assert.False(t, (&Match{Status: MatchStatusCancelled}).IsLive())
}

func TestMatch_IsExpired(t *testing.T) {
	now := time.Now()

	// Живой матч с прошедшим дедлайном истёк
	expired := &Match{Status: MatchStatusWaiting, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, expired.IsExpired(now), "Живой матч с прошедшим дедлайном должен считаться истекшим")

	// Живой матч до дедлайна не истёк
	alive := &Match{Status: MatchStatusActive, ExpiresAt: now.Add(time.Minute)}
	assert.False(t, alive.IsExpired(now))

	// Терминальный матч не истекает, даже если дедлайн в прошлом
	completed := &Match{Status: MatchStatusCompleted, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, completed.IsExpired(now), "Завершённый матч не должен считаться истекшим")
}

func TestMatch_HasParticipant(t *testing.T) {
	// Arrange
	match := &Match{
		Participants: []MatchParticipant{
			{MatchID: 1, UserID: 10},
			{MatchID: 1, UserID: 20},
		},
	}

	// Act & Assert
	assert.True(t, match.HasParticipant(10))
	assert.True(t, match.HasParticipant(20))
	assert.False(t, match.HasParticipant(30))
}

func TestMatchParticipant_IsFinished(t *testing.T) {
	now := time.Now()

	assert.False(t, (&MatchParticipant{}).IsFinished())
	assert.True(t, (&MatchParticipant{CompletedAt: &now}).IsFinished())
}

// Тесты для UintArray (JSONB порядок вопросов)

func TestUintArray_RoundTrip(t *testing.T) {
	// Arrange
	arr := UintArray{5, 3, 8, 1, 9}

	// Act
	val, err := arr.Value()
	require.NoError(t, err)

	var scanned UintArray
	err = scanned.Scan(val)

	// Assert: порядок вопросов сохраняется
	require.NoError(t, err)
	assert.Equal(t, arr, scanned, "Порядок элементов должен сохраняться")
}

func TestUintArray_Value_Nil(t *testing.T) {
	var arr UintArray

	val, err := arr.Value()

	require.NoError(t, err)
	assert.Equal(t, "[]", string(val.([]byte)))
}
