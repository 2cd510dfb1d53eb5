package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect_CorrectAnswer(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		Text:          "Какой язык используется в Go?",
		Options:       StringArray{"Python", "Go", "Java", "Rust"},
		CorrectOption: 2, // "Go" — вариант 2 (нумерация с 1)
		TimeLimitSec:  30,
		PointValue:    10,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(2), "IsCorrect должен вернуть true для правильного варианта")
}

func TestQuestion_IsCorrect_IncorrectAnswer(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		CorrectOption: 2,
	}

	// Act & Assert
	assert.False(t, question.IsCorrect(1), "IsCorrect должен вернуть false для неправильного варианта")
	assert.False(t, question.IsCorrect(3), "IsCorrect должен вернуть false для неправильного варианта")
	assert.False(t, question.IsCorrect(4), "IsCorrect должен вернуть false для неправильного варианта")
}

func TestQuestion_IsCorrect_SkipNeverCorrect(t *testing.T) {
	// Пропуск (0) всегда неверен, даже если CorrectOption по ошибке равен 0
	question := &Question{CorrectOption: 0}

	assert.False(t, question.IsCorrect(SkipOption), "Пропуск не должен засчитываться как правильный ответ")
}

func TestQuestion_IsValidOption(t *testing.T) {
	// Arrange
	question := &Question{
		Options: StringArray{"A", "B", "C", "D"},
	}

	// Act & Assert: валидные варианты (0 = пропуск, 1..4 — ответы)
	assert.True(t, question.IsValidOption(0), "Вариант 0 (пропуск) должен быть валидным")
	assert.True(t, question.IsValidOption(1), "Вариант 1 должен быть валидным")
	assert.True(t, question.IsValidOption(4), "Вариант 4 должен быть валидным")

	// Assert: невалидные варианты
	assert.False(t, question.IsValidOption(-1), "Отрицательный вариант должен быть невалидным")
	assert.False(t, question.IsValidOption(5), "Вариант вне диапазона должен быть невалидным")
}

func TestQuestion_CalculatePoints_SpeedBonus(t *testing.T) {
	// Arrange
	question := &Question{
		PointValue:   10,
		TimeLimitSec: 20,
	}

	testCases := []struct {
		name         string
		isCorrect    bool
		timeSpentSec int
		expected     int
	}{
		// бонус = 10 * remaining / (2*20)
		{"мгновенный ответ", true, 0, 15},
		{"быстрый ответ", true, 4, 14},
		{"половина лимита", true, 10, 12},
		{"на пределе лимита", true, 20, 10},
		{"неправильный ответ", false, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			points := question.CalculatePoints(tc.isCorrect, tc.timeSpentSec)
			assert.Equal(t, tc.expected, points)
		})
	}
}

func TestQuestion_CalculatePoints_ZeroTimeLimit(t *testing.T) {
	// Деление на ноль исключено: без лимита бонуса за скорость нет
	question := &Question{PointValue: 10, TimeLimitSec: 0}

	assert.Equal(t, 10, question.CalculatePoints(true, 5))
}

func TestQuestion_WrongOptions(t *testing.T) {
	// Arrange
	question := &Question{
		Options:       StringArray{"A", "B", "C", "D"},
		CorrectOption: 3,
	}

	// Act
	wrong := question.WrongOptions()

	// Assert
	assert.ElementsMatch(t, []int{1, 2, 4}, wrong, "WrongOptions должен вернуть все варианты кроме правильного")
}

func TestQuestion_TableName(t *testing.T) {
	question := Question{}
	assert.Equal(t, "questions", question.TableName(), "TableName должен возвращать 'questions'")
}

// Тесты для StringArray (JSONB сериализация)

func TestStringArray_Scan_ValidJSON(t *testing.T) {
	// Arrange
	jsonBytes := []byte(`["Option 1", "Option 2", "Option 3"]`)
	var arr StringArray

	// Act
	err := arr.Scan(jsonBytes)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для валидного JSON")
	assert.Len(t, arr, 3, "Должно быть 3 элемента")
	assert.Equal(t, "Option 1", arr[0])
}

func TestStringArray_Scan_NullValue(t *testing.T) {
	// Arrange
	var arr StringArray

	// Act
	err := arr.Scan(nil)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для nil")
	assert.Len(t, arr, 0, "Для nil должен вернуться пустой массив")
}

func TestStringArray_Value_Nil(t *testing.T) {
	// Arrange
	var arr StringArray = nil

	// Act
	val, err := arr.Value()

	// Assert
	require.NoError(t, err, "Value не должен возвращать ошибку для nil")

	bytes, ok := val.([]byte)
	require.True(t, ok, "Value должен возвращать []byte")
	assert.Equal(t, "[]", string(bytes), "nil должен сериализоваться в []")
}
