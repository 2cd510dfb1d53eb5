package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда матч, турнир или код приглашения не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда пользователь не является участником матча
	// или не имеет прав на действие.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния: матч уже полон,
	// участник уже ответил на вопрос, запись уже в терминальном статусе.
	ErrConflict = errors.New("resource state conflict")

	// ErrQuotaExceeded используется, когда исчерпан дневной лимит создания
	// матчей или турниров.
	ErrQuotaExceeded = errors.New("daily quota exceeded")

	// ErrInsufficientPoints используется, когда баланса очков не хватает
	// на оплату подсказки.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrExpired используется, когда операция выполняется над записью с истекшим
	// TTL до того, как её подобрал sweeper. Для клиента эквивалентна ErrConflict.
	ErrExpired = errors.New("record is expired")
)
