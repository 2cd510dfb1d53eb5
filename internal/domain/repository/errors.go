package repository

import "errors"

// Ошибки уровня репозиториев. Сервисы переводят их в ошибки приложения
// (internal/pkg/errors) на границе операции.
var (
	// ErrNotJoinable — условный UPDATE waiting→active не затронул ни одной строки:
	// матч уже полон, отменён или ещё не существует.
	ErrNotJoinable = errors.New("match is not joinable")

	// ErrDuplicateParticipant — нарушение уникальности (match_id, user_id)
	// или (tournament_id, user_id).
	ErrDuplicateParticipant = errors.New("user already joined")

	// ErrDuplicateAnswer — нарушение уникальности (match_id, user_id, question_id).
	// Повторная отправка ответа отклоняется, итоги не меняются.
	ErrDuplicateAnswer = errors.New("answer already submitted for this question")

	// ErrParticipantFinished — участник уже проставил completed_at.
	ErrParticipantFinished = errors.New("participant already finished")

	// ErrJoinCodeTaken — код приглашения занят другим живым матчем/турниром.
	ErrJoinCodeTaken = errors.New("join code already taken")

	// ErrResultExists — результат матча уже зафиксирован (гонка двух финишей).
	ErrResultExists = errors.New("match result already recorded")

	// ErrNotCancellable — запись уже в терминальном статусе.
	ErrNotCancellable = errors.New("record is already terminal")

	// ErrTournamentFull — в турнире уже четыре участника.
	ErrTournamentFull = errors.New("tournament is full")

	// ErrInsufficientBalance — условное списание очков не прошло по балансу.
	ErrInsufficientBalance = errors.New("insufficient point balance")

	// ErrQuotaReached — счётчик окна достиг лимита.
	ErrQuotaReached = errors.New("creation quota reached for current window")
)
