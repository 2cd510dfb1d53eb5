package repository

import (
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
)

// TournamentRepository определяет методы для работы с турнирами и сеткой
type TournamentRepository interface {
	// CreateWithCreator создаёт waiting-турнир вместе с создателем на месте 1
	// в одной транзакции. ErrJoinCodeTaken при коллизии кода приглашения.
	CreateWithCreator(tournament *entity.Tournament) error
	GetByID(id uint) (*entity.Tournament, error)
	GetWithParticipants(id uint) (*entity.Tournament, error)
	GetLiveByJoinCode(code string) (*entity.Tournament, error)
	// AtomicJoin добавляет участника под блокировкой строки турнира.
	// Возвращает занятое место и activated=true, если именно этот join
	// заполнил сетку (4-й участник) и перевёл турнир waiting→active.
	// ErrTournamentFull / ErrDuplicateParticipant / ErrNotJoinable.
	AtomicJoin(tournamentID, userID uint) (seat int, activated bool, err error)
	// AtomicCancel переводит live-турнир в cancelled.
	AtomicCancel(tournamentID uint, completedAt time.Time) error
	// AtomicComplete переводит active→completed после финала.
	AtomicComplete(tournamentID uint, completedAt time.Time) error
	// ExtendExpiry переносит дедлайн живого турнира (активация даёт
	// турниру собственный TTL на всю сетку).
	ExtendExpiry(tournamentID uint, expiresAt time.Time) error
	// CancelExpired массово отменяет живые турниры с истекшим TTL и возвращает
	// их ID: вызывающий каскадно отменяет живые матчи сетки. Идемпотентна.
	CancelExpired(now time.Time) ([]uint, error)

	CreateRounds(rounds []entity.TournamentMatch) error
	GetRounds(tournamentID uint) ([]entity.TournamentMatch, error)
	// GetRoundByMatchID — обратный поиск слота сетки по ID матча
	GetRoundByMatchID(matchID uint) (*entity.TournamentMatch, error)
	// SetRoundWinner проставляет победителя слота, только если он ещё не задан.
	// Повторный вызов — no-op (идемпотентность хука завершения).
	SetRoundWinner(roundID, winnerID uint) error
	// SetRoundStarted привязывает созданный матч к слоту сетки
	SetRoundStarted(roundID, matchID uint) error
	// UpdateFinalPlayers заполняет игроков финала победителями полуфиналов
	UpdateFinalPlayers(tournamentID uint, player1ID, player2ID uint) error
	// LiveChildMatchIDs возвращает ID живых матчей сетки (для каскадной отмены)
	LiveChildMatchIDs(tournamentID uint) ([]uint, error)
}
