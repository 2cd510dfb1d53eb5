package repository

import (
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
)

// MatchRepository определяет методы для работы с матчами и их участниками.
// Все переходы статусов выполняются условными UPDATE: конкурирующие транзакции
// не могут одновременно "выиграть" один и тот же переход.
type MatchRepository interface {
	// CreateWithCreator создаёт waiting-матч вместе с первым участником (создателем)
	// в одной транзакции. ErrJoinCodeTaken при коллизии кода приглашения.
	CreateWithCreator(match *entity.Match) error
	// CreateForPair создаёт сразу активный матч с двумя участниками в одной
	// транзакции. Используется турнирной сеткой: пары известны заранее,
	// стадия ожидания не нужна.
	CreateForPair(match *entity.Match, player1ID, player2ID uint) error
	GetByID(id uint) (*entity.Match, error)
	GetWithParticipants(id uint) (*entity.Match, error)
	// GetLiveByJoinCode ищет живой (waiting/active) матч по коду приглашения.
	// Сравнение без учёта регистра.
	GetLiveByJoinCode(code string) (*entity.Match, error)
	// FindPublicWaiting возвращает самый старый публичный waiting-матч,
	// созданный не excludeCreatorID, для авто-подбора пары.
	FindPublicWaiting(excludeCreatorID uint) (*entity.Match, error)
	// AtomicJoin атомарно переводит waiting→active, проставляет started_at и
	// вставляет второго участника. ErrNotJoinable, если матч уже не waiting;
	// ErrDuplicateParticipant, если пользователь уже в матче.
	AtomicJoin(matchID, userID uint, startedAt time.Time) error
	// AtomicCancel переводит live-матч в cancelled и ставит completed_at для аудита.
	// ErrNotCancellable, если матч уже терминален.
	AtomicCancel(matchID uint, completedAt time.Time) error
	// AtomicComplete переводит active→completed. RowsAffected==0 не ошибка:
	// переход мог выполнить конкурент.
	AtomicComplete(matchID uint, completedAt time.Time) error
	// ExtendExpiry переносит дедлайн живого матча (переход waiting→active
	// даёт активному матчу собственный TTL).
	ExtendExpiry(matchID uint, expiresAt time.Time) error
	// CancelExpired массово отменяет живые матчи с истекшим TTL. Идемпотентна.
	CancelExpired(now time.Time) (int64, error)

	GetParticipant(matchID, userID uint) (*entity.MatchParticipant, error)
	GetParticipants(matchID uint) ([]entity.MatchParticipant, error)
	// AppendAnswer в одной транзакции добавляет ответ, обновляет итоги участника
	// и проставляет completed_at, если отвечен последний вопрос.
	// Возвращает finished=true, когда участник закончил матч этим ответом.
	// ErrDuplicateAnswer при повторной отправке, ErrParticipantFinished если
	// участник уже финишировал.
	AppendAnswer(answer *entity.Answer, questionCount int) (finished bool, err error)
	GetAnswers(matchID, userID uint) ([]entity.Answer, error)
}
