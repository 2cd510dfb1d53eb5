package websocket

// Типы сообщений жизненного цикла матча
const (
	// MATCH_JOINED сообщает об активации матча вторым участником
	MATCH_JOINED = "MATCH_JOINED"

	// MATCH_COMPLETED сообщает о завершении матча и готовности итога
	MATCH_COMPLETED = "MATCH_COMPLETED"

	// MATCH_CANCELLED сообщает об отмене матча создателем
	MATCH_CANCELLED = "MATCH_CANCELLED"

	// MATCH_EXPIRED сообщает об отмене матча sweeper'ом по TTL
	MATCH_EXPIRED = "MATCH_EXPIRED"

	// OPPONENT_FINISHED сообщает, что соперник ответил на все вопросы
	OPPONENT_FINISHED = "OPPONENT_FINISHED"
)

// Типы сообщений жизненного цикла турнира
const (
	// TOURNAMENT_BRACKET_READY сообщает о наборе 4 участников и создании сетки
	TOURNAMENT_BRACKET_READY = "TOURNAMENT_BRACKET_READY"

	// TOURNAMENT_ROUND_COMPLETED сообщает о определившемся победителе раунда
	TOURNAMENT_ROUND_COMPLETED = "TOURNAMENT_ROUND_COMPLETED"

	// TOURNAMENT_FINAL_READY сообщает о создании финального матча
	TOURNAMENT_FINAL_READY = "TOURNAMENT_FINAL_READY"

	// TOURNAMENT_COMPLETED сообщает о завершении турнира
	TOURNAMENT_COMPLETED = "TOURNAMENT_COMPLETED"

	// TOURNAMENT_CANCELLED сообщает об отмене турнира
	TOURNAMENT_CANCELLED = "TOURNAMENT_CANCELLED"
)
