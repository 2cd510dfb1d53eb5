package dto

import (
	"time"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/handler/helper"
)

// QuestionResponse представляет вопрос матча в формате для клиента.
// Правильный вариант никогда не попадает в ответ.
type QuestionResponse struct {
	ID           uint                    `json:"id"`
	Text         string                  `json:"text"`
	Options      []helper.QuestionOption `json:"options"`
	TimeLimitSec int                     `json:"time_limit_sec"`
	PointValue   int                     `json:"point_value"`
}

// NewQuestionResponse создает DTO вопроса
func NewQuestionResponse(q *entity.Question) *QuestionResponse {
	return &QuestionResponse{
		ID:           q.ID,
		Text:         q.Text,
		Options:      helper.BuildOptions(q.Options),
		TimeLimitSec: q.TimeLimitSec,
		PointValue:   q.PointValue,
	}
}

// NewListQuestionResponse создает список DTO вопросов
func NewListQuestionResponse(questions []entity.Question) []*QuestionResponse {
	list := make([]*QuestionResponse, 0, len(questions))
	for i := range questions {
		list = append(list, NewQuestionResponse(&questions[i]))
	}
	return list
}

// ParticipantResponse представляет участника матча
type ParticipantResponse struct {
	UserID       uint       `json:"user_id"`
	TotalScore   int        `json:"total_score"`
	TotalTimeSec int        `json:"total_time_sec"`
	Finished     bool       `json:"finished"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// MatchResponse представляет матч в формате для клиента
type MatchResponse struct {
	ID            uint                  `json:"id"`
	Status        string                `json:"status"`
	IsPrivate     bool                  `json:"is_private"`
	JoinCode      *string               `json:"join_code,omitempty"`
	CreatorID     uint                  `json:"creator_id"`
	QuestionCount int                   `json:"question_count"`
	Participants  []ParticipantResponse `json:"participants,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	ExpiresAt     time.Time             `json:"expires_at"`
}

// NewMatchResponse создает DTO матча. Код приглашения показывается
// только создателю (showCode).
func NewMatchResponse(m *entity.Match, showCode bool) *MatchResponse {
	resp := &MatchResponse{
		ID:            m.ID,
		Status:        m.Status,
		IsPrivate:     m.IsPrivate,
		CreatorID:     m.CreatorID,
		QuestionCount: len(m.QuestionIDs),
		Participants:  newParticipantList(m.Participants),
		CreatedAt:     m.CreatedAt,
		StartedAt:     m.StartedAt,
		CompletedAt:   m.CompletedAt,
		ExpiresAt:     m.ExpiresAt,
	}
	if showCode {
		resp.JoinCode = m.JoinCode
	}
	return resp
}

// WithParticipants заполняет участников, загруженных отдельным запросом
func (r *MatchResponse) WithParticipants(participants []entity.MatchParticipant) *MatchResponse {
	r.Participants = newParticipantList(participants)
	return r
}

func newParticipantList(participants []entity.MatchParticipant) []ParticipantResponse {
	list := make([]ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		list = append(list, ParticipantResponse{
			UserID:       p.UserID,
			TotalScore:   p.TotalScore,
			TotalTimeSec: p.TotalTimeSec,
			Finished:     p.IsFinished(),
			CompletedAt:  p.CompletedAt,
		})
	}
	return list
}

// ResultResponse представляет итог матча
type ResultResponse struct {
	MatchID        uint      `json:"match_id"`
	WinnerID       *uint     `json:"winner_id,omitempty"`
	IsDraw         bool      `json:"is_draw"`
	Player1ID      uint      `json:"player1_id"`
	Player2ID      uint      `json:"player2_id"`
	Player1Score   int       `json:"player1_score"`
	Player2Score   int       `json:"player2_score"`
	Player1TimeSec int       `json:"player1_time_sec"`
	Player2TimeSec int       `json:"player2_time_sec"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewResultResponse создает DTO итога матча
func NewResultResponse(r *entity.MatchResult) *ResultResponse {
	return &ResultResponse{
		MatchID:        r.MatchID,
		WinnerID:       r.WinnerID,
		IsDraw:         r.IsDraw,
		Player1ID:      r.Player1ID,
		Player2ID:      r.Player2ID,
		Player1Score:   r.Player1Score,
		Player2Score:   r.Player2Score,
		Player1TimeSec: r.Player1TimeSec,
		Player2TimeSec: r.Player2TimeSec,
		CreatedAt:      r.CreatedAt,
	}
}

// AnswerReviewResponse представляет ответ игрока в послематчевом разборе.
// Показывается только после завершения матча.
type AnswerReviewResponse struct {
	QuestionID     uint `json:"question_id"`
	SelectedOption int  `json:"selected_option"`
	IsCorrect      bool `json:"is_correct"`
	TimeSpentSec   int  `json:"time_spent_sec"`
	PointsAwarded  int  `json:"points_awarded"`
}

// MatchReviewResponse представляет полный итог матча с ответами обоих игроков
type MatchReviewResponse struct {
	ResultResponse
	Player1Answers []AnswerReviewResponse `json:"player1_answers"`
	Player2Answers []AnswerReviewResponse `json:"player2_answers"`
}

// NewMatchReviewResponse создает DTO послематчевого разбора
func NewMatchReviewResponse(r *entity.MatchResult, player1Answers, player2Answers []entity.Answer) *MatchReviewResponse {
	return &MatchReviewResponse{
		ResultResponse: *NewResultResponse(r),
		Player1Answers: newAnswerReviewList(player1Answers),
		Player2Answers: newAnswerReviewList(player2Answers),
	}
}

func newAnswerReviewList(answers []entity.Answer) []AnswerReviewResponse {
	list := make([]AnswerReviewResponse, 0, len(answers))
	for _, a := range answers {
		list = append(list, AnswerReviewResponse{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			IsCorrect:      a.IsCorrect,
			TimeSpentSec:   a.TimeSpentSec,
			PointsAwarded:  a.PointsAwarded,
		})
	}
	return list
}

// PaginatedResultResponse представляет пагинированный список итогов
type PaginatedResultResponse struct {
	Results []*ResultResponse `json:"results"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// NewPaginatedResultResponse создает пагинированный ответ
func NewPaginatedResultResponse(results []entity.MatchResult, total int64, page, perPage int) *PaginatedResultResponse {
	list := make([]*ResultResponse, 0, len(results))
	for i := range results {
		list = append(list, NewResultResponse(&results[i]))
	}
	return &PaginatedResultResponse{
		Results: list,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
}

// TournamentRoundResponse представляет слот турнирной сетки
type TournamentRoundResponse struct {
	Round     string `json:"round"`
	Player1ID *uint  `json:"player1_id,omitempty"`
	Player2ID *uint  `json:"player2_id,omitempty"`
	MatchID   *uint  `json:"match_id,omitempty"`
	WinnerID  *uint  `json:"winner_id,omitempty"`
}

// TournamentMatchLookupResponse представляет ответ обратного поиска:
// к какому турниру и раунду сетки относится матч
type TournamentMatchLookupResponse struct {
	TournamentID uint   `json:"tournament_id"`
	Round        string `json:"round"`
	MatchID      *uint  `json:"match_id,omitempty"`
	WinnerID     *uint  `json:"winner_id,omitempty"`
}

// NewTournamentMatchLookupResponse создает DTO обратного поиска слота сетки
func NewTournamentMatchLookupResponse(round *entity.TournamentMatch) *TournamentMatchLookupResponse {
	return &TournamentMatchLookupResponse{
		TournamentID: round.TournamentID,
		Round:        round.Round,
		MatchID:      round.MatchID,
		WinnerID:     round.WinnerID,
	}
}

// TournamentParticipantResponse представляет участника турнира
type TournamentParticipantResponse struct {
	UserID uint `json:"user_id"`
	Seat   int  `json:"seat"`
}

// TournamentResponse представляет турнир в формате для клиента
type TournamentResponse struct {
	ID           uint                            `json:"id"`
	Status       string                          `json:"status"`
	IsPrivate    bool                            `json:"is_private"`
	JoinCode     *string                         `json:"join_code,omitempty"`
	CategoryID   *uint                           `json:"category_id,omitempty"`
	CreatorID    uint                            `json:"creator_id"`
	Participants []TournamentParticipantResponse `json:"participants,omitempty"`
	Rounds       []TournamentRoundResponse       `json:"rounds,omitempty"`
	CreatedAt    time.Time                       `json:"created_at"`
	CompletedAt  *time.Time                      `json:"completed_at,omitempty"`
	ExpiresAt    time.Time                       `json:"expires_at"`
}

// NewTournamentResponse создает DTO турнира
func NewTournamentResponse(t *entity.Tournament, showCode bool) *TournamentResponse {
	resp := &TournamentResponse{
		ID:          t.ID,
		Status:      t.Status,
		IsPrivate:   t.IsPrivate,
		CategoryID:  t.CategoryID,
		CreatorID:   t.CreatorID,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
		ExpiresAt:   t.ExpiresAt,
	}
	if showCode {
		resp.JoinCode = t.JoinCode
	}
	for _, p := range t.Participants {
		resp.Participants = append(resp.Participants, TournamentParticipantResponse{
			UserID: p.UserID,
			Seat:   p.Seat,
		})
	}
	for _, r := range t.Rounds {
		resp.Rounds = append(resp.Rounds, TournamentRoundResponse{
			Round:     r.Round,
			Player1ID: r.Player1ID,
			Player2ID: r.Player2ID,
			MatchID:   r.MatchID,
			WinnerID:  r.WinnerID,
		})
	}
	return resp
}
