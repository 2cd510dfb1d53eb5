package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizduel-api/internal/handler/dto"
	"github.com/yourusername/quizduel-api/internal/service"
)

// MatchHandler обрабатывает запросы жизненного цикла матчей и игрового процесса
type MatchHandler struct {
	matchService  *service.MatchService
	gameService   *service.GameService
	resultService *service.ResultService
}

// NewMatchHandler создает новый обработчик матчей
func NewMatchHandler(
	matchService *service.MatchService,
	gameService *service.GameService,
	resultService *service.ResultService,
) *MatchHandler {
	return &MatchHandler{
		matchService:  matchService,
		gameService:   gameService,
		resultService: resultService,
	}
}

// CreateMatchRequest представляет запрос на создание матча
type CreateMatchRequest struct {
	IsPrivate  bool  `json:"is_private"`
	CategoryID *uint `json:"category_id,omitempty"`
}

// CreateMatch обрабатывает создание матча (с авто-подбором пары для публичных)
// POST /api/matches
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matchService.CreateMatch(userID, req.IsPrivate, req.CategoryID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	// Авто-подбор мог вернуть уже активный чужой матч — тогда это не создание
	status := http.StatusCreated
	if match.CreatorID != userID {
		status = http.StatusOK
	}
	c.JSON(status, dto.NewMatchResponse(match, match.CreatorID == userID))
}

// GetMatch возвращает матч с участниками
// GET /api/matches/:id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)
	userID := c.MustGet("user_id").(uint)

	match, err := h.matchService.GetMatch(matchID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMatchResponse(match, match.CreatorID == userID))
}

// GetMatchByCode возвращает живой матч по коду приглашения (превью перед join)
// GET /api/matches/code/:code
func (h *MatchHandler) GetMatchByCode(c *gin.Context) {
	code := c.Param("code")

	match, err := h.matchService.GetMatchByJoinCode(code)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMatchResponse(match, false))
}

// JoinMatch присоединяет пользователя к матчу по ID
// POST /api/matches/:id/join
func (h *MatchHandler) JoinMatch(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)
	userID := c.MustGet("user_id").(uint)

	match, err := h.matchService.JoinMatch(matchID, userID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMatchResponse(match, false))
}

// JoinByCodeRequest представляет запрос на присоединение по коду
type JoinByCodeRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// JoinMatchByCode присоединяет пользователя к приватному матчу по коду
// POST /api/matches/join
func (h *MatchHandler) JoinMatchByCode(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req JoinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matchService.JoinMatchByCode(req.Code, userID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMatchResponse(match, false))
}

// CancelMatch отменяет живой матч (участник или администратор)
// DELETE /api/matches/:id
func (h *MatchHandler) CancelMatch(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)
	userID := c.MustGet("user_id").(uint)
	isAdmin := c.MustGet("is_admin").(bool)

	if err := h.matchService.CancelMatch(matchID, userID, isAdmin); err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Match cancelled"})
}

// GetMatchQuestions возвращает вопросы матча (только участникам)
// GET /api/matches/:id/questions
func (h *MatchHandler) GetMatchQuestions(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)
	userID := c.MustGet("user_id").(uint)

	questions, err := h.matchService.GetMatchQuestions(matchID, userID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListQuestionResponse(questions))
}

// SubmitAnswerRequest представляет ответ на вопрос.
// selected_option = 0 означает пропуск вопроса.
type SubmitAnswerRequest struct {
	QuestionID     uint `json:"question_id" binding:"required"`
	SelectedOption int  `json:"selected_option" binding:"min=0,max=4"`
	TimeSpentSec   int  `json:"time_spent_sec" binding:"min=0"`
}

// SubmitAnswer принимает ответ участника на вопрос матча
// POST /api/matches/:id/answers
func (h *MatchHandler) SubmitAnswer(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)
	userID := c.MustGet("user_id").(uint)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.gameService.SubmitAnswer(matchID, userID, req.QuestionID, req.SelectedOption, req.TimeSpentSec)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// UseHintRequest представляет запрос на подсказку
type UseHintRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	HintType   string `json:"hint_type" binding:"required"`
}

// UseHint применяет подсказку к вопросу матча
// POST /api/matches/:id/hints
func (h *MatchHandler) UseHint(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)
	userID := c.MustGet("user_id").(uint)

	var req UseHintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.gameService.UseHint(matchID, userID, req.QuestionID, req.HintType)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// GetProgress возвращает собственные ответы участника (восстановление клиента)
// GET /api/matches/:id/progress
func (h *MatchHandler) GetProgress(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)
	userID := c.MustGet("user_id").(uint)

	answers, err := h.gameService.GetProgress(matchID, userID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

// GetScoreboard возвращает текущее табло матча
// GET /api/matches/:id/scoreboard
func (h *MatchHandler) GetScoreboard(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)

	match, participants, err := h.resultService.GetScoreboard(matchID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMatchResponse(match, false).WithParticipants(participants))
}

// GetMatchResult возвращает итог завершённого матча с ответами обоих
// игроков для послематчевого разбора
// GET /api/matches/:id/result
func (h *MatchHandler) GetMatchResult(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)

	review, err := h.resultService.GetMatchResult(matchID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMatchReviewResponse(review.Result, review.Player1Answers, review.Player2Answers))
}

// ListMyResults возвращает историю итогов текущего пользователя
// GET /api/results/my?page=&per_page=
func (h *MatchHandler) ListMyResults(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	results, total, err := h.resultService.ListUserResults(userID, perPage, (page-1)*perPage)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResultResponse(results, total, page, perPage))
}
