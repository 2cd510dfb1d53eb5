package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizduel-api/internal/handler/dto"
	"github.com/yourusername/quizduel-api/internal/service"
)

// TournamentHandler обрабатывает запросы жизненного цикла турниров
type TournamentHandler struct {
	tournamentService *service.TournamentService
}

// NewTournamentHandler создает новый обработчик турниров
func NewTournamentHandler(tournamentService *service.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// CreateTournamentRequest представляет запрос на создание турнира
type CreateTournamentRequest struct {
	IsPrivate  bool  `json:"is_private"`
	CategoryID *uint `json:"category_id,omitempty"`
}

// CreateTournament обрабатывает создание турнира
// POST /api/tournaments
func (h *TournamentHandler) CreateTournament(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req CreateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tournament, err := h.tournamentService.CreateTournament(userID, req.IsPrivate, req.CategoryID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTournamentResponse(tournament, true))
}

// GetTournament возвращает турнир с участниками и сеткой
// GET /api/tournaments/:id
func (h *TournamentHandler) GetTournament(c *gin.Context) {
	tournamentID := c.MustGet("tournamentID").(uint)
	userID := c.MustGet("user_id").(uint)

	tournament, err := h.tournamentService.GetTournament(tournamentID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTournamentResponse(tournament, tournament.CreatorID == userID))
}

// GetTournamentByCode возвращает живой турнир по коду приглашения
// GET /api/tournaments/code/:code
func (h *TournamentHandler) GetTournamentByCode(c *gin.Context) {
	code := c.Param("code")

	tournament, err := h.tournamentService.GetTournamentByJoinCode(code)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTournamentResponse(tournament, false))
}

// JoinTournament записывает пользователя в турнир по ID
// POST /api/tournaments/:id/join
func (h *TournamentHandler) JoinTournament(c *gin.Context) {
	tournamentID := c.MustGet("tournamentID").(uint)
	userID := c.MustGet("user_id").(uint)

	tournament, err := h.tournamentService.JoinTournament(tournamentID, userID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTournamentResponse(tournament, false))
}

// JoinTournamentByCode записывает пользователя в турнир по коду приглашения
// POST /api/tournaments/join
func (h *TournamentHandler) JoinTournamentByCode(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req JoinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tournament, err := h.tournamentService.JoinTournamentByCode(req.Code, userID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTournamentResponse(tournament, false))
}

// CancelTournament отменяет живой турнир и его матчи (участник или администратор)
// DELETE /api/tournaments/:id
func (h *TournamentHandler) CancelTournament(c *gin.Context) {
	tournamentID := c.MustGet("tournamentID").(uint)
	userID := c.MustGet("user_id").(uint)
	isAdmin := c.MustGet("is_admin").(bool)

	if err := h.tournamentService.CancelTournament(tournamentID, userID, isAdmin); err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tournament cancelled"})
}

// CheckMatch — обратный поиск слота сетки: к какому турниру и раунду
// относится матч. Для обычных матчей отвечает 404.
// GET /api/matches/:id/tournament
func (h *TournamentHandler) CheckMatch(c *gin.Context) {
	matchID := c.MustGet("matchID").(uint)

	round, err := h.tournamentService.CheckTournamentMatch(matchID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTournamentMatchLookupResponse(round))
}
