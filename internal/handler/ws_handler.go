package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/quizduel-api/internal/websocket"
	"github.com/yourusername/quizduel-api/pkg/auth"
)

// WSHandler обрабатывает WebSocket соединения
type WSHandler struct {
	wsHub     *websocket.Hub
	wsManager *websocket.Manager
	verifier  *auth.JWTVerifier
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(
	wsHub *websocket.Hub,
	wsManager *websocket.Manager,
	verifier *auth.JWTVerifier,
) *WSHandler {
	return &WSHandler{
		wsHub:     wsHub,
		wsManager: wsManager,
		verifier:  verifier,
	}
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Игровые события не несут приватных данных; ограничение origin
		// выполняет обратный прокси
		return true
	},
}

// HandleConnection обновляет HTTP-соединение до WebSocket.
// Браузерный WebSocket API не умеет выставлять заголовки,
// поэтому токен принимается query-параметром.
// GET /ws?token=...
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	claims, err := h.verifier.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка обновления соединения: %v", err)
		return
	}

	userID := strconv.FormatUint(uint64(claims.UserID), 10)
	client := websocket.NewClient(h.wsHub, conn, userID)
	client.SetMessageHandler(h.wsManager.HandleMessage)

	h.wsHub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
