package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// roomMessage — сообщение для рассылки подписчикам комнаты
type roomMessage struct {
	room    string
	payload []byte
}

// Hub управляет активными WebSocket клиентами и комнатами.
// Комната — это область видимости событий одного матча или турнира,
// ключи вида "match:42" и "tournament:7".
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Клиенты по ID пользователя (у пользователя может быть несколько соединений)
	userClients map[string]map[*Client]bool

	// Подписки: комната -> клиенты
	rooms map[string]map[*Client]bool

	// Обратный индекс: клиент -> комнаты (для очистки при отключении)
	clientRooms map[*Client]map[string]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	roomCast   chan roomMessage

	mu sync.RWMutex
}

// NewHub создает новый hub
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string]map[*Client]bool),
		rooms:       make(map[string]map[*Client]bool),
		clientRooms: make(map[*Client]map[string]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan []byte, 256),
		roomCast:    make(chan roomMessage, 256),
	}
}

// MatchRoom возвращает ключ комнаты матча
func MatchRoom(matchID uint) string {
	return fmt.Sprintf("match:%d", matchID)
}

// TournamentRoom возвращает ключ комнаты турнира
func TournamentRoom(tournamentID uint) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}

// Run обрабатывает регистрацию, отключение и рассылку.
// Запускается один раз при старте приложения.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if h.userClients[client.UserID] == nil {
				h.userClients[client.UserID] = make(map[*Client]bool)
			}
			h.userClients[client.UserID][client] = true
			h.mu.Unlock()
			log.Printf("[WebSocketHub] Клиент зарегистрирован: user=%s conn=%s", client.UserID, client.ConnectionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				if conns := h.userClients[client.UserID]; conns != nil {
					delete(conns, client)
					if len(conns) == 0 {
						delete(h.userClients, client.UserID)
					}
				}
				for room := range h.clientRooms[client] {
					delete(h.rooms[room], client)
					if len(h.rooms[room]) == 0 {
						delete(h.rooms, room)
					}
				}
				delete(h.clientRooms, client)
				client.closeSend()
			}
			h.mu.Unlock()
			log.Printf("[WebSocketHub] Клиент отключен: user=%s conn=%s", client.UserID, client.ConnectionID)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				client.Send(message)
			}
			h.mu.RUnlock()

		case msg := <-h.roomCast:
			h.mu.RLock()
			for client := range h.rooms[msg.room] {
				client.Send(msg.payload)
			}
			h.mu.RUnlock()
		}
	}
}

// Register регистрирует клиента в hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Subscribe подписывает клиента на комнату
func (h *Hub) Subscribe(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	if h.clientRooms[client] == nil {
		h.clientRooms[client] = make(map[string]bool)
	}
	h.clientRooms[client][room] = true
	log.Printf("[WebSocketHub] Клиент %s подписан на комнату %s", client.UserID, room)
}

// Unsubscribe отписывает клиента от комнаты
func (h *Hub) Unsubscribe(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[room], client)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	delete(h.clientRooms[client], room)
}

// BroadcastJSON отправляет структуру JSON всем клиентам
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast message: %w", err)
	}
	h.broadcast <- data
	return nil
}

// BroadcastToRoom отправляет структуру JSON подписчикам комнаты
func (h *Hub) BroadcastToRoom(room string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal room message for %s: %w", room, err)
	}
	h.roomCast <- roomMessage{room: room, payload: data}
	return nil
}

// SendJSONToUser отправляет структуру JSON во все соединения пользователя
func (h *Hub) SendJSONToUser(userID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for user %s: %w", userID, err)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.userClients[userID] {
		client.Send(data)
	}
	return nil
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSubscriberCount возвращает количество подписчиков комнаты
func (h *Hub) RoomSubscriberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// GetMetrics возвращает метрики хаба
func (h *Hub) GetMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"client_count": len(h.clients),
		"room_count":   len(h.rooms),
		"user_count":   len(h.userClients),
	}
}
