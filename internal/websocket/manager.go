package websocket

import (
	"encoding/json"
	"fmt"
	"log"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// subscribePayload — тело клиентских сообщений subscribe:match / subscribe:tournament
type subscribePayload struct {
	MatchID      uint `json:"match_id"`
	TournamentID uint `json:"tournament_id"`
}

// Manager обрабатывает WebSocket сообщения и публикует игровые события
type Manager struct {
	hub            *Hub
	messageHandler map[string]func(data json.RawMessage, client *Client) error
}

// NewManager создает новый менеджер WebSocket и регистрирует
// встроенные обработчики подписок на комнаты
func NewManager(hub *Hub) *Manager {
	m := &Manager{
		hub:            hub,
		messageHandler: make(map[string]func(data json.RawMessage, client *Client) error),
	}

	m.RegisterHandler("subscribe:match", func(data json.RawMessage, client *Client) error {
		var p subscribePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		hub.Subscribe(client, MatchRoom(p.MatchID))
		return nil
	})
	m.RegisterHandler("unsubscribe:match", func(data json.RawMessage, client *Client) error {
		var p subscribePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		hub.Unsubscribe(client, MatchRoom(p.MatchID))
		return nil
	})
	m.RegisterHandler("subscribe:tournament", func(data json.RawMessage, client *Client) error {
		var p subscribePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		hub.Subscribe(client, TournamentRoom(p.TournamentID))
		return nil
	})
	m.RegisterHandler("unsubscribe:tournament", func(data json.RawMessage, client *Client) error {
		var p subscribePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		hub.Unsubscribe(client, TournamentRoom(p.TournamentID))
		return nil
	})

	return m
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler func(data json.RawMessage, client *Client) error) {
	m.messageHandler[eventType] = handler
	log.Printf("[WebSocketManager] Зарегистрирован обработчик для сообщений типа: %s", eventType)
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если обработка не удалась и соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("Failed to unmarshal message from %s: %v, Message: %s", client.UserID, err, string(message))
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err // Ошибка парсинга - закрываем соединение
	}

	handler, ok := m.messageHandler[event.Type]
	if !ok {
		log.Printf("No handler registered for message type '%s' from client %s", event.Type, client.UserID)
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil // Неизвестный тип - не закрываем соединение
	}

	rawMessage, _ := json.Marshal(event.Data)
	if err := handler(rawMessage, client); err != nil {
		log.Printf("Handler for type '%s' returned error for client %s: %v", event.Type, client.UserID, err)
		return err
	}

	return nil
}

// SendErrorToClient отправляет стандартизированное сообщение об ошибке клиенту.
// Этот метод НЕ закрывает соединение.
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	errorEvent := Event{
		Type: "server:error",
		Data: map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if err := m.hub.SendJSONToUser(client.UserID, errorEvent); err != nil {
		log.Printf("ERROR sending error to client %s: %v", client.UserID, err)
	}
}

// SendEventToUser отправляет событие конкретному пользователю
func (m *Manager) SendEventToUser(userID string, eventType string, data interface{}) error {
	return m.hub.SendJSONToUser(userID, Event{Type: eventType, Data: data})
}

// BroadcastToMatch отправляет событие подписчикам матча
func (m *Manager) BroadcastToMatch(matchID uint, eventType string, data interface{}) error {
	log.Printf("[WebSocket] Рассылка события <%s> в матч %d", eventType, matchID)
	return m.hub.BroadcastToRoom(MatchRoom(matchID), Event{Type: eventType, Data: data})
}

// BroadcastToTournament отправляет событие подписчикам турнира
func (m *Manager) BroadcastToTournament(tournamentID uint, eventType string, data interface{}) error {
	log.Printf("[WebSocket] Рассылка события <%s> в турнир %d", eventType, tournamentID)
	return m.hub.BroadcastToRoom(TournamentRoom(tournamentID), Event{Type: eventType, Data: data})
}

// GetMetrics возвращает текущие метрики WebSocket-системы
func (m *Manager) GetMetrics() map[string]interface{} {
	return m.hub.GetMetrics()
}
