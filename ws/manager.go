package ws

import (
	"context"
	"sync"

	"netowork_backend/internal/logger"
)

const eventsBuffer = 256

// Envelope - формат всех исходящих сообщений
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type userEvent struct {
	userID   int64
	envelope Envelope
}

// WebSocketManager держит подключения пользователей (по одному на вкладку)
// и доставляет им события. Карту клиентов меняет только цикл Run.
type WebSocketManager struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan userEvent
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan userEvent, eventsBuffer),
		done:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию и доставку до отмены ctx
func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			manager.closeAll()
			close(manager.done)
			return

		case client := <-manager.register:
			manager.mu.Lock()
			set, ok := manager.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				manager.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			manager.mu.Unlock()
			logger.Debug("WebSocket client registered", "user_id", client.UserID)

		case client := <-manager.unregister:
			manager.remove(client)

		case ev := <-manager.events:
			manager.deliver(ev)
		}
	}
}

// Register добавляет клиента; false, если менеджер уже остановлен
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

// Unregister закрывает канал отправки клиента
func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

// Notify ставит событие в очередь. Переполненная очередь - событие теряется.
func (manager *WebSocketManager) Notify(userID int64, event string, payload any) {
	select {
	case manager.events <- userEvent{userID: userID, envelope: Envelope{Event: event, Data: payload}}:
	default:
		logger.Warn("WebSocket event queue is full, dropping event", "user_id", userID, "event", event)
	}
}

func (manager *WebSocketManager) deliver(ev userEvent) {
	manager.mu.RLock()
	var slow []*Client
	for client := range manager.clients[ev.userID] {
		select {
		case client.send <- ev.envelope:
		default:
			slow = append(slow, client)
		}
	}
	manager.mu.RUnlock()

	// клиент не успевает читать - отключаем
	for _, client := range slow {
		logger.Warn("WebSocket client is too slow, disconnecting", "user_id", client.UserID)
		manager.remove(client)
	}
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	set, ok := manager.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(manager.clients, client.UserID)
	}
	logger.Debug("WebSocket client unregistered", "user_id", client.UserID)
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	for userID, set := range manager.clients {
		for client := range set {
			close(client.send)
		}
		delete(manager.clients, userID)
	}
}

// GetClientCount возвращает количество подключенных клиентов
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	n := 0
	for _, set := range manager.clients {
		n += len(set)
	}
	return n
}

// IsUserConnected - есть ли у пользователя хотя бы одно подключение
func (manager *WebSocketManager) IsUserConnected(userID int64) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID]) > 0
}
