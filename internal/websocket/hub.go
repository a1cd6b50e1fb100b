package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"noteshare-be/internal/pkg/logger"
	"noteshare-be/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub tracks which users have open websocket connections on this instance and
// routes notifications to them. Cross-instance delivery goes through the Redis
// channel the notification service publishes on; every instance subscribes and
// forwards only to users it holds locally.
type Hub struct {
	// UserID -> connections, one user may have several devices open.
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client
	log logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		log:        log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribe()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.log.Info("hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// deliver pushes a raw message to all local connections of one user. A client
// whose buffer is full is dropped; it reconnects or it was gone anyway.
func (h *Hub) deliver(userID uuid.UUID, message []byte) {
	h.mu.RLock()
	clients, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- message:
		default:
			h.log.Warn("hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribe() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, service.NotificationChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope service.NotificationEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.log.Warn("hub", "Dropping malformed notification envelope", map[string]interface{}{"error": err.Error()})
			continue
		}

		uid, err := uuid.Parse(envelope.TargetUserId)
		if err != nil {
			continue
		}

		h.deliver(uid, envelope.Message)
	}
}
