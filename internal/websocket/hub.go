package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"medassist-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statusChannel = "exam_status_events"

// StatusUpdate is pushed to a user's open sockets when an examination
// changes state.
type StatusUpdate struct {
	ExamID        uuid.UUID `json:"exam_id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

// Hub tracks connected clients per user and fans status updates out across
// instances through Redis pub/sub. A nil *redis.Client disables fan-out and
// the hub degrades to local-only delivery.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

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

// PushStatus delivers an examination status update to every socket the user
// has open, locally and on other instances. Safe on a nil hub.
func (h *Hub) PushStatus(userID uuid.UUID, update StatusUpdate) {
	if h == nil {
		return
	}

	data, _ := json.Marshal(map[string]interface{}{
		"type": "examination_status",
		"data": update,
	})

	// With Redis the local delivery happens through the subscription so the
	// publishing instance does not deliver twice.
	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), statusChannel, payload)
		return
	}

	h.deliverLocal(userID, data)
}

func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Run's unregister branch is the single closer of Send; closing
			// here as well would double-close when it processes this client.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

// subscribeToRedis receives updates published by other instances and
// delivers them to any matching local clients.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, statusChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Failed to parse pubsub payload", map[string]interface{}{"error": err.Error()})
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, payload.Message)
	}
}
