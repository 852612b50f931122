package sse

import (
	"encoding/json"
	"log"
	"sync"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages all SSE client connections.
// 由main创建并注入各服务，不使用包级单例
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// SendToUser 给特定用户发送事件（而非广播）
func (h *Hub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Events <- event:
			default:
				log.Printf("[SSE] Client %s buffer full, skipping user event", client.ID)
			}
		}
	}
}

// PublishPlateSuggestion 向操作人推送"建议登记新铜版"事件
// 仅在铜版状态由NEW首次推进到CONFIRM时触发一次
func (h *Hub) PublishPlateSuggestion(userID, workOrderID, productID string) {
	payload, _ := json.Marshal(map[string]string{
		"work_order_id": workOrderID,
		"product_id":    productID,
	})
	h.SendToUser(userID, Event{
		EventType: "plate_suggestion",
		Data:      string(payload),
	})
	log.Printf("[SSE] Published plate_suggestion to user=%s: wo=%s product=%s", userID, workOrderID, productID)
}

// PublishBatchResult 向操作人推送批量操作结果摘要
func (h *Hub) PublishBatchResult(userID, entityName string, created, failed int) {
	payload, _ := json.Marshal(map[string]interface{}{
		"entity":  entityName,
		"created": created,
		"failed":  failed,
	})
	h.SendToUser(userID, Event{
		EventType: "batch_result",
		Data:      string(payload),
	})
	log.Printf("[SSE] Published batch_result to user=%s: entity=%s created=%d failed=%d", userID, entityName, created, failed)
}
