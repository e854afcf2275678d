package websocket

import (
	"encoding/json"
	"sync"
)

// TransferUpdate is the ops-feed payload pushed on every transfer
// lifecycle change.
type TransferUpdate struct {
	Kind        string `json:"kind"`
	TransferID  int64  `json:"transfer_id"`
	SenderID    int64  `json:"sender_id"`
	RecipientID int64  `json:"recipient_id"`
	Amount      string `json:"amount"`
	Remaining   string `json:"remaining"`
	Status      string `json:"status"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// BroadcastTransfer pushes to every connected watcher. Slow clients are
// skipped rather than blocking the caller.
func (h *Hub) BroadcastTransfer(update TransferUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
}
