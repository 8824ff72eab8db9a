package hub

import (
	"encoding/json"
	"sync"

	"github.com/lucidplay/crashgate/internal/pkg/logger"
	"github.com/lucidplay/crashgate/internal/pkg/metrics"
)

// Hub maintains the set of authenticated viewer connections and fans
// events out to all of them. Each client's send is independent and
// non-blocking: a slow or dead consumer is dropped, never allowed to stall
// other recipients or the round timeline.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.LiveConnections.Set(float64(total))
	logger.Info("viewer connected", "user_id", c.UserID(), "total", total)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()

	metrics.LiveConnections.Set(float64(total))
	logger.Info("viewer disconnected", "user_id", c.UserID(), "total", total)
}

// Broadcast serializes the event envelope once and writes it to every
// connection currently open. Write failures are logged and skipped.
func (h *Hub) Broadcast(topic string, payload interface{}) {
	raw, err := json.Marshal(eventMessage(topic, payload))
	if err != nil {
		logger.Error("failed to marshal broadcast", "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySendRaw(raw) {
			// Buffer full: the client is too slow to keep up.
			metrics.DroppedBroadcasts.Inc()
			logger.Warn("client buffer full, disconnecting", "user_id", c.UserID())
			go c.closeSlow()
		}
	}
}

// Count returns the number of authenticated connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
