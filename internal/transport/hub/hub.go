package hub

import (
	"calendarback/internal/application/entity"
	"calendarback/pkg/metrics"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// invocationType - тип кадра "вызов метода клиента"
const invocationType = 1

// Invocation - один текстовый кадр хаба: {"type":1,"target":"...","arguments":[...]}
type Invocation struct {
	Type      int    `json:"type"`
	Target    string `json:"target"`
	Arguments []any  `json:"arguments"`
}

// Hub держит множество подключенных клиентов и рассылает им кадры.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.SugaredLogger
	m       *metrics.Metrics
}

func NewHub(logger *zap.SugaredLogger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
		m:       m,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.m.Hub.ConnectedClients.Inc()
	h.logger.Debugf("[client: %s] connected", c.id)
}

// Unregister убирает клиента и закрывает его канал отправки. Повторный вызов безопасен.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		h.m.Hub.ConnectedClients.Dec()
		h.logger.Debugf("[client: %s] disconnected", c.id)
	}
}

// Broadcast отправляет вызов target(args...) всем клиентам.
// Клиент с переполненным буфером сообщение теряет, отправитель не блокируется.
func (h *Hub) Broadcast(target string, args ...any) error {
	if args == nil {
		args = []any{}
	}
	data, err := json.Marshal(Invocation{Type: invocationType, Target: target, Arguments: args})
	if err != nil {
		return fmt.Errorf("marshal invocation %s: %w", target, err)
	}

	h.m.Hub.BroadcastsTotal.WithLabelValues(target).Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.m.Hub.DroppedTotal.Inc()
			h.logger.Warnf("[client: %s] send buffer full, %s dropped", c.id, target)
		}
	}
	return nil
}

// Notify - ReceiveNotification(title, message) всем подключенным клиентам.
func (h *Hub) Notify(ctx context.Context, n entity.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.Broadcast(entity.TargetReceiveNotification, n.Title, n.Message)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown отключает всех клиентов: writePump каждого закрывает соединение.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	n := len(h.clients)
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	h.m.Hub.ConnectedClients.Sub(float64(n))
	h.logger.Infof("notification hub stopped, %d clients disconnected", n)
}
