package hub

import (
	"calendarback/internal/application/entity"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeWait      = 10 * time.Second
)

// conn - то, что клиенту нужно от websocket-соединения
type conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Client struct {
	id   string
	hub  *Hub
	conn conn
	send chan []byte
}

func NewClient(id string, hub *Hub, conn conn) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run регистрирует клиента и блокируется, пока соединение живо.
// Возвращается только после остановки writePump: соединение после этого не используется.
func (c *Client) Run() {
	c.hub.Register(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump()
	c.hub.Unregister(c)
	<-done
}

// readPump принимает вызовы от клиента. SendNotification(title, message)
// пересылается всем как ReceiveNotification, остальное игнорируется.
// Любая ошибка чтения завершает соединение.
func (c *Client) readPump() {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.logger.Warnf("[client: %s] read error: %v", c.id, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.handleInvocation(data)
	}
}

func (c *Client) handleInvocation(data []byte) {
	var inv Invocation
	if err := json.Unmarshal(data, &inv); err != nil {
		c.hub.logger.Warnf("[client: %s] bad frame: %v", c.id, err)
		return
	}
	if inv.Type != invocationType || inv.Target != entity.TargetSendNotification {
		c.hub.logger.Debugf("[client: %s] ignored invocation %q", c.id, inv.Target)
		return
	}

	title, message, ok := notificationArgs(inv.Arguments)
	if !ok {
		c.hub.logger.Warnf("[client: %s] SendNotification expects (title, message)", c.id)
		return
	}
	if err := c.hub.Broadcast(entity.TargetReceiveNotification, title, message); err != nil {
		c.hub.logger.Errorf("[client: %s] relay failed: %v", c.id, err)
	}
}

func notificationArgs(args []any) (title, message string, ok bool) {
	if len(args) != 2 {
		return "", "", false
	}
	title, ok = args[0].(string)
	if !ok {
		return "", "", false
	}
	message, ok = args[1].(string)
	return title, message, ok
}

// writePump - единственный писатель в соединение: кадры из send и пинги.
// Закрытый send означает, что хаб отключил клиента.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.Warnf("[client: %s] write error: %v", c.id, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
