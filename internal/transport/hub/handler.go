package hub

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

// Upgrade пропускает дальше только websocket-рукопожатие.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler подключает каждое websocket-соединение к хабу как клиента.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		id, err := uuid.NewV4()
		if err != nil {
			h.logger.Errorf("client id: %v", err)
			return
		}
		NewClient(id.String(), h, conn).Run()
	})
}
