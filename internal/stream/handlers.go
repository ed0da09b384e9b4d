package stream

import (
	"backend-touristsafety/internal/identity"
	"backend-touristsafety/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts the websocket streams. authMiddleware identifies the
// caller; deviceGuard decides whether the caller may follow :deviceID. The alert
// stream is for police only.
func RegisterRoutes(r fiber.Router, hub *Hub, authMiddleware, deviceGuard fiber.Handler) {
	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	r.Get("/ws/alerts", authMiddleware, func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(identity.Role); role != identity.RolePolice {
			return fiber.NewError(fiber.StatusForbidden, "police only")
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		serve(hub, c, AlertsTopic)
	}))

	r.Get("/ws/:deviceID", authMiddleware, deviceGuard, websocket.New(func(c *websocket.Conn) {
		serve(hub, c, c.Params("deviceID"))
	}))
}

func serve(hub *Hub, c *websocket.Conn, topic string) {
	client := hub.Register(topic)
	defer hub.Unregister(client)
	logger.L().Debug("stream_client_connected", "topic", topic)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// A closed Send means the client was unregistered or the topic forgotten.
		defer c.Close()
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
	hub.Unregister(client)
	<-done
	logger.L().Debug("stream_client_disconnected", "topic", topic)
}
