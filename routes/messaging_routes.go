package routes

import (
	"github.com/anjiri1684/school_admin/handlers"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	messages := api.Group("/messages", protected)
	messages.Get("", h.GetMessages)
	messages.Post("", h.SendMessage)
	messages.Post("/read", h.MarkConversationRead)

	api.Use("/ws", handlers.RequireUpgrade)
	api.Get("/ws", websocketcontrib.New(h.ServeWs))
}
