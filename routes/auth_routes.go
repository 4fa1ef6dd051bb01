package routes

import (
	"time"

	"github.com/anjiri1684/school_admin/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func AuthRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler, rateLimit int) {
	auth := api.Group("/auth")

	credentials := []fiber.Handler{}
	if rateLimit > 0 {
		credentials = append(credentials, limiter.New(limiter.Config{
			Max:        rateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts, try again later")
			},
		}))
	}
	auth.Post("/register", append(credentials, h.Register)...)
	auth.Post("/login", append(credentials, h.Login)...)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", protected, h.Me)
}
