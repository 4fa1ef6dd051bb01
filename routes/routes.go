// Package routes builds the Fiber application and mounts every route group.
package routes

import (
	"strings"
	"time"

	"github.com/anjiri1684/school_admin/handlers"
	"github.com/anjiri1684/school_admin/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	JWTSecret   string
	CORSOrigins string
	// AuthRateLimit caps login/register attempts per IP per minute; 0 disables it.
	AuthRateLimit int
}

func NewApp(h *handlers.Handler, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "School Admin",
		CaseSensitive: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler(h.Log),
	})

	origins := opts.CORSOrigins
	if strings.TrimSpace(origins) == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: origins != "*",
		ExposeHeaders:    "Content-Length, Content-Disposition",
		MaxAge:           86400,
	}))
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(h.Log))
	app.Use(middleware.Metrics())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	protected := middleware.Protected(opts.JWTSecret)

	AuthRoutes(api, h, protected, opts.AuthRateLimit)
	MessagingRoutes(api, h, protected)
	AnnouncementRoutes(api, h, protected)
	NotificationRoutes(api, h, protected)
	UserRoutes(api, h, protected)
	RosterRoutes(api, h, protected)
	RecordRoutes(api, h, protected)

	return app
}
