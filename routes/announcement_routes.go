package routes

import (
	"github.com/anjiri1684/school_admin/handlers"
	"github.com/anjiri1684/school_admin/middleware"
	"github.com/anjiri1684/school_admin/models"
	"github.com/gofiber/fiber/v2"
)

func AnnouncementRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	announcements := api.Group("/announcements", protected)
	announcements.Get("", h.ListAnnouncements)
	announcements.Get("/:id", h.GetAnnouncement)

	manage := middleware.Require(models.CapManageAnnouncements)
	announcements.Post("", manage, h.CreateAnnouncement)
	announcements.Put("/:id", manage, h.UpdateAnnouncement)
	announcements.Delete("/:id", manage, h.DeleteAnnouncement)
}

func NotificationRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	notifications := api.Group("/notifications", protected)
	notifications.Get("", h.ListNotifications)
	notifications.Post("", middleware.Require(models.CapSendNotifications), h.CreateNotification)
	notifications.Post("/mark-all-read", h.MarkAllNotificationsRead)
	notifications.Patch("/:id", h.SetNotificationRead)
}

func UserRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	api.Get("/users/search", protected, h.SearchUsers)

	profile := api.Group("/profile", protected)
	profile.Get("", h.GetProfile)
	profile.Put("", h.UpdateProfile)

	api.Get("/uploads/signature", protected, h.UploadSignature)
}
