package handlers

import (
	"strconv"

	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/services"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateNotificationRequest struct {
	UserID    string         `json:"userId" validate:"required,uuid"`
	Type      string         `json:"type" validate:"required"`
	Title     string         `json:"title" validate:"required"`
	Message   string         `json:"message" validate:"required"`
	ActionURL *string        `json:"actionUrl"`
	Metadata  map[string]any `json:"metadata"`
	ExpiresAt *utils.Date    `json:"expiresAt"`
}

type SetReadRequest struct {
	Read *bool `json:"read" validate:"required"`
}

func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	unreadOnly, _ := strconv.ParseBool(c.Query("unreadOnly"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, unread, err := h.Notifications.List(c.UserContext(), identity, unreadOnly, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"notifications": items, "unreadCount": unread})
}

func (h *Handler) CreateNotification(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req CreateNotificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := services.NotificationInput{
		UserID:    uuid.MustParse(req.UserID),
		Type:      models.NotificationType(req.Type),
		Title:     req.Title,
		Message:   req.Message,
		ActionURL: req.ActionURL,
		Metadata:  req.Metadata,
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.IsZero() {
		at := req.ExpiresAt.Time.UTC()
		in.ExpiresAt = &at
	}
	n, err := h.Notifications.Create(c.UserContext(), identity, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"notification": n})
}

func (h *Handler) SetNotificationRead(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req SetReadRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Notifications.SetRead(c.UserContext(), identity, id, *req.Read); err != nil {
		return err
	}
	return success(c)
}

func (h *Handler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	updated, err := h.Notifications.MarkAllRead(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "updated": updated})
}
