package handlers

import (
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/services"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/gofiber/fiber/v2"
)

const defaultAnnouncementPageSize = 20

type AnnouncementRequest struct {
	Title       *string            `json:"title"`
	Content     *string            `json:"content"`
	Type        *string            `json:"type" validate:"omitempty,oneof=info warning success error"`
	TargetRoles []string           `json:"targetRoles"`
	ExpiresAt   utils.NullableDate `json:"expiresAt"`
}

func (r AnnouncementRequest) input() services.AnnouncementInput {
	in := services.AnnouncementInput{
		Title:       r.Title,
		Content:     r.Content,
		TargetRoles: r.TargetRoles,
	}
	if r.Type != nil {
		t := models.AnnouncementType(*r.Type)
		in.Type = &t
	}
	switch {
	case r.ExpiresAt.Null():
		in.ClearExpiry = true
	case r.ExpiresAt.Valid && !r.ExpiresAt.Time.IsZero():
		at := r.ExpiresAt.Time.UTC()
		in.ExpiresAt = &at
	}
	return in
}

func (h *Handler) ListAnnouncements(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	page := utils.ParsePage(c.Query("page"), c.Query("limit"), defaultAnnouncementPageSize)
	items, pagination, err := h.Announcements.List(c.UserContext(), identity, c.Query("search"), page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"announcements": items, "pagination": pagination})
}

func (h *Handler) GetAnnouncement(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.Announcements.Get(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"announcement": a})
}

func (h *Handler) CreateAnnouncement(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req AnnouncementRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	a, err := h.Announcements.Create(c.UserContext(), identity, req.input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"announcement": a})
}

func (h *Handler) UpdateAnnouncement(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req AnnouncementRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	a, err := h.Announcements.Update(c.UserContext(), identity, id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"announcement": a})
}

func (h *Handler) DeleteAnnouncement(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Announcements.Delete(c.UserContext(), identity, id); err != nil {
		return err
	}
	return success(c)
}

