package handlers

import (
	"github.com/anjiri1684/school_admin/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) SearchUsers(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	users, err := h.Users.Search(c.UserContext(), identity, c.Query("q"), c.Query("role"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}

type ProfileRequest struct {
	Name             *string        `json:"name" validate:"omitempty,min=2"`
	Email            *string        `json:"email" validate:"omitempty,email"`
	PersonalInfo     map[string]any `json:"personalInfo"`
	ContactInfo      map[string]any `json:"contactInfo"`
	EmergencyContact map[string]any `json:"emergencyContact"`
	Preferences      map[string]any `json:"preferences"`
	Avatar           *string        `json:"avatar" validate:"omitempty,url"`
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	user, profile, err := h.Users.GetProfile(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user, "profile": profile})
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.Users.SaveProfile(c.UserContext(), identity, services.ProfileInput{
		Name:             req.Name,
		Email:            req.Email,
		PersonalInfo:     req.PersonalInfo,
		ContactInfo:      req.ContactInfo,
		EmergencyContact: req.EmergencyContact,
		Preferences:      req.Preferences,
		Avatar:           req.Avatar,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func (h *Handler) UploadSignature(c *fiber.Ctx) error {
	if _, err := caller(c); err != nil {
		return err
	}
	sig, err := h.Uploads.Sign(c.Query("purpose", "attachment"))
	if err != nil {
		return err
	}
	return c.JSON(sig)
}
