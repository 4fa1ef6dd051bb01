package handlers

import (
	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ConversationID *string  `json:"conversationId" validate:"omitempty,uuid"`
	RecipientID    *string  `json:"recipientId" validate:"omitempty,uuid"`
	Content        string   `json:"content"`
	Attachments    []string `json:"attachments"`
}

func (r SendMessageRequest) input() (services.SendMessageInput, error) {
	conversationID, err := parseOptionalID(r.ConversationID)
	if err != nil {
		return services.SendMessageInput{}, err
	}
	recipientID, err := parseOptionalID(r.RecipientID)
	if err != nil {
		return services.SendMessageInput{}, err
	}
	return services.SendMessageInput{
		ConversationID: conversationID,
		RecipientID:    recipientID,
		Content:        r.Content,
		Attachments:    r.Attachments,
	}, nil
}

type MarkReadRequest struct {
	ConversationID string `json:"conversationId" validate:"required,uuid"`
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	msg, err := h.Messaging.SendMessage(c.UserContext(), identity, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// GetMessages returns one conversation's history when conversationId is
// given, and the caller's conversation list otherwise.
func (h *Handler) GetMessages(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	if raw := c.Query("conversationId"); raw != "" {
		conversationID, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.ErrInvalidID
		}
		messages, err := h.Messaging.FetchMessages(c.UserContext(), identity, conversationID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"messages": messages})
	}

	conversations, err := h.Messaging.ListConversations(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"conversations": conversations})
}

func (h *Handler) MarkConversationRead(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req MarkReadRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Messaging.MarkConversationRead(c.UserContext(), identity, uuid.MustParse(req.ConversationID)); err != nil {
		return err
	}
	return success(c)
}
