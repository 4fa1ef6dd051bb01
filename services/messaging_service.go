package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/metrics"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

const notificationPreviewLen = 120

type SendMessageInput struct {
	ConversationID *uuid.UUID
	RecipientID    *uuid.UUID
	Content        string
	Attachments    []string
}

type MessagingService struct {
	users         repositories.UserRepository
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	notifications repositories.NotificationRepository
	publisher     Publisher
	log           zerolog.Logger
	now           func() time.Time
}

func NewMessagingService(
	users repositories.UserRepository,
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	notifications repositories.NotificationRepository,
	publisher Publisher,
	log zerolog.Logger,
) *MessagingService {
	if publisher == nil {
		publisher = NopPublisher
	}
	return &MessagingService{
		users:         users,
		conversations: conversations,
		messages:      messages,
		notifications: notifications,
		publisher:     publisher,
		log:           log,
		now:           utcNow,
	}
}

func (s *MessagingService) WithClock(now func() time.Time) *MessagingService {
	s.now = now
	return s
}

// ResolveConversation returns the one conversation shared by the caller and
// the recipient, creating it on first contact.
func (s *MessagingService) ResolveConversation(ctx context.Context, callerID, recipientID uuid.UUID) (*models.Conversation, error) {
	recipient, err := s.users.FindByID(ctx, recipientID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrRecipientNotFound)
	}
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrSenderNotFound)
	}

	existing, err := s.conversations.FindByPair(ctx, callerID, recipientID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	participants := lo.UniqBy([]models.ConversationParticipant{
		{UserID: caller.ID, Name: caller.Name, Role: caller.Role, JoinedAt: now},
		{UserID: recipient.ID, Name: recipient.Name, Role: recipient.Role, JoinedAt: now},
	}, func(p models.ConversationParticipant) uuid.UUID { return p.UserID })

	conv := &models.Conversation{
		PairKey:      models.PairKey(callerID, recipientID),
		CreatedAt:    now,
		UpdatedAt:    now,
		Participants: participants,
	}
	stored, created, err := s.conversations.CreateIfAbsent(ctx, conv)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if created {
		metrics.ConversationsCreated.Inc()
		s.log.Info().
			Str("conversation_id", stored.ID.String()).
			Str("caller_id", callerID.String()).
			Str("recipient_id", recipientID.String()).
			Msg("Conversation created")
	}
	return stored, nil
}

// SendMessage appends a message from caller to an existing conversation or
// to the one resolved for the recipient.
func (s *MessagingService) SendMessage(ctx context.Context, caller models.Identity, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if in.ConversationID == nil && in.RecipientID == nil {
		return nil, apperrors.ErrMissingTarget
	}

	var conv *models.Conversation
	var err error
	if in.ConversationID != nil {
		conv, err = s.conversations.FindByID(ctx, *in.ConversationID)
		if err != nil {
			return nil, storeErr(err, apperrors.ErrConversationNotFound)
		}
		if !conv.HasParticipant(caller.UserID) {
			return nil, apperrors.ErrForbidden
		}
	} else {
		conv, err = s.ResolveConversation(ctx, caller.UserID, *in.RecipientID)
		if err != nil {
			return nil, err
		}
	}

	sender, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrSenderNotFound)
	}

	now := s.now()
	attachments := lo.Filter(in.Attachments, func(a string, _ int) bool { return strings.TrimSpace(a) != "" })
	if attachments == nil {
		attachments = []string{}
	}
	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		SenderRole:     sender.Role,
		Content:        content,
		Attachments:    datatypes.JSONSlice[string](attachments),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, storeErr(err, apperrors.ErrConversationNotFound)
	}
	metrics.MessagesSent.Inc()

	recipients := lo.FilterMap(conv.Participants, func(p models.ConversationParticipant, _ int) (uuid.UUID, bool) {
		return p.UserID, p.UserID != sender.ID
	})
	s.fanOut(ctx, msg, recipients, now)
	return msg, nil
}

// fanOut pushes the message to connected recipients and drops a notification
// in each inbox. The message is already durable, so failures are only logged.
func (s *MessagingService) fanOut(ctx context.Context, msg *models.Message, recipients []uuid.UUID, now time.Time) {
	if len(recipients) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, recipients, websocket.EventMessageCreated, msg); err != nil {
		s.log.Warn().Err(err).Str("message_id", msg.ID.String()).Msg("Failed to publish message event")
	}

	actionURL := fmt.Sprintf("/messages?conversationId=%s", msg.ConversationID)
	inbox := lo.Map(recipients, func(userID uuid.UUID, _ int) models.Notification {
		return models.Notification{
			Base:      models.Base{CreatedAt: now, UpdatedAt: now},
			UserID:    userID,
			Type:      models.NotificationMessage,
			Title:     "New message from " + msg.SenderName,
			Message:   preview(msg.Content),
			ActionURL: &actionURL,
			Metadata: datatypes.JSONMap{
				"conversationId": msg.ConversationID.String(),
				"messageId":      msg.ID.String(),
			},
		}
	})
	if err := s.notifications.CreateBatch(ctx, inbox); err != nil {
		s.log.Warn().Err(err).Str("message_id", msg.ID.String()).Msg("Failed to record message notifications")
		return
	}
	metrics.NotificationsCreated.WithLabelValues(string(models.NotificationMessage)).Add(float64(len(inbox)))
	for i := range inbox {
		n := inbox[i]
		if err := s.publisher.Publish(ctx, []uuid.UUID{n.UserID}, websocket.EventNotificationCreated, n); err != nil {
			s.log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("Failed to publish notification event")
		}
	}
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= notificationPreviewLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:notificationPreviewLen]) + "…"
}

// FetchMessages returns the full history of a conversation, oldest first,
// after adding the caller to the read-by set of every message they received.
func (s *MessagingService) FetchMessages(ctx context.Context, caller models.Identity, conversationID uuid.UUID) ([]models.Message, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrConversationNotFound)
	}
	if !conv.HasParticipant(caller.UserID) {
		return nil, apperrors.ErrForbidden
	}

	if _, err := s.messages.MarkRead(ctx, conv.ID, caller.UserID, s.now()); err != nil {
		return nil, apperrors.Internal(err)
	}
	messages, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return messages, nil
}

// MarkConversationRead zeroes the caller's unread counter. Per-message read
// state is left to FetchMessages.
func (s *MessagingService) MarkConversationRead(ctx context.Context, caller models.Identity, conversationID uuid.UUID) error {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return storeErr(err, apperrors.ErrConversationNotFound)
	}
	if !conv.HasParticipant(caller.UserID) {
		return apperrors.ErrForbidden
	}
	return storeErr(s.conversations.ResetUnread(ctx, conv.ID, caller.UserID), apperrors.ErrConversationNotFound)
}

func (s *MessagingService) ListConversations(ctx context.Context, caller models.Identity) ([]models.Conversation, error) {
	conversations, err := s.conversations.ListForUser(ctx, caller.UserID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return conversations, nil
}
