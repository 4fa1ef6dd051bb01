package services

import (
	"context"
	"strings"
	"time"

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

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

var errNotificationNotFound = apperrors.NotFound("Notification")

type NotificationInput struct {
	UserID    uuid.UUID
	Type      models.NotificationType
	Title     string
	Message   string
	ActionURL *string
	Metadata  map[string]any
	ExpiresAt *time.Time
}

type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	publisher     Publisher
	log           zerolog.Logger
	now           func() time.Time
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository, publisher Publisher, log zerolog.Logger) *NotificationService {
	if publisher == nil {
		publisher = NopPublisher
	}
	return &NotificationService{
		notifications: notifications,
		users:         users,
		publisher:     publisher,
		log:           log,
		now:           utcNow,
	}
}

func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// List returns the caller's newest live notifications and the count of all
// unread live ones.
func (s *NotificationService) List(ctx context.Context, caller models.Identity, unreadOnly bool, limit int) ([]models.Notification, int64, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	limit = min(limit, maxNotificationLimit)

	now := s.now()
	items, err := s.notifications.List(ctx, repositories.NotificationFilter{
		UserID:     caller.UserID,
		UnreadOnly: unreadOnly,
		Now:        now,
		Limit:      limit,
	})
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	unread, err := s.notifications.CountUnread(ctx, caller.UserID, now)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return items, unread, nil
}

func (s *NotificationService) Create(ctx context.Context, caller models.Identity, in NotificationInput) (*models.Notification, error) {
	if err := authorize(caller, models.CapSendNotifications); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperrors.Invalid("Invalid notification type")
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, apperrors.Invalid("Missing required fields")
	}
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	now := s.now()
	n := &models.Notification{
		Base:      models.Base{CreatedAt: now, UpdatedAt: now},
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     strings.TrimSpace(in.Title),
		Message:   strings.TrimSpace(in.Message),
		ActionURL: in.ActionURL,
		ExpiresAt: in.ExpiresAt,
	}
	if len(in.Metadata) > 0 {
		n.Metadata = datatypes.JSONMap(in.Metadata)
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, apperrors.Internal(err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	s.push(ctx, *n)
	return n, nil
}

// Broadcast drops the same notification into every listed inbox.
func (s *NotificationService) Broadcast(ctx context.Context, userIDs []uuid.UUID, typ models.NotificationType, title, message string, metadata map[string]any) (int, error) {
	now := s.now()
	inbox := lo.Map(lo.Uniq(userIDs), func(id uuid.UUID, _ int) models.Notification {
		return models.Notification{
			Base:     models.Base{CreatedAt: now, UpdatedAt: now},
			UserID:   id,
			Type:     typ,
			Title:    title,
			Message:  message,
			Metadata: datatypes.JSONMap(metadata),
		}
	})
	if err := s.notifications.CreateBatch(ctx, inbox); err != nil {
		return 0, apperrors.Internal(err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(typ)).Add(float64(len(inbox)))
	for _, n := range inbox {
		s.push(ctx, n)
	}
	return len(inbox), nil
}

func (s *NotificationService) push(ctx context.Context, n models.Notification) {
	if err := s.publisher.Publish(ctx, []uuid.UUID{n.UserID}, websocket.EventNotificationCreated, n); err != nil {
		s.log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("Failed to publish notification event")
	}
}

func (s *NotificationService) SetRead(ctx context.Context, caller models.Identity, id uuid.UUID, read bool) error {
	return storeErr(s.notifications.SetRead(ctx, id, caller.UserID, read), errNotificationNotFound)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, caller models.Identity) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, caller.UserID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}
