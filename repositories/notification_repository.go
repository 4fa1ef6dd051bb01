package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, ns []models.Notification) error
	List(ctx context.Context, filter NotificationFilter) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	SetRead(ctx context.Context, id, userID uuid.UUID, read bool) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// NotificationFilter selects a user's live (unexpired) notifications.
type NotificationFilter struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Now        time.Time
	Limit      int
}

func (f NotificationFilter) Apply(db *gorm.DB) *gorm.DB {
	db = db.Where("user_id = ?", f.UserID).
		Where("(expires_at IS NULL OR expires_at > ?)", f.Now)
	if f.UnreadOnly {
		db = db.Where("read = ?", false)
	}
	return db
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

var _ NotificationRepository = (*GormNotificationRepository)(nil)

func (r *GormNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error)
}

func (r *GormNotificationRepository) CreateBatch(ctx context.Context, ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(&ns, 200).Error)
}

func (r *GormNotificationRepository) List(ctx context.Context, filter NotificationFilter) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	q := filter.Apply(r.db.WithContext(ctx)).Order("created_at desc")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	filter := NotificationFilter{UserID: userID, UnreadOnly: true, Now: now}
	err := filter.Apply(r.db.WithContext(ctx).Model(&models.Notification{})).Count(&count).Error
	return count, err
}

// SetRead updates one notification owned by userID; another user's
// notification is reported as not found.
func (r *GormNotificationRepository) SetRead(ctx context.Context, id, userID uuid.UUID, read bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", read)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
