package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, from *time.Time) ([]models.Event, error)
	// DueForReminder returns events starting in [from, to) that have not
	// been reminded yet.
	DueForReminder(ctx context.Context, from, to time.Time) ([]models.Event, error)
	// ClaimReminder stamps the event as reminded and reports whether this
	// caller was the one to do it.
	ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type GormEventRepository struct {
	*Records[models.Event]
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{Records: NewRecords[models.Event](db), db: db}
}

var _ EventRepository = (*GormEventRepository)(nil)

func (r *GormEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.Records.Delete(ctx, id)
}

func (r *GormEventRepository) List(ctx context.Context, from *time.Time) ([]models.Event, error) {
	scope := NoScope
	if from != nil {
		scope = ScopeFunc(func(db *gorm.DB) *gorm.DB { return db.Where("end_date >= ?", *from) })
	}
	events, _, err := r.Records.List(ctx, scope, "start_date asc", 0, 0)
	return events, err
}

func (r *GormEventRepository) DueForReminder(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := r.db.WithContext(ctx).
		Where("start_date >= ? AND start_date < ?", from, to).
		Where("reminder_sent_at IS NULL").
		Order("start_date asc").
		Find(&events).Error
	return events, err
}

func (r *GormEventRepository) ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		Update("reminder_sent_at", at)
	return result.RowsAffected == 1, result.Error
}
