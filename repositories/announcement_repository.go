package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter AnnouncementFilter, offset, limit int) ([]models.Announcement, int64, error)
}

// AnnouncementFilter selects announcements visible to Role at Now, optionally
// narrowed by a case-insensitive substring Search over title or content.
type AnnouncementFilter struct {
	Role   models.Role
	Now    time.Time
	Search string
}

func (f AnnouncementFilter) Apply(db *gorm.DB) *gorm.DB {
	audience := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.AnnouncementTarget{}).
		Select("1").
		Where("announcement_targets.announcement_id = announcements.id").
		Where("announcement_targets.role IN ?", []string{string(f.Role), models.TargetAll})

	db = db.Where("EXISTS (?)", audience).
		Where("(announcements.expires_at IS NULL OR announcements.expires_at > ?)", f.Now)

	if f.Search != "" {
		pattern := likePattern(f.Search)
		db = db.Where("(LOWER(announcements.title) LIKE ? ESCAPE '\\' OR LOWER(announcements.content) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	return db
}

type GormAnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *GormAnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

var _ AnnouncementRepository = (*GormAnnouncementRepository)(nil)

func (r *GormAnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targets := a.Targets
		if err := tx.Omit("Targets").Create(a).Error; err != nil {
			return translate(err)
		}
		return replaceTargets(tx, a, targets)
	})
}

func (r *GormAnnouncementRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	var a models.Announcement
	if err := r.db.WithContext(ctx).Preload("Targets").First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *GormAnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targets := a.Targets
		result := tx.Model(a).Select("title", "content", "type", "expires_at", "updated_at").Updates(map[string]any{
			"title":      a.Title,
			"content":    a.Content,
			"type":       a.Type,
			"expires_at": a.ExpiresAt,
			"updated_at": a.UpdatedAt,
		})
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("announcement_id = ?", a.ID).Delete(&models.AnnouncementTarget{}).Error; err != nil {
			return err
		}
		return replaceTargets(tx, a, targets)
	})
}

func replaceTargets(tx *gorm.DB, a *models.Announcement, targets []models.AnnouncementTarget) error {
	for i := range targets {
		targets[i].AnnouncementID = a.ID
	}
	a.Targets = targets
	if len(targets) == 0 {
		return nil
	}
	return tx.Create(&targets).Error
}

func (r *GormAnnouncementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Announcement{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("announcement_id = ?", id).Delete(&models.AnnouncementTarget{}).Error
	})
}

func (r *GormAnnouncementRepository) List(ctx context.Context, filter AnnouncementFilter, offset, limit int) ([]models.Announcement, int64, error) {
	var total int64
	if err := filter.Apply(r.db.WithContext(ctx).Model(&models.Announcement{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	announcements := make([]models.Announcement, 0)
	q := filter.Apply(r.db.WithContext(ctx).Preload("Targets")).Order("announcements.created_at desc")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&announcements).Error; err != nil {
		return nil, 0, err
	}
	return announcements, total, nil
}
