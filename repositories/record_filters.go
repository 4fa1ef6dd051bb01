package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StudentFilter matches Search against name, roll number, class or section.
type StudentFilter struct {
	Search string
}

func (f StudentFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Search == "" {
		return db
	}
	pattern := likePattern(f.Search)
	return db.Where(
		"(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(roll_number) LIKE ? ESCAPE '\\' OR LOWER(class_name) LIKE ? ESCAPE '\\' OR LOWER(section) LIKE ? ESCAPE '\\')",
		pattern, pattern, pattern, pattern,
	)
}

// AttendanceFilter narrows attendance to a student and/or a single UTC day.
type AttendanceFilter struct {
	StudentID *uuid.UUID
	Day       *time.Time
}

func (f AttendanceFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.StudentID != nil {
		db = db.Where("student_id = ?", *f.StudentID)
	}
	if f.Day != nil {
		start := *f.Day
		db = db.Where("date >= ? AND date < ?", start, start.AddDate(0, 0, 1))
	}
	return db
}

// FinanceFilter narrows finance records by type and calendar year.
type FinanceFilter struct {
	Type *models.FinanceType
	Year int
}

func (f FinanceFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	if f.Year > 0 {
		start := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		db = db.Where("date >= ? AND date < ?", start, start.AddDate(1, 0, 0))
	}
	return db
}

// DateRange matches rows whose date column falls in [From, To).
type DateRange struct {
	Column string
	From   time.Time
	To     time.Time
}

func (r DateRange) Apply(db *gorm.DB) *gorm.DB {
	col := clause.Column{Name: r.Column}
	return db.Where("? >= ? AND ? < ?", col, r.From, col, r.To)
}

// Where wraps a single equality condition as a Scope.
func Where(column string, value any) Scope {
	return ScopeFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	})
}

// All combines scopes left to right.
func All(scopes ...Scope) Scope {
	return ScopeFunc(func(db *gorm.DB) *gorm.DB {
		for _, s := range scopes {
			db = s.Apply(db)
		}
		return db
	})
}

// ProfileRepository upserts the one profile row each user may have.
type ProfileRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}

type GormProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

var _ ProfileRepository = (*GormProfileRepository)(nil)

func (r *GormProfileRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormProfileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"personal_info", "contact_info", "emergency_contact", "preferences", "avatar", "updated_at",
		}),
	}).Create(p).Error
	return translate(err)
}
