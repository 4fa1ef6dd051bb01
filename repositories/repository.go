// Package repositories holds the narrow query interfaces the services depend
// on and their GORM implementations.
package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Scope narrows a query. Filter structs implement it so callers never build
// ad-hoc condition maps.
type Scope interface {
	Apply(db *gorm.DB) *gorm.DB
}

type ScopeFunc func(db *gorm.DB) *gorm.DB

func (f ScopeFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// NoScope matches every row.
var NoScope = ScopeFunc(func(db *gorm.DB) *gorm.DB { return db })

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// likePattern builds a case-insensitive substring pattern, escaping LIKE
// metacharacters in the user's text.
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// Records is the generic store behind the simple record managers.
type Records[T any] struct {
	db *gorm.DB
}

func NewRecords[T any](db *gorm.DB) *Records[T] {
	return &Records[T]{db: db}
}

func (r *Records[T]) Create(ctx context.Context, record *T) error {
	return translate(r.db.WithContext(ctx).Create(record).Error)
}

func (r *Records[T]) FindByID(ctx context.Context, id any) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *Records[T]) FindOne(ctx context.Context, scope Scope) (*T, error) {
	var record T
	if err := scope.Apply(r.db.WithContext(ctx)).First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *Records[T]) Save(ctx context.Context, record *T) error {
	return translate(r.db.WithContext(ctx).Save(record).Error)
}

func (r *Records[T]) Delete(ctx context.Context, id any) error {
	var record T
	result := r.db.WithContext(ctx).Delete(&record, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the rows matching scope in order, sliced by offset/limit
// (limit <= 0 means no limit), together with the pre-slice total.
func (r *Records[T]) List(ctx context.Context, scope Scope, order string, offset, limit int) ([]T, int64, error) {
	var total int64
	var record T
	if err := scope.Apply(r.db.WithContext(ctx).Model(&record)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := scope.Apply(r.db.WithContext(ctx))
	if order != "" {
		q = q.Order(order)
	}
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	records := make([]T, 0)
	if err := q.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *Records[T]) Count(ctx context.Context, scope Scope) (int64, error) {
	var total int64
	var record T
	err := scope.Apply(r.db.WithContext(ctx).Model(&record)).Count(&total).Error
	return total, err
}
