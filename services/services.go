// Package services holds the application logic behind the HTTP handlers.
// Services receive their stores and collaborators at construction and never
// reach for package-level state.
package services

//go:generate go run go.uber.org/mock/mockgen -source=services.go -destination=../mocks/mock_publisher.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/google/uuid"
)

// Publisher pushes a realtime event to the given users.
type Publisher interface {
	Publish(ctx context.Context, recipients []uuid.UUID, event string, payload any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, []uuid.UUID, string, any) error { return nil }

// NopPublisher discards every event.
var NopPublisher Publisher = nopPublisher{}

func utcNow() time.Time { return time.Now().UTC() }

// storeErr classifies a repository error, turning a missing row into
// notFound and anything unexpected into an internal error.
func storeErr(err error, notFound *apperrors.Error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return notFound
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.Wrap(apperrors.KindConflict, "Record already exists", err)
	default:
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.Internal(err)
	}
}

func authorize(id models.Identity, c models.Capability) error {
	if !id.Can(c) {
		return apperrors.ErrForbidden
	}
	return nil
}
