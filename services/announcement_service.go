package services

import (
	"context"
	"strings"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/metrics"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var errAnnouncementNotFound = apperrors.NotFound("Announcement")

// AnnouncementInput carries the fields of a create or update. On update a
// nil field keeps its stored value.
type AnnouncementInput struct {
	Title       *string
	Content     *string
	Type        *models.AnnouncementType
	TargetRoles []string
	ExpiresAt   *time.Time
	// ClearExpiry removes a stored expiry; ExpiresAt wins when both are set.
	ClearExpiry bool
}

type AnnouncementService struct {
	announcements repositories.AnnouncementRepository
	log           zerolog.Logger
	now           func() time.Time
}

func NewAnnouncementService(announcements repositories.AnnouncementRepository, log zerolog.Logger) *AnnouncementService {
	return &AnnouncementService{announcements: announcements, log: log, now: utcNow}
}

func (s *AnnouncementService) WithClock(now func() time.Time) *AnnouncementService {
	s.now = now
	return s
}

// List returns the page of announcements visible to the viewer's role.
func (s *AnnouncementService) List(ctx context.Context, viewer models.Identity, search string, page utils.Page) ([]models.Announcement, utils.Pagination, error) {
	filter := repositories.AnnouncementFilter{
		Role:   viewer.Role,
		Now:    s.now(),
		Search: strings.TrimSpace(search),
	}
	items, total, err := s.announcements.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, utils.Pagination{}, apperrors.Internal(err)
	}
	return items, utils.NewPagination(page, total), nil
}

// Get returns one announcement. Viewers who cannot manage announcements only
// see the ones the list would show them.
func (s *AnnouncementService) Get(ctx context.Context, viewer models.Identity, id uuid.UUID) (*models.Announcement, error) {
	a, err := s.announcements.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, errAnnouncementNotFound)
	}
	if !viewer.Can(models.CapManageAnnouncements) && !a.VisibleTo(viewer.Role, s.now()) {
		return nil, errAnnouncementNotFound
	}
	return a, nil
}

func (s *AnnouncementService) Create(ctx context.Context, caller models.Identity, in AnnouncementInput) (*models.Announcement, error) {
	if err := authorize(caller, models.CapManageAnnouncements); err != nil {
		return nil, err
	}

	a := &models.Announcement{
		Base:      models.Base{ID: uuid.New()},
		Type:      models.AnnouncementInfo,
		CreatedBy: caller.UserID,
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apperrors.Invalid("Title is required")
	}
	if in.Content == nil || strings.TrimSpace(*in.Content) == "" {
		return nil, apperrors.Invalid("Content is required")
	}
	targets := in.TargetRoles
	if len(targets) == 0 {
		targets = []string{models.TargetAll}
	}
	if err := s.apply(a, in, targets); err != nil {
		return nil, err
	}

	now := s.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, apperrors.Internal(err)
	}
	metrics.AnnouncementsPublished.Inc()
	s.log.Info().Str("announcement_id", a.ID.String()).Strs("target_roles", a.TargetRoles()).Msg("Announcement published")
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, caller models.Identity, id uuid.UUID, in AnnouncementInput) (*models.Announcement, error) {
	if err := authorize(caller, models.CapManageAnnouncements); err != nil {
		return nil, err
	}

	a, err := s.announcements.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, errAnnouncementNotFound)
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperrors.Invalid("Title cannot be empty")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, apperrors.Invalid("Content cannot be empty")
	}
	targets := in.TargetRoles
	if targets == nil {
		targets = a.TargetRoles()
	}
	if err := s.apply(a, in, targets); err != nil {
		return nil, err
	}
	a.UpdatedAt = s.now()

	if err := s.announcements.Update(ctx, a); err != nil {
		return nil, storeErr(err, errAnnouncementNotFound)
	}
	return a, nil
}

func (s *AnnouncementService) apply(a *models.Announcement, in AnnouncementInput, targets []string) error {
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		a.Content = strings.TrimSpace(*in.Content)
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return apperrors.Invalid("Invalid announcement type")
		}
		a.Type = *in.Type
	}
	if in.ExpiresAt != nil {
		expires := in.ExpiresAt.UTC()
		a.ExpiresAt = &expires
	} else if in.ClearExpiry {
		a.ExpiresAt = nil
	}

	normalized := make([]string, 0, len(targets))
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == models.TargetAll {
			normalized = append(normalized, t)
			continue
		}
		role, ok := models.ParseRole(t)
		if !ok {
			return apperrors.Invalid("Invalid target role: " + t)
		}
		normalized = append(normalized, string(role))
	}
	if len(normalized) == 0 {
		return apperrors.Invalid("At least one target role is required")
	}
	a.SetTargetRoles(lo.Uniq(normalized))
	return nil
}

func (s *AnnouncementService) Delete(ctx context.Context, caller models.Identity, id uuid.UUID) error {
	if err := authorize(caller, models.CapManageAnnouncements); err != nil {
		return err
	}
	return storeErr(s.announcements.Delete(ctx, id), errAnnouncementNotFound)
}
