package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

const (
	minSearchQueryLen = 2
	maxSearchResults  = 10
)

type UserService struct {
	users    repositories.UserRepository
	profiles repositories.ProfileRepository
	now      func() time.Time
}

func NewUserService(users repositories.UserRepository, profiles repositories.ProfileRepository) *UserService {
	return &UserService{users: users, profiles: profiles, now: utcNow}
}

// Search finds other users by name or email. Queries shorter than two
// characters match nothing; role "all" or "" disables the role filter.
func (s *UserService) Search(ctx context.Context, caller models.Identity, query, role string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQueryLen {
		return []models.UserSummary{}, nil
	}

	filter := repositories.UserSearchFilter{
		Query:   query,
		Exclude: caller.UserID,
		Limit:   maxSearchResults,
	}
	if role != "" && role != models.TargetAll {
		r, ok := models.ParseRole(role)
		if !ok {
			return nil, apperrors.Invalid("Invalid role")
		}
		filter.Role = &r
	}

	users, err := s.users.Search(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return lo.Map(users, func(u models.User, _ int) models.UserSummary { return u.Summary() }), nil
}

type ProfileInput struct {
	Name             *string
	Email            *string
	PersonalInfo     map[string]any
	ContactInfo      map[string]any
	EmergencyContact map[string]any
	Preferences      map[string]any
	Avatar           *string
}

// GetProfile returns the caller's account and profile; profile is nil until
// the first save.
func (s *UserService) GetProfile(ctx context.Context, caller models.Identity) (*models.User, *models.Profile, error) {
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, nil, storeErr(err, apperrors.ErrUserNotFound)
	}
	profile, err := s.profiles.FindByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return user, nil, nil
		}
		return nil, nil, apperrors.Internal(err)
	}
	return user, profile, nil
}

// SaveProfile updates the account basics that were provided and replaces the
// profile sections wholesale.
func (s *UserService) SaveProfile(ctx context.Context, caller models.Identity, in ProfileInput) (*models.Profile, error) {
	var name, email *string
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		trimmed := strings.TrimSpace(*in.Name)
		name = &trimmed
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		lowered := strings.ToLower(strings.TrimSpace(*in.Email))
		email = &lowered
	}
	if err := s.users.UpdateBasics(ctx, caller.UserID, name, email); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrUserExists
		}
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}

	now := s.now()
	profile := &models.Profile{
		Base:             models.Base{CreatedAt: now, UpdatedAt: now},
		UserID:           caller.UserID,
		PersonalInfo:     jsonDoc(in.PersonalInfo),
		ContactInfo:      jsonDoc(in.ContactInfo),
		EmergencyContact: jsonDoc(in.EmergencyContact),
		Preferences:      jsonDoc(in.Preferences),
		Avatar:           in.Avatar,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, apperrors.Internal(err)
	}
	stored, err := s.profiles.FindByUser(ctx, caller.UserID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stored, nil
}

func jsonDoc(m map[string]any) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}
