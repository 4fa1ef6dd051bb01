package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/services"
	"github.com/anjiri1684/school_admin/testutil"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newAnnouncements(t *testing.T) (*services.AnnouncementService, *testutil.Clock, models.Identity) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(t0, 0)
	svc := services.NewAnnouncementService(repositories.NewAnnouncementRepository(db), zerolog.Nop()).WithClock(clock.Now)
	return svc, clock, createUser(t, db, "Principal", models.RoleAdmin)
}

func TestAnnouncement_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, admin := newAnnouncements(t)

	created, err := svc.Create(ctx, admin, services.AnnouncementInput{
		Title:       lo.ToPtr(" Sports day "),
		Content:     lo.ToPtr("Bring your kit"),
		Type:        lo.ToPtr(models.AnnouncementSuccess),
		TargetRoles: []string{"Student", "parent", "student"},
	})
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, admin, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Sports day", fetched.Title)
	require.Equal(t, "Bring your kit", fetched.Content)
	require.Equal(t, models.AnnouncementSuccess, fetched.Type)
	require.ElementsMatch(t, []string{"student", "parent"}, fetched.TargetRoles())
	require.Equal(t, admin.UserID, fetched.CreatedBy)
}

func TestAnnouncement_HolidayScenario(t *testing.T) {
	ctx := context.Background()
	svc, clock, admin := newAnnouncements(t)
	parent := models.Identity{Role: models.RoleParent}
	page := utils.Page{Page: 1, Limit: 10}

	holiday, err := svc.Create(ctx, admin, services.AnnouncementInput{
		Title:       lo.ToPtr("Holiday"),
		Content:     lo.ToPtr("No classes"),
		Type:        lo.ToPtr(models.AnnouncementInfo),
		TargetRoles: []string{models.TargetAll},
	})
	require.NoError(t, err)

	items, pagination, err := svc.List(ctx, parent, "", page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 1, pagination.Total)

	items, _, err = svc.List(ctx, parent, "HOLIDAY", page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, holiday.ID, items[0].ID)

	yesterday := t0.AddDate(0, 0, -1)
	_, err = svc.Update(ctx, admin, holiday.ID, services.AnnouncementInput{ExpiresAt: &yesterday})
	require.NoError(t, err)

	items, _, err = svc.List(ctx, parent, "", page)
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = svc.Get(ctx, parent, holiday.ID)
	require.ErrorIs(t, err, apperrors.NotFound("Announcement"))

	clock.Set(yesterday.Add(-time.Hour))
	items, _, err = svc.List(ctx, parent, "", page)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAnnouncement_ClearExpiryRestoresVisibility(t *testing.T) {
	ctx := context.Background()
	svc, _, admin := newAnnouncements(t)
	parent := models.Identity{Role: models.RoleParent}
	page := utils.Page{Page: 1, Limit: 20}

	yesterday := t0.AddDate(0, 0, -1)
	closure, err := svc.Create(ctx, admin, services.AnnouncementInput{
		Title:       lo.ToPtr("Early closure"),
		Content:     lo.ToPtr("School closes at noon"),
		TargetRoles: []string{models.TargetAll},
		ExpiresAt:   &yesterday,
	})
	require.NoError(t, err)

	items, _, err := svc.List(ctx, parent, "", page)
	require.NoError(t, err)
	require.Empty(t, items)

	updated, err := svc.Update(ctx, admin, closure.ID, services.AnnouncementInput{ClearExpiry: true})
	require.NoError(t, err)
	require.Nil(t, updated.ExpiresAt)

	items, _, err = svc.List(ctx, parent, "", page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Nil(t, items[0].ExpiresAt)

	// A plain update keeps whatever expiry is stored.
	tomorrow := t0.AddDate(0, 0, 1)
	_, err = svc.Update(ctx, admin, closure.ID, services.AnnouncementInput{ExpiresAt: &tomorrow})
	require.NoError(t, err)
	kept, err := svc.Update(ctx, admin, closure.ID, services.AnnouncementInput{Title: lo.ToPtr("Early closure today")})
	require.NoError(t, err)
	require.NotNil(t, kept.ExpiresAt)
	require.True(t, tomorrow.Equal(*kept.ExpiresAt))
}

func TestAnnouncement_RoleVisibility(t *testing.T) {
	ctx := context.Background()
	svc, _, admin := newAnnouncements(t)
	page := utils.Page{Page: 1, Limit: 10}

	forTeachers, err := svc.Create(ctx, admin, services.AnnouncementInput{
		Title:       lo.ToPtr("Staff meeting"),
		Content:     lo.ToPtr("Room 4"),
		TargetRoles: []string{"teacher"},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, services.AnnouncementInput{
		Title:   lo.ToPtr("Term dates"),
		Content: lo.ToPtr("Published"),
	})
	require.NoError(t, err)

	student := models.Identity{Role: models.RoleStudent}
	items, _, err := svc.List(ctx, student, "", page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Term dates", items[0].Title)
	for _, item := range items {
		roles := item.TargetRoles()
		require.True(t, lo.Contains(roles, "student") || lo.Contains(roles, models.TargetAll))
	}

	_, err = svc.Get(ctx, student, forTeachers.ID)
	require.ErrorIs(t, err, apperrors.NotFound("Announcement"))

	teacher := models.Identity{Role: models.RoleTeacher}
	items, _, err = svc.List(ctx, teacher, "", page)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestAnnouncement_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, _, admin := newAnnouncements(t)
	student := models.Identity{Role: models.RoleStudent}

	_, err := svc.Create(ctx, student, services.AnnouncementInput{Title: lo.ToPtr("x"), Content: lo.ToPtr("y")})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	tests := []struct {
		name string
		in   services.AnnouncementInput
	}{
		{"missing title", services.AnnouncementInput{Content: lo.ToPtr("y")}},
		{"blank content", services.AnnouncementInput{Title: lo.ToPtr("x"), Content: lo.ToPtr("  ")}},
		{"unknown type", services.AnnouncementInput{Title: lo.ToPtr("x"), Content: lo.ToPtr("y"), Type: lo.ToPtr(models.AnnouncementType("urgent"))}},
		{"unknown role", services.AnnouncementInput{Title: lo.ToPtr("x"), Content: lo.ToPtr("y"), TargetRoles: []string{"janitor"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, admin, tt.in)
			require.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
		})
	}

	a, err := svc.Create(ctx, admin, services.AnnouncementInput{Title: lo.ToPtr("x"), Content: lo.ToPtr("y")})
	require.NoError(t, err)
	_, err = svc.Update(ctx, admin, a.ID, services.AnnouncementInput{TargetRoles: []string{}})
	require.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))

	require.ErrorIs(t, svc.Delete(ctx, student, a.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin, a.ID))
	require.ErrorIs(t, svc.Delete(ctx, admin, a.ID), apperrors.NotFound("Announcement"))
}
