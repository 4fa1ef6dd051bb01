package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/testutil"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func announcement(title string, created time.Time, expires *time.Time, roles ...string) *models.Announcement {
	a := &models.Announcement{
		Base:      models.Base{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		Title:     title,
		Content:   title + " body",
		Type:      models.AnnouncementInfo,
		CreatedBy: uuid.New(),
		ExpiresAt: expires,
	}
	a.SetTargetRoles(roles)
	return a
}

func titles(items []models.Announcement) []string {
	return lo.Map(items, func(a models.Announcement, _ int) string { return a.Title })
}

func TestAnnouncementFilter_AudienceAndExpiry(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewAnnouncementRepository(db)
	ctx := context.Background()

	past := t0.Add(-time.Hour)
	future := t0.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, announcement("everyone", t0.Add(-4*time.Hour), nil, models.TargetAll)))
	require.NoError(t, repo.Create(ctx, announcement("teachers only", t0.Add(-3*time.Hour), nil, "teacher")))
	require.NoError(t, repo.Create(ctx, announcement("students and parents", t0.Add(-2*time.Hour), &future, "student", "parent")))
	require.NoError(t, repo.Create(ctx, announcement("expired", t0.Add(-time.Minute), &past, models.TargetAll)))

	items, total, err := repo.List(ctx, repositories.AnnouncementFilter{Role: models.RoleStudent, Now: t0}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, []string{"students and parents", "everyone"}, titles(items))

	items, total, err = repo.List(ctx, repositories.AnnouncementFilter{Role: models.RoleTeacher, Now: t0}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, []string{"teachers only", "everyone"}, titles(items))

	// The same announcement disappears once its expiry passes.
	items, _, err = repo.List(ctx, repositories.AnnouncementFilter{Role: models.RoleParent, Now: future}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"everyone"}, titles(items))
}

func TestAnnouncementFilter_SearchAndPaging(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewAnnouncementRepository(db)
	ctx := context.Background()

	for i, title := range []string{"Sports Day", "Exam timetable", "sports kit reminder", "100% attendance"} {
		require.NoError(t, repo.Create(ctx, announcement(title, t0.Add(time.Duration(i)*time.Minute), nil, models.TargetAll)))
	}

	items, total, err := repo.List(ctx, repositories.AnnouncementFilter{Role: models.RoleStudent, Now: t0, Search: "SPORTS"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, []string{"sports kit reminder", "Sports Day"}, titles(items))

	items, _, err = repo.List(ctx, repositories.AnnouncementFilter{Role: models.RoleStudent, Now: t0, Search: "100%"}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"100% attendance"}, titles(items))

	items, total, err = repo.List(ctx, repositories.AnnouncementFilter{Role: models.RoleStudent, Now: t0}, 2, 2)
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Equal(t, []string{"Exam timetable", "Sports Day"}, titles(items))
}

func TestAnnouncementRepository_UpdateReplacesTargets(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewAnnouncementRepository(db)
	ctx := context.Background()

	a := announcement("Staff meeting", t0, nil, "teacher")
	require.NoError(t, repo.Create(ctx, a))

	a.Title = "Staff and parents meeting"
	a.SetTargetRoles([]string{"teacher", "parent"})
	require.NoError(t, repo.Update(ctx, a))

	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Staff and parents meeting", stored.Title)
	require.ElementsMatch(t, []string{"teacher", "parent"}, stored.TargetRoles())

	missing := announcement("ghost", t0, nil, models.TargetAll)
	require.ErrorIs(t, repo.Update(ctx, missing), repositories.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.FindByID(ctx, a.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, a.ID), repositories.ErrNotFound)

	var targets int64
	require.NoError(t, db.Model(&models.AnnouncementTarget{}).Count(&targets).Error)
	require.Zero(t, targets)
}
