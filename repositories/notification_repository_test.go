package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Inbox(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewNotificationRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", models.RoleTeacher)
	bob := createUser(t, db, "Bob", models.RoleStudent)

	expired := t0.Add(-time.Minute)
	inbox := []models.Notification{
		{Base: models.Base{CreatedAt: t0.Add(-3 * time.Hour)}, UserID: alice.ID, Type: models.NotificationInfo, Title: "oldest", Message: "m"},
		{Base: models.Base{CreatedAt: t0.Add(-2 * time.Hour)}, UserID: alice.ID, Type: models.NotificationMessage, Title: "middle", Message: "m", Read: true},
		{Base: models.Base{CreatedAt: t0.Add(-time.Hour)}, UserID: alice.ID, Type: models.NotificationWarning, Title: "newest", Message: "m"},
		{Base: models.Base{CreatedAt: t0.Add(-time.Hour)}, UserID: alice.ID, Type: models.NotificationInfo, Title: "stale", Message: "m", ExpiresAt: &expired},
		{Base: models.Base{CreatedAt: t0}, UserID: bob.ID, Type: models.NotificationInfo, Title: "bob's", Message: "m"},
	}
	require.NoError(t, repo.CreateBatch(ctx, inbox))

	all, err := repo.List(ctx, repositories.NotificationFilter{UserID: alice.ID, Now: t0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "newest", all[0].Title)
	require.Equal(t, "oldest", all[2].Title)

	unread, err := repo.List(ctx, repositories.NotificationFilter{UserID: alice.ID, Now: t0, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 2)

	count, err := repo.CountUnread(ctx, alice.ID, t0)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// Another user's notification cannot be touched.
	require.ErrorIs(t, repo.SetRead(ctx, inbox[4].ID, alice.ID, true), repositories.ErrNotFound)
	require.ErrorIs(t, repo.SetRead(ctx, uuid.New(), alice.ID, true), repositories.ErrNotFound)
	require.NoError(t, repo.SetRead(ctx, inbox[1].ID, alice.ID, false))

	changed, err := repo.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 4, changed)

	count, err = repo.CountUnread(ctx, alice.ID, t0)
	require.NoError(t, err)
	require.Zero(t, count)
	count, err = repo.CountUnread(ctx, bob.ID, t0)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestUserRepository_Search(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()

	caller := models.User{Name: "Jane Admin", Email: "jane@school.test", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, &caller))
	for _, u := range []models.User{
		{Name: "Janet Teacher", Email: "janet@school.test", Role: models.RoleTeacher},
		{Name: "Bob Jan_son", Email: "bob@school.test", Role: models.RoleStudent},
		{Name: "Carol", Email: "carol.jane@school.test", Role: models.RoleParent},
	} {
		u.Password = "x"
		require.NoError(t, repo.Create(ctx, &u))
	}

	found, err := repo.Search(ctx, repositories.UserSearchFilter{Query: "JAN", Exclude: caller.ID})
	require.NoError(t, err)
	require.Len(t, found, 3)
	require.Equal(t, "Bob Jan_son", found[0].Name)

	teacher := models.RoleTeacher
	found, err = repo.Search(ctx, repositories.UserSearchFilter{Query: "jan", Exclude: caller.ID, Role: &teacher})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Janet Teacher", found[0].Name)

	// The underscore is matched literally, not as a wildcard.
	found, err = repo.Search(ctx, repositories.UserSearchFilter{Query: "jan_"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	dup := models.User{Name: "Dup", Email: "jane@school.test", Password: "x", Role: models.RoleStudent}
	require.ErrorIs(t, repo.Create(ctx, &dup), repositories.ErrDuplicate)
}

func TestUserRepository_FindByEmailIgnoresCase(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()

	legacy := models.User{Name: "Legacy", Email: "Legacy.User@School.test", Password: "x", Role: models.RoleParent}
	require.NoError(t, repo.Create(ctx, &legacy))

	found, err := repo.FindByEmail(ctx, "legacy.user@school.test")
	require.NoError(t, err)
	require.Equal(t, legacy.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@school.test")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}
