package repositories_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	u := models.User{Name: name, Email: uuid.NewString() + "@school.test", Password: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func newConversation(a, b models.User) *models.Conversation {
	return &models.Conversation{
		PairKey:   models.PairKey(a.ID, b.ID),
		CreatedAt: t0,
		UpdatedAt: t0,
		Participants: []models.ConversationParticipant{
			{UserID: a.ID, Name: a.Name, Role: a.Role, JoinedAt: t0},
			{UserID: b.ID, Name: b.Name, Role: b.Role, JoinedAt: t0},
		},
	}
}

func TestCreateIfAbsent_SecondCallReturnsExisting(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewConversationRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", models.RoleTeacher)
	bob := createUser(t, db, "Bob", models.RoleStudent)

	first, created, err := repo.CreateIfAbsent(ctx, newConversation(alice, bob))
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, first.Participants, 2)

	second, created, err := repo.CreateIfAbsent(ctx, newConversation(bob, alice))
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, db.Model(&models.ConversationParticipant{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestCreateIfAbsent_ConcurrentCallersConverge(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewConversationRepository(db)
	alice := createUser(t, db, "Alice", models.RoleTeacher)
	bob := createUser(t, db, "Bob", models.RoleStudent)

	const callers = 8
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := alice, bob
			if i%2 == 1 {
				a, b = bob, alice
			}
			conv, _, err := repo.CreateIfAbsent(context.Background(), newConversation(a, b))
			errs[i] = err
			if err == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}
	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAppend_UpdatesSummaryAndCounters(t *testing.T) {
	db := testutil.NewDB(t)
	conversations := repositories.NewConversationRepository(db)
	messages := repositories.NewMessageRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", models.RoleTeacher)
	bob := createUser(t, db, "Bob", models.RoleStudent)

	conv, _, err := conversations.CreateIfAbsent(ctx, newConversation(alice, bob))
	require.NoError(t, err)

	for i, content := range []string{"first", "second"} {
		msg := &models.Message{
			ConversationID: conv.ID,
			SenderID:       alice.ID,
			SenderName:     alice.Name,
			SenderRole:     alice.Role,
			Content:        content,
			CreatedAt:      t0.Add(time.Duration(i+1) * time.Minute),
		}
		require.NoError(t, messages.Append(ctx, msg))
		require.Equal(t, []uuid.UUID{alice.ID}, msg.ReadBy)
	}

	stored, err := conversations.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]int{alice.ID.String(): 0, bob.ID.String(): 2}, stored.UnreadCount())
	last := stored.LastMessage()
	require.NotNil(t, last)
	require.Equal(t, "second", last.Content)
	require.Equal(t, "Alice", last.SenderName)
	require.True(t, last.CreatedAt.Equal(t0.Add(2*time.Minute)))

	require.NoError(t, conversations.ResetUnread(ctx, conv.ID, bob.ID))
	stored, err = conversations.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.UnreadCount()[bob.ID.String()])
}

func TestAppend_UnknownConversation(t *testing.T) {
	db := testutil.NewDB(t)
	messages := repositories.NewMessageRepository(db)
	alice := createUser(t, db, "Alice", models.RoleTeacher)

	err := messages.Append(context.Background(), &models.Message{
		ConversationID: uuid.New(),
		SenderID:       alice.ID,
		SenderName:     alice.Name,
		SenderRole:     alice.Role,
		Content:        "hello",
		CreatedAt:      t0,
	})
	require.ErrorIs(t, err, repositories.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestMarkRead_IsIdempotentAndSkipsOwnMessages(t *testing.T) {
	db := testutil.NewDB(t)
	conversations := repositories.NewConversationRepository(db)
	messages := repositories.NewMessageRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", models.RoleTeacher)
	bob := createUser(t, db, "Bob", models.RoleStudent)
	conv, _, err := conversations.CreateIfAbsent(ctx, newConversation(alice, bob))
	require.NoError(t, err)

	send := func(from models.User, content string, at time.Time) {
		require.NoError(t, messages.Append(ctx, &models.Message{
			ConversationID: conv.ID,
			SenderID:       from.ID,
			SenderName:     from.Name,
			SenderRole:     from.Role,
			Content:        content,
			CreatedAt:      at,
		}))
	}
	send(alice, "hi bob", t0.Add(time.Minute))
	send(bob, "hi alice", t0.Add(2*time.Minute))
	send(alice, "how are you", t0.Add(3*time.Minute))

	added, err := messages.MarkRead(ctx, conv.ID, bob.ID, t0.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, added)

	added, err = messages.MarkRead(ctx, conv.ID, bob.ID, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Zero(t, added)

	history, err := messages.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "hi bob", history[0].Content)
	require.Equal(t, "how are you", history[2].Content)
	require.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, history[0].ReadBy)
	require.Equal(t, []uuid.UUID{bob.ID}, history[1].ReadBy)
	require.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, history[2].ReadBy)
}

func TestListForUser_NewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	conversations := repositories.NewConversationRepository(db)
	messages := repositories.NewMessageRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", models.RoleTeacher)
	bob := createUser(t, db, "Bob", models.RoleStudent)
	carol := createUser(t, db, "Carol", models.RoleParent)

	withBob, _, err := conversations.CreateIfAbsent(ctx, newConversation(alice, bob))
	require.NoError(t, err)
	withCarol, _, err := conversations.CreateIfAbsent(ctx, newConversation(alice, carol))
	require.NoError(t, err)
	_, _, err = conversations.CreateIfAbsent(ctx, newConversation(bob, carol))
	require.NoError(t, err)

	require.NoError(t, messages.Append(ctx, &models.Message{
		ConversationID: withBob.ID, SenderID: bob.ID, SenderName: bob.Name, SenderRole: bob.Role,
		Content: "latest", CreatedAt: t0.Add(time.Hour),
	}))

	list, err := conversations.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, withBob.ID, list[0].ID)
	require.Equal(t, withCarol.ID, list[1].ID)
	require.Len(t, list[0].Participants, 2)
}
