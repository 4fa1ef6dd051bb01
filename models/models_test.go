package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	require.Equal(t, models.PairKey(a, b), models.PairKey(b, a))
	require.NotEqual(t, models.PairKey(a, b), models.PairKey(a, a))
}

func TestRoleCapabilities(t *testing.T) {
	role, ok := models.ParseRole(" Parent ")
	require.True(t, ok)
	require.Equal(t, models.RoleParent, role)
	_, ok = models.ParseRole("all")
	require.False(t, ok)

	require.True(t, models.RoleAdmin.Can(models.CapManageFinance))
	require.True(t, models.RoleTeacher.Can(models.CapMarkAttendance))
	require.False(t, models.RoleTeacher.Can(models.CapManageStudents))
	require.False(t, models.RoleStudent.Can(models.CapManageAnnouncements))
	require.False(t, models.RoleParent.Can(models.CapViewRoster))
}

func TestAnnouncementVisibleTo(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	a := &models.Announcement{}
	a.SetTargetRoles([]string{"student", "student"})
	require.Equal(t, []string{"student"}, a.TargetRoles())

	require.True(t, a.VisibleTo(models.RoleStudent, now))
	require.False(t, a.VisibleTo(models.RoleParent, now))

	a.SetTargetRoles([]string{models.TargetAll})
	require.True(t, a.VisibleTo(models.RoleParent, now))

	a.ExpiresAt = &now
	require.False(t, a.VisibleTo(models.RoleParent, now))
}

func TestConversationJSON(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	content, name := "hi", "Alice"
	conv := models.Conversation{
		ID: uuid.New(),
		Participants: []models.ConversationParticipant{
			{UserID: a, Name: "Alice", Role: models.RoleTeacher},
			{UserID: b, Name: "Bob", Role: models.RoleParent, UnreadCount: 2},
		},
		LastMessageContent:    &content,
		LastMessageSenderID:   &a,
		LastMessageSenderName: &name,
		LastMessageAt:         &at,
	}

	raw, err := json.Marshal(conv)
	require.NoError(t, err)

	var out struct {
		Participants []map[string]any `json:"participants"`
		LastMessage  map[string]any   `json:"lastMessage"`
		UnreadCount  map[string]int   `json:"unreadCount"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Participants, 2)
	require.NotContains(t, out.Participants[1], "unreadCount")
	require.Equal(t, "hi", out.LastMessage["content"])
	require.Equal(t, map[string]int{a.String(): 0, b.String(): 2}, out.UnreadCount)
	require.True(t, conv.HasParticipant(b))
	require.False(t, conv.HasParticipant(uuid.New()))
}
