package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/school_admin/jobs"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

type broadcast struct {
	userIDs  []uuid.UUID
	typ      models.NotificationType
	title    string
	message  string
	metadata map[string]any
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []broadcast
}

func (n *recordingNotifier) Broadcast(_ context.Context, userIDs []uuid.UUID, typ models.NotificationType, title, message string, metadata map[string]any) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, broadcast{userIDs: userIDs, typ: typ, title: title, message: message, metadata: metadata})
	return len(userIDs), nil
}

func createUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()
	u := models.User{Name: string(role), Email: uuid.NewString() + "@school.test", Password: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestEventReminder_SendsOncePerEvent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	parent := createUser(t, db, models.RoleParent)
	events := repositories.NewEventRepository(db)

	hall := "Main hall"
	soon := &models.Event{Title: "Prize giving", StartDate: t0.Add(62 * time.Minute), Location: &hall, CreatedBy: admin.ID}
	later := &models.Event{Title: "Concert", StartDate: t0.Add(3 * time.Hour), CreatedBy: admin.ID}
	require.NoError(t, events.Create(ctx, soon))
	require.NoError(t, events.Create(ctx, later))

	notifier := &recordingNotifier{}
	job := jobs.NewEventReminder(events, repositories.NewUserRepository(db), notifier, zerolog.Nop()).
		WithClock(func() time.Time { return t0 })

	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))

	require.Len(t, notifier.calls, 1)
	call := notifier.calls[0]
	require.ElementsMatch(t, []uuid.UUID{admin.ID, parent.ID}, call.userIDs)
	require.Equal(t, models.NotificationInfo, call.typ)
	require.Equal(t, "Reminder: Prize giving starts in 1 hour", call.title)
	require.Equal(t, "Prize giving starts at 4:02PM UTC in Main hall.", call.message)
	require.Equal(t, soon.ID.String(), call.metadata["eventId"])
}

func TestAbsenceAlert_NotifiesLinkedParents(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	teacher := createUser(t, db, models.RoleTeacher)
	parentUser := createUser(t, db, models.RoleParent)

	amina := models.Student{Name: "Amina", RollNumber: "R-1"}
	brian := models.Student{Name: "Brian", RollNumber: "R-2"}
	require.NoError(t, db.Create(&amina).Error)
	require.NoError(t, db.Create(&brian).Error)

	require.NoError(t, db.Create(&models.Parent{
		Name:     "Linked",
		UserID:   &parentUser.ID,
		Children: datatypes.JSONSlice[string]{amina.ID.String(), brian.ID.String()},
	}).Error)
	require.NoError(t, db.Create(&models.Parent{
		Name:     "No account",
		Children: datatypes.JSONSlice[string]{amina.ID.String()},
	}).Error)

	for _, rec := range []models.AttendanceRecord{
		{StudentID: amina.ID, Date: t0.Add(-6 * time.Hour), Status: models.AttendanceAbsent, MarkedBy: teacher.ID},
		{StudentID: brian.ID, Date: t0.Add(-6 * time.Hour), Status: models.AttendancePresent, MarkedBy: teacher.ID},
		{StudentID: brian.ID, Date: t0.AddDate(0, 0, -1), Status: models.AttendanceAbsent, MarkedBy: teacher.ID},
	} {
		require.NoError(t, db.Create(&rec).Error)
	}

	notifier := &recordingNotifier{}
	job := jobs.NewAbsenceAlert(db, notifier, zerolog.Nop()).WithClock(func() time.Time { return t0 })
	require.NoError(t, job.Run(ctx))

	require.Len(t, notifier.calls, 1)
	call := notifier.calls[0]
	require.Equal(t, []uuid.UUID{parentUser.ID}, call.userIDs)
	require.Equal(t, models.NotificationAttendance, call.typ)
	require.Equal(t, "Amina was marked absent on 2025-03-10.", call.message)
	require.Equal(t, amina.ID.String(), call.metadata["studentId"])
}

type countingJob struct {
	runs chan struct{}
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs <- struct{}{}
	return nil
}

func TestScheduler_RunsAndStops(t *testing.T) {
	scheduler := jobs.NewScheduler(zerolog.Nop())
	job := &countingJob{runs: make(chan struct{}, 4)}
	require.NoError(t, scheduler.Add("@every 1s", job))
	require.Error(t, scheduler.Add("not a schedule", job))

	scheduler.Start()
	select {
	case <-job.runs:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	scheduler.Stop(ctx)
	require.NoError(t, ctx.Err())
}
