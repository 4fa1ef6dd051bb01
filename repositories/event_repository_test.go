package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestEventReminderWindow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewEventRepository(db)
	admin := createUser(t, db, "Admin", models.RoleAdmin)

	event := func(title string, start time.Time) *models.Event {
		e := &models.Event{Title: title, StartDate: start, EndDate: start.Add(time.Hour), Type: models.EventOther, CreatedBy: admin.ID}
		require.NoError(t, repo.Create(ctx, e))
		return e
	}
	from := t0.Add(time.Hour)
	inside := event("inside", from.Add(2*time.Minute))
	event("edge", from.Add(5*time.Minute))
	event("early", from.Add(-time.Minute))

	due, err := repo.DueForReminder(ctx, from, from.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, inside.ID, due[0].ID)

	claimed, err := repo.ClaimReminder(ctx, inside.ID, t0)
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = repo.ClaimReminder(ctx, inside.ID, t0)
	require.NoError(t, err)
	require.False(t, claimed)

	due, err = repo.DueForReminder(ctx, from, from.Add(5*time.Minute))
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestEventListFrom(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewEventRepository(db)
	admin := createUser(t, db, "Admin", models.RoleAdmin)

	for _, e := range []*models.Event{
		{Title: "later", StartDate: t0.AddDate(0, 0, 2), EndDate: t0.AddDate(0, 0, 2), CreatedBy: admin.ID},
		{Title: "finished", StartDate: t0.AddDate(0, 0, -3), EndDate: t0.AddDate(0, 0, -2), CreatedBy: admin.ID},
		{Title: "ongoing", StartDate: t0.AddDate(0, 0, -1), EndDate: t0.AddDate(0, 0, 1), CreatedBy: admin.ID},
	} {
		require.NoError(t, repo.Create(ctx, e))
	}

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "finished", all[0].Title)

	upcoming, err := repo.List(ctx, &t0)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	require.Equal(t, "ongoing", upcoming[0].Title)
	require.Equal(t, "later", upcoming[1].Title)
}

func TestRecordFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	teacher := createUser(t, db, "Teacher", models.RoleTeacher)

	students := repositories.NewRecords[models.Student](db)
	ann := &models.Student{Name: "Ann Okoth", RollNumber: "R-1", Class: "Grade 4"}
	ben := &models.Student{Name: "Ben Mwangi", RollNumber: "R-2", Class: "Grade 5"}
	require.NoError(t, students.Create(ctx, ann))
	require.NoError(t, students.Create(ctx, ben))

	found, total, err := students.List(ctx, repositories.StudentFilter{Search: "grade 5"}, "name asc", 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, ben.ID, found[0].ID)

	attendance := repositories.NewRecords[models.AttendanceRecord](db)
	for _, rec := range []*models.AttendanceRecord{
		{StudentID: ann.ID, Date: t0, Status: models.AttendancePresent, MarkedBy: teacher.ID},
		{StudentID: ann.ID, Date: t0.AddDate(0, 0, 1), Status: models.AttendanceAbsent, MarkedBy: teacher.ID},
		{StudentID: ben.ID, Date: t0, Status: models.AttendanceLate, MarkedBy: teacher.ID},
	} {
		require.NoError(t, attendance.Create(ctx, rec))
	}

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	onDay, _, err := attendance.List(ctx, repositories.AttendanceFilter{Day: &day}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, onDay, 2)

	annOnDay, _, err := attendance.List(ctx, repositories.AttendanceFilter{StudentID: &ann.ID, Day: &day}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, annOnDay, 1)
	require.Equal(t, models.AttendancePresent, annOnDay[0].Status)

	absent, err := attendance.Count(ctx, repositories.All(
		repositories.Where("status", models.AttendanceAbsent),
		repositories.DateRange{Column: "date", From: day, To: day.AddDate(0, 0, 2)},
	))
	require.NoError(t, err)
	require.EqualValues(t, 1, absent)

	finance := repositories.NewRecords[models.FinanceRecord](db)
	for _, rec := range []*models.FinanceRecord{
		{Type: models.FinanceIncome, Amount: 500, Date: t0, CreatedBy: teacher.ID},
		{Type: models.FinanceExpense, Amount: 120, Date: t0, CreatedBy: teacher.ID},
		{Type: models.FinanceIncome, Amount: 75, Date: t0.AddDate(-1, 0, 0), CreatedBy: teacher.ID},
	} {
		require.NoError(t, finance.Create(ctx, rec))
	}

	income := models.FinanceIncome
	thisYear, _, err := finance.List(ctx, repositories.FinanceFilter{Type: &income, Year: 2025}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, thisYear, 1)
	require.Equal(t, 500.0, thisYear[0].Amount)
}

func TestProfileUpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewProfileRepository(db)
	user := createUser(t, db, "Grace", models.RoleParent)

	_, err := repo.FindByUser(ctx, user.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, &models.Profile{
		UserID:       user.ID,
		PersonalInfo: datatypes.JSONMap{"nickname": "G"},
	}))
	require.NoError(t, repo.Upsert(ctx, &models.Profile{
		UserID:       user.ID,
		PersonalInfo: datatypes.JSONMap{"nickname": "Gee"},
		ContactInfo:  datatypes.JSONMap{"phone": "0700"},
	}))

	var rows int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&rows).Error)
	require.EqualValues(t, 1, rows)

	p, err := repo.FindByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Gee", p.PersonalInfo["nickname"])
	require.Equal(t, "0700", p.ContactInfo["phone"])
}
