package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// AbsenceAlert tells linked parents which of their children were marked
// absent today. It is meant to run once a day after classes end.
type AbsenceAlert struct {
	attendance *repositories.Records[models.AttendanceRecord]
	students   *repositories.Records[models.Student]
	parents    *repositories.Records[models.Parent]
	notifier   Notifier
	log        zerolog.Logger
	now        func() time.Time
}

func NewAbsenceAlert(db *gorm.DB, notifier Notifier, log zerolog.Logger) *AbsenceAlert {
	return &AbsenceAlert{
		attendance: repositories.NewRecords[models.AttendanceRecord](db),
		students:   repositories.NewRecords[models.Student](db),
		parents:    repositories.NewRecords[models.Parent](db),
		notifier:   notifier,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (j *AbsenceAlert) WithClock(now func() time.Time) *AbsenceAlert {
	j.now = now
	return j
}

func (j *AbsenceAlert) Name() string { return "absence-alert" }

func (j *AbsenceAlert) Run(ctx context.Context) error {
	today := utils.StartOfDay(j.now())
	absences, _, err := j.attendance.List(ctx, repositories.All(
		repositories.Where("status", models.AttendanceAbsent),
		repositories.DateRange{Column: "date", From: today, To: today.AddDate(0, 0, 1)},
	), "", 0, 0)
	if err != nil {
		return fmt.Errorf("find absences: %w", err)
	}
	if len(absences) == 0 {
		return nil
	}

	absent := lo.Uniq(lo.Map(absences, func(r models.AttendanceRecord, _ int) string { return r.StudentID.String() }))
	parents, _, err := j.parents.List(ctx, repositories.ScopeFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id IS NOT NULL")
	}), "", 0, 0)
	if err != nil {
		return fmt.Errorf("list parents: %w", err)
	}

	alerted := 0
	for _, parent := range parents {
		children := lo.Intersect([]string(parent.Children), absent)
		if len(children) == 0 {
			continue
		}
		for _, childID := range children {
			name := childID
			if id, err := uuid.Parse(childID); err == nil {
				if st, err := j.students.FindByID(ctx, id); err == nil {
					name = st.Name
				}
			}
			_, err := j.notifier.Broadcast(ctx, []uuid.UUID{*parent.UserID}, models.NotificationAttendance,
				"Absence recorded",
				fmt.Sprintf("%s was marked absent on %s.", name, today.Format(time.DateOnly)),
				map[string]any{"studentId": childID, "date": today.Format(time.DateOnly)},
			)
			if err != nil {
				return fmt.Errorf("notify parent %s: %w", parent.ID, err)
			}
			alerted++
		}
	}
	j.log.Info().Int("absences", len(absent)).Int("alerts", alerted).Msg("Absence alerts sent")
	return nil
}
