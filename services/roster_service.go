package services

import (
	"context"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	errStudentNotFound = apperrors.NotFound("Student")
	errTeacherNotFound = apperrors.NotFound("Teacher")
	errParentNotFound  = apperrors.NotFound("Parent")
)

// recordManager is the capability-checked CRUD shared by the roster records.
type recordManager[T any] struct {
	records  *repositories.Records[T]
	view     models.Capability
	manage   models.Capability
	notFound *apperrors.Error
}

func (m recordManager[T]) get(ctx context.Context, caller models.Identity, id uuid.UUID) (*T, error) {
	if err := authorize(caller, m.view); err != nil {
		return nil, err
	}
	rec, err := m.records.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, m.notFound)
	}
	return rec, nil
}

func (m recordManager[T]) list(ctx context.Context, caller models.Identity, scope repositories.Scope, order string, offset, limit int) ([]T, int64, error) {
	if err := authorize(caller, m.view); err != nil {
		return nil, 0, err
	}
	items, total, err := m.records.List(ctx, scope, order, offset, limit)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return items, total, nil
}

func (m recordManager[T]) create(ctx context.Context, caller models.Identity, rec *T) error {
	if err := authorize(caller, m.manage); err != nil {
		return err
	}
	return storeErr(m.records.Create(ctx, rec), m.notFound)
}

func (m recordManager[T]) save(ctx context.Context, caller models.Identity, rec *T) error {
	if err := authorize(caller, m.manage); err != nil {
		return err
	}
	return storeErr(m.records.Save(ctx, rec), m.notFound)
}

func (m recordManager[T]) delete(ctx context.Context, caller models.Identity, id uuid.UUID) error {
	if err := authorize(caller, m.manage); err != nil {
		return err
	}
	return storeErr(m.records.Delete(ctx, id), m.notFound)
}

type StudentStats struct {
	TotalSubjects        int     `json:"totalSubjects"`
	AttendancePercentage float64 `json:"attendancePercentage"`
	PresentDays          int64   `json:"presentDays"`
	AbsentDays           int64   `json:"absentDays"`
	LateDays             int64   `json:"lateDays"`
}

type StudentOverview struct {
	Student          models.Student            `json:"student"`
	Stats            StudentStats              `json:"stats"`
	UpcomingEvents   []models.Event            `json:"upcomingEvents"`
	RecentAttendance []models.AttendanceRecord `json:"recentAttendance"`
}

type TeacherStats struct {
	TotalStudents    int64 `json:"totalStudents"`
	TotalClasses     int   `json:"totalClasses"`
	TotalSubjects    int   `json:"totalSubjects"`
	AttendanceMarked int64 `json:"attendanceMarked"`
	UpcomingEvents   int64 `json:"upcomingEvents"`
}

type TeacherActivity struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
}

type TeacherOverview struct {
	Stats            TeacherStats      `json:"stats"`
	RecentActivities []TeacherActivity `json:"recentActivities"`
}

// RosterService manages students, teachers and parents.
type RosterService struct {
	students   recordManager[models.Student]
	teachers   recordManager[models.Teacher]
	parents    recordManager[models.Parent]
	attendance *repositories.Records[models.AttendanceRecord]
	events     *repositories.Records[models.Event]
	log        zerolog.Logger
	now        func() time.Time
}

func NewRosterService(db *gorm.DB, log zerolog.Logger) *RosterService {
	return &RosterService{
		students: recordManager[models.Student]{
			records:  repositories.NewRecords[models.Student](db),
			view:     models.CapViewRoster,
			manage:   models.CapManageStudents,
			notFound: errStudentNotFound,
		},
		teachers: recordManager[models.Teacher]{
			records:  repositories.NewRecords[models.Teacher](db),
			view:     models.CapViewRoster,
			manage:   models.CapManageTeachers,
			notFound: errTeacherNotFound,
		},
		parents: recordManager[models.Parent]{
			records:  repositories.NewRecords[models.Parent](db),
			view:     models.CapViewRoster,
			manage:   models.CapManageParents,
			notFound: errParentNotFound,
		},
		attendance: repositories.NewRecords[models.AttendanceRecord](db),
		events:     repositories.NewRecords[models.Event](db),
		log:        log,
		now:        utcNow,
	}
}

func (s *RosterService) WithClock(now func() time.Time) *RosterService {
	s.now = now
	return s
}

func (s *RosterService) ListStudents(ctx context.Context, caller models.Identity, search string, page utils.Page) ([]models.Student, utils.Pagination, error) {
	items, total, err := s.students.list(ctx, caller, repositories.StudentFilter{Search: search}, "name asc", page.Offset(), page.Limit)
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	return items, utils.NewPagination(page, total), nil
}

func (s *RosterService) GetStudent(ctx context.Context, caller models.Identity, id uuid.UUID) (*models.Student, error) {
	return s.students.get(ctx, caller, id)
}

func (s *RosterService) CreateStudent(ctx context.Context, caller models.Identity, st *models.Student) error {
	st.ID = uuid.Nil
	return s.students.create(ctx, caller, st)
}

func (s *RosterService) UpdateStudent(ctx context.Context, caller models.Identity, st *models.Student) error {
	return s.students.save(ctx, caller, st)
}

func (s *RosterService) DeleteStudent(ctx context.Context, caller models.Identity, id uuid.UUID) error {
	return s.students.delete(ctx, caller, id)
}

// StudentOverview summarizes a student's attendance record and the events
// coming up.
func (s *RosterService) StudentOverview(ctx context.Context, caller models.Identity, id uuid.UUID) (*StudentOverview, error) {
	st, err := s.students.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	byStudent := repositories.Where("student_id", st.ID)
	counts := make(map[models.AttendanceStatus]int64, 3)
	for _, status := range []models.AttendanceStatus{models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate} {
		n, err := s.attendance.Count(ctx, repositories.All(byStudent, repositories.Where("status", status)))
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		counts[status] = n
	}

	recent, _, err := s.attendance.List(ctx, byStudent, "date desc", 0, 5)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	upcoming, _, err := s.events.List(ctx, repositories.ScopeFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where("start_date >= ?", s.now())
	}), "start_date asc", 0, 5)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	stats := StudentStats{
		TotalSubjects: len(st.Subjects),
		PresentDays:   counts[models.AttendancePresent],
		AbsentDays:    counts[models.AttendanceAbsent],
		LateDays:      counts[models.AttendanceLate],
	}
	if total := stats.PresentDays + stats.AbsentDays + stats.LateDays; total > 0 {
		attended := float64(stats.PresentDays + stats.LateDays)
		stats.AttendancePercentage = float64(int(attended/float64(total)*1000+0.5)) / 10
	}

	return &StudentOverview{
		Student:          *st,
		Stats:            stats,
		UpcomingEvents:   upcoming,
		RecentAttendance: recent,
	}, nil
}

func (s *RosterService) ListTeachers(ctx context.Context, caller models.Identity) ([]models.Teacher, error) {
	items, _, err := s.teachers.list(ctx, caller, repositories.NoScope, "name asc", 0, 0)
	return items, err
}

func (s *RosterService) GetTeacher(ctx context.Context, caller models.Identity, id uuid.UUID) (*models.Teacher, error) {
	return s.teachers.get(ctx, caller, id)
}

func (s *RosterService) CreateTeacher(ctx context.Context, caller models.Identity, t *models.Teacher) error {
	t.ID = uuid.Nil
	return s.teachers.create(ctx, caller, t)
}

func (s *RosterService) UpdateTeacher(ctx context.Context, caller models.Identity, t *models.Teacher) error {
	return s.teachers.save(ctx, caller, t)
}

func (s *RosterService) DeleteTeacher(ctx context.Context, caller models.Identity, id uuid.UUID) error {
	return s.teachers.delete(ctx, caller, id)
}

// TeacherStats derives a teacher's workload from the classes they teach and
// the attendance they have marked.
func (s *RosterService) TeacherStats(ctx context.Context, caller models.Identity, id uuid.UUID) (*TeacherOverview, error) {
	t, err := s.teachers.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	stats := TeacherStats{
		TotalClasses:  len(t.Classes),
		TotalSubjects: len(t.Subjects),
	}
	if len(t.Classes) > 0 {
		stats.TotalStudents, err = s.students.records.Count(ctx, repositories.ScopeFunc(func(db *gorm.DB) *gorm.DB {
			return db.Where("class_name IN ?", []string(t.Classes))
		}))
		if err != nil {
			return nil, apperrors.Internal(err)
		}
	}
	stats.UpcomingEvents, err = s.events.Count(ctx, repositories.ScopeFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where("start_date >= ?", s.now())
	}))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	activities := []TeacherActivity{}
	if t.UserID != nil {
		byMarker := repositories.Where("marked_by", *t.UserID)
		stats.AttendanceMarked, err = s.attendance.Count(ctx, byMarker)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		recent, _, err := s.attendance.List(ctx, byMarker, "created_at desc", 0, 5)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		activities = lo.Map(recent, func(r models.AttendanceRecord, _ int) TeacherActivity {
			title := "Attendance"
			if r.Subject != nil {
				title = *r.Subject + " attendance"
			}
			return TeacherActivity{ID: r.ID, Type: "attendance", Title: title, Status: string(r.Status), Date: r.Date}
		})
	}

	return &TeacherOverview{Stats: stats, RecentActivities: activities}, nil
}

func (s *RosterService) ListParents(ctx context.Context, caller models.Identity) ([]models.Parent, error) {
	items, _, err := s.parents.list(ctx, caller, repositories.NoScope, "name asc", 0, 0)
	return items, err
}

func (s *RosterService) GetParent(ctx context.Context, caller models.Identity, id uuid.UUID) (*models.Parent, error) {
	return s.parents.get(ctx, caller, id)
}

func (s *RosterService) CreateParent(ctx context.Context, caller models.Identity, p *models.Parent) error {
	p.ID = uuid.Nil
	return s.parents.create(ctx, caller, p)
}

func (s *RosterService) UpdateParent(ctx context.Context, caller models.Identity, p *models.Parent) error {
	return s.parents.save(ctx, caller, p)
}

func (s *RosterService) DeleteParent(ctx context.Context, caller models.Identity, id uuid.UUID) error {
	return s.parents.delete(ctx, caller, id)
}
