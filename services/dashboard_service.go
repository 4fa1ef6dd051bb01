package services

import (
	"context"
	"sort"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/utils"
	"gorm.io/gorm"
)

type Counts struct {
	Students int64 `json:"students"`
	Teachers int64 `json:"teachers"`
	Parents  int64 `json:"parents"`
	Staffs   int64 `json:"staffs"`
}

type GenderSplit struct {
	Male   int64 `json:"male"`
	Female int64 `json:"female"`
}

type AttendanceBucket struct {
	Date   string                  `json:"date"`
	Status models.AttendanceStatus `json:"status"`
	Count  int64                   `json:"count"`
}

type FinanceBucket struct {
	Month int                `json:"month"`
	Type  models.FinanceType `json:"type"`
	Total float64            `json:"total"`
}

type DashboardStats struct {
	Counts     Counts             `json:"counts"`
	Gender     GenderSplit        `json:"gender"`
	Attendance []AttendanceBucket `json:"attendance"`
	Finance    []FinanceBucket    `json:"finance"`
}

type DashboardService struct {
	users      repositories.UserRepository
	students   *repositories.Records[models.Student]
	teachers   *repositories.Records[models.Teacher]
	parents    *repositories.Records[models.Parent]
	attendance *repositories.Records[models.AttendanceRecord]
	finance    *repositories.Records[models.FinanceRecord]
	now        func() time.Time
}

func NewDashboardService(db *gorm.DB, users repositories.UserRepository) *DashboardService {
	return &DashboardService{
		users:      users,
		students:   repositories.NewRecords[models.Student](db),
		teachers:   repositories.NewRecords[models.Teacher](db),
		parents:    repositories.NewRecords[models.Parent](db),
		attendance: repositories.NewRecords[models.AttendanceRecord](db),
		finance:    repositories.NewRecords[models.FinanceRecord](db),
		now:        utcNow,
	}
}

func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Stats gathers the admin dashboard: head counts, the student gender split,
// the last seven days of attendance and this year's finance by month.
func (s *DashboardService) Stats(ctx context.Context, caller models.Identity) (*DashboardStats, error) {
	if err := authorize(caller, models.CapViewAdminDashboard); err != nil {
		return nil, err
	}

	var stats DashboardStats
	var err error
	if stats.Counts.Students, err = s.students.Count(ctx, repositories.NoScope); err != nil {
		return nil, apperrors.Internal(err)
	}
	if stats.Counts.Teachers, err = s.teachers.Count(ctx, repositories.NoScope); err != nil {
		return nil, apperrors.Internal(err)
	}
	if stats.Counts.Parents, err = s.parents.Count(ctx, repositories.NoScope); err != nil {
		return nil, apperrors.Internal(err)
	}
	if stats.Counts.Staffs, err = s.users.CountByRole(ctx, models.RoleAdmin); err != nil {
		return nil, apperrors.Internal(err)
	}
	if stats.Gender.Male, err = s.students.Count(ctx, repositories.Where("gender", models.GenderMale)); err != nil {
		return nil, apperrors.Internal(err)
	}
	if stats.Gender.Female, err = s.students.Count(ctx, repositories.Where("gender", models.GenderFemale)); err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	today := utils.StartOfDay(now)
	records, _, err := s.attendance.List(ctx, repositories.DateRange{
		Column: "date",
		From:   today.AddDate(0, 0, -6),
		To:     today.AddDate(0, 0, 1),
	}, "", 0, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	stats.Attendance = AttendanceBuckets(records)

	finance, err := s.FinanceForYear(ctx, now.Year())
	if err != nil {
		return nil, err
	}
	stats.Finance = FinanceBuckets(finance)
	return &stats, nil
}

func (s *DashboardService) FinanceForYear(ctx context.Context, year int) ([]models.FinanceRecord, error) {
	records, _, err := s.finance.List(ctx, repositories.FinanceFilter{Year: year}, "date asc", 0, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return records, nil
}

// AttendanceBuckets groups records by calendar day and status, in date order.
func AttendanceBuckets(records []models.AttendanceRecord) []AttendanceBucket {
	type key struct {
		date   string
		status models.AttendanceStatus
	}
	counts := make(map[key]int64)
	for _, r := range records {
		counts[key{r.Date.UTC().Format(time.DateOnly), r.Status}]++
	}

	buckets := make([]AttendanceBucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, AttendanceBucket{Date: k.date, Status: k.status, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Date != buckets[j].Date {
			return buckets[i].Date < buckets[j].Date
		}
		return buckets[i].Status < buckets[j].Status
	})
	return buckets
}

// FinanceBuckets sums amounts by month and type, in month order.
func FinanceBuckets(records []models.FinanceRecord) []FinanceBucket {
	type key struct {
		month int
		typ   models.FinanceType
	}
	totals := make(map[key]float64)
	for _, r := range records {
		totals[key{int(r.Date.UTC().Month()), r.Type}] += r.Amount
	}

	buckets := make([]FinanceBucket, 0, len(totals))
	for k, total := range totals {
		buckets = append(buckets, FinanceBucket{Month: k.month, Type: k.typ, Total: total})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Month != buckets[j].Month {
			return buckets[i].Month < buckets[j].Month
		}
		return buckets[i].Type < buckets[j].Type
	})
	return buckets
}
