package services

import (
	"context"
	"strings"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var errEventNotFound = apperrors.NotFound("Event")

type EventInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Location    *string
	Type        models.EventType
}

type EventService struct {
	events repositories.EventRepository
	log    zerolog.Logger
	now    func() time.Time
}

func NewEventService(events repositories.EventRepository, log zerolog.Logger) *EventService {
	return &EventService{events: events, log: log, now: utcNow}
}

func (s *EventService) WithClock(now func() time.Time) *EventService {
	s.now = now
	return s
}

// List returns events in start order; upcoming limits it to events that
// have not finished yet.
func (s *EventService) List(ctx context.Context, upcoming bool) ([]models.Event, error) {
	var from *time.Time
	if upcoming {
		now := s.now()
		from = &now
	}
	events, err := s.events.List(ctx, from)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return events, nil
}

func (s *EventService) Create(ctx context.Context, caller models.Identity, in EventInput) (*models.Event, error) {
	if err := authorize(caller, models.CapManageEvents); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.Invalid("Title is required")
	}
	if in.EndDate.IsZero() {
		in.EndDate = in.StartDate
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, apperrors.Invalid("End date must not be before start date")
	}
	if in.Type == "" {
		in.Type = models.EventOther
	}

	e := &models.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		Location:    in.Location,
		Type:        in.Type,
		CreatedBy:   caller.UserID,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, apperrors.Internal(err)
	}
	return e, nil
}

func (s *EventService) Delete(ctx context.Context, caller models.Identity, id uuid.UUID) error {
	if err := authorize(caller, models.CapManageEvents); err != nil {
		return err
	}
	return storeErr(s.events.Delete(ctx, id), errEventNotFound)
}

type AttendanceInput struct {
	StudentID uuid.UUID
	Date      time.Time
	Status    models.AttendanceStatus
	Subject   *string
}

type AttendanceService struct {
	records  *repositories.Records[models.AttendanceRecord]
	students *repositories.Records[models.Student]
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{
		records:  repositories.NewRecords[models.AttendanceRecord](db),
		students: repositories.NewRecords[models.Student](db),
	}
}

func (s *AttendanceService) List(ctx context.Context, filter repositories.AttendanceFilter) ([]models.AttendanceRecord, error) {
	if filter.Day != nil {
		day := utils.StartOfDay(*filter.Day)
		filter.Day = &day
	}
	items, _, err := s.records.List(ctx, filter, "date desc", 0, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (s *AttendanceService) Mark(ctx context.Context, caller models.Identity, in AttendanceInput) (*models.AttendanceRecord, error) {
	if err := authorize(caller, models.CapMarkAttendance); err != nil {
		return nil, err
	}
	switch in.Status {
	case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate:
	default:
		return nil, apperrors.Invalid("Invalid attendance status")
	}
	if _, err := s.students.FindByID(ctx, in.StudentID); err != nil {
		return nil, storeErr(err, errStudentNotFound)
	}

	rec := &models.AttendanceRecord{
		StudentID: in.StudentID,
		Date:      in.Date.UTC(),
		Status:    in.Status,
		Subject:   in.Subject,
		MarkedBy:  caller.UserID,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, apperrors.Internal(err)
	}
	return rec, nil
}

type FinanceInput struct {
	Type        models.FinanceType
	Amount      float64
	Description string
	Category    string
	Date        time.Time
}

type FinanceService struct {
	records *repositories.Records[models.FinanceRecord]
}

func NewFinanceService(db *gorm.DB) *FinanceService {
	return &FinanceService{records: repositories.NewRecords[models.FinanceRecord](db)}
}

func (s *FinanceService) List(ctx context.Context, caller models.Identity, filter repositories.FinanceFilter) ([]models.FinanceRecord, error) {
	if err := authorize(caller, models.CapManageFinance); err != nil {
		return nil, err
	}
	items, _, err := s.records.List(ctx, filter, "date desc", 0, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (s *FinanceService) Create(ctx context.Context, caller models.Identity, in FinanceInput) (*models.FinanceRecord, error) {
	if err := authorize(caller, models.CapManageFinance); err != nil {
		return nil, err
	}
	if in.Type != models.FinanceIncome && in.Type != models.FinanceExpense {
		return nil, apperrors.Invalid("Invalid finance type")
	}
	if in.Amount <= 0 {
		return nil, apperrors.Invalid("Amount must be positive")
	}

	rec := &models.FinanceRecord{
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date.UTC(),
		CreatedBy:   caller.UserID,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, apperrors.Internal(err)
	}
	return rec, nil
}
