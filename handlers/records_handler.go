package handlers

import (
	"fmt"
	"strconv"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/anjiri1684/school_admin/services"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	StartDate   utils.Date  `json:"startDate"`
	EndDate     *utils.Date `json:"endDate"`
	Location    *string     `json:"location"`
	Type        string      `json:"type" validate:"omitempty,oneof=academic cultural sports other"`
}

type MarkAttendanceRequest struct {
	StudentID string     `json:"studentId" validate:"required,uuid"`
	Date      utils.Date `json:"date"`
	Status    string     `json:"status" validate:"required,oneof=present absent late"`
	Subject   *string    `json:"subject"`
}

type CreateFinanceRequest struct {
	Type        string     `json:"type" validate:"required,oneof=income expense"`
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Date        utils.Date `json:"date"`
}

func (h *Handler) ListEvents(c *fiber.Ctx) error {
	upcoming, _ := strconv.ParseBool(c.Query("upcoming"))
	events, err := h.Events.List(c.UserContext(), upcoming)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"events": events})
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req CreateEventRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.StartDate.IsZero() {
		return apperrors.Invalid("startDate is required")
	}
	in := services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate.Time,
		Location:    req.Location,
		Type:        models.EventType(req.Type),
	}
	if req.EndDate != nil {
		in.EndDate = req.EndDate.Time
	}
	event, err := h.Events.Create(c.UserContext(), identity, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"event": event})
}

func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Events.Delete(c.UserContext(), identity, id); err != nil {
		return err
	}
	return success(c)
}

func (h *Handler) ListAttendance(c *fiber.Ctx) error {
	var filter repositories.AttendanceFilter
	if raw := c.Query("studentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.ErrInvalidID
		}
		filter.StudentID = &id
	}
	if raw := c.Query("date"); raw != "" {
		day, err := utils.ParseDate(raw)
		if err != nil {
			return apperrors.Invalid("Invalid date")
		}
		filter.Day = &day
	}
	records, err := h.Attendance.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"attendance": records})
}

func (h *Handler) MarkAttendance(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req MarkAttendanceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Date.IsZero() {
		return apperrors.Invalid("date is required")
	}
	record, err := h.Attendance.Mark(c.UserContext(), identity, services.AttendanceInput{
		StudentID: uuid.MustParse(req.StudentID),
		Date:      req.Date.Time,
		Status:    models.AttendanceStatus(req.Status),
		Subject:   req.Subject,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"attendance": record})
}

func (h *Handler) ListFinance(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var filter repositories.FinanceFilter
	if raw := c.Query("type"); raw != "" {
		t := models.FinanceType(raw)
		if t != models.FinanceIncome && t != models.FinanceExpense {
			return apperrors.Invalid("Invalid finance type")
		}
		filter.Type = &t
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.Invalid("Invalid year")
		}
		filter.Year = year
	}
	records, err := h.Finance.List(c.UserContext(), identity, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"records": records})
}

func (h *Handler) CreateFinance(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req CreateFinanceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Date.IsZero() {
		return apperrors.Invalid("date is required")
	}
	record, err := h.Finance.Create(c.UserContext(), identity, services.FinanceInput{
		Type:        models.FinanceType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date.Time,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"record": record})
}

func (h *Handler) FinanceReport(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	year := c.QueryInt("year", 0)
	pdf, err := h.Reports.FinancePDF(c.UserContext(), identity, year)
	if err != nil {
		return err
	}
	filename := "finance-report.pdf"
	if year > 0 {
		filename = fmt.Sprintf("finance-report-%d.pdf", year)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}

func (h *Handler) DashboardStats(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	stats, err := h.Dashboard.Stats(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
