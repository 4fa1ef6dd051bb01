package handlers

import (
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultRosterPageSize = 20

// Roster requests carry pointers so one shape serves create and partial
// update; create checks its required fields itself.
type StudentRequest struct {
	UserID        *string     `json:"userId" validate:"omitempty,uuid"`
	Name          *string     `json:"name" validate:"omitempty,min=1"`
	RollNumber    *string     `json:"rollNumber" validate:"omitempty,min=1"`
	Class         *string     `json:"class"`
	Section       *string     `json:"section"`
	AdmissionDate *utils.Date `json:"admissionDate"`
	ParentIDs     []string    `json:"parentIds"`
	Subjects      []string    `json:"subjects"`
	DateOfBirth   *utils.Date `json:"dateOfBirth"`
	Address       *string     `json:"address"`
	Phone         *string     `json:"phone"`
	Gender        *string     `json:"gender" validate:"omitempty,oneof=male female"`
}

func (r StudentRequest) apply(st *models.Student) error {
	userID, err := parseOptionalID(r.UserID)
	if err != nil {
		return err
	}
	if userID != nil {
		st.UserID = userID
	}
	setString(&st.Name, r.Name)
	setString(&st.RollNumber, r.RollNumber)
	setString(&st.Class, r.Class)
	setString(&st.Section, r.Section)
	setString(&st.Address, r.Address)
	setString(&st.Phone, r.Phone)
	setDate(&st.AdmissionDate, r.AdmissionDate)
	setDate(&st.DateOfBirth, r.DateOfBirth)
	setList(&st.ParentIDs, r.ParentIDs)
	setList(&st.Subjects, r.Subjects)
	if r.Gender != nil {
		st.Gender = models.Gender(*r.Gender)
	}
	return nil
}

type TeacherRequest struct {
	UserID        *string  `json:"userId" validate:"omitempty,uuid"`
	Name          *string  `json:"name" validate:"omitempty,min=1"`
	EmployeeID    *string  `json:"employeeId" validate:"omitempty,min=1"`
	Subjects      []string `json:"subjects"`
	Classes       []string `json:"classes"`
	Department    *string  `json:"department"`
	Qualification *string  `json:"qualification"`
	Experience    *int     `json:"experience" validate:"omitempty,min=0"`
	Phone         *string  `json:"phone"`
	Address       *string  `json:"address"`
}

func (r TeacherRequest) apply(t *models.Teacher) error {
	userID, err := parseOptionalID(r.UserID)
	if err != nil {
		return err
	}
	if userID != nil {
		t.UserID = userID
	}
	setString(&t.Name, r.Name)
	setString(&t.EmployeeID, r.EmployeeID)
	setString(&t.Department, r.Department)
	setString(&t.Qualification, r.Qualification)
	setString(&t.Phone, r.Phone)
	setString(&t.Address, r.Address)
	setList(&t.Subjects, r.Subjects)
	setList(&t.Classes, r.Classes)
	if r.Experience != nil {
		t.Experience = *r.Experience
	}
	return nil
}

type ParentRequest struct {
	UserID     *string  `json:"userId" validate:"omitempty,uuid"`
	Name       *string  `json:"name" validate:"omitempty,min=1"`
	Children   []string `json:"children"`
	Occupation *string  `json:"occupation"`
	Phone      *string  `json:"phone"`
	Address    *string  `json:"address"`
}

func (r ParentRequest) apply(p *models.Parent) error {
	userID, err := parseOptionalID(r.UserID)
	if err != nil {
		return err
	}
	if userID != nil {
		p.UserID = userID
	}
	for _, child := range r.Children {
		if _, err := uuid.Parse(child); err != nil {
			return apperrors.Invalid("children must be student ids")
		}
	}
	setString(&p.Name, r.Name)
	setString(&p.Occupation, r.Occupation)
	setString(&p.Phone, r.Phone)
	setString(&p.Address, r.Address)
	setList(&p.Children, r.Children)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDate(dst *time.Time, v *utils.Date) {
	if v != nil && !v.IsZero() {
		*dst = v.Time.UTC()
	}
}

func setList(dst *datatypes.JSONSlice[string], v []string) {
	if v != nil {
		*dst = datatypes.JSONSlice[string](v)
	}
}

func (h *Handler) ListStudents(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	page := utils.ParsePage(c.Query("page"), c.Query("limit"), defaultRosterPageSize)
	students, pagination, err := h.Roster.ListStudents(c.UserContext(), identity, c.Query("search"), page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"students": students, "pagination": pagination})
}

func (h *Handler) GetStudent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	st, err := h.Roster.GetStudent(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"student": st})
}

func (h *Handler) CreateStudent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req StudentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Name == nil || req.RollNumber == nil {
		return apperrors.Invalid("name and rollNumber are required")
	}
	st := &models.Student{}
	if err := req.apply(st); err != nil {
		return err
	}
	if err := h.Roster.CreateStudent(c.UserContext(), identity, st); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"student": st})
}

func (h *Handler) UpdateStudent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req StudentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	st, err := h.Roster.GetStudent(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	if err := req.apply(st); err != nil {
		return err
	}
	if err := h.Roster.UpdateStudent(c.UserContext(), identity, st); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"student": st})
}

func (h *Handler) DeleteStudent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Roster.DeleteStudent(c.UserContext(), identity, id); err != nil {
		return err
	}
	return success(c)
}

func (h *Handler) StudentOverview(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	overview, err := h.Roster.StudentOverview(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(overview)
}

func (h *Handler) ListTeachers(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	teachers, err := h.Roster.ListTeachers(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"teachers": teachers})
}

func (h *Handler) GetTeacher(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.Roster.GetTeacher(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"teacher": t})
}

func (h *Handler) CreateTeacher(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req TeacherRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Name == nil || req.EmployeeID == nil {
		return apperrors.Invalid("name and employeeId are required")
	}
	t := &models.Teacher{}
	if err := req.apply(t); err != nil {
		return err
	}
	if err := h.Roster.CreateTeacher(c.UserContext(), identity, t); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"teacher": t})
}

func (h *Handler) UpdateTeacher(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req TeacherRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	t, err := h.Roster.GetTeacher(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	if err := req.apply(t); err != nil {
		return err
	}
	if err := h.Roster.UpdateTeacher(c.UserContext(), identity, t); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"teacher": t})
}

func (h *Handler) DeleteTeacher(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Roster.DeleteTeacher(c.UserContext(), identity, id); err != nil {
		return err
	}
	return success(c)
}

func (h *Handler) TeacherStats(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	stats, err := h.Roster.TeacherStats(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *Handler) ListParents(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	parents, err := h.Roster.ListParents(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"parents": parents})
}

func (h *Handler) GetParent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Roster.GetParent(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"parent": p})
}

func (h *Handler) CreateParent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req ParentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Name == nil {
		return apperrors.Invalid("name is required")
	}
	p := &models.Parent{}
	if err := req.apply(p); err != nil {
		return err
	}
	if err := h.Roster.CreateParent(c.UserContext(), identity, p); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"parent": p})
}

func (h *Handler) UpdateParent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req ParentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.Roster.GetParent(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	if err := req.apply(p); err != nil {
		return err
	}
	if err := h.Roster.UpdateParent(c.UserContext(), identity, p); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"parent": p})
}

func (h *Handler) DeleteParent(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Roster.DeleteParent(c.UserContext(), identity, id); err != nil {
		return err
	}
	return success(c)
}
