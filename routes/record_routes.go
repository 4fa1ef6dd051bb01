package routes

import (
	"github.com/anjiri1684/school_admin/handlers"
	"github.com/anjiri1684/school_admin/middleware"
	"github.com/anjiri1684/school_admin/models"
	"github.com/gofiber/fiber/v2"
)

func RosterRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	students := api.Group("/students", protected)
	students.Get("", h.ListStudents)
	students.Post("", h.CreateStudent)
	students.Get("/:id", h.GetStudent)
	students.Put("/:id", h.UpdateStudent)
	students.Delete("/:id", h.DeleteStudent)
	students.Get("/:id/overview", h.StudentOverview)

	teachers := api.Group("/teachers", protected)
	teachers.Get("", h.ListTeachers)
	teachers.Post("", h.CreateTeacher)
	teachers.Get("/:id", h.GetTeacher)
	teachers.Put("/:id", h.UpdateTeacher)
	teachers.Delete("/:id", h.DeleteTeacher)
	teachers.Get("/:id/stats", h.TeacherStats)

	parents := api.Group("/parents", protected)
	parents.Get("", h.ListParents)
	parents.Post("", h.CreateParent)
	parents.Get("/:id", h.GetParent)
	parents.Put("/:id", h.UpdateParent)
	parents.Delete("/:id", h.DeleteParent)
}

func RecordRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	events := api.Group("/events", protected)
	events.Get("", h.ListEvents)
	events.Post("", h.CreateEvent)
	events.Delete("/:id", h.DeleteEvent)

	attendance := api.Group("/attendance", protected)
	attendance.Get("", h.ListAttendance)
	attendance.Post("", h.MarkAttendance)

	finance := api.Group("/finance", protected, middleware.Require(models.CapManageFinance))
	finance.Get("/report.pdf", h.FinanceReport)
	finance.Get("", h.ListFinance)
	finance.Post("", h.CreateFinance)

	api.Get("/dashboard/stats", protected, middleware.Require(models.CapViewAdminDashboard), h.DashboardStats)
}
