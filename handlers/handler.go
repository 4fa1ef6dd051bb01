// Package handlers adapts HTTP requests onto the services. Handlers parse and
// validate input, call one service method and return its error unchanged for
// ErrorHandler to render.
package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/middleware"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/services"
	"github.com/anjiri1684/school_admin/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type Handler struct {
	Auth          *services.AuthService
	Messaging     *services.MessagingService
	Announcements *services.AnnouncementService
	Notifications *services.NotificationService
	Users         *services.UserService
	Roster        *services.RosterService
	Events        *services.EventService
	Attendance    *services.AttendanceService
	Finance       *services.FinanceService
	Dashboard     *services.DashboardService
	Reports       *services.ReportService
	Uploads       *services.UploadService
	Hub           *websocket.Hub

	Log          zerolog.Logger
	SecureCookie bool
}

// parseBody decodes the JSON body into req and runs its validate tags.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.Invalid("Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Invalid("Invalid request")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.Invalid(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return apperrors.Invalid(fmt.Sprintf("%s must be a valid email", fe.Field()))
	case "min":
		return apperrors.Invalid(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "oneof":
		return apperrors.Invalid(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	default:
		return apperrors.Invalid(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidID
	}
	return id, nil
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperrors.ErrInvalidID
	}
	return &id, nil
}

func caller(c *fiber.Ctx) (models.Identity, error) {
	return middleware.CurrentIdentity(c)
}

func success(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}

// ErrorHandler renders every returned error as the JSON error envelope.
// Internal causes are logged, never sent.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		var ae *apperrors.Error
		switch {
		case errors.As(err, &ae):
			code = ae.Kind.HTTPStatus()
			message = apperrors.PublicMessage(err)
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		}

		event := log.Debug()
		if code >= fiber.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(err).Str("path", c.Path()).Str("method", c.Method()).Int("status", code).Msg("request failed")

		return c.Status(code).JSON(fiber.Map{
			"status":  "error",
			"code":    code,
			"message": message,
		})
	}
}
