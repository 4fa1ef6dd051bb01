package middleware

import (
	"strings"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const (
	AuthCookie  = "auth-token"
	identityKey = "identity"
)

// Protected accepts a bearer token from the Authorization header or the
// auth-token cookie and stores the resolved identity on the request.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		SigningMethod:  "HS256",
		TokenLookup:    "header:Authorization,cookie:" + AuthCookie,
		AuthScheme:     "Bearer",
		SuccessHandler: identify,
		ErrorHandler:   jwtError,
	})
}

func identify(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	identity, err := services.IdentityFromClaims(claims)
	if err != nil {
		return apperrors.ErrUnauthorized
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return apperrors.New(apperrors.KindUnauthorized, "Missing or malformed JWT")
	}
	return apperrors.New(apperrors.KindUnauthorized, "Invalid or expired JWT")
}

// CurrentIdentity returns the caller set by Protected.
func CurrentIdentity(c *fiber.Ctx) (models.Identity, error) {
	identity, ok := c.Locals(identityKey).(models.Identity)
	if !ok {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	return identity, nil
}

// Require rejects callers whose role lacks capability.
func Require(capability models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := CurrentIdentity(c)
		if err != nil {
			return err
		}
		if !identity.Can(capability) {
			return apperrors.ErrForbidden
		}
		return c.Next()
	}
}
