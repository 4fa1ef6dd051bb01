package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/anjiri1684/school_admin/notifications"
	"github.com/anjiri1684/school_admin/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	users  repositories.UserRepository
	mailer notifications.Mailer
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, mailer notifications.Mailer, secret string, ttl time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		mailer: mailer,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
		now:    utcNow,
	}
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates a non-admin account. Administrators are only provisioned
// through the seed-admin command.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := models.RoleStudent
	if in.Role != "" {
		parsed, ok := models.ParseRole(in.Role)
		if !ok {
			return nil, apperrors.Invalid("Invalid role")
		}
		role = parsed
	}
	if role == models.RoleAdmin {
		return nil, apperrors.New(apperrors.KindForbidden, "Cannot self-register as admin")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrUserExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to hash password", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.Internal(err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(role)).Msg("User registered")
	notifications.SendAsync(s.mailer, s.log, user.Name, user.Email, "Welcome!",
		fmt.Sprintf("<h1>Welcome, %s!</h1><p>Your %s account is ready.</p>", html.EscapeString(user.Name), role))
	return user, nil
}

// Login checks the credentials and returns the user with a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", apperrors.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Me(ctx context.Context, caller models.Identity) (*models.User, error) {
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.ttl
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     s.now().Add(s.ttl).Unix(),
	}
	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "Failed to create token", err)
	}
	return t, nil
}

// ParseToken validates a raw token string, as presented on the websocket
// auth frame.
func (s *AuthService) ParseToken(raw string) (models.Identity, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	return IdentityFromClaims(claims)
}

// IdentityFromClaims reads the caller identity out of verified token claims.
func IdentityFromClaims(claims jwt.MapClaims) (models.Identity, error) {
	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	rawRole, _ := claims["role"].(string)
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	email, _ := claims["email"].(string)
	return models.Identity{UserID: userID, Email: email, Role: role}, nil
}
