package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/hcaptcha"
	"github.com/celumarket/celumarket/internal/pkg/session"
	"github.com/celumarket/celumarket/internal/pkg/usercontext"
	"github.com/celumarket/celumarket/internal/pkg/viewmodel"
)

// Welcomer greets newly created accounts.
type Welcomer interface {
	Welcome(ctx context.Context, user *models.User)
}

type RegisterRequest struct {
	Name         string `json:"name" form:"name" validate:"required,min=3,max=150"`
	Email        string `json:"email" form:"email" validate:"required,email,max=200"`
	Password     string `json:"password" form:"password" validate:"required,min=6,max=72"`
	CaptchaToken string `json:"h-captcha-response" form:"h-captcha-response"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthController handles password based registration and login.
type AuthController struct {
	users    repository.UserRepository
	sessions *session.Manager
	captcha  *hcaptcha.Verifier
	welcomer Welcomer
	validate *validator.Validate
	now      func() time.Time
}

// NewAuthController wires the auth endpoints. captcha and welcomer may be nil.
func NewAuthController(users repository.UserRepository, sessions *session.Manager, captcha *hcaptcha.Verifier, welcomer Welcomer) *AuthController {
	return &AuthController{
		users:    users,
		sessions: sessions,
		captcha:  captcha,
		welcomer: welcomer,
		validate: validator.New(),
		now:      time.Now,
	}
}

// HandleRegister creates an account. All input checks run before the store is touched.
func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperror.NewValidation("invalid request body"))
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := ac.validate.Struct(req); err != nil {
		return respondError(c, apperror.NewValidation(validationMessage(err)))
	}

	if ac.captcha.Enabled() {
		if err := ac.captcha.Verify(c.UserContext(), req.CaptchaToken, GetClientIP(c)); err != nil {
			log.Warnf("[Auth] captcha rejected for %s: %v", req.Email, err)
			return respondError(c, apperror.NewValidation("captcha verification failed"))
		}
	}

	if _, err := ac.users.GetByEmail(req.Email); err == nil {
		return respondError(c, apperror.NewValidation("email is already registered"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperror.NewUnexpected("failed to check email", err))
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, apperror.Wrap(apperror.Validation, "invalid account data", err))
	}
	if err := ac.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return respondError(c, apperror.NewValidation("email is already registered"))
		}
		return respondError(c, apperror.NewUnexpected("failed to create user", err))
	}

	log.Infof("[Auth] registered user %d", user.ID)
	if ac.welcomer != nil {
		ac.welcomer.Welcome(c.UserContext(), user)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    viewmodel.NewUser(user),
	})
}

// HandleLogin opens a session for valid credentials. Banned accounts get 403.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperror.NewValidation("invalid request body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := ac.validate.Struct(req); err != nil {
		return respondError(c, apperror.NewValidation(validationMessage(err)))
	}

	// do not reveal whether the address exists
	user, err := ac.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperror.NewUnauthenticated("invalid email or password"))
		}
		return respondError(c, apperror.NewUnexpected("failed to load user", err))
	}
	if !user.CheckPassword(req.Password) {
		return respondError(c, apperror.NewUnauthenticated("invalid email or password"))
	}
	if user.IsBanned() {
		return respondError(c, apperror.NewAccessDenied("this account has been banned"))
	}

	if err := ac.openSession(c, user); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    viewmodel.NewUser(user),
	})
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := ac.sessions.Logout(c); err != nil {
		return respondError(c, apperror.NewUnexpected("failed to end session", err))
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleSession reports who is logged in.
func (ac *AuthController) HandleSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{
		"authenticated": true,
		"user":          userCtx,
	})
}

// openSession records the login and stores the identity in the session.
func (ac *AuthController) openSession(c *fiber.Ctx, user *models.User) error {
	now := ac.now()
	if err := ac.users.UpdateLastLogin(user.ID, now); err != nil {
		log.Warnf("[Auth] failed to update last login for user %d: %v", user.ID, err)
	} else {
		user.LastLoginAt = &now
	}

	err := ac.sessions.Login(c, session.Identity{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin(),
	})
	if err != nil {
		return apperror.NewUnexpected("failed to open session", err)
	}
	return nil
}

// validationMessage turns the first field error into a client message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid input"
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
