package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/api/dto"
	"github.com/disuhitarth/EcommerceConcept/internal/auth"
	"github.com/disuhitarth/EcommerceConcept/internal/domain"
	"github.com/disuhitarth/EcommerceConcept/internal/service"
	apperrors "github.com/disuhitarth/EcommerceConcept/pkg/util"
)

var errInvalidPayload = apperrors.NewValidationError("invalid payload", nil)

// AuthHandler exposes account and session endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: authService, logger: logger}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}

	session, account, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse(session, account))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}

	session, account, err := h.auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(session, account))
}

// Logout handles POST /auth/logout. It succeeds whether or not the token was live.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, _ := auth.BearerToken(c)
	if token == "" && len(c.Body()) > 0 {
		var req dto.LogoutRequest
		if err := c.BodyParser(&req); err == nil {
			token = req.Token
		}
	}

	if token != "" {
		if err := h.auth.Invalidate(c.UserContext(), token); err != nil {
			h.logger.Warn("logout: invalidate session", zap.Error(err))
		}
	}
	return c.JSON(fiber.Map{"success": true})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Not authenticated")
	}
	return c.JSON(dto.UserResponse{Success: true, User: principal.Account})
}

func authResponse(session *domain.Session, account *domain.PublicAccount) dto.AuthResponse {
	return dto.AuthResponse{
		Success:   true,
		User:      account,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}
}
