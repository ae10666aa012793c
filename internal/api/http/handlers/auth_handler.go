package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// AuthHandler exposes sign-in and credential endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	session auth.SessionWriter
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, session auth.SessionWriter) *AuthHandler {
	return &AuthHandler{auth: authService, session: session}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	if err := h.session.SetTokens(c, pair); err != nil {
		return apperrors.NewInternalError(err)
	}

	return respond(c, http.StatusCreated, "User registered successfully", fiber.Map{
		"user":    dto.NewUserResponse(user),
		"session": dto.SessionResponse{AccessExpiresAt: pair.AccessExpiresAt, RefreshExpiresAt: pair.RefreshExpiresAt},
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if err := h.session.SetTokens(c, pair); err != nil {
		return apperrors.NewInternalError(err)
	}

	return respond(c, http.StatusOK, "Logged in successfully", fiber.Map{
		"user":    dto.NewUserResponse(user),
		"session": dto.SessionResponse{AccessExpiresAt: pair.AccessExpiresAt, RefreshExpiresAt: pair.RefreshExpiresAt},
	})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.session.ClearTokens(c); err != nil {
		return apperrors.NewInternalError(err)
	}
	return respond(c, http.StatusOK, auth.LoggedOutMessage, nil)
}

// RequestEmailVerification handles POST /api/v1/auth/verify-email/request.
func (h *AuthHandler) RequestEmailVerification(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("")
	}

	expiresAt, err := h.auth.RequestEmailVerification(c.UserContext(), *identity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusAccepted, "Verification email sent", fiber.Map{
		"expires_at": expiresAt,
	})
}

// VerifyEmail handles GET /api/v1/auth/verify-email?token=.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	user, err := h.auth.VerifyEmail(c.UserContext(), c.Query("token"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Email verified successfully", dto.NewUserResponse(user))
}

// RequestPasswordReset handles POST /api/v1/auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusAccepted, "If the account exists, a reset link has been sent", nil)
}

// ConfirmPasswordReset handles POST /api/v1/auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password updated", nil)
}

// ChangePassword handles POST /api/v1/auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("")
	}

	var req dto.PasswordChangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), *identity, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password updated", nil)
}
