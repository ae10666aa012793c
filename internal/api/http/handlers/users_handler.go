package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// UsersHandler exposes account endpoints behind the gate.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Me handles GET /api/v1/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("")
	}
	user, err := h.auth.Profile(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile retrieved", dto.NewUserResponse(user))
}

// List handles GET /api/v1/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := repository.UserListFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("role"); raw != "" {
		role := domain.Role(raw)
		if !role.Valid() {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": raw})
		}
		filter.Role = &role
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, err := h.auth.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewUserResponse(&users[i]))
	}
	return respond(c, http.StatusOK, "Users retrieved", resp)
}

// ChangeRole handles PATCH /api/v1/users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("")
	}

	var req dto.RoleChangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangeRole(c.UserContext(), *identity, c.Params("id"), domain.Role(req.Role)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Role updated", fiber.Map{
		"id":   c.Params("id"),
		"role": req.Role,
	})
}
