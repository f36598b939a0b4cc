package handler

import (
	"net/http"
	"strconv"

	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
	"wrongbook/internal/middleware"
	"wrongbook/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the admin user-management endpoints. All routes are
// guarded by the AdminOnly middleware.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns all users.
// GET /users/
func (h *UserHandler) List(c *fiber.Ctx) error {
	resp, err := h.userService.ListUsers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Create whitelists a new user.
// POST /users/
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.AdminUserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	var missing domain.ValidationErrors
	if req.Email == "" {
		missing = append(missing, domain.NewMissingFieldError("email"))
	}
	if req.Name == "" {
		missing = append(missing, domain.NewMissingFieldError("name"))
	}
	if len(missing) > 0 {
		return missing
	}

	resp, err := h.userService.CreateUser(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(resp)
}

// Delete removes a user.
// DELETE /users/:id
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	actorID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	targetID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return domain.NewInvalidInputError("invalid user id")
	}

	if err := h.userService.DeleteUser(c.Context(), actorID, targetID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted"})
}
