package handler

import (
	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
	"wrongbook/internal/middleware"
	"wrongbook/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves login and profile endpoints.
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// GoogleLogin exchanges a Google ID token for a session JWT.
// POST /auth/google
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.Token == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("token")}
	}

	resp, err := h.authService.Login(c.Context(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Me returns the caller's profile.
// GET /auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateGrade sets the caller's grade level.
// PUT /auth/grade
func (h *AuthHandler) UpdateGrade(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req dto.GradeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.Grade == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("grade")}
	}

	resp, err := h.userService.UpdateGrade(c.Context(), userID, req.Grade)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
