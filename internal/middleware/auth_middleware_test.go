package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wrongbook/internal/domain"
	"wrongbook/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	claims *dto.AuthClaims
	err    error
}

func (s *stubValidator) ValidateJWT(tokenString string) (*dto.AuthClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubUserLoader struct {
	user *domain.User
	err  error
}

func (s *stubUserLoader) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return s.user, s.err
}

func newTestApp(validator jwtValidator, users userLoader, admin bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	handlers := []fiber.Handler{Protected(validator)}
	if admin {
		handlers = append(handlers, AdminOnly(users))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})
	app.Get("/protected", handlers...)
	return app
}

func TestProtected_MissingHeader(t *testing.T) {
	app := newTestApp(&stubValidator{}, nil, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtected_MalformedHeader(t *testing.T) {
	app := newTestApp(&stubValidator{}, nil, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Basic abc123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtected_InvalidToken(t *testing.T) {
	app := newTestApp(&stubValidator{err: domain.NewInvalidTokenError(errors.New("bad signature"))}, nil, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer bad-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtected_ValidToken(t *testing.T) {
	app := newTestApp(&stubValidator{claims: &dto.AuthClaims{UserID: 7}}, nil, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminOnly_RejectsNonAdmin(t *testing.T) {
	validator := &stubValidator{claims: &dto.AuthClaims{UserID: 7}}
	users := &stubUserLoader{user: &domain.User{ID: 7, IsAdmin: false}}
	app := newTestApp(validator, users, true)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminOnly_AllowsAdmin(t *testing.T) {
	validator := &stubValidator{claims: &dto.AuthClaims{UserID: 7}}
	users := &stubUserLoader{user: &domain.User{ID: 7, IsAdmin: true}}
	app := newTestApp(validator, users, true)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
