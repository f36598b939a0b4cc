package middleware

import (
	"context"
	"strings"

	"wrongbook/internal/domain"
	"wrongbook/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the locals key carrying the authenticated user's id.
const UserIDKey = "userID"

// jwtValidator is the slice of the auth service the middleware needs.
type jwtValidator interface {
	ValidateJWT(tokenString string) (*dto.AuthClaims, error)
}

// userLoader is the slice of the user repository AdminOnly needs.
type userLoader interface {
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
}

// Protected rejects requests without a valid Bearer session token and
// stores the caller's user id in locals.
func Protected(validator jwtValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return domain.NewUnauthorizedError("Missing authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return domain.NewUnauthorizedError("Authorization header must be a Bearer token")
		}

		claims, err := validator.ValidateJWT(parts[1])
		if err != nil {
			return err
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// AdminOnly allows only administrators past. It must run after Protected.
func AdminOnly(users userLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(UserIDKey).(int64)
		if !ok {
			return domain.NewUnauthorizedError("Not authenticated")
		}

		user, err := users.GetUserByID(c.Context(), userID)
		if err != nil {
			return domain.NewInternalError("failed to load user", err)
		}
		if user == nil || !user.IsAdmin {
			return domain.NewForbiddenError("Administrator access required")
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's id from locals.
func CurrentUserID(c *fiber.Ctx) (int64, error) {
	userID, ok := c.Locals(UserIDKey).(int64)
	if !ok {
		return 0, domain.NewUnauthorizedError("Not authenticated")
	}
	return userID, nil
}
