package identity

import (
	"context"
	"fmt"

	"wrongbook/internal/config"
	"wrongbook/internal/domain"
	"wrongbook/internal/logger"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

// tokenValidator allows substituting idtoken.Validate in tests.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier implements domain.IdentityVerifier using Google's ID token
// validation. Signature, issuer, and expiry checks (including a small clock
// skew allowance) are handled by the idtoken library; this adapter checks
// the audience and lifts the claims it needs.
type GoogleVerifier struct {
	clientID string
	validate tokenValidator
}

// NewGoogleVerifier creates a new GoogleVerifier for the configured OAuth
// client id.
func NewGoogleVerifier(cfg config.GoogleOAuthConfig) (*GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("google oauth client id cannot be empty")
	}
	return &GoogleVerifier{clientID: cfg.ClientID, validate: idtoken.Validate}, nil
}

// Verify validates the ID token and returns the asserted identity.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*domain.IdentityClaim, error) {
	if token == "" {
		return nil, domain.NewInvalidTokenError(fmt.Errorf("empty token"))
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		logger.Get().Warn("Google ID token validation failed", zap.Error(err))
		return nil, domain.NewInvalidTokenError(err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, domain.NewInvalidTokenError(fmt.Errorf("token carries no email claim"))
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &domain.IdentityClaim{
		Subject: payload.Subject,
		Email:   email,
		Name:    name,
		Picture: picture,
	}, nil
}

var _ domain.IdentityVerifier = (*GoogleVerifier)(nil)
