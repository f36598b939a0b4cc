package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wrongbook/internal/config"
	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
	"wrongbook/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const tokenTypeBearer = "bearer"

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// Login verifies a Google ID token, enforces the whitelist, and issues a
	// session JWT. Whitelist membership is keyed by the verified email; the
	// first successful login binds the Google subject id to the account.
	Login(ctx context.Context, googleToken string) (*dto.TokenResponse, error)
	CreateJWT(user *domain.User) (string, error)
	ValidateJWT(tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	userRepo  domain.UserRepository
	verifier  domain.IdentityVerifier
	appConfig *config.Config
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, verifier domain.IdentityVerifier, appConfig *config.Config) (AuthService, error) {
	if appConfig.JWT.SecretKey == "" {
		return nil, errors.New("jwt secret key is not configured")
	}
	return &authServiceImpl{
		userRepo:  userRepo,
		verifier:  verifier,
		appConfig: appConfig,
	}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, googleToken string) (*dto.TokenResponse, error) {
	appLogger := logger.Get()

	claim, err := s.verifier.Verify(ctx, googleToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, claim.Email)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		appLogger.Info("Login rejected: email not whitelisted", zap.String("email", claim.Email))
		return nil, domain.NewNotWhitelistedError()
	}

	if user.IdentityState == domain.IdentityUnbound {
		user, err = s.userRepo.BindGoogleID(ctx, user.ID, claim.Subject, claim.Name, claim.Picture)
		if err != nil {
			return nil, domain.NewInternalError("failed to bind identity", err)
		}
		appLogger.Info("Bound Google identity to whitelisted user",
			zap.Int64("userID", user.ID), zap.String("email", user.Email))
	} else {
		if user.GoogleID != claim.Subject {
			// The bound subject is permanent; a rotated or differing token
			// subject only refreshes the mutable profile fields.
			appLogger.Warn("Token subject differs from bound identity, keeping the bound id",
				zap.Int64("userID", user.ID))
		}
		user, err = s.userRepo.UpdateProfile(ctx, user.ID, claim.Name, claim.Picture)
		if err != nil {
			return nil, domain.NewInternalError("failed to refresh profile", err)
		}
		if user == nil {
			return nil, domain.NewNotWhitelistedError()
		}
	}

	accessToken, err := s.CreateJWT(user)
	if err != nil {
		return nil, domain.NewInternalError("failed to issue session token", err)
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
		User:        ToUserResponse(user),
	}, nil
}

func (s *authServiceImpl) CreateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.appConfig.JWT.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.appConfig.JWT.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return signed, nil
}

func (s *authServiceImpl) ValidateJWT(tokenString string) (*dto.AuthClaims, error) {
	claims := &dto.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.appConfig.JWT.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.NewExpiredTokenError()
		}
		return nil, domain.NewInvalidTokenError(err)
	}
	if !token.Valid {
		return nil, domain.NewInvalidTokenError(errors.New("token is not valid"))
	}
	if claims.UserID <= 0 {
		return nil, domain.NewInvalidTokenError(errors.New("token carries no user id"))
	}
	return claims, nil
}

// ToUserResponse converts a user to its public representation.
func ToUserResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Grade:          user.Grade,
		ProfilePicture: user.ProfilePicture,
		IsAdmin:        user.IsAdmin,
		CreatedAt:      user.CreatedAt,
	}
}
