package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for the session JWT.
type AuthClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GoogleLoginRequest carries the Google-issued ID token from the client.
type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Grade          string    `json:"grade,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// GradeUpdateRequest updates the caller's grade level.
type GradeUpdateRequest struct {
	Grade string `json:"grade"`
}

// MessageResponse is a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}
