package domain

import (
	"context"
	"time"
)

// IdentityState tracks whether a whitelisted user record has been linked to
// a real Google subject. Admins provision users as Unbound; the first
// successful Google login transitions them to Bound exactly once.
type IdentityState string

const (
	IdentityUnbound IdentityState = "unbound"
	IdentityBound   IdentityState = "bound"
)

// User represents an account in the whitelist-based directory.
type User struct {
	ID                   int64
	Email                string
	Name                 string
	GoogleID             string // empty until IdentityState is Bound
	IdentityState        IdentityState
	ProfilePicture       string
	Grade                string
	IsAdmin              bool
	TotalTokensUsed      int64
	PromptTokensUsed     int64
	CompletionTokensUsed int64
	LastTokenUpdate      *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IdentityClaim is a verified assertion from the external identity
// provider about who the caller is.
type IdentityClaim struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier validates an externally issued identity token and
// produces a verified claim. Verification failures must surface as
// authentication errors, never as an anonymous identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*IdentityClaim, error)
}

// TokenUsage carries the token counts of a single model call.
type TokenUsage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Add accumulates usage from another call. Accumulation is commutative, so
// callers may sum per-question usage in any order.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// UserTokenUsage is the per-user view of the usage ledger.
type UserTokenUsage struct {
	UserID               int64
	Email                string
	Name                 string
	TotalTokensUsed      int64
	PromptTokensUsed     int64
	CompletionTokensUsed int64
	LastTokenUpdate      *time.Time
}

// SystemTokenUsage aggregates the ledger across all users, with per-user
// entries sorted by total usage descending.
type SystemTokenUsage struct {
	TotalTokens           int64
	TotalPromptTokens     int64
	TotalCompletionTokens int64
	TotalUsers            int
	Users                 []UserTokenUsage
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	// BindGoogleID performs the one-time unbound -> bound transition.
	BindGoogleID(ctx context.Context, userID int64, googleID, name, picture string) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, name, picture string) (*User, error)
	UpdateGrade(ctx context.Context, userID int64, grade string) (*User, error)
	DeleteUser(ctx context.Context, userID int64) error
	// AddTokenUsage increments the ledger counters atomically at the
	// storage layer so concurrent uploads never lose an increment.
	AddTokenUsage(ctx context.Context, userID int64, usage TokenUsage) error
	GetTokenUsage(ctx context.Context, userID int64) (*UserTokenUsage, error)
	GetAllTokenUsage(ctx context.Context) (*SystemTokenUsage, error)
}
