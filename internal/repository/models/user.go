package models

import (
	"database/sql"
	"time"
)

// User represents a row of the users table.
type User struct {
	ID                   int64          `db:"id"`
	Email                string         `db:"email"`
	Name                 string         `db:"name"`
	GoogleID             sql.NullString `db:"google_id"`      // NULL until first login binds it
	IdentityState        string         `db:"identity_state"` // "unbound" or "bound"
	ProfilePicture       sql.NullString `db:"profile_picture"`
	Grade                sql.NullString `db:"grade"`
	IsAdmin              bool           `db:"is_admin"`
	TotalTokensUsed      int64          `db:"total_tokens_used"`
	PromptTokensUsed     int64          `db:"prompt_tokens_used"`
	CompletionTokensUsed int64          `db:"completion_tokens_used"`
	LastTokenUpdate      sql.NullTime   `db:"last_token_update"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}
