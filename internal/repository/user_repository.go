package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wrongbook/internal/domain"
	"wrongbook/internal/repository/models"
	"wrongbook/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

const userColumns = `id, email, name, google_id, identity_state, profile_picture, grade, is_admin,
	total_tokens_used, prompt_tokens_used, completion_tokens_used, last_token_update, created_at, updated_at`

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:                   m.ID,
		Email:                m.Email,
		Name:                 m.Name,
		GoogleID:             util.NullStringToString(m.GoogleID),
		IdentityState:        domain.IdentityState(m.IdentityState),
		ProfilePicture:       util.NullStringToString(m.ProfilePicture),
		Grade:                util.NullStringToString(m.Grade),
		IsAdmin:              m.IsAdmin,
		TotalTokensUsed:      m.TotalTokensUsed,
		PromptTokensUsed:     m.PromptTokensUsed,
		CompletionTokensUsed: m.CompletionTokensUsed,
		LastTokenUpdate:      util.NullTimeToPtr(m.LastTokenUpdate),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// CreateUser inserts a new whitelist entry and assigns its id.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	now := time.Now()
	query := `INSERT INTO users (email, name, google_id, identity_state, profile_picture, grade, is_admin, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	googleID := util.StringToNullString(user.GoogleID)
	state := user.IdentityState
	if state == "" {
		state = domain.IdentityUnbound
	}

	err := r.db.QueryRowxContext(ctx, query,
		user.Email,
		user.Name,
		googleID,
		string(state),
		util.StringToNullString(user.ProfilePicture),
		util.StringToNullString(user.Grade),
		user.IsAdmin,
		now,
		now,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return domain.NewDuplicateEmailError(user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.IdentityState = state
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUserByID retrieves a user by their internal id.
// Returns nil, nil when no such user exists.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	var m models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &m, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return toDomainUser(&m), nil
}

// GetUserByEmail retrieves a user by email, the whitelist key.
// Returns nil, nil when no such user exists.
func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &m, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toDomainUser(&m), nil
}

// ListUsers returns all users, newest first.
func (r *sqlxUserRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var rows []models.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, toDomainUser(&rows[i]))
	}
	return users, nil
}

// BindGoogleID performs the one-time unbound -> bound transition. The WHERE
// clause on identity_state guarantees the external subject id is written at
// most once, even if two first logins race.
func (r *sqlxUserRepository) BindGoogleID(ctx context.Context, userID int64, googleID, name, picture string) (*domain.User, error) {
	var m models.User
	query := `UPDATE users SET
	            google_id = $1,
	            identity_state = $2,
	            name = $3,
	            profile_picture = $4,
	            updated_at = $5
	          WHERE id = $6 AND identity_state = $7
	          RETURNING ` + userColumns

	err := r.db.GetContext(ctx, &m, query,
		googleID,
		string(domain.IdentityBound),
		name,
		util.StringToNullString(picture),
		time.Now(),
		userID,
		string(domain.IdentityUnbound),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already bound by a concurrent login; return the current row.
			return r.GetUserByID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to bind google id: %w", err)
	}
	return toDomainUser(&m), nil
}

// UpdateProfile refreshes the mutable profile fields on a returning login.
func (r *sqlxUserRepository) UpdateProfile(ctx context.Context, userID int64, name, picture string) (*domain.User, error) {
	var m models.User
	query := `UPDATE users SET name = $1, profile_picture = $2, updated_at = $3
	          WHERE id = $4
	          RETURNING ` + userColumns

	err := r.db.GetContext(ctx, &m, query,
		name,
		util.StringToNullString(picture),
		time.Now(),
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return toDomainUser(&m), nil
}

// UpdateGrade sets the user's grade level.
func (r *sqlxUserRepository) UpdateGrade(ctx context.Context, userID int64, grade string) (*domain.User, error) {
	var m models.User
	query := `UPDATE users SET grade = $1, updated_at = $2 WHERE id = $3
	          RETURNING ` + userColumns

	err := r.db.GetContext(ctx, &m, query, util.StringToNullString(grade), time.Now(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user grade: %w", err)
	}
	return toDomainUser(&m), nil
}

// DeleteUser removes a user. Returns sql.ErrNoRows if no row was deleted.
func (r *sqlxUserRepository) DeleteUser(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddTokenUsage increments the ledger counters in a single UPDATE so
// concurrent uploads by the same user cannot lose an increment.
func (r *sqlxUserRepository) AddTokenUsage(ctx context.Context, userID int64, usage domain.TokenUsage) error {
	query := `UPDATE users SET
	            total_tokens_used = total_tokens_used + $1,
	            prompt_tokens_used = prompt_tokens_used + $2,
	            completion_tokens_used = completion_tokens_used + $3,
	            last_token_update = $4
	          WHERE id = $5`

	_, err := r.db.ExecContext(ctx, query,
		usage.TotalTokens,
		usage.PromptTokens,
		usage.CompletionTokens,
		time.Now(),
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add token usage: %w", err)
	}
	return nil
}

// GetTokenUsage returns the user's ledger counters, nil when absent.
func (r *sqlxUserRepository) GetTokenUsage(ctx context.Context, userID int64) (*domain.UserTokenUsage, error) {
	var m models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &m, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token usage: %w", err)
	}
	return &domain.UserTokenUsage{
		UserID:               m.ID,
		Email:                m.Email,
		Name:                 m.Name,
		TotalTokensUsed:      m.TotalTokensUsed,
		PromptTokensUsed:     m.PromptTokensUsed,
		CompletionTokensUsed: m.CompletionTokensUsed,
		LastTokenUpdate:      util.NullTimeToPtr(m.LastTokenUpdate),
	}, nil
}

// GetAllTokenUsage aggregates the ledger across all users, sorted by total
// usage descending.
func (r *sqlxUserRepository) GetAllTokenUsage(ctx context.Context) (*domain.SystemTokenUsage, error) {
	var rows []models.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY total_tokens_used DESC`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get all token usage: %w", err)
	}

	report := &domain.SystemTokenUsage{
		TotalUsers: len(rows),
		Users:      make([]domain.UserTokenUsage, 0, len(rows)),
	}
	for i := range rows {
		m := &rows[i]
		report.TotalTokens += m.TotalTokensUsed
		report.TotalPromptTokens += m.PromptTokensUsed
		report.TotalCompletionTokens += m.CompletionTokensUsed
		report.Users = append(report.Users, domain.UserTokenUsage{
			UserID:               m.ID,
			Email:                m.Email,
			Name:                 m.Name,
			TotalTokensUsed:      m.TotalTokensUsed,
			PromptTokensUsed:     m.PromptTokensUsed,
			CompletionTokensUsed: m.CompletionTokensUsed,
			LastTokenUpdate:      util.NullTimeToPtr(m.LastTokenUpdate),
		})
	}
	return report, nil
}
