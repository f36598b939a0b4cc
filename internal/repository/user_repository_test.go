package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"wrongbook/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "name", "google_id", "identity_state", "profile_picture", "grade", "is_admin",
		"total_tokens_used", "prompt_tokens_used", "completion_tokens_used", "last_token_update",
		"created_at", "updated_at",
	})
}

func TestGetUserByEmail_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(userRows())

	user, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("student@example.com").
		WillReturnRows(userRows().AddRow(
			int64(7), "student@example.com", "Student", nil, "unbound", nil, "grade 8", false,
			int64(0), int64(0), int64(0), nil, now, now,
		))

	user, err := repo.GetUserByEmail(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, domain.IdentityUnbound, user.IdentityState)
	assert.Empty(t, user.GoogleID)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.CreateUser(context.Background(), &domain.User{
		Email: "dup@example.com", Name: "Dup",
	})
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeDuplicateEmail, domainErr.Code)
}

func TestCreateUser_AssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	user := &domain.User{Email: "new@example.com", Name: "New"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	assert.Equal(t, int64(12), user.ID)
	assert.Equal(t, domain.IdentityUnbound, user.IdentityState)
}

func TestBindGoogleID_GuardsOnUnboundState(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	now := time.Now()
	mock.ExpectQuery("UPDATE users SET").
		WithArgs("sub-7", "bound", "Real Name", "https://p/7.png", sqlmock.AnyArg(), int64(7), "unbound").
		WillReturnRows(userRows().AddRow(
			int64(7), "student@example.com", "Real Name", "sub-7", "bound", "https://p/7.png", "grade 8", false,
			int64(0), int64(0), int64(0), nil, now, now,
		))

	user, err := repo.BindGoogleID(context.Background(), 7, "sub-7", "Real Name", "https://p/7.png")
	require.NoError(t, err)
	assert.Equal(t, domain.IdentityBound, user.IdentityState)
	assert.Equal(t, "sub-7", user.GoogleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBindGoogleID_AlreadyBoundReturnsCurrentRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	// The guarded UPDATE matches no rows; the repo re-reads the user.
	mock.ExpectQuery("UPDATE users SET").
		WillReturnRows(userRows())
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(userRows().AddRow(
			int64(7), "student@example.com", "Name", "sub-7", "bound", nil, nil, false,
			int64(0), int64(0), int64(0), nil, now, now,
		))

	user, err := repo.BindGoogleID(context.Background(), 7, "sub-other", "Name", "")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "sub-7", user.GoogleID)
}

func TestAddTokenUsage_SingleAtomicUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	query := regexp.QuoteMeta("total_tokens_used = total_tokens_used +")
	mock.ExpectExec("UPDATE users SET\\s+" + query).
		WithArgs(int64(50), int64(35), int64(15), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddTokenUsage(context.Background(), 1, domain.TokenUsage{
		PromptTokens: 35, CompletionTokens: 15, TotalTokens: 50,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	mock.ExpectExec("DELETE FROM users WHERE id").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteUser(context.Background(), 9)
	assert.Error(t, err)
}

func TestGetAllTokenUsage_Aggregates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUserRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY total_tokens_used DESC").
		WillReturnRows(userRows().
			AddRow(int64(1), "a@example.com", "A", nil, "bound", nil, nil, false,
				int64(60), int64(40), int64(20), now, now, now).
			AddRow(int64(2), "b@example.com", "B", nil, "unbound", nil, nil, false,
				int64(20), int64(15), int64(5), nil, now, now))

	report, err := repo.GetAllTokenUsage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(80), report.TotalTokens)
	assert.Equal(t, int64(55), report.TotalPromptTokens)
	assert.Equal(t, int64(25), report.TotalCompletionTokens)
	assert.Equal(t, 2, report.TotalUsers)
	require.Len(t, report.Users, 2)
	assert.Equal(t, "a@example.com", report.Users[0].Email)
}
