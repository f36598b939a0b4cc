package repository

import (
	"context"
	"testing"
	"time"

	"wrongbook/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUpload_DefaultsToProcessing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUploadRepository(db)

	mock.ExpectQuery("INSERT INTO upload_history").
		WithArgs(int64(1), "exam.jpg", "math", 0, "processing", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	upload := &domain.UploadHistory{UserID: 1, Filename: "exam.jpg", Subject: "math"}
	require.NoError(t, repo.CreateUpload(context.Background(), upload))
	assert.Equal(t, int64(10), upload.ID)
	assert.Equal(t, domain.UploadProcessing, upload.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkCompleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUploadRepository(db)

	mock.ExpectExec("UPDATE upload_history SET status = \\$1, questions_extracted = \\$2").
		WithArgs("completed", 3, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkCompleted(context.Background(), 10, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUploadRepository(db)

	mock.ExpectExec("UPDATE upload_history SET status = \\$1, error_message = \\$2").
		WithArgs("failed", "vision analysis failed", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), 10, "vision analysis failed"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUploadsByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXUploadRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM upload_history WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "filename", "subject", "questions_extracted", "status", "error_message", "created_at",
		}).AddRow(int64(10), int64(1), "exam.jpg", "math", 3, "completed", nil, now))

	uploads, err := repo.ListUploadsByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, domain.UploadCompleted, uploads[0].Status)
	assert.Empty(t, uploads[0].ErrorMessage)
}
