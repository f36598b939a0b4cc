package repository

import (
	"context"
	"fmt"
	"time"

	"wrongbook/internal/domain"
	"wrongbook/internal/repository/models"
	"wrongbook/internal/util"

	"github.com/jmoiron/sqlx"
)

const uploadColumns = `id, user_id, filename, subject, questions_extracted, status, error_message, created_at`

// sqlxUploadRepository implements domain.UploadRepository using sqlx.
type sqlxUploadRepository struct {
	db *sqlx.DB
}

// NewSQLXUploadRepository creates a new instance of sqlxUploadRepository.
func NewSQLXUploadRepository(db *sqlx.DB) domain.UploadRepository {
	return &sqlxUploadRepository{db: db}
}

func toDomainUpload(m *models.UploadHistory) *domain.UploadHistory {
	if m == nil {
		return nil
	}
	return &domain.UploadHistory{
		ID:                 m.ID,
		UserID:             m.UserID,
		Filename:           m.Filename,
		Subject:            m.Subject,
		QuestionsExtracted: m.QuestionsExtracted,
		Status:             domain.UploadStatus(m.Status),
		ErrorMessage:       util.NullStringToString(m.ErrorMessage),
		CreatedAt:          m.CreatedAt,
	}
}

// CreateUpload inserts an audit record in the processing state.
func (r *sqlxUploadRepository) CreateUpload(ctx context.Context, upload *domain.UploadHistory) error {
	now := time.Now()
	status := upload.Status
	if status == "" {
		status = domain.UploadProcessing
	}

	query := `INSERT INTO upload_history (user_id, filename, subject, questions_extracted, status, error_message, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		upload.UserID,
		upload.Filename,
		upload.Subject,
		upload.QuestionsExtracted,
		string(status),
		util.StringToNullString(upload.ErrorMessage),
		now,
	).Scan(&upload.ID)
	if err != nil {
		return fmt.Errorf("failed to create upload record: %w", err)
	}

	upload.Status = status
	upload.CreatedAt = now
	return nil
}

// MarkCompleted records the terminal success state with the extracted count.
func (r *sqlxUploadRepository) MarkCompleted(ctx context.Context, id int64, questionsExtracted int) error {
	query := `UPDATE upload_history SET status = $1, questions_extracted = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, string(domain.UploadCompleted), questionsExtracted, id); err != nil {
		return fmt.Errorf("failed to mark upload completed: %w", err)
	}
	return nil
}

// MarkFailed records the terminal failure state with the error message.
func (r *sqlxUploadRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `UPDATE upload_history SET status = $1, error_message = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, string(domain.UploadFailed), util.StringToNullString(errorMessage), id); err != nil {
		return fmt.Errorf("failed to mark upload failed: %w", err)
	}
	return nil
}

// ListUploadsByUser returns the user's upload history, newest first.
func (r *sqlxUploadRepository) ListUploadsByUser(ctx context.Context, userID int64) ([]*domain.UploadHistory, error) {
	var rows []models.UploadHistory
	query := `SELECT ` + uploadColumns + ` FROM upload_history WHERE user_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	uploads := make([]*domain.UploadHistory, 0, len(rows))
	for i := range rows {
		uploads = append(uploads, toDomainUpload(&rows[i]))
	}
	return uploads, nil
}
