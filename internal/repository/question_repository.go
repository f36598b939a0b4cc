package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"wrongbook/internal/domain"
	"wrongbook/internal/repository/models"
	"wrongbook/internal/util"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `id, user_id, subject, grade, question_text, image_url, image_snippet_url,
	explanation, status, vector_id, metadata, created_at, updated_at`

// sqlxQuestionRepository implements domain.QuestionRepository using sqlx.
type sqlxQuestionRepository struct {
	db *sqlx.DB
}

// NewSQLXQuestionRepository creates a new instance of sqlxQuestionRepository.
func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &sqlxQuestionRepository{db: db}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:              m.ID,
		UserID:          m.UserID,
		Subject:         m.Subject,
		Grade:           util.NullStringToString(m.Grade),
		QuestionText:    m.QuestionText,
		ImageURL:        util.NullStringToString(m.ImageURL),
		ImageSnippetURL: util.NullStringToString(m.ImageSnippetURL),
		Explanation:     util.NullStringToString(m.Explanation),
		Status:          domain.QuestionStatus(m.Status),
		VectorID:        util.NullStringToString(m.VectorID),
		Metadata:        map[string]string(m.Metadata),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toDomainQuestions(rows []models.Question) []*domain.Question {
	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i]))
	}
	return questions
}

// CreateQuestion inserts a question and assigns its id.
func (r *sqlxQuestionRepository) CreateQuestion(ctx context.Context, question *domain.Question) error {
	now := time.Now()
	status := question.Status
	if status == "" {
		status = domain.StatusPending
	}

	query := `INSERT INTO questions (user_id, subject, grade, question_text, image_url, image_snippet_url,
	            explanation, status, vector_id, metadata, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		question.UserID,
		question.Subject,
		util.StringToNullString(question.Grade),
		question.QuestionText,
		util.StringToNullString(question.ImageURL),
		util.StringToNullString(question.ImageSnippetURL),
		util.StringToNullString(question.Explanation),
		string(status),
		util.StringToNullString(question.VectorID),
		models.JSONMap(question.Metadata),
		now,
		now,
	).Scan(&question.ID)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	question.Status = status
	question.CreatedAt = now
	question.UpdatedAt = now
	return nil
}

// GetQuestion retrieves one question scoped to its owner.
// Returns nil, nil when the id does not exist or belongs to another user.
func (r *sqlxQuestionRepository) GetQuestion(ctx context.Context, id, userID int64) (*domain.Question, error) {
	var m models.Question
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &m, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return toDomainQuestion(&m), nil
}

// ListQuestions returns the user's questions matching all supplied filters,
// newest first.
func (r *sqlxQuestionRepository) ListQuestions(ctx context.Context, userID int64, filters domain.QuestionFilters) ([]*domain.Question, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filters.Subject != "" {
		addCondition("subject = $%d", filters.Subject)
	}
	if filters.Grade != "" {
		addCondition("grade = $%d", filters.Grade)
	}
	if filters.Status != "" {
		addCondition("status = $%d", string(filters.Status))
	}
	if filters.StartDate != nil {
		addCondition("created_at >= $%d", *filters.StartDate)
	}
	if filters.EndDate != nil {
		addCondition("created_at <= $%d", *filters.EndDate)
	}

	query := `SELECT ` + questionColumns + ` FROM questions WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC`

	var rows []models.Question
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return toDomainQuestions(rows), nil
}

// GetQuestionsByIDs fetches the given question ids that belong to the user.
// Ids owned by other users are silently absent from the result.
func (r *sqlxQuestionRepository) GetQuestionsByIDs(ctx context.Context, userID int64, ids []int64) ([]*domain.Question, error) {
	if len(ids) == 0 {
		return []*domain.Question{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+questionColumns+` FROM questions WHERE user_id = ? AND id IN (?)`,
		userID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build questions-by-ids query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.Question
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}
	return toDomainQuestions(rows), nil
}

// UpdateQuestion applies a partial update scoped to the owner.
// Returns nil, nil when the question does not exist for that user.
func (r *sqlxQuestionRepository) UpdateQuestion(ctx context.Context, id, userID int64, update domain.QuestionUpdate) (*domain.Question, error) {
	sets := []string{}
	args := []interface{}{}

	addSet := func(clause string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(clause, len(args)))
	}

	if update.Status != nil {
		addSet("status = $%d", string(*update.Status))
	}
	if update.Explanation != nil {
		addSet("explanation = $%d", *update.Explanation)
	}
	if len(sets) == 0 {
		return r.GetQuestion(ctx, id, userID)
	}
	addSet("updated_at = $%d", time.Now())

	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE questions SET %s WHERE id = $%d AND user_id = $%d RETURNING `+questionColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))

	var m models.Question
	err := r.db.GetContext(ctx, &m, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return toDomainQuestion(&m), nil
}

// SetVectorID records the secondary-index reference for a question.
func (r *sqlxQuestionRepository) SetVectorID(ctx context.Context, id int64, vectorID string) error {
	query := `UPDATE questions SET vector_id = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, util.StringToNullString(vectorID), time.Now(), id); err != nil {
		return fmt.Errorf("failed to set vector id: %w", err)
	}
	return nil
}

// SetExplanation replaces the explanation text, scoped to the owner.
// Returns nil, nil when the question does not exist for that user.
func (r *sqlxQuestionRepository) SetExplanation(ctx context.Context, id, userID int64, explanation string) (*domain.Question, error) {
	var m models.Question
	query := `UPDATE questions SET explanation = $1, updated_at = $2
	          WHERE id = $3 AND user_id = $4
	          RETURNING ` + questionColumns

	err := r.db.GetContext(ctx, &m, query, explanation, time.Now(), id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to set explanation: %w", err)
	}
	return toDomainQuestion(&m), nil
}

// DeleteQuestion removes a question and returns the deleted row so the
// caller can clean up its vector-store entry.
// Returns nil, nil when the question does not exist for that user.
func (r *sqlxQuestionRepository) DeleteQuestion(ctx context.Context, id, userID int64) (*domain.Question, error) {
	var m models.Question
	query := `DELETE FROM questions WHERE id = $1 AND user_id = $2 RETURNING ` + questionColumns

	err := r.db.GetContext(ctx, &m, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete question: %w", err)
	}
	return toDomainQuestion(&m), nil
}

// SearchByText is the substring fallback for semantic search. Matches on
// question text or explanation, case-insensitively, newest first.
func (r *sqlxQuestionRepository) SearchByText(ctx context.Context, userID int64, query string, limit int) ([]*domain.Question, error) {
	pattern := "%" + query + "%"
	sqlQuery := `SELECT ` + questionColumns + ` FROM questions
	             WHERE user_id = $1 AND (question_text ILIKE $2 OR explanation ILIKE $2)
	             ORDER BY created_at DESC
	             LIMIT $3`

	var rows []models.Question
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, userID, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search questions by text: %w", err)
	}
	return toDomainQuestions(rows), nil
}
