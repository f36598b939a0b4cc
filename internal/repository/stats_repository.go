package repository

import (
	"context"
	"fmt"

	"wrongbook/internal/domain"

	"github.com/jmoiron/sqlx"
)

// sqlxStatsRepository implements domain.StatsRepository using sqlx. It only
// reads; the aggregates are derived from questions and upload_history.
type sqlxStatsRepository struct {
	db *sqlx.DB
}

// NewSQLXStatsRepository creates a new instance of sqlxStatsRepository.
func NewSQLXStatsRepository(db *sqlx.DB) domain.StatsRepository {
	return &sqlxStatsRepository{db: db}
}

// GetStudentStats returns the per-user overview. An empty grade means all
// grades; uploads are never grade-filtered since history rows carry none.
func (r *sqlxStatsRepository) GetStudentStats(ctx context.Context, userID int64, grade string) (*domain.StudentStats, error) {
	var row struct {
		Total      int `db:"total"`
		Pending    int `db:"pending"`
		Reviewing  int `db:"reviewing"`
		Understood int `db:"understood"`
	}

	query := `SELECT
	            COUNT(*) AS total,
	            COUNT(*) FILTER (WHERE status = 'pending') AS pending,
	            COUNT(*) FILTER (WHERE status = 'reviewing') AS reviewing,
	            COUNT(*) FILTER (WHERE status = 'understood') AS understood
	          FROM questions
	          WHERE user_id = $1 AND ($2 = '' OR grade = $2)`

	if err := r.db.GetContext(ctx, &row, query, userID, grade); err != nil {
		return nil, fmt.Errorf("failed to get student stats: %w", err)
	}

	var uploads int
	uploadQuery := `SELECT COUNT(*) FROM upload_history WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &uploads, uploadQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to count uploads: %w", err)
	}

	return &domain.StudentStats{
		TotalQuestions:      row.Total,
		PendingQuestions:    row.Pending,
		ReviewingQuestions:  row.Reviewing,
		UnderstoodQuestions: row.Understood,
		TotalUploads:        uploads,
	}, nil
}

// GetSubjectStats returns per-subject counts sorted by total descending.
func (r *sqlxStatsRepository) GetSubjectStats(ctx context.Context, userID int64, grade string) ([]*domain.SubjectStats, error) {
	var rows []struct {
		Subject    string `db:"subject"`
		Total      int    `db:"total"`
		Pending    int    `db:"pending"`
		Reviewing  int    `db:"reviewing"`
		Understood int    `db:"understood"`
	}

	query := `SELECT
	            subject,
	            COUNT(*) AS total,
	            COUNT(*) FILTER (WHERE status = 'pending') AS pending,
	            COUNT(*) FILTER (WHERE status = 'reviewing') AS reviewing,
	            COUNT(*) FILTER (WHERE status = 'understood') AS understood
	          FROM questions
	          WHERE user_id = $1 AND ($2 = '' OR grade = $2)
	          GROUP BY subject
	          ORDER BY total DESC, subject ASC`

	if err := r.db.SelectContext(ctx, &rows, query, userID, grade); err != nil {
		return nil, fmt.Errorf("failed to get subject stats: %w", err)
	}

	stats := make([]*domain.SubjectStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, &domain.SubjectStats{
			Subject:        row.Subject,
			TotalQuestions: row.Total,
			Pending:        row.Pending,
			Reviewing:      row.Reviewing,
			Understood:     row.Understood,
		})
	}
	return stats, nil
}
