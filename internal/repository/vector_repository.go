package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"wrongbook/internal/domain"
	"wrongbook/internal/repository/models"
	"wrongbook/internal/util"

	"github.com/jmoiron/sqlx"
)

// pgVectorStore implements domain.VectorStore on a pgvector-enabled Postgres
// table. Similarity is cosine; only matches at or above the configured
// threshold are returned.
type pgVectorStore struct {
	db             *sqlx.DB
	matchThreshold float64
}

// NewPGVectorStore creates a new instance of pgVectorStore.
func NewPGVectorStore(db *sqlx.DB, matchThreshold float64) domain.VectorStore {
	return &pgVectorStore{db: db, matchThreshold: matchThreshold}
}

// vectorLiteral renders an embedding as a pgvector input literal.
func vectorLiteral(embedding []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Store upserts the question's embedding and returns the record id.
func (s *pgVectorStore) Store(ctx context.Context, record *domain.EmbeddingRecord) (string, error) {
	vectorID := util.NewULID()
	query := `INSERT INTO question_embeddings (vector_id, user_id, question_id, question_text, subject, grade, embedding, metadata, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7::vector, $8, NOW())
	          ON CONFLICT (question_id) DO UPDATE SET
	            vector_id = EXCLUDED.vector_id,
	            question_text = EXCLUDED.question_text,
	            subject = EXCLUDED.subject,
	            grade = EXCLUDED.grade,
	            embedding = EXCLUDED.embedding,
	            metadata = EXCLUDED.metadata`

	_, err := s.db.ExecContext(ctx, query,
		vectorID,
		record.UserID,
		record.QuestionID,
		record.QuestionText,
		record.Subject,
		util.StringToNullString(record.Grade),
		vectorLiteral(record.Embedding),
		models.JSONMap(record.Metadata),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store embedding: %w", err)
	}
	return vectorID, nil
}

// Search returns the user's nearest questions above the similarity
// threshold, most similar first.
func (s *pgVectorStore) Search(ctx context.Context, userID int64, embedding []float32, limit int) ([]domain.VectorMatch, error) {
	var rows []struct {
		VectorID   string  `db:"vector_id"`
		QuestionID int64   `db:"question_id"`
		Similarity float64 `db:"similarity"`
	}

	query := `SELECT vector_id, question_id, 1 - (embedding <=> $1::vector) AS similarity
	          FROM question_embeddings
	          WHERE user_id = $2 AND 1 - (embedding <=> $1::vector) >= $3
	          ORDER BY embedding <=> $1::vector
	          LIMIT $4`

	err := s.db.SelectContext(ctx, &rows, query, vectorLiteral(embedding), userID, s.matchThreshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}

	matches := make([]domain.VectorMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, domain.VectorMatch{
			VectorID:   row.VectorID,
			QuestionID: row.QuestionID,
			Similarity: row.Similarity,
		})
	}
	return matches, nil
}

// Delete removes one embedding record by its vector id.
func (s *pgVectorStore) Delete(ctx context.Context, vectorID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM question_embeddings WHERE vector_id = $1`, vectorID); err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}

// noopVectorStore is the disabled-index implementation. Stores succeed with
// an empty id, searches find nothing, deletes do nothing.
type noopVectorStore struct{}

// NewNoopVectorStore creates a vector store for deployments without a
// vector index.
func NewNoopVectorStore() domain.VectorStore {
	return &noopVectorStore{}
}

func (s *noopVectorStore) Store(ctx context.Context, record *domain.EmbeddingRecord) (string, error) {
	return "", nil
}

func (s *noopVectorStore) Search(ctx context.Context, userID int64, embedding []float32, limit int) ([]domain.VectorMatch, error) {
	return nil, nil
}

func (s *noopVectorStore) Delete(ctx context.Context, vectorID string) error {
	return nil
}
