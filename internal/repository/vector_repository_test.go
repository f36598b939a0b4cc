package repository

import (
	"context"
	"testing"

	"wrongbook/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorLiteral(t *testing.T) {
	assert.Equal(t, "[0.5,-1,0.25]", vectorLiteral([]float32{0.5, -1, 0.25}))
	assert.Equal(t, "[]", vectorLiteral(nil))
}

func TestPGVectorStore_Search(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPGVectorStore(db, 0.7)

	mock.ExpectQuery("SELECT vector_id, question_id, 1 - \\(embedding <=>").
		WithArgs("[0.1,0.2]", int64(1), 0.7, 5).
		WillReturnRows(sqlmock.NewRows([]string{"vector_id", "question_id", "similarity"}).
			AddRow("v2", int64(2), 0.95).
			AddRow("v1", int64(1), 0.81))

	matches, err := store.Search(context.Background(), 1, []float32{0.1, 0.2}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(2), matches[0].QuestionID)
	assert.InDelta(t, 0.95, matches[0].Similarity, 1e-9)
}

func TestPGVectorStore_StoreReturnsGeneratedID(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPGVectorStore(db, 0.7)

	mock.ExpectExec("INSERT INTO question_embeddings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	vectorID, err := store.Store(context.Background(), &domain.EmbeddingRecord{
		UserID: 1, QuestionID: 2, QuestionText: "q", Subject: "math",
		Embedding: []float32{0.1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, vectorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopVectorStore(t *testing.T) {
	store := NewNoopVectorStore()

	vectorID, err := store.Store(context.Background(), &domain.EmbeddingRecord{})
	require.NoError(t, err)
	assert.Empty(t, vectorID)

	matches, err := store.Search(context.Background(), 1, []float32{0.1}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	assert.NoError(t, store.Delete(context.Background(), "anything"))
}
