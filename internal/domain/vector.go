package domain

import "context"

// EmbeddingRecord is a question embedding held in the secondary vector
// index. The index is best-effort: its absence or staleness must never make
// the primary store unavailable.
type EmbeddingRecord struct {
	UserID       int64
	QuestionID   int64
	QuestionText string
	Subject      string
	Grade        string
	Embedding    []float32
	Metadata     map[string]string
}

// VectorMatch is one nearest-neighbour hit.
type VectorMatch struct {
	VectorID   string
	QuestionID int64
	Similarity float64
}

// VectorStore is the best-effort secondary index for semantic search.
// A disabled deployment uses a no-op implementation; callers never depend
// on its success.
type VectorStore interface {
	Store(ctx context.Context, record *EmbeddingRecord) (string, error)
	Search(ctx context.Context, userID int64, embedding []float32, limit int) ([]VectorMatch, error)
	Delete(ctx context.Context, vectorID string) error
}
