package domain

import (
	"context"
	"time"
)

// QuestionStatus is the review lifecycle of a wrong question. Any value in
// the enumeration is accepted at any time; transitions are not forced into
// the pending -> reviewing -> understood order.
type QuestionStatus string

const (
	StatusPending    QuestionStatus = "pending"
	StatusReviewing  QuestionStatus = "reviewing"
	StatusUnderstood QuestionStatus = "understood"
)

// ValidStatus reports whether s is one of the enumerated statuses.
func ValidStatus(s QuestionStatus) bool {
	switch s {
	case StatusPending, StatusReviewing, StatusUnderstood:
		return true
	}
	return false
}

// Question is one wrongly-answered exam question extracted for a user.
// Every read/update/delete must verify ownership; a mismatch is reported as
// not-found so callers cannot probe for other users' question ids.
type Question struct {
	ID              int64
	UserID          int64
	Subject         string
	Grade           string
	QuestionText    string
	ImageURL        string
	ImageSnippetURL string
	Explanation     string
	Status          QuestionStatus
	VectorID        string // reference into the vector store, empty if none
	Metadata        map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// QuestionFilters are independent, composable predicates for listing a
// user's questions. Unparseable dates are dropped silently by the caller.
type QuestionFilters struct {
	Subject   string
	Grade     string
	Status    QuestionStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// QuestionUpdate is a partial update; nil fields are left unchanged.
type QuestionUpdate struct {
	Status      *QuestionStatus
	Explanation *string
}

// QuestionRepository defines the interface for question persistence.
// All operations are scoped to the owning user.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *Question) error
	GetQuestion(ctx context.Context, id, userID int64) (*Question, error)
	ListQuestions(ctx context.Context, userID int64, filters QuestionFilters) ([]*Question, error)
	GetQuestionsByIDs(ctx context.Context, userID int64, ids []int64) ([]*Question, error)
	UpdateQuestion(ctx context.Context, id, userID int64, update QuestionUpdate) (*Question, error)
	SetVectorID(ctx context.Context, id int64, vectorID string) error
	SetExplanation(ctx context.Context, id, userID int64, explanation string) (*Question, error)
	DeleteQuestion(ctx context.Context, id, userID int64) (*Question, error)
	SearchByText(ctx context.Context, userID int64, query string, limit int) ([]*Question, error)
}

// UploadStatus is the lifecycle of one upload attempt.
type UploadStatus string

const (
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadFailed     UploadStatus = "failed"
)

// UploadHistory is the audit record of one upload attempt. It receives
// exactly one terminal update: completed with a count, or failed with an
// error message. A crash mid-pipeline leaves it stuck in processing.
type UploadHistory struct {
	ID                 int64
	UserID             int64
	Filename           string
	Subject            string
	QuestionsExtracted int
	Status             UploadStatus
	ErrorMessage       string
	CreatedAt          time.Time
}

// UploadRepository defines the interface for upload audit persistence.
type UploadRepository interface {
	CreateUpload(ctx context.Context, upload *UploadHistory) error
	MarkCompleted(ctx context.Context, id int64, questionsExtracted int) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	ListUploadsByUser(ctx context.Context, userID int64) ([]*UploadHistory, error)
}
