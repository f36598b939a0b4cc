package domain

import "context"

// WrongQuestion is one entry extracted from an exam paper image.
type WrongQuestion struct {
	QuestionNumber string `json:"question_number"`
	QuestionText   string `json:"question_text"`
	Topic          string `json:"topic"`
	Explanation    string `json:"explanation"`
}

// ExamAnalysis is the structured result of analyzing an exam paper image.
// When the model's output cannot be parsed, implementations degrade to a
// zero-question result with the raw text in AnalysisNotes instead of
// failing the upload.
type ExamAnalysis struct {
	WrongQuestions      []WrongQuestion `json:"wrong_questions"`
	TotalDetected       int             `json:"total_questions_detected"`
	TotalWrongQuestions int             `json:"total_wrong_questions"`
	AnalysisNotes       string          `json:"analysis_notes"`
}

// ExamAnalyzer talks to the vision-capable LLM. Every call reports its
// token usage so the caller can feed the usage ledger.
type ExamAnalyzer interface {
	// AnalyzeExamImage extracts the wrongly answered questions from an exam
	// paper image.
	AnalyzeExamImage(ctx context.Context, image []byte, mimeType, subject string) (*ExamAnalysis, TokenUsage, error)

	// ExplainQuestion generates a structured step-by-step explanation with
	// math delimited for downstream rendering.
	ExplainQuestion(ctx context.Context, questionText, subject, grade string) (string, TokenUsage, error)

	// GenerateSimilarQuestions produces three practice questions testing the
	// same concepts as questionText.
	GenerateSimilarQuestions(ctx context.Context, questionText, subject, grade string) ([]string, TokenUsage, error)
}

// EmbeddingService generates fixed-dimension embedding vectors.
type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, TokenUsage, error)
}
