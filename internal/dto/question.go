package dto

import "time"

// QuestionResponse is the public representation of a wrong question.
type QuestionResponse struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	Subject         string            `json:"subject"`
	Grade           string            `json:"grade,omitempty"`
	QuestionText    string            `json:"question_text"`
	ImageURL        string            `json:"image_url,omitempty"`
	ImageSnippetURL string            `json:"image_snippet_url,omitempty"`
	Explanation     string            `json:"explanation,omitempty"`
	Status          string            `json:"status"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// QuestionListFilters are the query parameters accepted by the wrong
// questions listing. Dates are ISO 8601 strings; unparseable values are
// dropped, not rejected.
type QuestionListFilters struct {
	Subject   string `query:"subject"`
	Grade     string `query:"grade"`
	Status    string `query:"status"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

// QuestionUpdateRequest is a partial status/explanation update.
type QuestionUpdateRequest struct {
	Status      *string `json:"status,omitempty"`
	Explanation *string `json:"explanation,omitempty"`
}

// QuestionSearchRequest is a semantic search query.
type QuestionSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// UploadResponse summarizes one processed upload.
type UploadResponse struct {
	Message        string `json:"message"`
	QuestionsCount int    `json:"questions_count"`
	UploadID       int64  `json:"upload_id"`
}

// UploadHistoryResponse is one row of the caller's upload audit trail.
type UploadHistoryResponse struct {
	ID                 int64     `json:"id"`
	Filename           string    `json:"filename"`
	Subject            string    `json:"subject"`
	QuestionsExtracted int       `json:"questions_extracted"`
	Status             string    `json:"status"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// SimilarQuestionsResponse carries generated practice questions.
type SimilarQuestionsResponse struct {
	QuestionID int64    `json:"question_id"`
	Questions  []string `json:"questions"`
}
