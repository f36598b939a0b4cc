package dto

// StudentStatsResponse is the per-user stats overview.
type StudentStatsResponse struct {
	TotalQuestions      int `json:"total_questions"`
	PendingQuestions    int `json:"pending_questions"`
	ReviewingQuestions  int `json:"reviewing_questions"`
	UnderstoodQuestions int `json:"understood_questions"`
	TotalUploads        int `json:"total_uploads"`
}

// SubjectStatsResponse is one row of the per-subject breakdown.
type SubjectStatsResponse struct {
	Subject        string `json:"subject"`
	TotalQuestions int    `json:"total_questions"`
	Pending        int    `json:"pending"`
	Reviewing      int    `json:"reviewing"`
	Understood     int    `json:"understood"`
}
