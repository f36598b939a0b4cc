package domain

import "context"

// StudentStats is the per-user overview derived from questions and uploads.
type StudentStats struct {
	TotalQuestions      int
	PendingQuestions    int
	ReviewingQuestions  int
	UnderstoodQuestions int
	TotalUploads        int
}

// SubjectStats is one row of the per-subject breakdown.
type SubjectStats struct {
	Subject        string
	TotalQuestions int
	Pending        int
	Reviewing      int
	Understood     int
}

// StatsRepository derives read-side aggregates; it owns no state.
type StatsRepository interface {
	GetStudentStats(ctx context.Context, userID int64, grade string) (*StudentStats, error)
	// GetSubjectStats returns per-subject counts sorted by total descending.
	GetSubjectStats(ctx context.Context, userID int64, grade string) ([]*SubjectStats, error)
}
