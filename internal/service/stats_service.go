package service

import (
	"context"

	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
)

// StatsService exposes read-side aggregates over a user's questions.
type StatsService interface {
	GetStudentStats(ctx context.Context, userID int64, grade string) (*dto.StudentStatsResponse, error)
	GetSubjectStats(ctx context.Context, userID int64, grade string) ([]dto.SubjectStatsResponse, error)
}

type statsServiceImpl struct {
	statsRepo domain.StatsRepository
}

// NewStatsService creates a new instance of StatsService.
func NewStatsService(statsRepo domain.StatsRepository) StatsService {
	return &statsServiceImpl{statsRepo: statsRepo}
}

func (s *statsServiceImpl) GetStudentStats(ctx context.Context, userID int64, grade string) (*dto.StudentStatsResponse, error) {
	stats, err := s.statsRepo.GetStudentStats(ctx, userID, grade)
	if err != nil {
		return nil, domain.NewInternalError("failed to compute student stats", err)
	}
	return &dto.StudentStatsResponse{
		TotalQuestions:      stats.TotalQuestions,
		PendingQuestions:    stats.PendingQuestions,
		ReviewingQuestions:  stats.ReviewingQuestions,
		UnderstoodQuestions: stats.UnderstoodQuestions,
		TotalUploads:        stats.TotalUploads,
	}, nil
}

func (s *statsServiceImpl) GetSubjectStats(ctx context.Context, userID int64, grade string) ([]dto.SubjectStatsResponse, error) {
	stats, err := s.statsRepo.GetSubjectStats(ctx, userID, grade)
	if err != nil {
		return nil, domain.NewInternalError("failed to compute subject stats", err)
	}

	responses := make([]dto.SubjectStatsResponse, 0, len(stats))
	for _, st := range stats {
		responses = append(responses, dto.SubjectStatsResponse{
			Subject:        st.Subject,
			TotalQuestions: st.TotalQuestions,
			Pending:        st.Pending,
			Reviewing:      st.Reviewing,
			Understood:     st.Understood,
		})
	}
	return responses, nil
}
