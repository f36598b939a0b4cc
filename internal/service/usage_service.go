package service

import (
	"context"
	"time"

	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
)

// UsageService exposes the token usage ledger.
type UsageService interface {
	GetUserUsage(ctx context.Context, userID int64) (*dto.TokenUsageResponse, error)
	// GetAllUsage is the system-wide report for administrators.
	GetAllUsage(ctx context.Context) (*dto.AllTokenUsageResponse, error)
}

type usageServiceImpl struct {
	userRepo domain.UserRepository
}

// NewUsageService creates a new instance of UsageService.
func NewUsageService(userRepo domain.UserRepository) UsageService {
	return &usageServiceImpl{userRepo: userRepo}
}

func formatUpdateTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func (s *usageServiceImpl) GetUserUsage(ctx context.Context, userID int64) (*dto.TokenUsageResponse, error) {
	usage, err := s.userRepo.GetTokenUsage(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load token usage", err)
	}
	if usage == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}
	return &dto.TokenUsageResponse{
		UserID:               usage.UserID,
		UserEmail:            usage.Email,
		TotalTokensUsed:      usage.TotalTokensUsed,
		PromptTokensUsed:     usage.PromptTokensUsed,
		CompletionTokensUsed: usage.CompletionTokensUsed,
		LastTokenUpdate:      formatUpdateTime(usage.LastTokenUpdate),
	}, nil
}

func (s *usageServiceImpl) GetAllUsage(ctx context.Context) (*dto.AllTokenUsageResponse, error) {
	report, err := s.userRepo.GetAllTokenUsage(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to load usage report", err)
	}

	users := make([]dto.UserTokenUsageItem, 0, len(report.Users))
	for _, u := range report.Users {
		users = append(users, dto.UserTokenUsageItem{
			UserID:               u.UserID,
			Email:                u.Email,
			Name:                 u.Name,
			TotalTokensUsed:      u.TotalTokensUsed,
			PromptTokensUsed:     u.PromptTokensUsed,
			CompletionTokensUsed: u.CompletionTokensUsed,
			LastTokenUpdate:      formatUpdateTime(u.LastTokenUpdate),
		})
	}
	return &dto.AllTokenUsageResponse{
		TotalTokens:           report.TotalTokens,
		TotalPromptTokens:     report.TotalPromptTokens,
		TotalCompletionTokens: report.TotalCompletionTokens,
		TotalUsers:            report.TotalUsers,
		Users:                 users,
	}, nil
}
