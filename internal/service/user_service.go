package service

import (
	"context"

	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
	"wrongbook/internal/logger"

	"go.uber.org/zap"
)

// UserService defines profile and admin user-management operations.
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateGrade(ctx context.Context, userID int64, grade string) (*dto.UserResponse, error)

	// Admin operations.
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	CreateUser(ctx context.Context, req dto.AdminUserCreateRequest) (*dto.UserResponse, error)
	// DeleteUser removes target; actorID is the calling admin, who may not
	// delete themselves.
	DeleteUser(ctx context.Context, actorID, targetID int64) error
}

type userServiceImpl struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) UpdateGrade(ctx context.Context, userID int64, grade string) (*dto.UserResponse, error) {
	if grade == "" {
		return nil, domain.NewInvalidInputError("grade cannot be empty")
	}

	user, err := s.userRepo.UpdateGrade(ctx, userID, grade)
	if err != nil {
		return nil, domain.NewInternalError("failed to update grade", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list users", err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, ToUserResponse(user))
	}
	return responses, nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, req dto.AdminUserCreateRequest) (*dto.UserResponse, error) {
	if req.Email == "" {
		return nil, domain.NewInvalidInputError("email is required")
	}
	if req.Name == "" {
		return nil, domain.NewInvalidInputError("name is required")
	}

	user := &domain.User{
		Email:         req.Email,
		Name:          req.Name,
		Grade:         req.Grade,
		IdentityState: domain.IdentityUnbound,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Get().Info("Whitelisted new user",
		zap.Int64("userID", user.ID), zap.String("email", user.Email))

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return domain.NewSelfDeleteError()
	}

	target, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return domain.NewInternalError("failed to load user", err)
	}
	if target == nil {
		return domain.NewUserNotFoundError(targetID)
	}

	if err := s.userRepo.DeleteUser(ctx, targetID); err != nil {
		return domain.NewInternalError("failed to delete user", err)
	}
	logger.Get().Info("Deleted user",
		zap.Int64("targetID", targetID), zap.Int64("actorID", actorID))
	return nil
}
