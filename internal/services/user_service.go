package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bracula/campus/internal/models"
	"github.com/bracula/campus/internal/repository"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
)

type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.UserProfile, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	return s.users.GetProfile(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.UserProfile, error) {
	if upd.Empty() {
		return nil, appErr.New(appErr.CodeInvalid, "No fields to update")
	}
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if name == "" {
			return nil, appErr.Invalid("full_name", "full_name must not be empty")
		}
		upd.FullName = &name
	}
	if err := s.users.UpdateProfile(ctx, userID, upd); err != nil {
		return nil, err
	}
	logger.L().Info("profile updated", zap.Int64("user_id", userID))
	return s.users.GetProfile(ctx, userID)
}
