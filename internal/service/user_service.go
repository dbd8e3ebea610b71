package service

import (
	"errors"
	"fmt"

	"github.com/jakeunsted/pub/internal/models"
	"github.com/jakeunsted/pub/internal/repository"
	"github.com/jakeunsted/pub/internal/validation"
)

type UserService struct {
	userRepo  repository.UserRepositoryInterface
	tokenRepo repository.DeviceTokenRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface, tokenRepo repository.DeviceTokenRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo, tokenRepo: tokenRepo}
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

type UpdateProfileInput struct {
	DisplayName string `json:"display_name"`
}

func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" {
		name := validation.TrimAndLimit(input.DisplayName, 100)
		if name == "" {
			return nil, errors.New("display name cannot be blank")
		}
		user.DisplayName = name
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// RegisterDeviceToken stores an Expo push token for the user's device.
func (s *UserService) RegisterDeviceToken(userID uint, token string, platform models.DevicePlatform) error {
	if token == "" {
		return errors.New("device token is required")
	}
	switch platform {
	case models.PlatformIOS, models.PlatformAndroid, models.PlatformWeb:
	default:
		return errors.New("platform must be ios, android or web")
	}
	return s.tokenRepo.Register(userID, token, platform)
}

func (s *UserService) UnregisterDeviceToken(userID uint, token string) error {
	if token == "" {
		return errors.New("device token is required")
	}
	return s.tokenRepo.Unregister(userID, token)
}
