// Package service contains the application's business logic.
package service

import (
	"context"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID      uint
	DisplayName string
	FirstName   string
	LastName    string
	PhotoURL    string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(userID), &user, cache.UserTTL, func() error {
		fetched, fetchErr := s.userRepo.GetByID(ctx, userID)
		if fetchErr != nil {
			return fetchErr
		}
		user = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DisplayName returns the user's current presentation name. Falls through
// first/last name, the stored display name, and the email before giving up.
func (s *UserService) DisplayName(ctx context.Context, userID uint) (string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.FullDisplayName(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthenticatedError("authentication required")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	user.DisplayName = strings.TrimSpace(in.DisplayName)
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.PhotoURL = strings.TrimSpace(in.PhotoURL)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, user.ID)
	return user, nil
}
