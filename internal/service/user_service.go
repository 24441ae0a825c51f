package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	Profile(ctx context.Context, id int64) (*models.User, error)
	Remove(ctx context.Context, id int64) error
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{u: u}
}

func (s *userService) Profile(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) Remove(ctx context.Context, id int64) error {
	if err := s.u.Remove(ctx, id); err != nil {
		return fmt.Errorf("removing user %d: %w", id, err)
	}
	return nil
}
