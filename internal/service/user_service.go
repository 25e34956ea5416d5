package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tutorcrm/internal/cache"
	"tutorcrm/internal/model"
	"tutorcrm/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes user lookups and removal.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// cachedUser keeps the password hash out of redis.
type cachedUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// GetUser is a read-through lookup. Only id and email are served from the cache.
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached cachedUser
		if err := json.Unmarshal(data, &cached); err == nil && cached.ID == id {
			return &model.User{ID: cached.ID, Email: cached.Email}, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cachedUser{ID: user.ID, Email: user.Email}); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// DeleteUser removes the user with its lessons and drops the cached copy,
// so tokens issued to it stop resolving immediately.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
