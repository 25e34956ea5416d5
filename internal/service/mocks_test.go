package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tutorcrm/internal/model"
	"tutorcrm/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLessonRepository is a mock implementation of LessonRepository.
type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) CreateBatch(ctx context.Context, lessons []model.Lesson) error {
	args := m.Called(ctx, lessons)
	return args.Error(0)
}

func (m *MockLessonRepository) FindInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Lesson, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lesson), args.Error(1)
}

func (m *MockLessonRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*model.Lesson, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lesson), args.Error(1)
}

func (m *MockLessonRepository) Save(ctx context.Context, lesson *model.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) DeleteForUser(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// WithTransaction runs fn against the mock itself so expectations set on the
// inner calls still apply.
func (m *MockLessonRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.LessonRepository) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
