package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tutorcrm/internal/auth"
	apperrors "tutorcrm/internal/errors"
	"tutorcrm/internal/model"
)

func newTestAuthService(repo *MockUserRepository, store *MockTokenStore) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, NewUserService(repo, nil), jwtService, store), jwtService
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name            string
		email           string
		password        string
		passwordConfirm string
		setupMock       func(*MockUserRepository)
		expectedError   error
	}{
		{
			name:            "successful registration",
			email:           "test@example.com",
			password:        "password123",
			passwordConfirm: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
					Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = 7 }).
					Return(nil)
			},
		},
		{
			name:            "passwords do not match",
			email:           "test@example.com",
			password:        "a-very-strong-password",
			passwordConfirm: "a-very-strong-passw0rd",
			setupMock:       func(m *MockUserRepository) {},
			expectedError:   apperrors.ErrPasswordMismatch,
		},
		{
			name:            "mismatch wins over short password",
			email:           "test@example.com",
			password:        "abc",
			passwordConfirm: "abd",
			setupMock:       func(m *MockUserRepository) {},
			expectedError:   apperrors.ErrPasswordMismatch,
		},
		{
			name:            "password too short",
			email:           "test@example.com",
			password:        "12345",
			passwordConfirm: "12345",
			setupMock:       func(m *MockUserRepository) {},
			expectedError:   apperrors.ErrPasswordTooShort,
		},
		{
			name:            "user already exists",
			email:           "existing@example.com",
			password:        "password123",
			passwordConfirm: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{ID: 1, Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:            "concurrent registration hits unique index",
			email:           "race@example.com",
			password:        "password123",
			passwordConfirm: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service, jwtService := newTestAuthService(mockRepo, new(MockTokenStore))

			token, err := service.Register(context.Background(), tt.email, tt.password, tt.passwordConfirm)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, uint(7), claims.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_RegisterStoresHashNotPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	var stored *model.User
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*model.User)
			stored.ID = 1
		}).
		Return(nil)
	service, _ := newTestAuthService(mockRepo, new(MockTokenStore))

	_, err := service.Register(context.Background(), "test@example.com", "password123", "password123")
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           3,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
		},
		{
			name:     "invalid credentials - user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			email:    "test@example.com",
			password: "password124",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           3,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service, jwtService := newTestAuthService(mockRepo, new(MockTokenStore))

			token, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, uint(3), claims.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginStorageFailureIsNotUnauthorized(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("connection refused"))
	service, _ := newTestAuthService(mockRepo, new(MockTokenStore))

	_, err := service.Login(context.Background(), "test@example.com", "password123")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Authenticate(t *testing.T) {
	signer := auth.NewJWTService("test-secret", time.Hour)
	validToken, err := signer.GenerateAccessToken(5)
	require.NoError(t, err)
	foreignToken, err := auth.NewJWTService("other-secret", time.Hour).GenerateAccessToken(5)
	require.NoError(t, err)
	expiredToken, err := auth.NewJWTService("test-secret", -time.Minute).GenerateAccessToken(5)
	require.NoError(t, err)

	tests := []struct {
		name          string
		token         string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:  "valid token",
			token: validToken,
			setupMock: func(r *MockUserRepository, s *MockTokenStore) {
				s.On("IsAccessTokenRevoked", mock.Anything, mock.Anything).Return(false, nil)
				r.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Email: "test@example.com"}, nil)
			},
		},
		{
			name:          "missing token",
			token:         "",
			setupMock:     func(r *MockUserRepository, s *MockTokenStore) {},
			expectedError: apperrors.ErrUnauthorized,
		},
		{
			name:          "malformed token",
			token:         "abc.def",
			setupMock:     func(r *MockUserRepository, s *MockTokenStore) {},
			expectedError: apperrors.ErrUnauthorized,
		},
		{
			name:          "signed with another secret",
			token:         foreignToken,
			setupMock:     func(r *MockUserRepository, s *MockTokenStore) {},
			expectedError: apperrors.ErrUnauthorized,
		},
		{
			name:          "expired token",
			token:         expiredToken,
			setupMock:     func(r *MockUserRepository, s *MockTokenStore) {},
			expectedError: apperrors.ErrUnauthorized,
		},
		{
			name:  "revoked token",
			token: validToken,
			setupMock: func(r *MockUserRepository, s *MockTokenStore) {
				s.On("IsAccessTokenRevoked", mock.Anything, mock.Anything).Return(true, nil)
			},
			expectedError: apperrors.ErrUnauthorized,
		},
		{
			name:  "user no longer exists",
			token: validToken,
			setupMock: func(r *MockUserRepository, s *MockTokenStore) {
				s.On("IsAccessTokenRevoked", mock.Anything, mock.Anything).Return(false, nil)
				r.On("FindByID", mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockStore)
			service, _ := newTestAuthService(mockRepo, mockStore)

			user, err := service.Authenticate(context.Background(), tt.token)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(5), user.ID)
				assert.Equal(t, "test@example.com", user.Email)
			}

			mockRepo.AssertExpectations(t)
			mockStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockStore := new(MockTokenStore)
	service, jwtService := newTestAuthService(mockRepo, mockStore)

	token, err := jwtService.GenerateAccessToken(5)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	mockStore.On("RevokeAccessToken", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, service.Logout(context.Background(), token))
	assert.ErrorIs(t, service.Logout(context.Background(), "garbage"), apperrors.ErrUnauthorized)

	mockStore.AssertExpectations(t)
}

func TestAuthService_DeletedUserStopsAuthenticating(t *testing.T) {
	redisCache, _ := newRedisCache(t)
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7, Email: "a@example.com"}, nil).Once()
	mockRepo.On("Delete", mock.Anything, uint(7)).Return(nil)
	mockRepo.On("FindByID", mock.Anything, uint(7)).Return(nil, gorm.ErrRecordNotFound).Once()

	userService := NewUserService(mockRepo, redisCache)
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	service := NewAuthService(mockRepo, userService, jwtService, auth.NewTokenStore(redisCache))
	token, err := jwtService.GenerateAccessToken(7)
	require.NoError(t, err)

	user, err := service.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, uint(7), user.ID)

	require.NoError(t, userService.DeleteUser(context.Background(), 7))

	user, err = service.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Nil(t, user)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LogoutRevokesThroughRedis(t *testing.T) {
	redisCache, _ := newRedisCache(t)
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7, Email: "a@example.com"}, nil).Once()

	jwtService := auth.NewJWTService("test-secret", time.Hour)
	service := NewAuthService(mockRepo, NewUserService(mockRepo, redisCache), jwtService, auth.NewTokenStore(redisCache))
	token, err := jwtService.GenerateAccessToken(7)
	require.NoError(t, err)
	other, err := jwtService.GenerateAccessToken(7)
	require.NoError(t, err)

	_, err = service.Authenticate(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), token))

	_, err = service.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// other sessions of the same user are untouched; served from the user cache
	user, err := service.Authenticate(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	mockRepo.AssertExpectations(t)
}
