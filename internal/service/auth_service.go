package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tutorcrm/internal/auth"
	"tutorcrm/internal/errors"
	"tutorcrm/internal/model"
	"tutorcrm/internal/repository"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

// AuthService handles registration, login and bearer token checks.
type AuthService interface {
	Register(ctx context.Context, email, password, passwordConfirm string) (accessToken string, err error)
	Login(ctx context.Context, email, password string) (accessToken string, err error)
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
	Logout(ctx context.Context, accessToken string) error
}

type authService struct {
	userRepo    repository.UserRepository
	userService UserService
	jwtService  *auth.JWTService
	tokenStore  auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	userService UserService,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		userService: userService,
		jwtService:  jwtService,
		tokenStore:  tokenStore,
	}
}

// Register creates a user with a hashed password and returns a fresh access token.
func (s *authService) Register(ctx context.Context, email, password, passwordConfirm string) (string, error) {
	if password != passwordConfirm {
		return "", errors.ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", errors.ErrPasswordTooShort
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", errors.ErrEmailTaken
	}
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if stderrors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password longer than 72 bytes", errors.ErrMalformedInput)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return "", errors.ErrEmailTaken
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.issue(user.ID)
}

// Login verifies the password and returns a fresh access token.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errors.ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

// Authenticate resolves a bearer token to its stored user.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: missing token", errors.ErrUnauthorized)
	}

	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrUnauthorized, err)
	}

	revoked, err := s.tokenStore.IsAccessTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", errors.ErrUnauthorized)
	}

	user, err := s.userService.GetUser(ctx, claims.UserID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user", errors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// Logout revokes the token until it would have expired.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrUnauthorized, err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokenStore.RevokeAccessToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *authService) issue(userID uint) (string, error) {
	token, err := s.jwtService.GenerateAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return token, nil
}
