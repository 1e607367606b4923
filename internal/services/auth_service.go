package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields            = newValidationError("please provide all required fields")
	ErrMissingCredentials       = newValidationError("please provide email and password")
	ErrPasswordMismatch         = newValidationError("passwords do not match")
	ErrPasswordTooShort         = newValidationError("password must be at least 6 characters")
	ErrPasswordTooLong          = newValidationError("password cannot exceed 72 bytes")
	ErrNameRequired             = newValidationError("name cannot be empty")
	ErrProfileFieldTooLong      = newValidationError("profile field too long")
	ErrEmailTaken               = errors.New("email already in use")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrUserNotFound             = errors.New("user not found")
	ErrFailedToHashPassword     = errors.New("failed to hash password")
	ErrFailedToCreateUser       = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User  *models.User
	Token string
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// Register creates a new user and issues a token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)

	if name == "" || email == "" || input.Password == "" || input.PasswordConfirm == "" {
		return nil, ErrMissingFields
	}
	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(input.Password) > constants.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	if utf8.RuneCountInString(name) > constants.MaxNameLength {
		return nil, ErrProfileFieldTooLong
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race against a concurrent registration with the same email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return s.issue(user)
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials. Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Verify resolves a bearer token to a user that still exists.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput holds the profile fields a user may change. Nil means unchanged.
type UpdateProfileInput struct {
	Name   *string
	Bio    *string
	Avatar *string
}

// UpdateProfile applies the whitelisted profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if utf8.RuneCountInString(name) > constants.MaxNameLength {
			return nil, ErrProfileFieldTooLong
		}
		user.Name = name
	}
	if input.Bio != nil {
		if utf8.RuneCountInString(*input.Bio) > constants.MaxBioLength {
			return nil, ErrProfileFieldTooLong
		}
		user.Bio = *input.Bio
	}
	if input.Avatar != nil {
		avatar := strings.TrimSpace(*input.Avatar)
		if utf8.RuneCountInString(avatar) > constants.MaxAvatarLength {
			return nil, ErrProfileFieldTooLong
		}
		user.Avatar = avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ChangePasswordInput holds the fields for a password change.
type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	NewPasswordConfirm string
}

// ChangePassword replaces the password hash after checking the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	if input.CurrentPassword == "" || input.NewPassword == "" || input.NewPasswordConfirm == "" {
		return ErrMissingFields
	}
	if input.NewPassword != input.NewPasswordConfirm {
		return ErrPasswordMismatch
	}
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(input.NewPassword) > constants.MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrCurrentPasswordIncorrect
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hash), nil
}
