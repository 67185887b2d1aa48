package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ucpm/scrum-api/internal/auth"
	"github.com/ucpm/scrum-api/internal/constants"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/repository"
)

var (
	ErrInvalidCredentials = &Error{Kind: ErrUnauthenticated, Message: "invalid username or password"}
	ErrInvalidRefresh     = &Error{Kind: ErrUnauthenticated, Message: "refresh token is invalid or expired"}
	ErrUserNotFound       = notFoundError("user")
	ErrUsernameTaken      = conflictError("username", "a user with that username already exists")
	ErrEmailTaken         = conflictError("email", "a user with that email already exists")
	ErrPasswordTooShort   = validationError("password", fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
)

// AuthService handles registration, login, token refresh and profiles.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Bio      string
}

// Register creates a new user and issues a token pair for it.
func (s *AuthService) Register(input RegisterInput) (*models.User, auth.TokenPair, error) {
	user, err := s.createUser(input, false)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	return user, pair, nil
}

// CreateSuperuser creates a user that can see every project.
func (s *AuthService) CreateSuperuser(input RegisterInput) (*models.User, error) {
	return s.createUser(input, true)
}

func (s *AuthService) createUser(input RegisterInput, superuser bool) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, validationError("username", "username is required")
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if err := s.checkUnique(username, email, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Bio:          strings.TrimSpace(input.Bio),
		IsSuperuser:  superuser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) checkUnique(username, email string, excludeID uint64) error {
	if username != "" {
		taken, err := s.userRepo.UsernameTaken(username, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}
	}
	if email != "" {
		taken, err := s.userRepo.EmailTaken(email, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", validationError("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", validationError("email", "enter a valid email address")
	}
	return email, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(input LoginInput) (*models.User, auth.TokenPair, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if isRecordNotFound(err) {
			return nil, auth.TokenPair{}, ErrInvalidCredentials
		}
		return nil, auth.TokenPair{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, auth.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	return user, pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, constants.TokenTypeRefresh)
	if err != nil {
		return "", ErrInvalidRefresh
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", ErrInvalidRefresh
	}

	if _, err := s.GetUser(userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidRefresh
		}
		return "", err
	}

	return s.tokens.IssueAccess(userID)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput holds the profile fields to change. Nil fields are left alone.
type UpdateProfileInput struct {
	Username *string
	Email    *string
	Bio      *string
	Password *string
}

// UpdateProfile updates the caller's own profile.
func (s *AuthService) UpdateProfile(userID uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	var username, email string
	if input.Username != nil {
		username = strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, validationError("username", "username cannot be empty")
		}
	}
	if input.Email != nil {
		if email, err = normalizeEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(username, email, user.ID); err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}
