package dto

import (
	"time"

	"github.com/ucpm/scrum-api/internal/auth"
	"github.com/ucpm/scrum-api/internal/models"
)

// UserDTO represents the authenticated user's own profile
type UserDTO struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Bio         string    `json:"bio"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserSummaryDTO represents a user referenced from another resource
type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User    UserDTO `json:"user"`
	Access  string  `json:"access"`
	Refresh string  `json:"refresh"`
}

// RefreshResponse is returned by token refresh
type RefreshResponse struct {
	Access string `json:"access"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Bio:         user.Bio,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
	}
}

// ToUserSummaryDTO converts an optional user reference
func ToUserSummaryDTO(user *models.User) *UserSummaryDTO {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &UserSummaryDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToAuthResponse bundles a user with its freshly issued tokens
func ToAuthResponse(user models.User, pair auth.TokenPair) AuthResponse {
	return AuthResponse{
		User:    ToUserDTO(user),
		Access:  pair.Access,
		Refresh: pair.Refresh,
	}
}
