package dto

import (
	"time"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LogoutRequest carries the token when it is not sent as a bearer header.
type LogoutRequest struct {
	Token string `json:"token"`
}

// AuthResponse standard response for signup and login.
type AuthResponse struct {
	Success   bool                  `json:"success"`
	User      *domain.PublicAccount `json:"user"`
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

// UserResponse answers GET /auth/me.
type UserResponse struct {
	Success bool                  `json:"success"`
	User    *domain.PublicAccount `json:"user"`
}
