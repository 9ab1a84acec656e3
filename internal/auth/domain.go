package auth

import (
	"time"

	"github.com/staybook/staybook/internal/shared"
)

// User represents an authenticated user account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor converts the user into the request actor.
func (u User) Actor() shared.Actor {
	return shared.Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func validRole(role string) bool {
	return role == shared.RoleAdmin || role == shared.RoleStaff
}
