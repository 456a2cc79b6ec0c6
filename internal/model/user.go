package model

import (
	"time"

	"github.com/google/uuid"
)

// Role names. A user may hold several roles; precedence for the post-login
// landing route is coordinador > administrador > estudiante.
const (
	RoleStudent       = "estudiante"
	RoleCoordinator   = "coordinador"
	RoleAdministrator = "administrador"
)

// User is a portal account. Identity is deliberately minimal: email +
// bcrypt hash + role set.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
