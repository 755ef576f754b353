package user

import (
	"time"

	"labtest-be/internal/auth"
)

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         auth.Role  `json:"role"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateStaffInput struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

// Session is what a successful register or login hands back.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
