package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that actions can be performed on. There is no
// ownership concept for users; authorization on a user target compares actor
// identity against the target itself.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a new active user
func NewUser(email, name string, role Role, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ActorRef turns the user record into the actor-shaped reference policies
// compare against (ownership anchors, secondary actors).
func (u *User) ActorRef() *Actor {
	if u == nil {
		return nil
	}
	return &Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

// ChangeRole sets a new role on the user.
func (u *User) ChangeRole(role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// Deactivate disables the account.
func (u *User) Deactivate() error {
	if !u.Active {
		return ErrUserInactive
	}
	u.Active = false
	u.UpdatedAt = time.Now()
	return nil
}

// UserFilter represents filters for listing users
type UserFilter struct {
	Role   *Role `json:"role,omitempty"`
	Active *bool `json:"active,omitempty"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Custom errors
var (
	ErrUserNotFound = NewDomainError("user not found")
	ErrUserInactive = NewDomainError("user is already inactive")
	ErrInvalidRole  = NewDomainError("invalid role")
	ErrEmailTaken   = NewDomainError("email is already in use")
)
