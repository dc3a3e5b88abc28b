package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/opsdesk/opsdesk/internal/authz"
	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/event"
	"github.com/opsdesk/opsdesk/internal/ports"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

// PasswordHasher hashes credentials for new accounts.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// CreateUserRequest represents the request to provision a user
type CreateUserRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
	Password string      `json:"password"`
}

// UpdateUserProfileRequest carries the non-role fields to change.
type UpdateUserProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// UserCommands implements the mutating user-account use cases.
type UserCommands struct {
	users  ports.UserRepository
	hasher PasswordHasher
	runner *Runner
}

// NewUserCommands creates the user command group.
func NewUserCommands(users ports.UserRepository, hasher PasswordHasher, runner *Runner) *UserCommands {
	return &UserCommands{users: users, hasher: hasher, runner: runner}
}

// Create provisions a new account. The granted role follows the same rank
// gate as role changes.
func (c *UserCommands) Create(ctx context.Context, actor *domain.Actor, req CreateUserRequest) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.create(ctx, actor, req)
	})
}

func (c *UserCommands) create(ctx context.Context, actor *domain.Actor, req CreateUserRequest) (Result, []event.Event) {
	if err := validateCreateUser(req); err != nil {
		return failure(err)
	}
	if err := authz.RequireCreateUser(actor, req.Role); err != nil {
		return failure(err)
	}

	if existing, err := c.users.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return failure(apperror.Conflict("email is already in use", domain.ErrEmailTaken))
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return failure(apperror.Internal("failed to check email", err))
	}

	hash, err := c.hasher.HashPassword(req.Password)
	if err != nil {
		return failure(apperror.Internal("failed to hash password", err))
	}
	user := domain.NewUser(req.Email, req.Name, req.Role, hash)
	if err := c.users.Create(ctx, user); err != nil {
		return failure(apperror.Internal("failed to create user", err))
	}

	evt := event.New(event.KindUserCreated, actor, "user", user.ID, uuid.NewString(), map[string]interface{}{
		"email": user.Email,
		"role":  string(user.Role),
	})
	return succeed(map[string]interface{}{"user": user}), []event.Event{evt}
}

// UpdateProfile changes non-role profile fields.
func (c *UserCommands) UpdateProfile(ctx context.Context, actor *domain.Actor, userID string, req UpdateUserProfileRequest) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.updateProfile(ctx, actor, userID, req)
	})
}

func (c *UserCommands) updateProfile(ctx context.Context, actor *domain.Actor, userID string, req UpdateUserProfileRequest) (Result, []event.Event) {
	if err := validateUpdateProfile(req); err != nil {
		return failure(err)
	}
	target, err := c.resolveUser(ctx, userID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireUpdateUserProfile(actor, target); err != nil {
		return failure(err)
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		changes["name"] = map[string]string{"from": target.Name, "to": *req.Name}
		target.Name = *req.Name
	}
	if req.Email != nil {
		changes["email"] = map[string]string{"from": target.Email, "to": *req.Email}
		target.Email = *req.Email
	}
	if err := c.users.Update(ctx, target); err != nil {
		return failure(apperror.Internal("failed to update user", err))
	}

	evt := event.New(event.KindUserUpdated, actor, "user", target.ID, uuid.NewString(), changes)
	return succeed(map[string]interface{}{"user": target, "changes": changes}), []event.Event{evt}
}

// ChangeRole grants a new role to the target account.
func (c *UserCommands) ChangeRole(ctx context.Context, actor *domain.Actor, userID string, newRole domain.Role) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.changeRole(ctx, actor, userID, newRole)
	})
}

func (c *UserCommands) changeRole(ctx context.Context, actor *domain.Actor, userID string, newRole domain.Role) (Result, []event.Event) {
	if !newRole.Valid() {
		return failure(apperror.Validation(fmt.Sprintf("invalid role: %s", newRole)))
	}
	target, err := c.resolveUser(ctx, userID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireChangeUserRole(actor, target, newRole); err != nil {
		return failure(err)
	}

	previous := target.Role
	if err := target.ChangeRole(newRole); err != nil {
		return failure(err)
	}
	if err := c.users.Update(ctx, target); err != nil {
		return failure(apperror.Internal("failed to update user", err))
	}

	evt := event.New(event.KindUserRoleChanged, actor, "user", target.ID, uuid.NewString(), map[string]interface{}{
		"previous_role": string(previous),
		"new_role":      string(newRole),
	})
	return succeed(map[string]interface{}{
		"user":          target,
		"previous_role": string(previous),
		"new_role":      string(newRole),
	}), []event.Event{evt}
}

// Deactivate disables the target account.
func (c *UserCommands) Deactivate(ctx context.Context, actor *domain.Actor, userID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.deactivate(ctx, actor, userID)
	})
}

func (c *UserCommands) deactivate(ctx context.Context, actor *domain.Actor, userID string) (Result, []event.Event) {
	target, err := c.resolveUser(ctx, userID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireDeactivateUser(actor, target); err != nil {
		return failure(err)
	}
	if err := target.Deactivate(); err != nil {
		return failure(err)
	}
	if err := c.users.Update(ctx, target); err != nil {
		return failure(apperror.Internal("failed to update user", err))
	}

	evt := event.New(event.KindUserDeactivated, actor, "user", target.ID, uuid.NewString(), nil)
	return succeed(map[string]interface{}{"user": target}), []event.Event{evt}
}

// Delete removes the target account; SUPER_ADMIN only, never on self.
func (c *UserCommands) Delete(ctx context.Context, actor *domain.Actor, userID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.deleteUser(ctx, actor, userID)
	})
}

func (c *UserCommands) deleteUser(ctx context.Context, actor *domain.Actor, userID string) (Result, []event.Event) {
	target, err := c.resolveUser(ctx, userID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireDeleteUser(actor, target); err != nil {
		return failure(err)
	}
	if err := c.users.Delete(ctx, target.ID); err != nil {
		return failure(apperror.Internal("failed to delete user", err))
	}

	evt := event.New(event.KindUserDeleted, actor, "user", target.ID, uuid.NewString(), map[string]interface{}{
		"email": target.Email,
	})
	return succeed(map[string]interface{}{"user_id": target.ID}), []event.Event{evt}
}

// Get retrieves a user for display.
func (c *UserCommands) Get(ctx context.Context, actor *domain.Actor, userID string) (*domain.User, error) {
	target, err := c.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireViewUser(actor, target); err != nil {
		return nil, err
	}
	return target, nil
}

// List retrieves users matching the filter.
func (c *UserCommands) List(ctx context.Context, actor *domain.Actor, filter domain.UserFilter) ([]*domain.User, error) {
	if err := authz.RequireViewUser(actor, nil); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	users, err := c.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (c *UserCommands) resolveUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperror.Validation("user id is required")
	}
	user, err := c.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return user, nil
}

func validateCreateUser(req CreateUserRequest) error {
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return apperror.Validation("a valid email is required")
	}
	if req.Name == "" {
		return apperror.Validation("name is required")
	}
	if len(req.Password) < 8 {
		return apperror.Validation("password must be at least 8 characters")
	}
	if !req.Role.Valid() {
		return apperror.Validation(fmt.Sprintf("invalid role: %s", req.Role))
	}
	return nil
}

func validateUpdateProfile(req UpdateUserProfileRequest) error {
	if req.Name != nil && (len(*req.Name) < 2 || len(*req.Name) > 255) {
		return apperror.Validation("name must be between 2 and 255 characters")
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		return apperror.Validation("invalid email format")
	}
	return nil
}
