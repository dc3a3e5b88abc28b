package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/opsdesk/opsdesk/internal/authz"
	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/event"
	"github.com/opsdesk/opsdesk/internal/ports"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateProjectRequest carries the fields to change; nil means keep.
type UpdateProjectRequest struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *domain.ProjectStatus `json:"status,omitempty"`
}

// ProjectCommands implements the mutating project use cases.
type ProjectCommands struct {
	projects ports.ProjectRepository
	users    ports.UserRepository
	runner   *Runner
}

// NewProjectCommands creates the project command group.
func NewProjectCommands(projects ports.ProjectRepository, users ports.UserRepository, runner *Runner) *ProjectCommands {
	return &ProjectCommands{projects: projects, users: users, runner: runner}
}

// Create starts a new project.
func (c *ProjectCommands) Create(ctx context.Context, actor *domain.Actor, req CreateProjectRequest) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.create(ctx, actor, req)
	})
}

func (c *ProjectCommands) create(ctx context.Context, actor *domain.Actor, req CreateProjectRequest) (Result, []event.Event) {
	if req.Name == "" {
		return failure(apperror.Validation("name is required"))
	}
	if len(req.Name) > 200 {
		return failure(apperror.Validation("name must not exceed 200 characters"))
	}
	if err := authz.RequireCreateProject(actor); err != nil {
		return failure(err)
	}

	project := domain.NewProject(req.Name, req.Description, actor.ID)
	if err := c.projects.Create(ctx, project); err != nil {
		return failure(apperror.Internal("failed to create project", err))
	}

	evt := event.New(event.KindProjectCreated, actor, "project", project.ID, uuid.NewString(), map[string]interface{}{
		"name": project.Name,
	})
	return succeed(map[string]interface{}{"project": project}), []event.Event{evt}
}

// Update changes project fields; rank-gated, ownership is irrelevant.
func (c *ProjectCommands) Update(ctx context.Context, actor *domain.Actor, projectID string, req UpdateProjectRequest) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.update(ctx, actor, projectID, req)
	})
}

func (c *ProjectCommands) update(ctx context.Context, actor *domain.Actor, projectID string, req UpdateProjectRequest) (Result, []event.Event) {
	if req.Status != nil && !validProjectStatus(*req.Status) {
		return failure(apperror.Validation(fmt.Sprintf("invalid status: %s", *req.Status)))
	}
	project, err := c.resolveProject(ctx, projectID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireUpdateProject(actor, project); err != nil {
		return failure(err)
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		changes["name"] = map[string]string{"from": project.Name, "to": *req.Name}
		project.Name = *req.Name
	}
	if req.Description != nil {
		changes["description"] = "updated"
		project.Description = *req.Description
	}
	if req.Status != nil {
		changes["status"] = map[string]string{"from": string(project.Status), "to": string(*req.Status)}
		project.Status = *req.Status
	}
	if err := c.projects.Update(ctx, project); err != nil {
		return failure(apperror.Internal("failed to update project", err))
	}

	evt := event.New(event.KindProjectUpdated, actor, "project", project.ID, uuid.NewString(), changes)
	return succeed(map[string]interface{}{"project": project, "changes": changes}), []event.Event{evt}
}

// Delete removes a project; SUPER_ADMIN only.
func (c *ProjectCommands) Delete(ctx context.Context, actor *domain.Actor, projectID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.delete(ctx, actor, projectID)
	})
}

func (c *ProjectCommands) delete(ctx context.Context, actor *domain.Actor, projectID string) (Result, []event.Event) {
	project, err := c.resolveProject(ctx, projectID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireDeleteProject(actor, project); err != nil {
		return failure(err)
	}
	if err := c.projects.Delete(ctx, project.ID); err != nil {
		return failure(apperror.Internal("failed to delete project", err))
	}

	evt := event.New(event.KindProjectDeleted, actor, "project", project.ID, uuid.NewString(), map[string]interface{}{
		"name": project.Name,
	})
	return succeed(map[string]interface{}{"project_id": project.ID}), []event.Event{evt}
}

// AssignMember adds a user to the project.
func (c *ProjectCommands) AssignMember(ctx context.Context, actor *domain.Actor, projectID, userID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.assignMember(ctx, actor, projectID, userID)
	})
}

func (c *ProjectCommands) assignMember(ctx context.Context, actor *domain.Actor, projectID, userID string) (Result, []event.Event) {
	if userID == "" {
		return failure(apperror.Validation("user id is required"))
	}
	project, err := c.resolveProject(ctx, projectID)
	if err != nil {
		return failure(err)
	}
	member, err := c.resolveUser(ctx, userID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireAssignProjectMember(actor, project); err != nil {
		return failure(err)
	}
	if err := project.AddMember(member.ID); err != nil {
		return failure(err)
	}
	if err := c.projects.Update(ctx, project); err != nil {
		return failure(apperror.Internal("failed to update project", err))
	}

	evt := event.New(event.KindProjectMemberAdded, actor, "project", project.ID, uuid.NewString(), map[string]interface{}{
		"member_id": member.ID,
	})
	return succeed(map[string]interface{}{"project": project, "member_id": member.ID}), []event.Event{evt}
}

// RemoveMember removes a user from the project.
func (c *ProjectCommands) RemoveMember(ctx context.Context, actor *domain.Actor, projectID, userID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.removeMember(ctx, actor, projectID, userID)
	})
}

func (c *ProjectCommands) removeMember(ctx context.Context, actor *domain.Actor, projectID, userID string) (Result, []event.Event) {
	if userID == "" {
		return failure(apperror.Validation("user id is required"))
	}
	project, err := c.resolveProject(ctx, projectID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireRemoveProjectMember(actor, project); err != nil {
		return failure(err)
	}
	if err := project.RemoveMember(userID); err != nil {
		return failure(err)
	}
	if err := c.projects.Update(ctx, project); err != nil {
		return failure(apperror.Internal("failed to update project", err))
	}

	evt := event.New(event.KindProjectMemberRemoved, actor, "project", project.ID, uuid.NewString(), map[string]interface{}{
		"member_id": userID,
	})
	return succeed(map[string]interface{}{"project": project, "member_id": userID}), []event.Event{evt}
}

// Get retrieves a project for display.
func (c *ProjectCommands) Get(ctx context.Context, actor *domain.Actor, projectID string) (*domain.Project, error) {
	if err := authz.RequireReadProject(actor, nil); err != nil {
		return nil, err
	}
	return c.resolveProject(ctx, projectID)
}

// List retrieves projects matching the filter.
func (c *ProjectCommands) List(ctx context.Context, actor *domain.Actor, filter domain.ProjectFilter) ([]*domain.Project, error) {
	if err := authz.RequireReadProject(actor, nil); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	projects, err := c.projects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (c *ProjectCommands) resolveProject(ctx context.Context, id string) (*domain.Project, error) {
	if id == "" {
		return nil, apperror.Validation("project id is required")
	}
	project, err := c.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, apperror.Internal("failed to load project", err)
	}
	return project, nil
}

func (c *ProjectCommands) resolveUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := c.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return user, nil
}

func validProjectStatus(s domain.ProjectStatus) bool {
	switch s {
	case domain.ProjectStatusActive, domain.ProjectStatusOnHold, domain.ProjectStatusArchived:
		return true
	}
	return false
}
