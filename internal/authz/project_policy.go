package authz

import "github.com/opsdesk/opsdesk/internal/domain"

// Project policy. Ownership grants no extra rights on projects: every rule is
// rank-based. Deletion is reserved for the single top-most role by identity,
// not merely by rank — TECH_MANAGER shares the top rank and still may not
// delete.

// CanCreateProject requires the manager tier (admin rank) or above.
func CanCreateProject(actor *domain.Actor) bool {
	if actor == nil {
		return false
	}
	return actor.Role.HasHigherOrEqualRank(domain.RoleAdmin)
}

// CanReadProject is permissive: every authenticated role may read.
func CanReadProject(actor *domain.Actor) bool {
	return actor != nil
}

// CanUpdateProject requires the manager tier or above, creator or not.
func CanUpdateProject(actor *domain.Actor) bool {
	return CanCreateProject(actor)
}

// CanDeleteProject is restricted to SUPER_ADMIN exactly.
func CanDeleteProject(actor *domain.Actor) bool {
	if actor == nil {
		return false
	}
	return actor.Role == domain.RoleSuperAdmin
}

// CanAssignProjectMember requires the manager tier or above.
func CanAssignProjectMember(actor *domain.Actor) bool {
	return CanCreateProject(actor)
}

// CanRemoveProjectMember follows the member-assignment rule.
func CanRemoveProjectMember(actor *domain.Actor) bool {
	return CanAssignProjectMember(actor)
}

// Assertion variants.

func RequireCreateProject(actor *domain.Actor) error {
	if !CanCreateProject(actor) {
		return deny(actor, "create", "project", "", "requires admin role or above")
	}
	return nil
}

func RequireReadProject(actor *domain.Actor, project *domain.Project) error {
	if !CanReadProject(actor) {
		return deny(actor, "read", "project", projectID(project), "authentication required")
	}
	return nil
}

func RequireUpdateProject(actor *domain.Actor, project *domain.Project) error {
	if !CanUpdateProject(actor) {
		return deny(actor, "update", "project", projectID(project), "requires admin role or above")
	}
	return nil
}

func RequireDeleteProject(actor *domain.Actor, project *domain.Project) error {
	if !CanDeleteProject(actor) {
		return deny(actor, "delete", "project", projectID(project), "requires the super admin role")
	}
	return nil
}

func RequireAssignProjectMember(actor *domain.Actor, project *domain.Project) error {
	if !CanAssignProjectMember(actor) {
		return deny(actor, "assign member to", "project", projectID(project), "requires admin role or above")
	}
	return nil
}

func RequireRemoveProjectMember(actor *domain.Actor, project *domain.Project) error {
	if !CanRemoveProjectMember(actor) {
		return deny(actor, "remove member from", "project", projectID(project), "requires admin role or above")
	}
	return nil
}

func projectID(p *domain.Project) string {
	if p == nil {
		return ""
	}
	return p.ID
}
