package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/opsdesk/internal/domain"
)

func TestProjectPolicy_ManagerTier(t *testing.T) {
	managers := []*domain.Actor{
		actorWith("1", domain.RoleSuperAdmin),
		actorWith("2", domain.RoleTechManager),
		actorWith("3", domain.RoleAdmin),
	}
	others := []*domain.Actor{
		actorWith("4", domain.RoleTechnician),
		actorWith("5", domain.RoleEndUser),
		nil,
	}

	for _, actor := range managers {
		assert.True(t, CanCreateProject(actor))
		assert.True(t, CanUpdateProject(actor))
		assert.True(t, CanAssignProjectMember(actor))
		assert.True(t, CanRemoveProjectMember(actor))
	}
	for _, actor := range others {
		assert.False(t, CanCreateProject(actor))
		assert.False(t, CanUpdateProject(actor))
		assert.False(t, CanAssignProjectMember(actor))
		assert.False(t, CanRemoveProjectMember(actor))
	}
}

func TestCanDeleteProject_SuperAdminOnly(t *testing.T) {
	assert.True(t, CanDeleteProject(actorWith("1", domain.RoleSuperAdmin)))
	// The tied top rank is not enough; deletion checks the role identity.
	assert.False(t, CanDeleteProject(actorWith("2", domain.RoleTechManager)))
	assert.False(t, CanDeleteProject(actorWith("3", domain.RoleAdmin)))
	assert.False(t, CanDeleteProject(actorWith("4", domain.RoleTechnician)))
	assert.False(t, CanDeleteProject(nil))
}
