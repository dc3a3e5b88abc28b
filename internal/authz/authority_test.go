package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/opsdesk/internal/domain"
)

func actorWith(id string, role domain.Role) *domain.Actor {
	return &domain.Actor{ID: id, Name: "actor " + id, Role: role}
}

func TestIsAdminOverride(t *testing.T) {
	assert.True(t, IsAdminOverride(actorWith("1", domain.RoleSuperAdmin)))
	assert.True(t, IsAdminOverride(actorWith("2", domain.RoleTechManager)))
	assert.False(t, IsAdminOverride(actorWith("3", domain.RoleAdmin)))
	assert.False(t, IsAdminOverride(actorWith("4", domain.RoleTechnician)))
	assert.False(t, IsAdminOverride(actorWith("5", domain.RoleEndUser)))
	assert.False(t, IsAdminOverride(nil))
}

func TestIsOwner(t *testing.T) {
	owner := actorWith("1", domain.RoleTechnician)

	assert.True(t, IsOwner(actorWith("1", domain.RoleTechnician), owner))
	assert.False(t, IsOwner(actorWith("2", domain.RoleTechnician), owner))
	assert.False(t, IsOwner(nil, owner))
	assert.False(t, IsOwner(owner, nil))
	assert.False(t, IsOwner(nil, nil))
}

func TestCanActOnSubordinate(t *testing.T) {
	admin := actorWith("1", domain.RoleAdmin)

	assert.True(t, CanActOnSubordinate(admin, actorWith("2", domain.RoleTechnician)))
	assert.True(t, CanActOnSubordinate(admin, actorWith("3", domain.RoleEndUser)))
	assert.False(t, CanActOnSubordinate(admin, actorWith("4", domain.RoleAdmin)))
	assert.False(t, CanActOnSubordinate(admin, actorWith("5", domain.RoleSuperAdmin)))

	// The two top roles share a rank, so neither subordinates the other.
	assert.False(t, CanActOnSubordinate(actorWith("6", domain.RoleSuperAdmin), actorWith("7", domain.RoleTechManager)))
	assert.False(t, CanActOnSubordinate(actorWith("7", domain.RoleTechManager), actorWith("6", domain.RoleSuperAdmin)))

	assert.False(t, CanActOnSubordinate(nil, actorWith("8", domain.RoleEndUser)))
	assert.False(t, CanActOnSubordinate(admin, nil))
}

func TestCanActOnOwnedOrSubordinate(t *testing.T) {
	tech := actorWith("1", domain.RoleTechnician)

	// Owner path.
	assert.True(t, CanActOnOwnedOrSubordinate(tech, actorWith("1", domain.RoleTechnician)))
	// Peer, not owner.
	assert.False(t, CanActOnOwnedOrSubordinate(tech, actorWith("2", domain.RoleTechnician)))
	// Subordinate path.
	assert.True(t, CanActOnOwnedOrSubordinate(tech, actorWith("3", domain.RoleEndUser)))
	// Override path regardless of ownership.
	assert.True(t, CanActOnOwnedOrSubordinate(actorWith("4", domain.RoleTechManager), actorWith("5", domain.RoleSuperAdmin)))
}
