package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/opsdesk/internal/domain"
)

func TestCanCreateTicket(t *testing.T) {
	assert.True(t, CanCreateTicket(actorWith("1", domain.RoleSuperAdmin)))
	assert.True(t, CanCreateTicket(actorWith("2", domain.RoleTechManager)))
	assert.True(t, CanCreateTicket(actorWith("3", domain.RoleAdmin)))
	assert.True(t, CanCreateTicket(actorWith("4", domain.RoleTechnician)))
	assert.False(t, CanCreateTicket(actorWith("5", domain.RoleEndUser)))
	assert.False(t, CanCreateTicket(nil))
}

func TestCanUpdateTicket(t *testing.T) {
	cases := []struct {
		name    string
		actor   *domain.Actor
		creator *domain.Actor
		want    bool
	}{
		{"super admin over anyone", actorWith("1", domain.RoleSuperAdmin), actorWith("2", domain.RoleTechManager), true},
		{"tech manager over anyone", actorWith("1", domain.RoleTechManager), actorWith("2", domain.RoleSuperAdmin), true},
		{"admin over technician creator", actorWith("1", domain.RoleAdmin), actorWith("2", domain.RoleTechnician), true},
		{"admin over end user creator", actorWith("1", domain.RoleAdmin), actorWith("2", domain.RoleEndUser), true},
		{"admin over admin creator", actorWith("1", domain.RoleAdmin), actorWith("2", domain.RoleAdmin), false},
		{"admin over super admin creator", actorWith("1", domain.RoleAdmin), actorWith("2", domain.RoleSuperAdmin), false},
		// An admin's own ticket still fails the strict-rank comparison.
		{"admin over own ticket", actorWith("1", domain.RoleAdmin), actorWith("1", domain.RoleAdmin), false},
		{"admin with missing creator", actorWith("1", domain.RoleAdmin), nil, false},
		{"technician over own ticket", actorWith("1", domain.RoleTechnician), actorWith("1", domain.RoleTechnician), true},
		{"technician over peer ticket", actorWith("1", domain.RoleTechnician), actorWith("2", domain.RoleTechnician), false},
		{"technician with missing creator", actorWith("1", domain.RoleTechnician), nil, false},
		{"end user", actorWith("1", domain.RoleEndUser), actorWith("1", domain.RoleEndUser), false},
		{"nil actor", nil, actorWith("1", domain.RoleEndUser), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CanUpdateTicket(c.actor, c.creator))
			assert.Equal(t, c.want, CanDeleteTicket(c.actor, c.creator))
		})
	}
}

func TestCanAssignTicket(t *testing.T) {
	assert.True(t, CanAssignTicket(actorWith("1", domain.RoleSuperAdmin)))
	assert.True(t, CanAssignTicket(actorWith("2", domain.RoleTechManager)))
	assert.True(t, CanAssignTicket(actorWith("3", domain.RoleAdmin)))
	assert.False(t, CanAssignTicket(actorWith("4", domain.RoleTechnician)))
	assert.False(t, CanAssignTicket(actorWith("5", domain.RoleEndUser)))
	assert.False(t, CanAssignTicket(nil))
}

func TestCanSelfAssignTicket(t *testing.T) {
	tech := actorWith("1", domain.RoleTechnician)
	own := actorWith("1", domain.RoleTechnician)
	other := actorWith("2", domain.RoleTechnician)

	openTicket := func() *domain.Ticket {
		return domain.NewTicket("t", "", domain.TicketCategoryOther, domain.TicketPriorityLow, "1")
	}

	t.Run("technician picks up own unassigned ticket", func(t *testing.T) {
		assert.True(t, CanSelfAssignTicket(tech, own, openTicket()))
	})

	t.Run("technician cannot pick up another's ticket", func(t *testing.T) {
		assert.False(t, CanSelfAssignTicket(tech, other, openTicket()))
	})

	t.Run("technician cannot pick up an already assigned ticket", func(t *testing.T) {
		ticket := openTicket()
		assignee := "someone"
		ticket.AssignedTo = &assignee
		assert.False(t, CanSelfAssignTicket(tech, own, ticket))
	})

	t.Run("technician cannot pick up a resolved ticket", func(t *testing.T) {
		ticket := openTicket()
		ticket.Status = domain.TicketStatusResolved
		assert.False(t, CanSelfAssignTicket(tech, own, ticket))
	})

	t.Run("admin tier skips the ownership check", func(t *testing.T) {
		ticket := openTicket()
		assert.True(t, CanSelfAssignTicket(actorWith("9", domain.RoleAdmin), other, ticket))
		assert.True(t, CanSelfAssignTicket(actorWith("9", domain.RoleTechManager), other, ticket))
		assert.True(t, CanSelfAssignTicket(actorWith("9", domain.RoleSuperAdmin), other, ticket))
	})

	t.Run("end user never", func(t *testing.T) {
		assert.False(t, CanSelfAssignTicket(actorWith("9", domain.RoleEndUser), other, openTicket()))
	})

	t.Run("nil inputs", func(t *testing.T) {
		assert.False(t, CanSelfAssignTicket(nil, own, openTicket()))
		assert.False(t, CanSelfAssignTicket(tech, own, nil))
	})
}

func TestRequireUpdateTicket_ErrorShape(t *testing.T) {
	actor := actorWith("1", domain.RoleEndUser)
	ticket := domain.NewTicket("t", "", domain.TicketCategoryOther, domain.TicketPriorityLow, "2")

	err := RequireUpdateTicket(actor, actorWith("2", domain.RoleTechnician), ticket)
	assert.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	authzErr, ok := err.(*AuthorizationError)
	assert.True(t, ok)
	assert.Equal(t, "update", authzErr.Action)
	assert.Equal(t, "ticket", authzErr.ResourceType)
	assert.Equal(t, ticket.ID, authzErr.ResourceID)
}
