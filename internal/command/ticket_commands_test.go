package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

func newTicketSetup() (*TicketCommands, *memTicketRepo, *memUserRepo, *harness) {
	h := newHarness()
	tickets := newMemTicketRepo()
	users := newMemUserRepo(
		userWithRole("super", domain.RoleSuperAdmin),
		userWithRole("manager", domain.RoleTechManager),
		userWithRole("admin", domain.RoleAdmin),
		userWithRole("tech", domain.RoleTechnician),
		userWithRole("tech2", domain.RoleTechnician),
		userWithRole("enduser", domain.RoleEndUser),
	)
	return NewTicketCommands(tickets, users, h.runner), tickets, users, h
}

func TestTicketCreate_Success(t *testing.T) {
	cmds, tickets, users, h := newTicketSetup()
	tech, _ := users.FindByID(context.Background(), "tech")

	res := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "VPN keeps dropping",
		Description: "Drops every 20 minutes on the office network",
		Category:    domain.TicketCategoryNetwork,
		Priority:    domain.TicketPriorityHigh,
	})

	assert.True(t, res.Success)
	assert.Len(t, tickets.tickets, 1)
	assert.Len(t, h.audits.entries, 1)
	assert.Equal(t, "TICKET_CREATED", h.audits.entries[0].Action)
	assert.Equal(t, "tech", h.audits.entries[0].ActorID)
}

func TestTicketCreate_EndUserForbidden(t *testing.T) {
	cmds, tickets, users, h := newTicketSetup()
	endUser, _ := users.FindByID(context.Background(), "enduser")

	res := cmds.Create(context.Background(), actorFor(endUser), CreateTicketRequest{
		Title:       "Please reset my password",
		Description: "Locked out since this morning",
		Category:    domain.TicketCategoryAccount,
		Priority:    domain.TicketPriorityMedium,
	})

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeForbidden, res.Code)
	assert.Empty(t, tickets.tickets)
	assert.Empty(t, h.audits.entries)
}

func TestTicketCreate_ValidationBeforePolicy(t *testing.T) {
	cmds, _, users, h := newTicketSetup()
	endUser, _ := users.FindByID(context.Background(), "enduser")

	// Invalid payload from a role that would also be denied: validation wins.
	res := cmds.Create(context.Background(), actorFor(endUser), CreateTicketRequest{})

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeValidation, res.Code)
	assert.Empty(t, h.audits.entries)
}

func TestTicketUpdate_NotFoundBeforeForbidden(t *testing.T) {
	cmds, _, users, _ := newTicketSetup()
	endUser, _ := users.FindByID(context.Background(), "enduser")

	title := "New title"
	res := cmds.Update(context.Background(), actorFor(endUser), "missing-id", UpdateTicketRequest{Title: &title})

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeNotFound, res.Code)
}

func TestTicketDelete_TechnicianCannotDeletePeerTicket(t *testing.T) {
	cmds, tickets, users, h := newTicketSetup()
	tech, _ := users.FindByID(context.Background(), "tech")
	tech2, _ := users.FindByID(context.Background(), "tech2")

	created := cmds.Create(context.Background(), actorFor(tech2), CreateTicketRequest{
		Title:       "Monitor flickers",
		Description: "Second monitor flickers under load",
		Category:    domain.TicketCategoryHardware,
		Priority:    domain.TicketPriorityLow,
	})
	assert.True(t, created.Success)
	ticket := created.Data["ticket"].(*domain.Ticket)
	auditCount := len(h.audits.entries)

	res := cmds.Delete(context.Background(), actorFor(tech), ticket.ID)

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeForbidden, res.Code)
	assert.Len(t, tickets.tickets, 1)
	// The failed command contributed nothing to the audit trail.
	assert.Len(t, h.audits.entries, auditCount)
}

func TestTicketAssign_TechnicianSelfAssignOwnTicket(t *testing.T) {
	cmds, _, users, h := newTicketSetup()
	tech, _ := users.FindByID(context.Background(), "tech")

	created := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "Disk almost full",
		Description: "C: drive at 98 percent",
		Category:    domain.TicketCategoryHardware,
		Priority:    domain.TicketPriorityMedium,
	})
	ticket := created.Data["ticket"].(*domain.Ticket)

	res := cmds.Assign(context.Background(), actorFor(tech), ticket.ID, "tech")

	assert.True(t, res.Success)
	assert.Equal(t, "tech", res.Data["new_assignee"])
	assert.Nil(t, res.Data["previous_assignee"])

	var assigned int
	for _, e := range h.audits.entries {
		if e.Action == "TICKET_ASSIGNED" {
			assigned++
			assert.Equal(t, "tech", e.Metadata["new_assignee"])
		}
	}
	assert.Equal(t, 1, assigned)
}

func TestTicketAssign_TechnicianCannotSelfAssignPeerTicket(t *testing.T) {
	cmds, _, users, h := newTicketSetup()
	tech, _ := users.FindByID(context.Background(), "tech")
	tech2, _ := users.FindByID(context.Background(), "tech2")

	created := cmds.Create(context.Background(), actorFor(tech2), CreateTicketRequest{
		Title:       "Mouse broken",
		Description: "Left click intermittent",
		Category:    domain.TicketCategoryHardware,
		Priority:    domain.TicketPriorityLow,
	})
	ticket := created.Data["ticket"].(*domain.Ticket)
	auditCount := len(h.audits.entries)

	res := cmds.Assign(context.Background(), actorFor(tech), ticket.ID, "tech")

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeForbidden, res.Code)
	assert.Len(t, h.audits.entries, auditCount)
}

func TestTicketAssign_ReassignTracksPrevious(t *testing.T) {
	cmds, _, users, _ := newTicketSetup()
	admin, _ := users.FindByID(context.Background(), "admin")
	tech, _ := users.FindByID(context.Background(), "tech")

	created := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "Server room too warm",
		Description: "AC readout at 28C",
		Category:    domain.TicketCategoryOther,
		Priority:    domain.TicketPriorityCritical,
	})
	ticket := created.Data["ticket"].(*domain.Ticket)

	first := cmds.Assign(context.Background(), actorFor(admin), ticket.ID, "tech")
	assert.True(t, first.Success)

	second := cmds.Assign(context.Background(), actorFor(admin), ticket.ID, "tech2")
	assert.True(t, second.Success)
	assert.Equal(t, "tech", second.Data["previous_assignee"])
	assert.Equal(t, "tech2", second.Data["new_assignee"])
}

func TestTicketAssign_MissingAssigneeIsNotFound(t *testing.T) {
	cmds, _, users, _ := newTicketSetup()
	admin, _ := users.FindByID(context.Background(), "admin")
	tech, _ := users.FindByID(context.Background(), "tech")

	created := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "Keyboard layout wrong",
		Description: "Maps to the wrong locale after update",
		Category:    domain.TicketCategorySoftware,
		Priority:    domain.TicketPriorityLow,
	})
	ticket := created.Data["ticket"].(*domain.Ticket)

	res := cmds.Assign(context.Background(), actorFor(admin), ticket.ID, "ghost")

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeNotFound, res.Code)
}

func TestTicketResolveAndClose_EmitOneEventEach(t *testing.T) {
	cmds, _, users, h := newTicketSetup()
	manager, _ := users.FindByID(context.Background(), "manager")
	tech, _ := users.FindByID(context.Background(), "tech")

	created := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "License expired",
		Description: "CAD license expired yesterday",
		Category:    domain.TicketCategorySoftware,
		Priority:    domain.TicketPriorityHigh,
	})
	ticket := created.Data["ticket"].(*domain.Ticket)

	resolved := cmds.Resolve(context.Background(), actorFor(manager), ticket.ID, "renewed the license")
	assert.True(t, resolved.Success)

	closed := cmds.Close(context.Background(), actorFor(manager), ticket.ID)
	assert.True(t, closed.Success)

	actions := map[string]int{}
	for _, e := range h.audits.entries {
		actions[e.Action]++
	}
	assert.Equal(t, 1, actions["TICKET_RESOLVED"])
	assert.Equal(t, 1, actions["TICKET_CLOSED"])
}

func TestTicketClose_UnresolvedConflicts(t *testing.T) {
	cmds, _, users, _ := newTicketSetup()
	manager, _ := users.FindByID(context.Background(), "manager")
	tech, _ := users.FindByID(context.Background(), "tech")

	created := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "Phone not syncing",
		Description: "Calendar sync stopped",
		Category:    domain.TicketCategorySoftware,
		Priority:    domain.TicketPriorityLow,
	})
	ticket := created.Data["ticket"].(*domain.Ticket)

	res := cmds.Close(context.Background(), actorFor(manager), ticket.ID)

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeConflict, res.Code)
}

func TestTicketUpdate_PersistFailureEmitsNothing(t *testing.T) {
	cmds, tickets, users, h := newTicketSetup()
	manager, _ := users.FindByID(context.Background(), "manager")
	tech, _ := users.FindByID(context.Background(), "tech")

	created := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "Projector input dead",
		Description: "HDMI port 2 does not respond",
		Category:    domain.TicketCategoryHardware,
		Priority:    domain.TicketPriorityMedium,
	})
	ticket := created.Data["ticket"].(*domain.Ticket)
	auditCount := len(h.audits.entries)

	tickets.updateErr = errors.New("connection reset")
	title := "Projector HDMI 2 dead"
	res := cmds.Update(context.Background(), actorFor(manager), ticket.ID, UpdateTicketRequest{Title: &title})

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeInternal, res.Code)
	assert.True(t, h.uow.rolledBack)
	assert.Len(t, h.audits.entries, auditCount)
}

func TestTicketCreate_CommitFailureEmitsNothing(t *testing.T) {
	cmds, _, users, h := newTicketSetup()
	tech, _ := users.FindByID(context.Background(), "tech")

	h.uow.commitErr = errors.New("commit: connection lost")
	res := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "Laptop battery swollen",
		Description: "Case is bulging near the trackpad",
		Category:    domain.TicketCategoryHardware,
		Priority:    domain.TicketPriorityCritical,
	})

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeInternal, res.Code)
	assert.Empty(t, h.audits.entries)
}

func TestTicketCreate_AuditFailureLeavesResultIntact(t *testing.T) {
	cmds, tickets, users, h := newTicketSetup()
	tech, _ := users.FindByID(context.Background(), "tech")

	h.audits.createErr = errors.New("audit store down")
	res := cmds.Create(context.Background(), actorFor(tech), CreateTicketRequest{
		Title:       "Docking station dead",
		Description: "No output on any port",
		Category:    domain.TicketCategoryHardware,
		Priority:    domain.TicketPriorityMedium,
	})

	// The mutation committed; the audit side channel failing cannot undo it.
	assert.True(t, res.Success)
	assert.Len(t, tickets.tickets, 1)
	assert.Empty(t, h.audits.entries)
}
