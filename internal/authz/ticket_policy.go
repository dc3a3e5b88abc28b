package authz

import "github.com/opsdesk/opsdesk/internal/domain"

// Ticket policy. The creator reference is the ownership anchor; the current
// assignee never grants rights. The rule shape is shared with assets.

// CanCreateTicket allows every role above end user.
func CanCreateTicket(actor *domain.Actor) bool {
	if actor == nil {
		return false
	}
	return actor.Role.HasHigherOrEqualRank(domain.RoleTechnician)
}

// CanReadTicket is permissive: every authenticated role may read.
func CanReadTicket(actor *domain.Actor) bool {
	return actor != nil
}

// CanUpdateTicket applies the tiered update rule: top-tier roles always,
// admins only over a strictly lower-ranked creator, technicians only over
// their own tickets.
func CanUpdateTicket(actor *domain.Actor, creator *domain.Actor) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleSuperAdmin, domain.RoleTechManager:
		return true
	case domain.RoleAdmin:
		return creator != nil && actor.Role.HasStrictlyHigherRank(creator.Role)
	case domain.RoleTechnician:
		return IsOwner(actor, creator)
	default:
		return false
	}
}

// CanDeleteTicket follows the update rule.
func CanDeleteTicket(actor *domain.Actor, creator *domain.Actor) bool {
	return CanUpdateTicket(actor, creator)
}

// CanAssignTicket governs assigning a ticket to somebody else.
func CanAssignTicket(actor *domain.Actor) bool {
	if actor == nil {
		return false
	}
	return IsAdminOverride(actor) || actor.Role == domain.RoleAdmin
}

// CanSelfAssignTicket governs an actor taking a ticket for themselves.
// Technicians may only pick up their own tickets while still unassigned and
// in an assignable status.
func CanSelfAssignTicket(actor *domain.Actor, creator *domain.Actor, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleSuperAdmin, domain.RoleTechManager, domain.RoleAdmin:
		return true
	case domain.RoleTechnician:
		return IsOwner(actor, creator) && ticket.AssignedTo == nil && ticket.Assignable()
	default:
		return false
	}
}

// CanReassignTicket governs moving a ticket from one assignee to a third
// party.
func CanReassignTicket(actor *domain.Actor) bool {
	return CanAssignTicket(actor)
}

// CanUnassignTicket governs clearing the current assignee.
func CanUnassignTicket(actor *domain.Actor) bool {
	return CanAssignTicket(actor)
}

// Assertion variants. Each raises an AuthorizationError carrying the actor
// and action context when the paired predicate is false.

func RequireCreateTicket(actor *domain.Actor) error {
	if !CanCreateTicket(actor) {
		return deny(actor, "create", "ticket", "", "requires technician role or above")
	}
	return nil
}

func RequireReadTicket(actor *domain.Actor, ticket *domain.Ticket) error {
	if !CanReadTicket(actor) {
		return deny(actor, "read", "ticket", ticketID(ticket), "authentication required")
	}
	return nil
}

func RequireUpdateTicket(actor *domain.Actor, creator *domain.Actor, ticket *domain.Ticket) error {
	if !CanUpdateTicket(actor, creator) {
		return deny(actor, "update", "ticket", ticketID(ticket), "only the creator or a strictly superior role may update")
	}
	return nil
}

func RequireDeleteTicket(actor *domain.Actor, creator *domain.Actor, ticket *domain.Ticket) error {
	if !CanDeleteTicket(actor, creator) {
		return deny(actor, "delete", "ticket", ticketID(ticket), "only the creator or a strictly superior role may delete")
	}
	return nil
}

func RequireAssignTicket(actor *domain.Actor, ticket *domain.Ticket) error {
	if !CanAssignTicket(actor) {
		return deny(actor, "assign", "ticket", ticketID(ticket), "requires admin role or above")
	}
	return nil
}

func RequireSelfAssignTicket(actor *domain.Actor, creator *domain.Actor, ticket *domain.Ticket) error {
	if !CanSelfAssignTicket(actor, creator, ticket) {
		return deny(actor, "self-assign", "ticket", ticketID(ticket), "technicians may only pick up their own unassigned tickets")
	}
	return nil
}

func RequireReassignTicket(actor *domain.Actor, ticket *domain.Ticket) error {
	if !CanReassignTicket(actor) {
		return deny(actor, "reassign", "ticket", ticketID(ticket), "requires admin role or above")
	}
	return nil
}

func RequireUnassignTicket(actor *domain.Actor, ticket *domain.Ticket) error {
	if !CanUnassignTicket(actor) {
		return deny(actor, "unassign", "ticket", ticketID(ticket), "requires admin role or above")
	}
	return nil
}

func ticketID(t *domain.Ticket) string {
	if t == nil {
		return ""
	}
	return t.ID
}
