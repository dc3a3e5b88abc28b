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

// CreateTicketRequest represents the request to create a ticket
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest carries the fields to change; nil means keep.
type UpdateTicketRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Category    *domain.TicketCategory `json:"category,omitempty"`
	Priority    *domain.TicketPriority `json:"priority,omitempty"`
}

// TicketCommands implements the mutating ticket use cases.
type TicketCommands struct {
	tickets ports.TicketRepository
	users   ports.UserRepository
	runner  *Runner
}

// NewTicketCommands creates the ticket command group.
func NewTicketCommands(tickets ports.TicketRepository, users ports.UserRepository, runner *Runner) *TicketCommands {
	return &TicketCommands{tickets: tickets, users: users, runner: runner}
}

// Create opens a new ticket with the actor as creator.
func (c *TicketCommands) Create(ctx context.Context, actor *domain.Actor, req CreateTicketRequest) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.create(ctx, actor, req)
	})
}

func (c *TicketCommands) create(ctx context.Context, actor *domain.Actor, req CreateTicketRequest) (Result, []event.Event) {
	if err := validateCreateTicket(req); err != nil {
		return failure(err)
	}
	if err := authz.RequireCreateTicket(actor); err != nil {
		return failure(err)
	}

	ticket := domain.NewTicket(req.Title, req.Description, req.Category, req.Priority, actor.ID)
	if err := c.tickets.Create(ctx, ticket); err != nil {
		return failure(apperror.Internal("failed to create ticket", err))
	}

	evt := event.New(event.KindTicketCreated, actor, "ticket", ticket.ID, uuid.NewString(), map[string]interface{}{
		"title":    ticket.Title,
		"category": string(ticket.Category),
		"priority": string(ticket.Priority),
	})
	return succeed(map[string]interface{}{"ticket": ticket}), []event.Event{evt}
}

// Update changes ticket fields subject to the tiered update rule.
func (c *TicketCommands) Update(ctx context.Context, actor *domain.Actor, ticketID string, req UpdateTicketRequest) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.update(ctx, actor, ticketID, req)
	})
}

func (c *TicketCommands) update(ctx context.Context, actor *domain.Actor, ticketID string, req UpdateTicketRequest) (Result, []event.Event) {
	if err := validateUpdateTicket(req); err != nil {
		return failure(err)
	}
	ticket, err := c.resolveTicket(ctx, ticketID)
	if err != nil {
		return failure(err)
	}
	creator, err := c.creatorRef(ctx, ticket.CreatedBy)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireUpdateTicket(actor, creator, ticket); err != nil {
		return failure(err)
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = map[string]string{"from": ticket.Title, "to": *req.Title}
		ticket.Title = *req.Title
	}
	if req.Description != nil {
		changes["description"] = "updated"
		ticket.Description = *req.Description
	}
	if req.Category != nil {
		changes["category"] = map[string]string{"from": string(ticket.Category), "to": string(*req.Category)}
		ticket.Category = *req.Category
	}
	if req.Priority != nil {
		changes["priority"] = map[string]string{"from": string(ticket.Priority), "to": string(*req.Priority)}
		ticket.Priority = *req.Priority
	}
	if err := c.tickets.Update(ctx, ticket); err != nil {
		return failure(apperror.Internal("failed to update ticket", err))
	}

	evt := event.New(event.KindTicketUpdated, actor, "ticket", ticket.ID, uuid.NewString(), changes)
	return succeed(map[string]interface{}{"ticket": ticket, "changes": changes}), []event.Event{evt}
}

// Delete removes a ticket subject to the tiered delete rule.
func (c *TicketCommands) Delete(ctx context.Context, actor *domain.Actor, ticketID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.delete(ctx, actor, ticketID)
	})
}

func (c *TicketCommands) delete(ctx context.Context, actor *domain.Actor, ticketID string) (Result, []event.Event) {
	ticket, err := c.resolveTicket(ctx, ticketID)
	if err != nil {
		return failure(err)
	}
	creator, err := c.creatorRef(ctx, ticket.CreatedBy)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireDeleteTicket(actor, creator, ticket); err != nil {
		return failure(err)
	}
	if err := c.tickets.Delete(ctx, ticket.ID); err != nil {
		return failure(apperror.Internal("failed to delete ticket", err))
	}

	evt := event.New(event.KindTicketDeleted, actor, "ticket", ticket.ID, uuid.NewString(), map[string]interface{}{
		"title": ticket.Title,
	})
	return succeed(map[string]interface{}{"ticket_id": ticket.ID}), []event.Event{evt}
}

// Assign hands a ticket to a user. The policy branch depends on the current
// state: a first assignment to someone else, a self-assignment, or a
// reassignment away from an existing assignee.
func (c *TicketCommands) Assign(ctx context.Context, actor *domain.Actor, ticketID, assigneeID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.assign(ctx, actor, ticketID, assigneeID)
	})
}

func (c *TicketCommands) assign(ctx context.Context, actor *domain.Actor, ticketID, assigneeID string) (Result, []event.Event) {
	if assigneeID == "" {
		return failure(apperror.Validation("assignee id is required"))
	}
	ticket, err := c.resolveTicket(ctx, ticketID)
	if err != nil {
		return failure(err)
	}
	if _, err := c.resolveUser(ctx, assigneeID); err != nil {
		return failure(err)
	}
	creator, err := c.creatorRef(ctx, ticket.CreatedBy)
	if err != nil {
		return failure(err)
	}

	switch {
	case ticket.AssignedTo != nil:
		err = authz.RequireReassignTicket(actor, ticket)
	case actor != nil && assigneeID == actor.ID:
		err = authz.RequireSelfAssignTicket(actor, creator, ticket)
	default:
		err = authz.RequireAssignTicket(actor, ticket)
	}
	if err != nil {
		return failure(err)
	}

	var previous interface{}
	if ticket.AssignedTo != nil {
		previous = *ticket.AssignedTo
	}
	if err := ticket.AssignTo(assigneeID); err != nil {
		return failure(err)
	}
	if err := c.tickets.Update(ctx, ticket); err != nil {
		return failure(apperror.Internal("failed to update ticket", err))
	}

	evt := event.New(event.KindTicketAssigned, actor, "ticket", ticket.ID, uuid.NewString(), map[string]interface{}{
		"previous_assignee": previous,
		"new_assignee":      assigneeID,
	})
	return succeed(map[string]interface{}{
		"ticket":            ticket,
		"previous_assignee": previous,
		"new_assignee":      assigneeID,
	}), []event.Event{evt}
}

// Unassign clears the current assignee and reopens the ticket.
func (c *TicketCommands) Unassign(ctx context.Context, actor *domain.Actor, ticketID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.unassign(ctx, actor, ticketID)
	})
}

func (c *TicketCommands) unassign(ctx context.Context, actor *domain.Actor, ticketID string) (Result, []event.Event) {
	ticket, err := c.resolveTicket(ctx, ticketID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireUnassignTicket(actor, ticket); err != nil {
		return failure(err)
	}

	var previous interface{}
	if ticket.AssignedTo != nil {
		previous = *ticket.AssignedTo
	}
	if err := ticket.Unassign(); err != nil {
		return failure(err)
	}
	if err := c.tickets.Update(ctx, ticket); err != nil {
		return failure(apperror.Internal("failed to update ticket", err))
	}

	evt := event.New(event.KindTicketUnassigned, actor, "ticket", ticket.ID, uuid.NewString(), map[string]interface{}{
		"previous_assignee": previous,
	})
	return succeed(map[string]interface{}{"ticket": ticket, "previous_assignee": previous}), []event.Event{evt}
}

// Resolve marks the ticket resolved; gated by the update rule.
func (c *TicketCommands) Resolve(ctx context.Context, actor *domain.Actor, ticketID, resolution string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.resolve(ctx, actor, ticketID, resolution)
	})
}

func (c *TicketCommands) resolve(ctx context.Context, actor *domain.Actor, ticketID, resolution string) (Result, []event.Event) {
	if resolution == "" {
		return failure(apperror.Validation("resolution is required"))
	}
	ticket, err := c.resolveTicket(ctx, ticketID)
	if err != nil {
		return failure(err)
	}
	creator, err := c.creatorRef(ctx, ticket.CreatedBy)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireUpdateTicket(actor, creator, ticket); err != nil {
		return failure(err)
	}
	if err := ticket.Resolve(); err != nil {
		return failure(err)
	}
	if err := c.tickets.Update(ctx, ticket); err != nil {
		return failure(apperror.Internal("failed to update ticket", err))
	}

	evt := event.New(event.KindTicketResolved, actor, "ticket", ticket.ID, uuid.NewString(), map[string]interface{}{
		"resolution": resolution,
	})
	return succeed(map[string]interface{}{"ticket": ticket}), []event.Event{evt}
}

// Close closes a resolved ticket; gated by the update rule.
func (c *TicketCommands) Close(ctx context.Context, actor *domain.Actor, ticketID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.close(ctx, actor, ticketID)
	})
}

func (c *TicketCommands) close(ctx context.Context, actor *domain.Actor, ticketID string) (Result, []event.Event) {
	ticket, err := c.resolveTicket(ctx, ticketID)
	if err != nil {
		return failure(err)
	}
	creator, err := c.creatorRef(ctx, ticket.CreatedBy)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireUpdateTicket(actor, creator, ticket); err != nil {
		return failure(err)
	}
	if err := ticket.Close(); err != nil {
		return failure(err)
	}
	if err := c.tickets.Update(ctx, ticket); err != nil {
		return failure(apperror.Internal("failed to update ticket", err))
	}

	evt := event.New(event.KindTicketClosed, actor, "ticket", ticket.ID, uuid.NewString(), nil)
	return succeed(map[string]interface{}{"ticket": ticket}), []event.Event{evt}
}

// Get retrieves a ticket for display.
func (c *TicketCommands) Get(ctx context.Context, actor *domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := authz.RequireReadTicket(actor, nil); err != nil {
		return nil, err
	}
	return c.resolveTicket(ctx, ticketID)
}

// List retrieves tickets matching the filter.
func (c *TicketCommands) List(ctx context.Context, actor *domain.Actor, filter domain.TicketFilter) ([]*domain.Ticket, int, error) {
	if err := authz.RequireReadTicket(actor, nil); err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	tickets, err := c.tickets.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	count, err := c.tickets.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return tickets, count, nil
}

func (c *TicketCommands) resolveTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	if id == "" {
		return nil, apperror.Validation("ticket id is required")
	}
	ticket, err := c.tickets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return nil, apperror.NotFound("ticket", id)
		}
		return nil, apperror.Internal("failed to load ticket", err)
	}
	return ticket, nil
}

func (c *TicketCommands) resolveUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := c.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return user, nil
}

// creatorRef loads the creator as an actor-shaped reference. A creator whose
// account has since been deleted resolves to nil; ownership carve-outs then
// simply fail closed.
func (c *TicketCommands) creatorRef(ctx context.Context, id string) (*domain.Actor, error) {
	user, err := c.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, apperror.Internal("failed to load creator", err)
	}
	return user.ActorRef(), nil
}

func validateCreateTicket(req CreateTicketRequest) error {
	if req.Title == "" {
		return apperror.Validation("title is required")
	}
	if len(req.Title) < 3 || len(req.Title) > 200 {
		return apperror.Validation("title must be between 3 and 200 characters")
	}
	if req.Description == "" {
		return apperror.Validation("description is required")
	}
	if len(req.Description) > 2000 {
		return apperror.Validation("description must not exceed 2000 characters")
	}
	if !validTicketCategory(req.Category) {
		return apperror.Validation(fmt.Sprintf("invalid category: %s", req.Category))
	}
	if !validTicketPriority(req.Priority) {
		return apperror.Validation(fmt.Sprintf("invalid priority: %s", req.Priority))
	}
	return nil
}

func validateUpdateTicket(req UpdateTicketRequest) error {
	if req.Title != nil && (len(*req.Title) < 3 || len(*req.Title) > 200) {
		return apperror.Validation("title must be between 3 and 200 characters")
	}
	if req.Description != nil && len(*req.Description) > 2000 {
		return apperror.Validation("description must not exceed 2000 characters")
	}
	if req.Category != nil && !validTicketCategory(*req.Category) {
		return apperror.Validation(fmt.Sprintf("invalid category: %s", *req.Category))
	}
	if req.Priority != nil && !validTicketPriority(*req.Priority) {
		return apperror.Validation(fmt.Sprintf("invalid priority: %s", *req.Priority))
	}
	return nil
}

func validTicketCategory(c domain.TicketCategory) bool {
	switch c {
	case domain.TicketCategoryNetwork, domain.TicketCategorySoftware,
		domain.TicketCategoryHardware, domain.TicketCategoryAccount, domain.TicketCategoryOther:
		return true
	}
	return false
}

func validTicketPriority(p domain.TicketPriority) bool {
	switch p {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium,
		domain.TicketPriorityHigh, domain.TicketPriorityCritical:
		return true
	}
	return false
}
