package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the status of a ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketCategory represents the category of a ticket
type TicketCategory string

const (
	TicketCategoryNetwork  TicketCategory = "NETWORK"
	TicketCategorySoftware TicketCategory = "SOFTWARE"
	TicketCategoryHardware TicketCategory = "HARDWARE"
	TicketCategoryAccount  TicketCategory = "ACCOUNT"
	TicketCategoryOther    TicketCategory = "OTHER"
)

// TicketPriority represents the priority of a ticket
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Ticket represents an IT support ticket. CreatedBy is the ownership anchor
// for authorization; AssignedTo never is.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Category    TicketCategory `json:"category"`
	Priority    TicketPriority `json:"priority"`
	CreatedBy   string         `json:"created_by"`
	AssignedTo  *string        `json:"assigned_to,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewTicket creates a new ticket
func NewTicket(title, description string, category TicketCategory, priority TicketPriority, createdBy string) *Ticket {
	now := time.Now()
	return &Ticket{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      TicketStatusOpen,
		Category:    category,
		Priority:    priority,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Assignable reports whether the ticket can still take an assignee.
func (t *Ticket) Assignable() bool {
	return t.Status == TicketStatusOpen || t.Status == TicketStatusInProgress
}

// AssignTo assigns the ticket to a user and moves it in progress.
func (t *Ticket) AssignTo(userID string) error {
	if t.Status == TicketStatusClosed {
		return ErrTicketClosed
	}
	t.AssignedTo = &userID
	t.Status = TicketStatusInProgress
	t.UpdatedAt = time.Now()
	return nil
}

// Unassign removes the current assignee and reopens the ticket.
func (t *Ticket) Unassign() error {
	if t.Status == TicketStatusClosed {
		return ErrTicketClosed
	}
	if t.AssignedTo == nil {
		return ErrTicketUnassigned
	}
	t.AssignedTo = nil
	t.Status = TicketStatusOpen
	t.UpdatedAt = time.Now()
	return nil
}

// Resolve marks the ticket as resolved
func (t *Ticket) Resolve() error {
	if t.Status == TicketStatusClosed {
		return ErrTicketClosed
	}
	t.Status = TicketStatusResolved
	t.UpdatedAt = time.Now()
	return nil
}

// Close closes the ticket
func (t *Ticket) Close() error {
	if t.Status != TicketStatusResolved {
		return ErrTicketNotResolved
	}
	t.Status = TicketStatusClosed
	t.UpdatedAt = time.Now()
	return nil
}

// TicketFilter represents filters for listing tickets
type TicketFilter struct {
	Status     *TicketStatus   `json:"status,omitempty"`
	Category   *TicketCategory `json:"category,omitempty"`
	Priority   *TicketPriority `json:"priority,omitempty"`
	CreatedBy  *string         `json:"created_by,omitempty"`
	AssignedTo *string         `json:"assigned_to,omitempty"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// Custom errors
var (
	ErrTicketNotFound    = NewDomainError("ticket not found")
	ErrTicketClosed      = NewDomainError("cannot modify closed ticket")
	ErrTicketNotResolved = NewDomainError("ticket must be resolved before closing")
	ErrTicketUnassigned  = NewDomainError("ticket has no assignee")
)
