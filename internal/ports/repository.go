package ports

import (
	"context"

	"github.com/opsdesk/opsdesk/internal/domain"
)

// TicketRepository defines the interface for ticket persistence
type TicketRepository interface {
	// Create saves a new ticket
	Create(ctx context.Context, ticket *domain.Ticket) error

	// FindByID retrieves a ticket by its ID
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)

	// Update updates an existing ticket
	Update(ctx context.Context, ticket *domain.Ticket) error

	// Delete removes a ticket
	Delete(ctx context.Context, id string) error

	// List retrieves tickets based on filter criteria
	List(ctx context.Context, filter domain.TicketFilter) ([]*domain.Ticket, error)

	// Count returns the number of tickets matching the filter
	Count(ctx context.Context, filter domain.TicketFilter) (int, error)
}

// AssetRepository defines the interface for asset persistence
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	FindByID(ctx context.Context, id string) (*domain.Asset, error)
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.AssetFilter) ([]*domain.Asset, error)
	Count(ctx context.Context, filter domain.AssetFilter) (int, error)
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error)
}

// AuditRepository defines the interface for audit log persistence. Entries
// are append-only; there is no update or delete.
type AuditRepository interface {
	// Create creates a new audit entry
	Create(ctx context.Context, entry *domain.AuditEntry) error

	// List retrieves audit entries for a resource, newest first
	List(ctx context.Context, resourceType, resourceID string, limit int) ([]*domain.AuditEntry, error)

	// FindByID retrieves an audit entry by its ID
	FindByID(ctx context.Context, id string) (*domain.AuditEntry, error)
}

// UnitOfWork owns the transaction boundary around a command. The function
// runs inside a transaction carried by the context; returning an error rolls
// everything back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
