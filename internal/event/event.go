// Package event carries domain events from committed mutations to their
// handlers. Events are emitted only after the enclosing transaction commits,
// consumed at most once, and a handler failure never surfaces to the caller
// of the business operation.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/opsdesk/internal/domain"
)

// Kind is the closed enumeration of event types. The dispatcher registry is
// keyed on it; unhandled kinds are dropped by policy.
type Kind string

const (
	KindTicketCreated    Kind = "TICKET_CREATED"
	KindTicketUpdated    Kind = "TICKET_UPDATED"
	KindTicketDeleted    Kind = "TICKET_DELETED"
	KindTicketAssigned   Kind = "TICKET_ASSIGNED"
	KindTicketUnassigned Kind = "TICKET_UNASSIGNED"
	KindTicketResolved   Kind = "TICKET_RESOLVED"
	KindTicketClosed     Kind = "TICKET_CLOSED"

	KindAssetCreated    Kind = "ASSET_CREATED"
	KindAssetUpdated    Kind = "ASSET_UPDATED"
	KindAssetDeleted    Kind = "ASSET_DELETED"
	KindAssetAssigned   Kind = "ASSET_ASSIGNED"
	KindAssetUnassigned Kind = "ASSET_UNASSIGNED"

	KindProjectCreated       Kind = "PROJECT_CREATED"
	KindProjectUpdated       Kind = "PROJECT_UPDATED"
	KindProjectDeleted       Kind = "PROJECT_DELETED"
	KindProjectMemberAdded   Kind = "PROJECT_MEMBER_ADDED"
	KindProjectMemberRemoved Kind = "PROJECT_MEMBER_REMOVED"

	KindUserCreated     Kind = "USER_CREATED"
	KindUserUpdated     Kind = "USER_UPDATED"
	KindUserRoleChanged Kind = "USER_ROLE_CHANGED"
	KindUserDeactivated Kind = "USER_DEACTIVATED"
	KindUserDeleted     Kind = "USER_DELETED"
)

// Event is an immutable record of a completed mutation: who did what to which
// entity. Actor is nil for system-originated events. DedupKey identifies the
// command invocation that produced the event, so a retried commit hook cannot
// produce duplicate audit rows.
type Event struct {
	ID         string                 `json:"id"`
	Kind       Kind                   `json:"kind"`
	Actor      *domain.Actor          `json:"actor,omitempty"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	DedupKey   string                 `json:"dedup_key,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// New creates a domain event. The actor is snapshotted by value so a later
// mutation or deletion of the acting user cannot reach into the event.
func New(kind Kind, actor *domain.Actor, entityType, entityID, dedupKey string, metadata map[string]interface{}) Event {
	var snapshot *domain.Actor
	if actor != nil {
		copied := *actor
		snapshot = &copied
	}
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Actor:      snapshot,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		DedupKey:   dedupKey,
		OccurredAt: time.Now(),
	}
}
