package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/ports"
)

// systemActorID marks entries for events without an acting user.
const systemActorID = "system"

// AuditHandler persists an audit log entry for every event it receives. The
// entry copies the event's actor snapshot field by field so historic rows
// survive actor deletion.
type AuditHandler struct {
	audits ports.AuditRepository
}

// NewAuditHandler creates an audit handler backed by the given repository.
func NewAuditHandler(audits ports.AuditRepository) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// Handle builds and stores the audit entry. Errors are returned for the
// dispatcher's telemetry; the dispatcher guarantees they go no further.
func (h *AuditHandler) Handle(ctx context.Context, evt Event) error {
	entry := &domain.AuditEntry{
		ID:           uuid.NewString(),
		Action:       string(evt.Kind),
		ResourceType: evt.EntityType,
		ResourceID:   evt.EntityID,
		ActorID:      systemActorID,
		ActorName:    systemActorID,
		Metadata:     evt.Metadata,
		CreatedAt:    evt.OccurredAt,
	}
	if evt.Actor != nil {
		entry.ActorID = evt.Actor.ID
		entry.ActorName = evt.Actor.Name
		entry.ActorRole = string(evt.Actor.Role)
	}
	entry.Description = describe(evt)

	if err := h.audits.Create(ctx, entry); err != nil {
		return fmt.Errorf("persist audit entry for event %s: %w", evt.ID, err)
	}
	return nil
}

// describe renders a short human-readable line for log viewers.
func describe(evt Event) string {
	actor := systemActorID
	if evt.Actor != nil && evt.Actor.Name != "" {
		actor = evt.Actor.Name
	}
	verb := strings.ToLower(strings.ReplaceAll(string(evt.Kind), "_", " "))
	return fmt.Sprintf("%s by %s on %s %s", verb, actor, evt.EntityType, evt.EntityID)
}
