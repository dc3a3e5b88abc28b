package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/opsdesk/internal/domain"
)

type memoryAuditRepo struct {
	entries []*domain.AuditEntry
	err     error
}

func (r *memoryAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryAuditRepo) List(ctx context.Context, resourceType, resourceID string, limit int) ([]*domain.AuditEntry, error) {
	return r.entries, nil
}

func (r *memoryAuditRepo) FindByID(ctx context.Context, id string) (*domain.AuditEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

func TestAuditHandler_WritesEntry(t *testing.T) {
	repo := &memoryAuditRepo{}
	h := NewAuditHandler(repo)

	evt := New(KindTicketAssigned, testActor(), "ticket", "t-1", "dk-1", map[string]interface{}{
		"new_assignee": "u-2",
	})

	err := h.Handle(context.Background(), evt)
	assert.NoError(t, err)
	assert.Len(t, repo.entries, 1)

	entry := repo.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "TICKET_ASSIGNED", entry.Action)
	assert.Equal(t, "ticket", entry.ResourceType)
	assert.Equal(t, "t-1", entry.ResourceID)
	assert.Equal(t, "u-1", entry.ActorID)
	assert.Equal(t, "Pat", entry.ActorName)
	assert.Equal(t, string(domain.RoleTechnician), entry.ActorRole)
	assert.Equal(t, "u-2", entry.Metadata["new_assignee"])
	assert.Equal(t, evt.OccurredAt, entry.CreatedAt)
	assert.Contains(t, entry.Description, "ticket assigned")
	assert.Contains(t, entry.Description, "Pat")
}

func TestAuditHandler_SystemActorFallback(t *testing.T) {
	repo := &memoryAuditRepo{}
	h := NewAuditHandler(repo)

	evt := New(KindUserDeactivated, nil, "user", "u-9", "dk-1", nil)

	err := h.Handle(context.Background(), evt)
	assert.NoError(t, err)

	entry := repo.entries[0]
	assert.Equal(t, "system", entry.ActorID)
	assert.Equal(t, "system", entry.ActorName)
	assert.Empty(t, entry.ActorRole)
}

func TestAuditHandler_PropagatesStoreError(t *testing.T) {
	repo := &memoryAuditRepo{err: errors.New("disk full")}
	h := NewAuditHandler(repo)

	err := h.Handle(context.Background(), New(KindTicketCreated, testActor(), "ticket", "t-1", "dk-1", nil))
	assert.Error(t, err)
}
