package domain

import "time"

// AuditEntry is the durable record of a completed action. The actor fields
// are a snapshot captured by value at write time; deleting the actor later
// never invalidates historic rows. Entries are immutable once written.
//
// External log viewers pattern-match on this field set; keep it stable.
type AuditEntry struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	ActorID      string                 `json:"actor_id"`
	ActorName    string                 `json:"actor_name"`
	ActorRole    string                 `json:"actor_role"`
	Description  string                 `json:"description"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}
