package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/ports"
)

// PostgresAuditRepository implements AuditRepository using PostgreSQL.
// The audit table is append-only.
type PostgresAuditRepository struct {
	db *sql.DB
}

// NewPostgresAuditRepository creates a new PostgreSQL audit repository
func NewPostgresAuditRepository(db *sql.DB) ports.AuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Create creates a new audit entry
func (r *PostgresAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, action, resource_type, resource_id, actor_id, actor_name, actor_role, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		entry.ActorID,
		entry.ActorName,
		entry.ActorRole,
		entry.Description,
		metadataJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

// List retrieves audit entries for a resource, newest first
func (r *PostgresAuditRepository) List(ctx context.Context, resourceType, resourceID string, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, action, resource_type, resource_id, actor_id, actor_name, actor_role, description, metadata, created_at
		FROM audit_log
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, resourceType, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// FindByID retrieves an audit entry by its ID
func (r *PostgresAuditRepository) FindByID(ctx context.Context, id string) (*domain.AuditEntry, error) {
	query := `
		SELECT id, action, resource_type, resource_id, actor_id, actor_name, actor_role, description, metadata, created_at
		FROM audit_log
		WHERE id = $1
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.NewDomainError("audit entry not found")
	}
	return scanAuditEntry(rows)
}

func scanAuditEntry(rows *sql.Rows) (*domain.AuditEntry, error) {
	var entry domain.AuditEntry
	var metadataJSON []byte
	if err := rows.Scan(
		&entry.ID,
		&entry.Action,
		&entry.ResourceType,
		&entry.ResourceID,
		&entry.ActorID,
		&entry.ActorName,
		&entry.ActorRole,
		&entry.Description,
		&metadataJSON,
		&entry.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan audit entry: %w", err)
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
		}
	}
	return &entry, nil
}
