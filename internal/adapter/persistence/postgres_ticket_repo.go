package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/ports"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL
type PostgresTicketRepository struct {
	db *sql.DB
}

// NewPostgresTicketRepository creates a new PostgreSQL ticket repository
func NewPostgresTicketRepository(db *sql.DB) ports.TicketRepository {
	return &PostgresTicketRepository{db: db}
}

// Create saves a new ticket
func (r *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (id, title, description, status, category, priority, created_by, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Category),
		string(ticket.Priority),
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// FindByID retrieves a ticket by its ID
func (r *PostgresTicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `
		SELECT id, title, description, status, category, priority, created_by, assigned_to, created_at, updated_at
		FROM tickets
		WHERE id = $1
	`

	var ticket domain.Ticket
	var assignedTo sql.NullString

	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Category,
		&ticket.Priority,
		&ticket.CreatedBy,
		&assignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}

	if assignedTo.Valid {
		ticket.AssignedTo = &assignedTo.String
	}
	return &ticket, nil
}

// Update updates an existing ticket
func (r *PostgresTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		UPDATE tickets
		SET title = $2, description = $3, status = $4, category = $5, priority = $6, assigned_to = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Category),
		string(ticket.Priority),
		ticket.AssignedTo,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// Delete removes a ticket
func (r *PostgresTicketRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// List retrieves tickets based on filter criteria
func (r *PostgresTicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]*domain.Ticket, error) {
	query := `
		SELECT id, title, description, status, category, priority, created_by, assigned_to, created_at, updated_at
		FROM tickets
	`
	where, args := ticketFilterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		var assignedTo sql.NullString
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Category,
			&ticket.Priority,
			&ticket.CreatedBy,
			&assignedTo,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		if assignedTo.Valid {
			ticket.AssignedTo = &assignedTo.String
		}
		tickets = append(tickets, &ticket)
	}
	return tickets, rows.Err()
}

// Count returns the number of tickets matching the filter
func (r *PostgresTicketRepository) Count(ctx context.Context, filter domain.TicketFilter) (int, error) {
	query := `SELECT COUNT(*) FROM tickets`
	where, args := ticketFilterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

func ticketFilterClauses(filter domain.TicketFilter) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.Category != nil {
		add("category = $%d", string(*filter.Category))
	}
	if filter.Priority != nil {
		add("priority = $%d", string(*filter.Priority))
	}
	if filter.CreatedBy != nil {
		add("created_by = $%d", *filter.CreatedBy)
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}
	return where, args
}
