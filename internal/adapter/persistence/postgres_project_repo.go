package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/ports"
)

// PostgresProjectRepository implements ProjectRepository using PostgreSQL
type PostgresProjectRepository struct {
	db *sql.DB
}

// NewPostgresProjectRepository creates a new PostgreSQL project repository
func NewPostgresProjectRepository(db *sql.DB) ports.ProjectRepository {
	return &PostgresProjectRepository{db: db}
}

// Create saves a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, name, description, status, created_by, member_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		string(project.Status),
		project.CreatedBy,
		pq.Array(project.MemberIDs),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// FindByID retrieves a project by its ID
func (r *PostgresProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT id, name, description, status, created_by, member_ids, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project domain.Project
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.CreatedBy,
		pq.Array(&project.MemberIDs),
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.MemberIDs == nil {
		project.MemberIDs = []string{}
	}
	return &project, nil
}

// Update updates an existing project
func (r *PostgresProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, status = $4, member_ids = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		string(project.Status),
		pq.Array(project.MemberIDs),
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// Delete removes a project
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// List retrieves projects based on filter criteria
func (r *PostgresProjectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	query := `
		SELECT id, name, description, status, created_by, member_ids, created_at, updated_at
		FROM projects
	`
	var where []string
	var args []interface{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.CreatedBy != nil {
		add("created_by = $%d", *filter.CreatedBy)
	}
	if filter.MemberID != nil {
		add("$%d = ANY(member_ids)", *filter.MemberID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.CreatedBy,
			pq.Array(&project.MemberIDs),
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if project.MemberIDs == nil {
			project.MemberIDs = []string{}
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}
