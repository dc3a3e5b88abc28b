package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/ports"
)

// PostgresAssetRepository implements AssetRepository using PostgreSQL
type PostgresAssetRepository struct {
	db *sql.DB
}

// NewPostgresAssetRepository creates a new PostgreSQL asset repository
func NewPostgresAssetRepository(db *sql.DB) ports.AssetRepository {
	return &PostgresAssetRepository{db: db}
}

// Create saves a new asset
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, name, tag, serial_number, status, category, created_by, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		asset.ID,
		asset.Name,
		asset.Tag,
		asset.SerialNumber,
		string(asset.Status),
		string(asset.Category),
		asset.CreatedBy,
		asset.AssignedTo,
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// FindByID retrieves an asset by its ID
func (r *PostgresAssetRepository) FindByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `
		SELECT id, name, tag, serial_number, status, category, created_by, assigned_to, created_at, updated_at
		FROM assets
		WHERE id = $1
	`

	var asset domain.Asset
	var assignedTo sql.NullString

	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&asset.ID,
		&asset.Name,
		&asset.Tag,
		&asset.SerialNumber,
		&asset.Status,
		&asset.Category,
		&asset.CreatedBy,
		&assignedTo,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}

	if assignedTo.Valid {
		asset.AssignedTo = &assignedTo.String
	}
	return &asset, nil
}

// Update updates an existing asset
func (r *PostgresAssetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	query := `
		UPDATE assets
		SET name = $2, tag = $3, serial_number = $4, status = $5, category = $6, assigned_to = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		asset.ID,
		asset.Name,
		asset.Tag,
		asset.SerialNumber,
		string(asset.Status),
		string(asset.Category),
		asset.AssignedTo,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

// Delete removes an asset
func (r *PostgresAssetRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

// List retrieves assets based on filter criteria
func (r *PostgresAssetRepository) List(ctx context.Context, filter domain.AssetFilter) ([]*domain.Asset, error) {
	query := `
		SELECT id, name, tag, serial_number, status, category, created_by, assigned_to, created_at, updated_at
		FROM assets
	`
	where, args := assetFilterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		var asset domain.Asset
		var assignedTo sql.NullString
		if err := rows.Scan(
			&asset.ID,
			&asset.Name,
			&asset.Tag,
			&asset.SerialNumber,
			&asset.Status,
			&asset.Category,
			&asset.CreatedBy,
			&assignedTo,
			&asset.CreatedAt,
			&asset.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		if assignedTo.Valid {
			asset.AssignedTo = &assignedTo.String
		}
		assets = append(assets, &asset)
	}
	return assets, rows.Err()
}

// Count returns the number of assets matching the filter
func (r *PostgresAssetRepository) Count(ctx context.Context, filter domain.AssetFilter) (int, error) {
	query := `SELECT COUNT(*) FROM assets`
	where, args := assetFilterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}

func assetFilterClauses(filter domain.AssetFilter) ([]string, []interface{}) {
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
	if filter.CreatedBy != nil {
		add("created_by = $%d", *filter.CreatedBy)
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}
	return where, args
}
