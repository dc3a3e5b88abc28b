package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/opsdesk/opsdesk/internal/authz"
	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/event"
	"github.com/opsdesk/opsdesk/internal/ports"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

// CreateAssetRequest represents the request to register an asset
type CreateAssetRequest struct {
	Name         string               `json:"name"`
	Tag          string               `json:"tag"`
	SerialNumber string               `json:"serial_number"`
	Category     domain.AssetCategory `json:"category"`
}

// UpdateAssetRequest carries the fields to change; nil means keep.
type UpdateAssetRequest struct {
	Name         *string               `json:"name,omitempty"`
	Tag          *string               `json:"tag,omitempty"`
	SerialNumber *string               `json:"serial_number,omitempty"`
	Category     *domain.AssetCategory `json:"category,omitempty"`
}

// AssetCommands implements the mutating asset use cases.
type AssetCommands struct {
	assets ports.AssetRepository
	users  ports.UserRepository
	runner *Runner
}

// NewAssetCommands creates the asset command group.
func NewAssetCommands(assets ports.AssetRepository, users ports.UserRepository, runner *Runner) *AssetCommands {
	return &AssetCommands{assets: assets, users: users, runner: runner}
}

// Create registers a new asset with the actor as creator.
func (c *AssetCommands) Create(ctx context.Context, actor *domain.Actor, req CreateAssetRequest) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.create(ctx, actor, req)
	})
}

func (c *AssetCommands) create(ctx context.Context, actor *domain.Actor, req CreateAssetRequest) (Result, []event.Event) {
	if err := validateCreateAsset(req); err != nil {
		return failure(err)
	}
	if err := authz.RequireCreateAsset(actor); err != nil {
		return failure(err)
	}

	asset := domain.NewAsset(req.Name, req.Tag, req.SerialNumber, req.Category, actor.ID)
	if err := c.assets.Create(ctx, asset); err != nil {
		return failure(apperror.Internal("failed to create asset", err))
	}

	evt := event.New(event.KindAssetCreated, actor, "asset", asset.ID, uuid.NewString(), map[string]interface{}{
		"name":     asset.Name,
		"tag":      asset.Tag,
		"category": string(asset.Category),
	})
	return succeed(map[string]interface{}{"asset": asset}), []event.Event{evt}
}

// Update changes asset fields subject to the tiered update rule.
func (c *AssetCommands) Update(ctx context.Context, actor *domain.Actor, assetID string, req UpdateAssetRequest) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.update(ctx, actor, assetID, req)
	})
}

func (c *AssetCommands) update(ctx context.Context, actor *domain.Actor, assetID string, req UpdateAssetRequest) (Result, []event.Event) {
	asset, err := c.resolveAsset(ctx, assetID)
	if err != nil {
		return failure(err)
	}
	creator, err := c.creatorRef(ctx, asset.CreatedBy)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireUpdateAsset(actor, creator, asset); err != nil {
		return failure(err)
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		changes["name"] = map[string]string{"from": asset.Name, "to": *req.Name}
		asset.Name = *req.Name
	}
	if req.Tag != nil {
		changes["tag"] = map[string]string{"from": asset.Tag, "to": *req.Tag}
		asset.Tag = *req.Tag
	}
	if req.SerialNumber != nil {
		changes["serial_number"] = "updated"
		asset.SerialNumber = *req.SerialNumber
	}
	if req.Category != nil {
		changes["category"] = map[string]string{"from": string(asset.Category), "to": string(*req.Category)}
		asset.Category = *req.Category
	}
	if err := c.assets.Update(ctx, asset); err != nil {
		return failure(apperror.Internal("failed to update asset", err))
	}

	evt := event.New(event.KindAssetUpdated, actor, "asset", asset.ID, uuid.NewString(), changes)
	return succeed(map[string]interface{}{"asset": asset, "changes": changes}), []event.Event{evt}
}

// Delete removes an asset subject to the tiered delete rule.
func (c *AssetCommands) Delete(ctx context.Context, actor *domain.Actor, assetID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.delete(ctx, actor, assetID)
	})
}

func (c *AssetCommands) delete(ctx context.Context, actor *domain.Actor, assetID string) (Result, []event.Event) {
	asset, err := c.resolveAsset(ctx, assetID)
	if err != nil {
		return failure(err)
	}
	creator, err := c.creatorRef(ctx, asset.CreatedBy)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireDeleteAsset(actor, creator, asset); err != nil {
		return failure(err)
	}
	if err := c.assets.Delete(ctx, asset.ID); err != nil {
		return failure(apperror.Internal("failed to delete asset", err))
	}

	evt := event.New(event.KindAssetDeleted, actor, "asset", asset.ID, uuid.NewString(), map[string]interface{}{
		"name": asset.Name,
		"tag":  asset.Tag,
	})
	return succeed(map[string]interface{}{"asset_id": asset.ID}), []event.Event{evt}
}

// Assign hands an asset to a user, branching like ticket assignment.
func (c *AssetCommands) Assign(ctx context.Context, actor *domain.Actor, assetID, holderID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.assign(ctx, actor, assetID, holderID)
	})
}

func (c *AssetCommands) assign(ctx context.Context, actor *domain.Actor, assetID, holderID string) (Result, []event.Event) {
	if holderID == "" {
		return failure(apperror.Validation("holder id is required"))
	}
	asset, err := c.resolveAsset(ctx, assetID)
	if err != nil {
		return failure(err)
	}
	if _, err := c.resolveUser(ctx, holderID); err != nil {
		return failure(err)
	}
	creator, err := c.creatorRef(ctx, asset.CreatedBy)
	if err != nil {
		return failure(err)
	}

	switch {
	case asset.AssignedTo != nil:
		err = authz.RequireReassignAsset(actor, asset)
	case actor != nil && holderID == actor.ID:
		err = authz.RequireSelfAssignAsset(actor, creator, asset)
	default:
		err = authz.RequireAssignAsset(actor, asset)
	}
	if err != nil {
		return failure(err)
	}

	var previous interface{}
	if asset.AssignedTo != nil {
		previous = *asset.AssignedTo
	}
	if err := asset.AssignTo(holderID); err != nil {
		return failure(err)
	}
	if err := c.assets.Update(ctx, asset); err != nil {
		return failure(apperror.Internal("failed to update asset", err))
	}

	evt := event.New(event.KindAssetAssigned, actor, "asset", asset.ID, uuid.NewString(), map[string]interface{}{
		"previous_holder": previous,
		"new_holder":      holderID,
	})
	return succeed(map[string]interface{}{
		"asset":           asset,
		"previous_holder": previous,
		"new_holder":      holderID,
	}), []event.Event{evt}
}

// Unassign returns an asset to stock.
func (c *AssetCommands) Unassign(ctx context.Context, actor *domain.Actor, assetID string) Result {
	return c.runner.Execute(ctx, func(ctx context.Context) (Result, []event.Event) {
		return c.unassign(ctx, actor, assetID)
	})
}

func (c *AssetCommands) unassign(ctx context.Context, actor *domain.Actor, assetID string) (Result, []event.Event) {
	asset, err := c.resolveAsset(ctx, assetID)
	if err != nil {
		return failure(err)
	}
	if err := authz.RequireUnassignAsset(actor, asset); err != nil {
		return failure(err)
	}

	var previous interface{}
	if asset.AssignedTo != nil {
		previous = *asset.AssignedTo
	}
	if err := asset.Unassign(); err != nil {
		return failure(err)
	}
	if err := c.assets.Update(ctx, asset); err != nil {
		return failure(apperror.Internal("failed to update asset", err))
	}

	evt := event.New(event.KindAssetUnassigned, actor, "asset", asset.ID, uuid.NewString(), map[string]interface{}{
		"previous_holder": previous,
	})
	return succeed(map[string]interface{}{"asset": asset, "previous_holder": previous}), []event.Event{evt}
}

// Get retrieves an asset for display.
func (c *AssetCommands) Get(ctx context.Context, actor *domain.Actor, assetID string) (*domain.Asset, error) {
	if err := authz.RequireReadAsset(actor, nil); err != nil {
		return nil, err
	}
	return c.resolveAsset(ctx, assetID)
}

// List retrieves assets matching the filter.
func (c *AssetCommands) List(ctx context.Context, actor *domain.Actor, filter domain.AssetFilter) ([]*domain.Asset, int, error) {
	if err := authz.RequireReadAsset(actor, nil); err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	assets, err := c.assets.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assets: %w", err)
	}
	count, err := c.assets.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return assets, count, nil
}

func (c *AssetCommands) resolveAsset(ctx context.Context, id string) (*domain.Asset, error) {
	if id == "" {
		return nil, apperror.Validation("asset id is required")
	}
	asset, err := c.assets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			return nil, apperror.NotFound("asset", id)
		}
		return nil, apperror.Internal("failed to load asset", err)
	}
	return asset, nil
}

func (c *AssetCommands) resolveUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := c.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return user, nil
}

func (c *AssetCommands) creatorRef(ctx context.Context, id string) (*domain.Actor, error) {
	user, err := c.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, apperror.Internal("failed to load creator", err)
	}
	return user.ActorRef(), nil
}

func validateCreateAsset(req CreateAssetRequest) error {
	if req.Name == "" {
		return apperror.Validation("name is required")
	}
	if req.Tag == "" {
		return apperror.Validation("tag is required")
	}
	if !validAssetCategory(req.Category) {
		return apperror.Validation(fmt.Sprintf("invalid category: %s", req.Category))
	}
	return nil
}

func validAssetCategory(c domain.AssetCategory) bool {
	switch c {
	case domain.AssetCategoryLaptop, domain.AssetCategoryDesktop, domain.AssetCategoryMonitor,
		domain.AssetCategoryPhone, domain.AssetCategoryPeripheral, domain.AssetCategoryOther:
		return true
	}
	return false
}
