package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssetStatus represents the lifecycle state of an asset
type AssetStatus string

const (
	AssetStatusInStock  AssetStatus = "IN_STOCK"
	AssetStatusAssigned AssetStatus = "ASSIGNED"
	AssetStatusInRepair AssetStatus = "IN_REPAIR"
	AssetStatusRetired  AssetStatus = "RETIRED"
)

// AssetCategory represents the category of an asset
type AssetCategory string

const (
	AssetCategoryLaptop     AssetCategory = "LAPTOP"
	AssetCategoryDesktop    AssetCategory = "DESKTOP"
	AssetCategoryMonitor    AssetCategory = "MONITOR"
	AssetCategoryPhone      AssetCategory = "PHONE"
	AssetCategoryPeripheral AssetCategory = "PERIPHERAL"
	AssetCategoryOther      AssetCategory = "OTHER"
)

// Asset represents a tracked piece of IT equipment. As with tickets,
// CreatedBy is the ownership anchor for authorization.
type Asset struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Tag          string        `json:"tag"`
	SerialNumber string        `json:"serial_number"`
	Status       AssetStatus   `json:"status"`
	Category     AssetCategory `json:"category"`
	CreatedBy    string        `json:"created_by"`
	AssignedTo   *string       `json:"assigned_to,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewAsset creates a new asset in stock
func NewAsset(name, tag, serialNumber string, category AssetCategory, createdBy string) *Asset {
	now := time.Now()
	return &Asset{
		ID:           uuid.NewString(),
		Name:         name,
		Tag:          tag,
		SerialNumber: serialNumber,
		Status:       AssetStatusInStock,
		Category:     category,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Assignable reports whether the asset can currently take a holder.
func (a *Asset) Assignable() bool {
	return a.Status == AssetStatusInStock
}

// AssignTo hands the asset to a user.
func (a *Asset) AssignTo(userID string) error {
	if a.Status == AssetStatusRetired {
		return ErrAssetRetired
	}
	a.AssignedTo = &userID
	a.Status = AssetStatusAssigned
	a.UpdatedAt = time.Now()
	return nil
}

// Unassign returns the asset to stock.
func (a *Asset) Unassign() error {
	if a.Status == AssetStatusRetired {
		return ErrAssetRetired
	}
	if a.AssignedTo == nil {
		return ErrAssetUnassigned
	}
	a.AssignedTo = nil
	a.Status = AssetStatusInStock
	a.UpdatedAt = time.Now()
	return nil
}

// Retire takes the asset permanently out of circulation.
func (a *Asset) Retire() error {
	if a.AssignedTo != nil {
		return ErrAssetStillAssigned
	}
	a.Status = AssetStatusRetired
	a.UpdatedAt = time.Now()
	return nil
}

// AssetFilter represents filters for listing assets
type AssetFilter struct {
	Status     *AssetStatus   `json:"status,omitempty"`
	Category   *AssetCategory `json:"category,omitempty"`
	CreatedBy  *string        `json:"created_by,omitempty"`
	AssignedTo *string        `json:"assigned_to,omitempty"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

// Custom errors
var (
	ErrAssetNotFound      = NewDomainError("asset not found")
	ErrAssetRetired       = NewDomainError("cannot modify retired asset")
	ErrAssetUnassigned    = NewDomainError("asset has no holder")
	ErrAssetStillAssigned = NewDomainError("asset must be unassigned before retiring")
)
