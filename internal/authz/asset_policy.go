package authz

import "github.com/opsdesk/opsdesk/internal/domain"

// Asset policy. Same rule shape as tickets; only the entity differs. The
// rules are written out rather than shared with the ticket policy so that a
// future divergence in one resource cannot silently change the other.

// CanCreateAsset allows every role above end user.
func CanCreateAsset(actor *domain.Actor) bool {
	if actor == nil {
		return false
	}
	return actor.Role.HasHigherOrEqualRank(domain.RoleTechnician)
}

// CanReadAsset is permissive: every authenticated role may read.
func CanReadAsset(actor *domain.Actor) bool {
	return actor != nil
}

// CanUpdateAsset applies the tiered update rule over the asset's creator.
func CanUpdateAsset(actor *domain.Actor, creator *domain.Actor) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleSuperAdmin, domain.RoleTechManager:
		return true
	case domain.RoleAdmin:
		return creator != nil && actor.Role.HasStrictlyHigherRank(creator.Role)
	case domain.RoleTechnician:
		return IsOwner(actor, creator)
	default:
		return false
	}
}

// CanDeleteAsset follows the update rule.
func CanDeleteAsset(actor *domain.Actor, creator *domain.Actor) bool {
	return CanUpdateAsset(actor, creator)
}

// CanAssignAsset governs handing an asset to somebody else.
func CanAssignAsset(actor *domain.Actor) bool {
	if actor == nil {
		return false
	}
	return IsAdminOverride(actor) || actor.Role == domain.RoleAdmin
}

// CanSelfAssignAsset governs an actor taking an asset for themselves.
// Technicians may only take assets they registered while still in stock.
func CanSelfAssignAsset(actor *domain.Actor, creator *domain.Actor, asset *domain.Asset) bool {
	if actor == nil || asset == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleSuperAdmin, domain.RoleTechManager, domain.RoleAdmin:
		return true
	case domain.RoleTechnician:
		return IsOwner(actor, creator) && asset.AssignedTo == nil && asset.Assignable()
	default:
		return false
	}
}

// CanReassignAsset governs moving an asset from one holder to a third party.
func CanReassignAsset(actor *domain.Actor) bool {
	return CanAssignAsset(actor)
}

// CanUnassignAsset governs returning an asset to stock.
func CanUnassignAsset(actor *domain.Actor) bool {
	return CanAssignAsset(actor)
}

// Assertion variants.

func RequireCreateAsset(actor *domain.Actor) error {
	if !CanCreateAsset(actor) {
		return deny(actor, "create", "asset", "", "requires technician role or above")
	}
	return nil
}

func RequireReadAsset(actor *domain.Actor, asset *domain.Asset) error {
	if !CanReadAsset(actor) {
		return deny(actor, "read", "asset", assetID(asset), "authentication required")
	}
	return nil
}

func RequireUpdateAsset(actor *domain.Actor, creator *domain.Actor, asset *domain.Asset) error {
	if !CanUpdateAsset(actor, creator) {
		return deny(actor, "update", "asset", assetID(asset), "only the creator or a strictly superior role may update")
	}
	return nil
}

func RequireDeleteAsset(actor *domain.Actor, creator *domain.Actor, asset *domain.Asset) error {
	if !CanDeleteAsset(actor, creator) {
		return deny(actor, "delete", "asset", assetID(asset), "only the creator or a strictly superior role may delete")
	}
	return nil
}

func RequireAssignAsset(actor *domain.Actor, asset *domain.Asset) error {
	if !CanAssignAsset(actor) {
		return deny(actor, "assign", "asset", assetID(asset), "requires admin role or above")
	}
	return nil
}

func RequireSelfAssignAsset(actor *domain.Actor, creator *domain.Actor, asset *domain.Asset) error {
	if !CanSelfAssignAsset(actor, creator, asset) {
		return deny(actor, "self-assign", "asset", assetID(asset), "technicians may only take their own in-stock assets")
	}
	return nil
}

func RequireReassignAsset(actor *domain.Actor, asset *domain.Asset) error {
	if !CanReassignAsset(actor) {
		return deny(actor, "reassign", "asset", assetID(asset), "requires admin role or above")
	}
	return nil
}

func RequireUnassignAsset(actor *domain.Actor, asset *domain.Asset) error {
	if !CanUnassignAsset(actor) {
		return deny(actor, "unassign", "asset", assetID(asset), "requires admin role or above")
	}
	return nil
}

func assetID(a *domain.Asset) string {
	if a == nil {
		return ""
	}
	return a.ID
}
