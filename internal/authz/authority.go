// Package authz implements the authorization policy engine: a static role
// hierarchy, generic authority primitives built on it, and one policy per
// resource type. Every predicate is pure: no I/O, no mutation, deterministic
// given its arguments.
package authz

import "github.com/opsdesk/opsdesk/internal/domain"

// adminOverrideRoles is the fixed set of roles that bypass ownership and
// hierarchy checks. Membership is by identity, not by rank: a future role
// that happens to share the top rank does not gain override automatically.
var adminOverrideRoles = map[domain.Role]bool{
	domain.RoleSuperAdmin:  true,
	domain.RoleTechManager: true,
}

// IsAdminOverride reports whether the actor holds one of the top-tier roles.
func IsAdminOverride(actor *domain.Actor) bool {
	if actor == nil {
		return false
	}
	return adminOverrideRoles[actor.Role]
}

// IsOwner reports whether the actor is the referenced owner. Nil-safe: false
// when either side is absent.
func IsOwner(actor *domain.Actor, owner *domain.Actor) bool {
	if actor == nil || owner == nil {
		return false
	}
	return actor.ID == owner.ID
}

// CanActOnSubordinate reports whether the actor strictly outranks the target.
// Equal-rank roles, top tier included, are never subordinate to each other.
func CanActOnSubordinate(actor *domain.Actor, target *domain.Actor) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.Role.HasStrictlyHigherRank(target.Role)
}

// CanActOnOwnedOrSubordinate is the most-reused decision in the engine: the
// actor may act when it holds an override role, owns the resource, or
// strictly outranks the owner.
func CanActOnOwnedOrSubordinate(actor *domain.Actor, owner *domain.Actor) bool {
	return IsAdminOverride(actor) || IsOwner(actor, owner) || CanActOnSubordinate(actor, owner)
}
