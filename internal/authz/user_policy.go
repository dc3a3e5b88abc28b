package authz

import "github.com/opsdesk/opsdesk/internal/domain"

// User policy. Governs actions on user accounts. There is no ownership here:
// the identity comparison is actor against the target account itself, and
// role changes are additionally gated on the rank of the role being granted.

// canManageUser is the shared tier rule for administrative actions on a user
// target, self excluded: the top role manages anyone, the tied second role
// manages anyone but holders of the top role, admins manage only the two
// lowest roles.
func canManageUser(actor *domain.Actor, target *domain.User) bool {
	if actor == nil || target == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleTechManager:
		return target.Role != domain.RoleSuperAdmin
	case domain.RoleAdmin:
		return target.Role == domain.RoleTechnician || target.Role == domain.RoleEndUser
	default:
		return false
	}
}

// CanViewUser: everyone may view their own record, the manager tier and above
// may view any record, and viewing is default-allow for the remaining roles,
// so every authenticated actor resolves to allow.
func CanViewUser(actor *domain.Actor, target *domain.User) bool {
	return actor != nil
}

// CanUpdateUserProfile governs non-role profile fields: self always, then the
// shared tier rule.
func CanUpdateUserProfile(actor *domain.Actor, target *domain.User) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.ID == target.ID {
		return true
	}
	return canManageUser(actor, target)
}

// CanChangeUserRole governs granting a new role. Never allowed on self. The
// new role's rank must be strictly below the actor's, with one exception:
// the top role may elevate a target to the tied second-highest role. An actor
// holding the tied rank can therefore never mint a peer of the top role.
func CanChangeUserRole(actor *domain.Actor, target *domain.User, newRole domain.Role) bool {
	if actor == nil || target == nil || !newRole.Valid() {
		return false
	}
	if actor.ID == target.ID {
		return false
	}
	if !canManageUser(actor, target) {
		return false
	}
	if actor.Role == domain.RoleSuperAdmin && newRole == domain.RoleTechManager {
		return true
	}
	return actor.Role.HasStrictlyHigherRank(newRole)
}

// CanCreateUser governs provisioning a new account, following the same
// rank gate as role changes.
func CanCreateUser(actor *domain.Actor, newRole domain.Role) bool {
	if actor == nil || !newRole.Valid() {
		return false
	}
	if !actor.Role.HasHigherOrEqualRank(domain.RoleAdmin) {
		return false
	}
	if actor.Role == domain.RoleSuperAdmin && newRole == domain.RoleTechManager {
		return true
	}
	return actor.Role.HasStrictlyHigherRank(newRole)
}

// CanDeactivateUser: the shared tier rule, never on self.
func CanDeactivateUser(actor *domain.Actor, target *domain.User) bool {
	if actor == nil || target == nil || actor.ID == target.ID {
		return false
	}
	return canManageUser(actor, target)
}

// CanDeleteUser: only the single top-most role, never on self.
func CanDeleteUser(actor *domain.Actor, target *domain.User) bool {
	if actor == nil || target == nil || actor.ID == target.ID {
		return false
	}
	return actor.Role == domain.RoleSuperAdmin
}

// Assertion variants.

func RequireViewUser(actor *domain.Actor, target *domain.User) error {
	if !CanViewUser(actor, target) {
		return deny(actor, "view", "user", userID(target), "authentication required")
	}
	return nil
}

func RequireUpdateUserProfile(actor *domain.Actor, target *domain.User) error {
	if !CanUpdateUserProfile(actor, target) {
		return deny(actor, "update", "user", userID(target), "target outranks your administrative tier")
	}
	return nil
}

func RequireChangeUserRole(actor *domain.Actor, target *domain.User, newRole domain.Role) error {
	if !CanChangeUserRole(actor, target, newRole) {
		return deny(actor, "change role of", "user", userID(target), "the granted role must rank strictly below your own")
	}
	return nil
}

func RequireCreateUser(actor *domain.Actor, newRole domain.Role) error {
	if !CanCreateUser(actor, newRole) {
		return deny(actor, "create", "user", "", "the granted role must rank strictly below your own")
	}
	return nil
}

func RequireDeactivateUser(actor *domain.Actor, target *domain.User) error {
	if !CanDeactivateUser(actor, target) {
		return deny(actor, "deactivate", "user", userID(target), "not permitted on self or a higher tier")
	}
	return nil
}

func RequireDeleteUser(actor *domain.Actor, target *domain.User) error {
	if !CanDeleteUser(actor, target) {
		return deny(actor, "delete", "user", userID(target), "requires the super admin role and a target other than yourself")
	}
	return nil
}

func userID(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
