package domain

import "fmt"

// Role identifies a privilege tier. The set is closed and versioned: adding a
// role means updating the rank table here and re-auditing every admin-override
// call site, because that check is by identity rather than by rank.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleTechManager Role = "TECH_MANAGER"
	RoleAdmin       Role = "ADMIN"
	RoleTechnician  Role = "TECHNICIAN"
	RoleEndUser     Role = "END_USER"
)

// roleRanks is the static privilege table. SUPER_ADMIN and TECH_MANAGER
// deliberately share the top rank; neither strictly outranks the other.
// The table is never mutated at runtime.
var roleRanks = map[Role]int{
	RoleSuperAdmin:  4,
	RoleTechManager: 4,
	RoleAdmin:       3,
	RoleTechnician:  2,
	RoleEndUser:     1,
}

// AllRoles lists every defined role, highest rank first.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleTechManager,
	RoleAdmin,
	RoleTechnician,
	RoleEndUser,
}

// Rank returns the privilege level for a role. Unknown roles rank 0, below
// every defined role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// HasHigherOrEqualRank reports whether r ranks at least as high as other.
// Reflexive: a role always satisfies it against itself and against any role
// of equal rank.
func (r Role) HasHigherOrEqualRank(other Role) bool {
	return r.Rank() >= other.Rank()
}

// HasStrictlyHigherRank reports whether r outranks other. Roles of equal
// rank, including the two top-tier roles, are never strictly higher than
// one another.
func (r Role) HasStrictlyHigherRank(other Role) bool {
	return r.Rank() > other.Rank()
}

// ParseRole converts a string into a defined Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}
