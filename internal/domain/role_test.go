package domain

import "testing"

func TestRole_Rank(t *testing.T) {
	cases := []struct {
		role Role
		rank int
	}{
		{RoleSuperAdmin, 4},
		{RoleTechManager, 4},
		{RoleAdmin, 3},
		{RoleTechnician, 2},
		{RoleEndUser, 1},
		{Role("INTRUDER"), 0},
		{Role(""), 0},
	}

	for _, c := range cases {
		if got := c.role.Rank(); got != c.rank {
			t.Errorf("Rank(%q) = %d, want %d", c.role, got, c.rank)
		}
	}
}

func TestRole_TopRolesShareRank(t *testing.T) {
	if !RoleSuperAdmin.HasHigherOrEqualRank(RoleTechManager) {
		t.Error("SUPER_ADMIN should have rank >= TECH_MANAGER")
	}
	if !RoleTechManager.HasHigherOrEqualRank(RoleSuperAdmin) {
		t.Error("TECH_MANAGER should have rank >= SUPER_ADMIN")
	}
	if RoleSuperAdmin.HasStrictlyHigherRank(RoleTechManager) {
		t.Error("SUPER_ADMIN should not strictly outrank TECH_MANAGER")
	}
	if RoleTechManager.HasStrictlyHigherRank(RoleSuperAdmin) {
		t.Error("TECH_MANAGER should not strictly outrank SUPER_ADMIN")
	}
}

func TestRole_StrictOrdering(t *testing.T) {
	ordered := []Role{RoleEndUser, RoleTechnician, RoleAdmin, RoleSuperAdmin}

	for i := 1; i < len(ordered); i++ {
		higher, lower := ordered[i], ordered[i-1]
		if !higher.HasStrictlyHigherRank(lower) {
			t.Errorf("%s should strictly outrank %s", higher, lower)
		}
		if lower.HasStrictlyHigherRank(higher) {
			t.Errorf("%s should not strictly outrank %s", lower, higher)
		}
	}
}

func TestRole_UnknownRanksBelowEveryone(t *testing.T) {
	if len(AllRoles) != 5 {
		t.Fatalf("AllRoles has %d entries, want 5", len(AllRoles))
	}

	unknown := Role("GHOST")
	for _, r := range AllRoles {
		if !r.HasStrictlyHigherRank(unknown) {
			t.Errorf("%s should strictly outrank an unknown role", r)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles {
		parsed, err := ParseRole(string(r))
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", r, err)
		}
		if parsed != r {
			t.Errorf("ParseRole(%q) = %q", r, parsed)
		}
	}

	if _, err := ParseRole("WIZARD"); err == nil {
		t.Error("ParseRole should reject unknown roles")
	}
}
