package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

func newUserSetup() (*UserCommands, *memUserRepo, *harness) {
	h := newHarness()
	users := newMemUserRepo(
		userWithRole("super", domain.RoleSuperAdmin),
		userWithRole("manager", domain.RoleTechManager),
		userWithRole("admin", domain.RoleAdmin),
		userWithRole("tech", domain.RoleTechnician),
		userWithRole("enduser", domain.RoleEndUser),
	)
	return NewUserCommands(users, fakeHasher{}, h.runner), users, h
}

func TestUserCreate_Success(t *testing.T) {
	cmds, users, h := newUserSetup()
	admin, _ := users.FindByID(context.Background(), "admin")

	res := cmds.Create(context.Background(), actorFor(admin), CreateUserRequest{
		Email:    "new.tech@example.com",
		Name:     "New Tech",
		Role:     domain.RoleTechnician,
		Password: "longenoughpassword",
	})

	assert.True(t, res.Success)
	created := res.Data["user"].(*domain.User)
	assert.Equal(t, "hashed:longenoughpassword", created.PasswordHash)
	assert.True(t, created.Active)
	assert.Len(t, h.audits.entries, 1)
	assert.Equal(t, "USER_CREATED", h.audits.entries[0].Action)
}

func TestUserCreate_EmailTaken(t *testing.T) {
	cmds, users, h := newUserSetup()
	admin, _ := users.FindByID(context.Background(), "admin")

	res := cmds.Create(context.Background(), actorFor(admin), CreateUserRequest{
		Email:    "tech@example.com",
		Name:     "Duplicate",
		Role:     domain.RoleTechnician,
		Password: "longenoughpassword",
	})

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeConflict, res.Code)
	assert.Empty(t, h.audits.entries)
}

func TestUserCreate_CannotGrantEqualRank(t *testing.T) {
	cmds, users, _ := newUserSetup()
	admin, _ := users.FindByID(context.Background(), "admin")

	res := cmds.Create(context.Background(), actorFor(admin), CreateUserRequest{
		Email:    "peer@example.com",
		Name:     "Peer Admin",
		Role:     domain.RoleAdmin,
		Password: "longenoughpassword",
	})

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeForbidden, res.Code)
}

func TestUserChangeRole_Success(t *testing.T) {
	cmds, users, h := newUserSetup()
	super, _ := users.FindByID(context.Background(), "super")

	res := cmds.ChangeRole(context.Background(), actorFor(super), "tech", domain.RoleAdmin)

	assert.True(t, res.Success)
	assert.Equal(t, string(domain.RoleTechnician), res.Data["previous_role"])
	assert.Equal(t, string(domain.RoleAdmin), res.Data["new_role"])

	assert.Len(t, h.audits.entries, 1)
	assert.Equal(t, "USER_ROLE_CHANGED", h.audits.entries[0].Action)
	assert.Equal(t, string(domain.RoleTechnician), h.audits.entries[0].Metadata["previous_role"])
	assert.Equal(t, string(domain.RoleAdmin), h.audits.entries[0].Metadata["new_role"])
}

func TestUserChangeRole_NeverOnSelf(t *testing.T) {
	cmds, users, h := newUserSetup()
	super, _ := users.FindByID(context.Background(), "super")

	res := cmds.ChangeRole(context.Background(), actorFor(super), "super", domain.RoleEndUser)

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeForbidden, res.Code)
	assert.Empty(t, h.audits.entries)
}

func TestUserChangeRole_TiedRankCannotMintTopRole(t *testing.T) {
	cmds, users, _ := newUserSetup()
	manager, _ := users.FindByID(context.Background(), "manager")

	res := cmds.ChangeRole(context.Background(), actorFor(manager), "admin", domain.RoleSuperAdmin)

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeForbidden, res.Code)
}

func TestUserChangeRole_SuperAdminElevatesToTechManager(t *testing.T) {
	cmds, users, _ := newUserSetup()
	super, _ := users.FindByID(context.Background(), "super")

	res := cmds.ChangeRole(context.Background(), actorFor(super), "admin", domain.RoleTechManager)

	assert.True(t, res.Success)
	updated, _ := users.FindByID(context.Background(), "admin")
	assert.Equal(t, domain.RoleTechManager, updated.Role)
}

func TestUserDeactivate(t *testing.T) {
	cmds, users, h := newUserSetup()
	manager, _ := users.FindByID(context.Background(), "manager")

	res := cmds.Deactivate(context.Background(), actorFor(manager), "tech")
	assert.True(t, res.Success)

	target, _ := users.FindByID(context.Background(), "tech")
	assert.False(t, target.Active)
	assert.Len(t, h.audits.entries, 1)
	assert.Equal(t, "USER_DEACTIVATED", h.audits.entries[0].Action)

	// Deactivating twice hits the domain invariant.
	again := cmds.Deactivate(context.Background(), actorFor(manager), "tech")
	assert.False(t, again.Success)
	assert.Equal(t, apperror.CodeConflict, again.Code)
}

func TestUserDelete_SuperAdminOnly(t *testing.T) {
	cmds, users, h := newUserSetup()
	manager, _ := users.FindByID(context.Background(), "manager")
	super, _ := users.FindByID(context.Background(), "super")

	denied := cmds.Delete(context.Background(), actorFor(manager), "enduser")
	assert.False(t, denied.Success)
	assert.Equal(t, apperror.CodeForbidden, denied.Code)

	res := cmds.Delete(context.Background(), actorFor(super), "enduser")
	assert.True(t, res.Success)
	_, err := users.FindByID(context.Background(), "enduser")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Len(t, h.audits.entries, 1)
	assert.Equal(t, "USER_DELETED", h.audits.entries[0].Action)
}

func TestUserUpdateProfile_SelfAllowed(t *testing.T) {
	cmds, users, _ := newUserSetup()
	endUser, _ := users.FindByID(context.Background(), "enduser")

	name := "Renamed User"
	res := cmds.UpdateProfile(context.Background(), actorFor(endUser), "enduser", UpdateUserProfileRequest{Name: &name})

	assert.True(t, res.Success)
	updated, _ := users.FindByID(context.Background(), "enduser")
	assert.Equal(t, "Renamed User", updated.Name)
}

func TestUserUpdateProfile_PeerForbidden(t *testing.T) {
	cmds, users, _ := newUserSetup()
	endUser, _ := users.FindByID(context.Background(), "enduser")

	name := "Hijacked"
	res := cmds.UpdateProfile(context.Background(), actorFor(endUser), "tech", UpdateUserProfileRequest{Name: &name})

	assert.False(t, res.Success)
	assert.Equal(t, apperror.CodeForbidden, res.Code)
}
