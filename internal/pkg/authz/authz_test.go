package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, in := range []string{"user", "Moderator", " admin "} {
		_, ok := ParseRole(in)
		assert.True(t, ok, in)
	}
	for _, in := range []string{"", "superadmin", "owner"} {
		_, ok := ParseRole(in)
		assert.False(t, ok, in)
	}
}

func TestPermissionMatches(t *testing.T) {
	assert.True(t, superPermission.Matches(UsersRole))
	assert.True(t, Permission("applications:*").Matches(ApplicationsReview))
	assert.False(t, Permission("applications:*").Matches(CasesAny))
	assert.True(t, CasesAny.Matches(CasesAny))
	assert.False(t, Permission("broken").Matches(CasesAny))
}

func TestRoleCapabilities(t *testing.T) {
	assert.False(t, Can(RoleUser, ApplicationsReview))
	assert.False(t, Can(RoleUser, UsersRole))

	assert.True(t, Can(RoleModerator, ApplicationsReview))
	assert.True(t, Can(RoleModerator, ApplicationsList))
	assert.False(t, Can(RoleModerator, UsersRole))
	assert.False(t, Can(RoleModerator, CasesAny))

	assert.True(t, Can(RoleAdmin, UsersRole))
	assert.True(t, Can(RoleAdmin, CasesAny))
	assert.False(t, Can(Role("ghost"), CasesAny))
}

func TestAuthorizeOwnership(t *testing.T) {
	owner := uuid.New()
	self := &Identity{ID: owner, Role: RoleUser}
	other := &Identity{ID: uuid.New(), Role: RoleUser}
	admin := &Identity{ID: uuid.New(), Role: RoleAdmin}

	assert.NoError(t, Authorize(self, owner, CasesAny))
	assert.ErrorIs(t, Authorize(other, owner, CasesAny), ErrForbidden)
	assert.NoError(t, Authorize(admin, owner, CasesAny))
	assert.ErrorIs(t, Authorize(nil, owner, CasesAny), ErrForbidden)
}
