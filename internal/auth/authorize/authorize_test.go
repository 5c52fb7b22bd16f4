package authorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

func userWith(roles domain.Roles) *domain.CurrentUser {
	return &domain.CurrentUser{ID: 1, Roles: roles}
}

func TestHasRoleTruthTable(t *testing.T) {
	cases := []struct {
		name     string
		required domain.Roles
		actual   domain.Roles
		want     bool
	}{
		{"single vs single equal", domain.Role("admin"), domain.Role("admin"), true},
		{"single vs single different", domain.Role("admin"), domain.Role("editor"), false},
		{"single vs many member", domain.Role("admin"), domain.RoleList("admin", "editor"), true},
		{"single vs many non-member", domain.Role("viewer"), domain.RoleList("admin", "editor"), false},
		{"many vs many overlap", domain.RoleList("admin", "editor"), domain.RoleList("editor"), true},
		{"many vs many disjoint", domain.RoleList("admin", "editor"), domain.RoleList("viewer"), false},
		{"many vs single member", domain.RoleList("admin", "editor"), domain.Role("editor"), true},
		{"many vs single non-member", domain.RoleList("admin", "editor"), domain.Role("viewer"), false},
		{"single vs absent", domain.Role("admin"), domain.NoRoles(), false},
		{"many vs absent", domain.RoleList("admin"), domain.NoRoles(), false},
		{"absent required never matches", domain.NoRoles(), domain.Role("admin"), false},
		{"empty list vs single", domain.RoleList(), domain.Role("admin"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasRole(userWith(tc.actual), tc.required))
		})
	}
}

func TestHasRoleUnauthenticated(t *testing.T) {
	// No lookups, no shape inspection: nil identity is false unconditionally.
	assert.False(t, HasRole(nil, domain.Role("admin")))
	assert.False(t, HasRole(nil, domain.NoRoles()))
}

func TestRequireAuthUnauthenticated(t *testing.T) {
	for _, required := range []domain.Roles{
		domain.NoRoles(),
		domain.Role("admin"),
		domain.RoleList("admin", "editor"),
	} {
		err := RequireAuth(nil, required)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized),
			"unauthenticated must always be CodeUnauthorized, got %v", err)
	}
}

func TestRequireAuthForbiddenIsDistinct(t *testing.T) {
	err := RequireAuth(userWith(domain.Role("viewer")), domain.Role("admin"))
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
	assert.False(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestRequireAuthNoRolesNeedsOnlyAuthentication(t *testing.T) {
	assert.NoError(t, RequireAuth(userWith(domain.NoRoles()), domain.NoRoles()))
}

func TestRequireAuthSatisfiedRoles(t *testing.T) {
	assert.NoError(t, RequireAuth(userWith(domain.RoleList("admin", "editor")), domain.Role("admin")))
	assert.NoError(t, RequireAuth(userWith(domain.Role("editor")), domain.RoleList("admin", "editor")))
}
