package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	me := Identity{
		ID:          "emp-1",
		Name:        "Maria",
		Email:       "maria@multielectric.com",
		Role:        RoleAdmin,
		Permissions: PermissionsForRole(RoleAdmin),
	}

	token, err := svc.Sign(me)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, me, *got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewService("secret-a", time.Hour).Sign(Identity{ID: "emp-1", Role: RoleEmployee})
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	token, err := svc.Sign(Identity{ID: "emp-1", Role: RoleEmployee})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPermissionsForRole(t *testing.T) {
	admin := PermissionsForRole(RoleAdmin)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.CanManageUsers)
	assert.True(t, admin.CanManageInventory)
	assert.True(t, admin.CanDeleteClients)

	emp := PermissionsForRole(RoleEmployee)
	assert.False(t, emp.IsAdmin)
	assert.False(t, emp.CanManageUsers)
	assert.False(t, emp.CanManageInventory)
	assert.True(t, emp.CanViewInventory)
	assert.True(t, emp.CanUpdateOrders)
	assert.True(t, emp.CanViewClients)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}
