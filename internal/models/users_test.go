package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRole_ExactMembership(t *testing.T) {
	user := &User{Roles: []string{RoleAdmin}}

	assert.True(t, user.HasRole(RoleAdmin))
	assert.False(t, user.HasRole(RoleSuperAdmin))

	// Membership is exact: a role that merely contains the required string
	// does not qualify.
	impostor := &User{Roles: []string{"administrator"}}
	assert.False(t, impostor.HasRole(RoleAdmin))

	none := &User{}
	assert.False(t, none.HasRole(RoleAdmin))
}
