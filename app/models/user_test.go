package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("Jane Doe", "jane@example.com", "secret123", ROLE_INVESTOR)
	require.NoError(t, err)

	assert.Equal(t, ROLE_INVESTOR, user.Role)
	assert.Equal(t, PLAN_FREE, user.PlanKey)
	assert.Equal(t, PLAN_STATUS_ACTIVE, user.PlanStatus)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("Jane Doe", "not-an-email", "secret123", ROLE_INVESTOR)
	assert.Error(t, err)

	_, err = CreateUser("Jane Doe", "jane@example.com", "short", ROLE_INVESTOR)
	assert.Error(t, err)

	_, err = CreateUser("Jane Doe", "jane@example.com", "secret123", "superuser")
	assert.Error(t, err)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: ROLE_ADMIN}).IsAdmin())
	assert.False(t, (&User{Role: ROLE_INVESTOR}).IsAdmin())
}

func TestSetPassword(t *testing.T) {
	user, err := CreateUser("Jane Doe", "jane@example.com", "secret123", ROLE_INVESTOR)
	require.NoError(t, err)

	require.NoError(t, user.SetPassword("newsecret456"))
	assert.True(t, user.CheckPassword("newsecret456"))
	assert.False(t, user.CheckPassword("secret123"))
}
