package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserInfo struct {
	info *Auth0UserInfo
	err  error
}

func (f fakeUserInfo) GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error) {
	return f.info, f.err
}

func TestUserService_Register(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.store, fakeUserInfo{info: &Auth0UserInfo{
		Sub: "auth0|abc", Email: "New@Example.com", Name: "New Person", PhoneNumber: "+15557654321",
	}})

	user, err := users.Register(f.ctx, "auth0|abc", "token")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	require.NotNil(t, user.Auth0ID)
	assert.Equal(t, "auth0|abc", *user.Auth0ID)

	found, ok, err := users.ByAuth0ID(f.ctx, "auth0|abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, found.ID)

	_, err = users.Register(f.ctx, "auth0|abc", "token")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserService_RegisterLinksSeededAccount(t *testing.T) {
	f := newFixture(t)
	seeded := f.createUser(t, models.User{Email: "tech@example.com", Name: "Tess", Role: models.RoleTechnician})
	users := NewUserService(f.store, fakeUserInfo{info: &Auth0UserInfo{Email: "tech@example.com", Name: "Tess T"}})

	linked, err := users.Register(f.ctx, "auth0|tech", "token")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, linked.ID)
	assert.Equal(t, models.RoleTechnician, linked.Role)

	techs, err := users.ListTechnicians(f.ctx)
	require.NoError(t, err)
	assert.Len(t, techs, 1)
}

func TestUserService_RegisterUserInfoFailure(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.store, fakeUserInfo{err: errors.New("auth0 down")})

	_, err := users.Register(f.ctx, "auth0|abc", "token")
	assert.ErrorContains(t, err, "auth0 down")
}

func TestUserService_UpdateProfileKeepsRole(t *testing.T) {
	f := newFixture(t)
	_, user := f.basics(t)
	users := NewUserService(f.store, fakeUserInfo{})

	updated, err := users.UpdateProfile(f.ctx, user.ID, "Patricia", "+15550000000")
	require.NoError(t, err)
	assert.Equal(t, "Patricia", updated.Name)
	assert.Equal(t, "+15550000000", updated.Phone)

	assert.Equal(t, models.RoleCustomer, updated.Role)

	_, err = users.Get(f.ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
