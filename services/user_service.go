package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
)

// UserService manages accounts linked to Auth0 identities
type UserService struct {
	store    *store.Store
	userInfo UserInfoProvider
}

// NewUserService creates a user service
func NewUserService(st *store.Store, userInfo UserInfoProvider) *UserService {
	return &UserService{store: st, userInfo: userInfo}
}

// Register creates a customer account for the identity behind accessToken.
// An existing account with the same email but no Auth0 link (seeded staff)
// is linked instead of duplicated.
func (s *UserService) Register(ctx context.Context, auth0ID, accessToken string) (models.User, error) {
	if _, ok, err := s.ByAuth0ID(ctx, auth0ID); err != nil {
		return models.User{}, err
	} else if ok {
		return models.User{}, ErrUserExists
	}

	info, err := s.userInfo.GetUserInfo(ctx, accessToken)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrIdentityProvider, err)
	}
	email := strings.ToLower(strings.TrimSpace(info.Email))
	name := strings.TrimSpace(info.Name)
	if name == "" {
		name = email
	}

	var user models.User
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		matches, err := store.Users(tx).Where(ctx, map[string]interface{}{"email": email})
		if err != nil {
			return err
		}
		if len(matches) > 0 {
			if matches[0].Auth0ID != nil {
				return ErrUserExists
			}
			linked, _, err := store.Users(tx).Update(ctx, matches[0].ID, map[string]interface{}{"auth0_id": auth0ID})
			user = linked
			return err
		}

		id := auth0ID
		user, err = store.Users(tx).Create(ctx, models.User{
			Auth0ID: &id,
			Email:   email,
			Name:    name,
			Role:    models.RoleCustomer,
			Phone:   info.PhoneNumber,
		})
		return err
	})
	if errors.Is(err, store.ErrConflict) {
		return models.User{}, ErrUserExists
	}
	return user, err
}

// ByAuth0ID looks up the account for a token subject
func (s *UserService) ByAuth0ID(ctx context.Context, auth0ID string) (models.User, bool, error) {
	users, err := store.Users(s.store).Where(ctx, map[string]interface{}{"auth0_id": auth0ID})
	if err != nil || len(users) == 0 {
		return models.User{}, false, err
	}
	return users[0], true, nil
}

// Get returns the user with id
func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, ok, err := store.Users(s.store).FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// ListTechnicians returns every user with the technician role
func (s *UserService) ListTechnicians(ctx context.Context) ([]models.User, error) {
	return store.Users(s.store).Where(ctx, map[string]interface{}{"role": models.RoleTechnician})
}

// UpdateProfile changes the name and phone of a user
func (s *UserService) UpdateProfile(ctx context.Context, id, name, phone string) (models.User, error) {
	fields := map[string]interface{}{"phone": phone}
	if strings.TrimSpace(name) != "" {
		fields["name"] = strings.TrimSpace(name)
	}
	user, ok, err := store.Users(s.store).Update(ctx, id, fields)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}
