package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
)

// CustomerInput carries the editable customer profile fields
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (in CustomerInput) fields() map[string]interface{} {
	fields := map[string]interface{}{
		"phone":   strings.TrimSpace(in.Phone),
		"address": strings.TrimSpace(in.Address),
		"notes":   in.Notes,
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		fields["name"] = name
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		fields["email"] = email
	}
	return fields
}

// CustomerService manages customer profiles
type CustomerService struct {
	store *store.Store
}

// NewCustomerService creates a customer service
func NewCustomerService(st *store.Store) *CustomerService {
	return &CustomerService{store: st}
}

// ForUser returns the customer profile linked to user, creating it from the
// user's account details on first use.
func (s *CustomerService) ForUser(ctx context.Context, user models.User) (models.Customer, error) {
	var customer models.Customer
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		customer, err = customerForUser(ctx, tx, user)
		return err
	})
	return customer, err
}

func customerForUser(ctx context.Context, st *store.Store, user models.User) (models.Customer, error) {
	existing, ok, err := linkedCustomer(ctx, st, user.ID)
	if err != nil || ok {
		return existing, err
	}

	userID := user.ID
	return store.Customers(st).Create(ctx, models.Customer{
		UserID: &userID,
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.Phone,
	})
}

// UpdateProfile updates the customer profile linked to user
func (s *CustomerService) UpdateProfile(ctx context.Context, user models.User, in CustomerInput) (models.Customer, error) {
	var customer models.Customer
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := customerForUser(ctx, tx, user)
		if err != nil {
			return err
		}
		customer, _, err = store.Customers(tx).Update(ctx, current.ID, in.fields())
		return err
	})
	return customer, err
}

// List returns every customer
func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	return store.Customers(s.store).All(ctx)
}

// Get returns the customer with id
func (s *CustomerService) Get(ctx context.Context, id string) (models.Customer, error) {
	customer, ok, err := store.Customers(s.store).FindByID(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	if !ok {
		return models.Customer{}, ErrCustomerNotFound
	}
	return customer, nil
}

// Create adds a customer that has no login of its own
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (models.Customer, error) {
	return store.Customers(s.store).Create(ctx, models.Customer{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
		Notes:   in.Notes,
	})
}

// Update replaces the editable fields of the customer with id
func (s *CustomerService) Update(ctx context.Context, id string, in CustomerInput) (models.Customer, error) {
	customer, ok, err := store.Customers(s.store).Update(ctx, id, in.fields())
	if err != nil {
		return models.Customer{}, err
	}
	if !ok {
		return models.Customer{}, ErrCustomerNotFound
	}
	return customer, nil
}

// Delete removes a customer. Customers still referenced by jobs are kept.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		jobs, err := store.Jobs(tx).Where(ctx, map[string]interface{}{"customer_id": id})
		if err != nil {
			return err
		}
		if len(jobs) > 0 {
			return ErrCustomerHasJobs
		}

		plans, err := store.Plans(tx).Where(ctx, map[string]interface{}{"customer_id": id})
		if err != nil {
			return err
		}
		for _, p := range plans {
			if _, err := store.Plans(tx).Delete(ctx, p.ID); err != nil {
				return err
			}
		}

		removed, err := store.Customers(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return ErrCustomerNotFound
		}
		return nil
	})
}
