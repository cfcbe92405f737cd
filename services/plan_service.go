package services

import (
	"context"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
)

// PlanService exposes recurring plans to their customers
type PlanService struct {
	store *store.Store
}

// NewPlanService creates a plan service
func NewPlanService(st *store.Store) *PlanService {
	return &PlanService{store: st}
}

// List returns every plan
func (s *PlanService) List(ctx context.Context) ([]models.RecurringPlan, error) {
	return store.Plans(s.store).All(ctx)
}

// ListForCustomer returns the plans of one customer
func (s *PlanService) ListForCustomer(ctx context.Context, customerID string) ([]models.RecurringPlan, error) {
	return store.Plans(s.store).Where(ctx, map[string]interface{}{"customer_id": customerID})
}

// Get returns the plan with id
func (s *PlanService) Get(ctx context.Context, id string) (models.RecurringPlan, error) {
	plan, ok, err := store.Plans(s.store).FindByID(ctx, id)
	if err != nil {
		return models.RecurringPlan{}, err
	}
	if !ok {
		return models.RecurringPlan{}, ErrPlanNotFound
	}
	return plan, nil
}

// Cancel stops a plan from producing further jobs. Jobs it already produced
// are left alone. customerID restricts the call to the plan's owner when set.
func (s *PlanService) Cancel(ctx context.Context, id, customerID string) (models.RecurringPlan, error) {
	var plan models.RecurringPlan
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, ok, err := store.Plans(tx).FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPlanNotFound
		}
		if customerID != "" && current.CustomerID != customerID {
			return ErrForbidden
		}
		plan, _, err = store.Plans(tx).Update(ctx, id, map[string]interface{}{"active": false})
		return err
	})
	return plan, err
}
