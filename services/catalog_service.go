package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
)

// ServiceInput carries the editable fields of a catalog entry
type ServiceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Duration    int     `json:"duration" binding:"required,gt=0"`
	Active      *bool   `json:"active"`
}

// CatalogService manages the offered cleaning services
type CatalogService struct {
	store *store.Store
}

// NewCatalogService creates a catalog service
func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{store: st}
}

// List returns the catalog; only active entries unless includeInactive
func (s *CatalogService) List(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	if includeInactive {
		return store.Services(s.store).All(ctx)
	}
	return store.Services(s.store).Where(ctx, map[string]interface{}{"active": true})
}

// Get returns the service with id
func (s *CatalogService) Get(ctx context.Context, id string) (models.Service, error) {
	svc, ok, err := store.Services(s.store).FindByID(ctx, id)
	if err != nil {
		return models.Service{}, err
	}
	if !ok {
		return models.Service{}, ErrServiceNotFound
	}
	return svc, nil
}

// Create adds a catalog entry, active unless stated otherwise
func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (models.Service, error) {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return store.Services(s.store).Create(ctx, models.Service{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Duration:    in.Duration,
		Active:      active,
	})
}

// Update replaces the fields of the catalog entry with id
func (s *CatalogService) Update(ctx context.Context, id string, in ServiceInput) (models.Service, error) {
	fields := map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
		"price":       in.Price,
		"duration":    in.Duration,
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	svc, ok, err := store.Services(s.store).Update(ctx, id, fields)
	if err != nil {
		return models.Service{}, err
	}
	if !ok {
		return models.Service{}, ErrServiceNotFound
	}
	return svc, nil
}

// Deactivate retires a catalog entry. Entries are never removed because
// jobs and plans keep referencing them.
func (s *CatalogService) Deactivate(ctx context.Context, id string) (models.Service, error) {
	svc, ok, err := store.Services(s.store).Update(ctx, id, map[string]interface{}{"active": false})
	if err != nil {
		return models.Service{}, err
	}
	if !ok {
		return models.Service{}, ErrServiceNotFound
	}
	return svc, nil
}

// requireActive loads a service and checks that it can be booked
func requireActive(ctx context.Context, st *store.Store, id string) (models.Service, error) {
	svc, ok, err := store.Services(st).FindByID(ctx, id)
	if err != nil {
		return models.Service{}, err
	}
	if !ok {
		return models.Service{}, ErrServiceNotFound
	}
	if !svc.Active {
		return models.Service{}, ErrServiceInactive
	}
	return svc, nil
}
