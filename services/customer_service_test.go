package services

import (
	"testing"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_ForUserIsStable(t *testing.T) {
	f := newFixture(t)
	_, user := f.basics(t)
	customers := NewCustomerService(f.store)

	first, err := customers.ForUser(f.ctx, user)
	require.NoError(t, err)
	second, err := customers.ForUser(f.ctx, user)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, user.Name, first.Name)
	require.NotNil(t, first.UserID)
	assert.Equal(t, user.ID, *first.UserID)
}

func TestCustomerService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	_, user := f.basics(t)
	customers := NewCustomerService(f.store)

	updated, err := customers.UpdateProfile(f.ctx, user, CustomerInput{
		Name:    "Pat Smith",
		Phone:   " +15559876543 ",
		Address: "12 Elm St",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pat Smith", updated.Name)
	assert.Equal(t, "+15559876543", updated.Phone)
	assert.Equal(t, "12 Elm St", updated.Address)

	// A blank name keeps the current one
	updated, err = customers.UpdateProfile(f.ctx, user, CustomerInput{Phone: "+15559876543"})
	require.NoError(t, err)
	assert.Equal(t, "Pat Smith", updated.Name)
}

func TestCustomerService_AdminCRUD(t *testing.T) {
	f := newFixture(t)
	customers := NewCustomerService(f.store)

	created, err := customers.Create(f.ctx, CustomerInput{Name: "Walk-in", Phone: "+15550001111"})
	require.NoError(t, err)
	assert.Nil(t, created.UserID)

	updated, err := customers.Update(f.ctx, created.ID, CustomerInput{Name: "Walk-in Two", Address: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "Walk-in Two", updated.Name)

	_, err = customers.Update(f.ctx, "missing", CustomerInput{Name: "x"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	all, err := customers.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, customers.Delete(f.ctx, created.ID))
	_, err = customers.Get(f.ctx, created.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.ErrorIs(t, customers.Delete(f.ctx, created.ID), ErrCustomerNotFound)
}

func TestCustomerService_DeleteRefusedWithJobs(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, models.Service{Name: "Standard Clean", Price: 25, Duration: 30, Active: true})
	customer := f.createCustomer(t, models.Customer{Name: "Busy"})
	f.createJob(t, models.Job{CustomerID: customer.ID, ServiceID: svc.ID, ScheduledDate: "2024-06-20"})

	err := NewCustomerService(f.store).Delete(f.ctx, customer.ID)
	assert.ErrorIs(t, err, ErrCustomerHasJobs)

	_, ok, err := store.Customers(f.store).FindByID(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
