package store

import (
	"context"
	"errors"

	"github.com/kendall-kelly/cleancans-api/models"
	"gorm.io/gorm"
)

type entityPtr[T any] interface {
	*T
	models.Entity
}

// Collection provides CRUD over one named table. Absence is never an
// error: lookups report it through their boolean result.
type Collection[T any, P entityPtr[T]] struct {
	s    *Store
	name string
}

// For returns the collection that stores records of type T
func For[T any, P entityPtr[T]](s *Store) *Collection[T, P] {
	var zero T
	return &Collection[T, P]{s: s, name: P(&zero).TableName()}
}

// Name returns the collection (table) name
func (c *Collection[T, P]) Name() string {
	return c.name
}

func (c *Collection[T, P]) ordered(ctx context.Context) *gorm.DB {
	return c.s.db.WithContext(ctx).Order("created ASC").Order("id ASC")
}

// All returns every record in insertion order
func (c *Collection[T, P]) All(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := c.ordered(ctx).Find(&items).Error; err != nil {
		return nil, wrapErr("list", c.name, err)
	}
	return items, nil
}

// Create assigns a fresh id and creation timestamp, inserts the record and
// returns it with the generated fields set.
func (c *Collection[T, P]) Create(ctx context.Context, rec T) (T, error) {
	id, created := c.s.stamp()
	P(&rec).Stamp(id, created)
	if err := c.s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		var zero T
		return zero, wrapErr("create", c.name, err)
	}
	return rec, nil
}

// FindByID looks a record up by identifier
func (c *Collection[T, P]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var rec T
	if err := c.s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, false, nil
		}
		return zero, false, wrapErr("find", c.name, err)
	}
	return rec, true, nil
}

// FindBy returns the records matching pred, in insertion order
func (c *Collection[T, P]) FindBy(ctx context.Context, pred func(T) bool) ([]T, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Where returns the records whose columns equal the given values
func (c *Collection[T, P]) Where(ctx context.Context, conds map[string]interface{}) ([]T, error) {
	items := make([]T, 0)
	if err := c.ordered(ctx).Where(conds).Find(&items).Error; err != nil {
		return nil, wrapErr("query", c.name, err)
	}
	return items, nil
}

// Count returns the number of records in the collection
func (c *Collection[T, P]) Count(ctx context.Context) (int64, error) {
	var n int64
	var zero T
	if err := c.s.db.WithContext(ctx).Model(&zero).Count(&n).Error; err != nil {
		return 0, wrapErr("count", c.name, err)
	}
	return n, nil
}

// Update merges fields (keyed by column name) into the record with the given
// id and returns the merged record. The id and created columns are never
// changed. When no record has the id nothing is written and found is false.
func (c *Collection[T, P]) Update(ctx context.Context, id string, fields map[string]interface{}) (T, bool, error) {
	var updated T
	found := false
	err := c.s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec T
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		changes := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			if k == "id" || k == "ID" || k == "created" || k == "Created" {
				continue
			}
			changes[k] = v
		}
		if len(changes) > 0 {
			if err := tx.Model(&rec).Updates(changes).Error; err != nil {
				return err
			}
			if err := tx.First(&rec, "id = ?", id).Error; err != nil {
				return err
			}
		}

		updated = rec
		found = true
		return nil
	})
	if err != nil {
		var zero T
		return zero, false, wrapErr("update", c.name, err)
	}
	return updated, found, nil
}

// Delete removes the record with the given id and reports whether a record
// was removed. Deleting an unknown id is a no-op.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	var zero T
	res := c.s.db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return false, wrapErr("delete", c.name, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Typed accessors for the known collections.

// Users returns the users collection
func Users(s *Store) *Collection[models.User, *models.User] { return For[models.User](s) }

// Customers returns the customers collection
func Customers(s *Store) *Collection[models.Customer, *models.Customer] {
	return For[models.Customer](s)
}

// Services returns the services collection
func Services(s *Store) *Collection[models.Service, *models.Service] {
	return For[models.Service](s)
}

// Jobs returns the jobs collection
func Jobs(s *Store) *Collection[models.Job, *models.Job] { return For[models.Job](s) }

// Plans returns the recurring_plans collection
func Plans(s *Store) *Collection[models.RecurringPlan, *models.RecurringPlan] {
	return For[models.RecurringPlan](s)
}

// Notifications returns the notifications collection
func Notifications(s *Store) *Collection[models.Notification, *models.Notification] {
	return For[models.Notification](s)
}
