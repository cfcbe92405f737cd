package store

import (
	"context"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
	"gorm.io/gorm"
)

// Store owns the canonical copy of every collection. Construct it once at
// startup and pass it to the services that need it.
type Store struct {
	db    *gorm.DB
	newID func() string
	now   func() time.Time
}

// Option customizes a Store
type Option func(*Store)

// WithIDGenerator replaces the default UUIDv7 generator
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces time.Now as the source of creation timestamps
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// New wraps an open gorm connection
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, newID: NewID, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Models lists every entity persisted by the store
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Customer{},
		&models.Service{},
		&models.Job{},
		&models.RecurringPlan{},
		&models.Notification{},
	}
}

// Migrate creates missing tables and adds missing columns. It never drops
// columns, so records written by older versions stay readable.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return wrapErr("migrate", "*", err)
	}
	return nil
}

// Ping checks that the underlying database answers
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrapErr("ping", "*", err)
	}
	return wrapErr("ping", "*", sqlDB.PingContext(ctx))
}

// DB exposes the gorm handle, scoped to the current transaction when the
// store was handed out by Transaction.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Now returns the store clock reading
func (s *Store) Now() time.Time {
	return s.now()
}

// Transaction runs fn against a transaction-scoped Store. Errors returned by
// fn roll the transaction back and are returned unchanged.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&Store{db: tx, newID: s.newID, now: s.now})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return wrapErr("transaction", "*", err)
}

func (s *Store) stamp() (string, time.Time) {
	return s.newID(), s.now().UTC().Truncate(time.Millisecond)
}
