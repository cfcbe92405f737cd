// Package seed loads demo records into an empty database.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoData []byte

// Data is the seed file layout
type Data struct {
	Users []struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
		Role  string `yaml:"role"`
		Phone string `yaml:"phone"`
	} `yaml:"users"`
	Services []struct {
		Name        string  `yaml:"name"`
		Description string  `yaml:"description"`
		Price       float64 `yaml:"price"`
		Duration    int     `yaml:"duration"`
	} `yaml:"services"`
	Customers []struct {
		Email   string `yaml:"email"` // links the profile to the user with this email
		Address string `yaml:"address"`
		Notes   string `yaml:"notes"`
	} `yaml:"customers"`
}

// Parse decodes a seed file
func Parse(raw []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("failed to parse seed data: %w", err)
	}
	for _, u := range data.Users {
		if !models.IsValidRole(u.Role) {
			return Data{}, fmt.Errorf("seed user %s has invalid role %q", u.Email, u.Role)
		}
	}
	return data, nil
}

// Demo loads the embedded demo data. Nothing is written when the database
// already holds users, so repeated starts are harmless.
func Demo(ctx context.Context, st *store.Store) error {
	data, err := Parse(demoData)
	if err != nil {
		return err
	}
	return Load(ctx, st, data)
}

// Load writes data in one transaction unless users already exist
func Load(ctx context.Context, st *store.Store, data Data) error {
	n, err := store.Users(st).Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.InfoContext(ctx, "database already seeded, skipping demo data")
		return nil
	}

	return st.Transaction(ctx, func(tx *store.Store) error {
		byEmail := make(map[string]models.User, len(data.Users))
		for _, u := range data.Users {
			user, err := store.Users(tx).Create(ctx, models.User{
				Email: u.Email,
				Name:  u.Name,
				Role:  u.Role,
				Phone: u.Phone,
			})
			if err != nil {
				return err
			}
			byEmail[u.Email] = user
		}

		for _, s := range data.Services {
			if _, err := store.Services(tx).Create(ctx, models.Service{
				Name:        s.Name,
				Description: s.Description,
				Price:       s.Price,
				Duration:    s.Duration,
				Active:      true,
			}); err != nil {
				return err
			}
		}

		for _, c := range data.Customers {
			user, ok := byEmail[c.Email]
			if !ok {
				return fmt.Errorf("seed customer %s has no matching user", c.Email)
			}
			userID := user.ID
			if _, err := store.Customers(tx).Create(ctx, models.Customer{
				UserID:  &userID,
				Name:    user.Name,
				Email:   user.Email,
				Phone:   user.Phone,
				Address: c.Address,
				Notes:   c.Notes,
			}); err != nil {
				return err
			}
		}

		slog.InfoContext(ctx, "seeded demo data",
			"users", len(data.Users), "services", len(data.Services), "customers", len(data.Customers))
		return nil
	})
}
