package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/stretchr/testify/assert"
)

type stubUsers struct {
	users map[string]models.User
	err   error
}

func (s stubUsers) ByAuth0ID(ctx context.Context, auth0ID string) (models.User, bool, error) {
	if s.err != nil {
		return models.User{}, false, s.err
	}
	u, ok := s.users[auth0ID]
	return u, ok, nil
}

func TestLoadUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	admin := models.User{Name: "Ada", Role: models.RoleAdmin}
	admin.ID = "user-1"
	lookup := stubUsers{users: map[string]models.User{"auth0|admin": admin}}

	tests := []struct {
		name       string
		users      UserLookup
		subject    interface{}
		wantStatus int
	}{
		{"registered user", lookup, "auth0|admin", http.StatusOK},
		{"unregistered user", lookup, "auth0|nobody", http.StatusNotFound},
		{"missing subject", lookup, nil, http.StatusUnauthorized},
		{"lookup failure", stubUsers{err: errors.New("db down")}, "auth0|admin", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/me", func(c *gin.Context) {
				if tt.subject != nil {
					c.Set(ContextUserID, tt.subject)
				}
				c.Next()
			}, LoadUser(tt.users), func(c *gin.Context) {
				user, err := GetCurrentUser(c)
				assert.NoError(t, err)
				c.JSON(http.StatusOK, gin.H{"id": user.ID})
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		user        *models.User
		roles       []string
		wantStatus  int
		wantAborted bool
	}{
		{"admin allowed", &models.User{Role: models.RoleAdmin}, []string{models.RoleAdmin}, 0, false},
		{"one of several", &models.User{Role: models.RoleTechnician}, []string{models.RoleAdmin, models.RoleTechnician}, 0, false},
		{"customer refused", &models.User{Role: models.RoleCustomer}, []string{models.RoleAdmin}, http.StatusForbidden, true},
		{"no user loaded", nil, []string{models.RoleAdmin}, http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.user != nil {
				c.Set(ContextCurrentUser, *tt.user)
			}

			RequireRole(tt.roles...)(c)

			assert.Equal(t, tt.wantAborted, c.IsAborted())
			if tt.wantAborted {
				assert.Equal(t, tt.wantStatus, w.Code)
			}
		})
	}
}

func TestGetCurrentUserWrongType(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(ContextCurrentUser, "not a user")

	_, err := GetCurrentUser(c)
	assert.Error(t, err)
}
