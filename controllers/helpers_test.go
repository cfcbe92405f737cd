package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/metrics"
	"github.com/kendall-kelly/cleancans-api/middleware"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/services"
	"github.com/kendall-kelly/cleancans-api/store"
	"github.com/kendall-kelly/cleancans-api/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// referenceNow is the "current time" of every controller test
var referenceNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

// stubUserInfo stands in for Auth0's /userinfo endpoint
type stubUserInfo map[string]*services.Auth0UserInfo

func (s stubUserInfo) GetUserInfo(ctx context.Context, accessToken string) (*services.Auth0UserInfo, error) {
	info, ok := s[accessToken]
	if !ok {
		return nil, &middleware.AuthError{Code: "INVALID_TOKEN", Message: "unknown token"}
	}
	return info, nil
}

type testEnv struct {
	ctx      context.Context
	store    *store.Store
	handler  *Handler
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	photos   *services.MockPhotoStore
	userInfo stubUserInfo

	admin      models.User
	technician models.User
	customer   models.User
	service    models.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	clock := testutil.NewClock(referenceNow)
	st := store.New(testutil.NewTestDB(t), store.WithClock(clock.Now))
	require.NoError(t, st.Migrate(ctx))

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	sms := services.NewSMSService(st, services.NewLogSender(nil), services.SMSServiceConfig{Metrics: m})
	photos := services.NewMockPhotoStore("jobs/1/before.png")
	userInfo := stubUserInfo{}

	env := &testEnv{
		ctx:      ctx,
		store:    st,
		registry: registry,
		metrics:  m,
		photos:   photos,
		userInfo: userInfo,
		handler: &Handler{
			Store:     st,
			Users:     services.NewUserService(st, userInfo),
			Customers: services.NewCustomerService(st),
			Catalog:   services.NewCatalogService(st),
			Booking:   services.NewBookingService(st, sms, nil, nil),
			Jobs:      services.NewJobService(st, sms, photos, nil, nil, nil),
			Plans:     services.NewPlanService(st),
			Recurrence: services.NewRecurrenceService(st, sms, services.RecurrenceConfig{
				Now:     clock.Now,
				Metrics: m,
			}),
			Reminders: services.NewReminderService(st, sms, nil, nil, clock.Now, nil),
			SMS:       sms,
		},
	}

	env.admin = env.createUser(t, "auth0|admin", "admin@example.com", models.RoleAdmin)
	env.technician = env.createUser(t, "auth0|tech", "tech@example.com", models.RoleTechnician)
	env.customer = env.createUser(t, "auth0|customer", "customer@example.com", models.RoleCustomer)

	svc, err := store.Services(st).Create(ctx, models.Service{Name: "Standard Clean", Price: 25, Duration: 30, Active: true})
	require.NoError(t, err)
	env.service = svc
	return env
}

func (e *testEnv) createUser(t *testing.T, auth0ID, email, role string) models.User {
	t.Helper()
	id := auth0ID
	u, err := store.Users(e.store).Create(e.ctx, models.User{
		Auth0ID: &id,
		Email:   email,
		Name:    role + " user",
		Role:    role,
		Phone:   "+15550001234",
	})
	require.NoError(t, err)
	return u
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth0ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_TOKEN", "message": "Failed to validate JWT."},
			})
			return
		}
		c.Set(middleware.ContextUserID, auth0ID)
		c.Set(middleware.ContextClaims, &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
			CustomClaims:     &middleware.CustomClaims{Scope: scope},
		})
		c.Next()
	}
}

func (e *testEnv) router(auth0ID, scope string) *gin.Engine {
	return NewRouter(e.handler, RouterConfig{
		Auth:        mockAuthMiddleware(auth0ID, scope),
		CORSOrigins: []string{"http://localhost:5173"},
		Metrics:     e.metrics,
		Gatherer:    e.registry,
	})
}

// do sends a request as auth0ID and decodes the JSON envelope
func (e *testEnv) do(t *testing.T, auth0ID, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	return e.doScoped(t, auth0ID, "", method, path, body)
}

func (e *testEnv) doScoped(t *testing.T, auth0ID, scope, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-"+auth0ID)

	w := httptest.NewRecorder()
	e.router(auth0ID, scope).ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	}
	return w.Code, response
}

func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response data is not an object: %v", response)
	return data
}

func dataList(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "response data is not a list: %v", response)
	return data
}
