package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/config"
	"github.com/kendall-kelly/cleancans-api/controllers"
	"github.com/kendall-kelly/cleancans-api/metrics"
	"github.com/kendall-kelly/cleancans-api/middleware"
	"github.com/kendall-kelly/cleancans-api/seed"
	"github.com/kendall-kelly/cleancans-api/services"
	"github.com/kendall-kelly/cleancans-api/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.InitLogger(cfg.LogLevel)
	logger.Info("starting CleanCans API server", "env", cfg.GoEnv)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDatabase(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		return err
	}

	auth, err := authMiddleware(cfg)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, db, auth, logger)
	if err != nil {
		return err
	}
	return a.serve(ctx)
}

// app holds the wired components of the server
type app struct {
	cfg     *config.Config
	store   *store.Store
	router  *gin.Engine
	outbox  *services.OutboxWorker
	trigger *services.RecurrenceTrigger
	logger  *slog.Logger
}

// newApp migrates the database and wires every service behind the router
func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB, auth gin.HandlerFunc, logger *slog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st := store.New(db)
	if err := st.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("database migration completed")

	if cfg.SeedDemoData {
		if err := seed.Demo(ctx, st); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	var sender services.Sender = services.NewLogSender(logger)
	if cfg.SMSWebhookURL != "" {
		sender = services.NewWebhookSender(cfg.SMSTimeout, cfg.SMSRatePerSecond)
	} else {
		logger.Warn("SMS_WEBHOOK_URL not set, notifications are only logged")
	}

	sms := services.NewSMSService(st, sender, services.SMSServiceConfig{
		WebhookURL:   cfg.SMSWebhookURL,
		BusinessName: cfg.BusinessName,
		MaxAttempts:  cfg.OutboxMaxAttempts,
		Logger:       logger,
		Metrics:      m,
	})
	outbox := services.NewOutboxWorker(st, sms, cfg.OutboxPollInterval, logger, m)

	var photos services.PhotoStore
	if cfg.AWSS3Bucket != "" {
		s3Store, err := services.NewS3PhotoStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		photos = s3Store
	}

	recurrence := services.NewRecurrenceService(st, sms, services.RecurrenceConfig{
		Location:   loc,
		Policy:     services.CatchUpPolicy(cfg.RecurrenceCatchUp),
		MaxCatchUp: cfg.RecurrenceMaxCatchUp,
		Logger:     logger,
		Metrics:    m,
		Outbox:     outbox,
	})

	h := &controllers.Handler{
		Store:      st,
		Users:      services.NewUserService(st, services.NewAuth0Service(cfg.Auth0Domain)),
		Customers:  services.NewCustomerService(st),
		Catalog:    services.NewCatalogService(st),
		Booking:    services.NewBookingService(st, sms, outbox, loc),
		Jobs:       services.NewJobService(st, sms, photos, outbox, loc, logger),
		Plans:      services.NewPlanService(st),
		Recurrence: recurrence,
		Reminders:  services.NewReminderService(st, sms, outbox, loc, nil, logger),
		SMS:        sms,
		Logger:     logger,
	}

	router := controllers.NewRouter(h, controllers.RouterConfig{
		Auth:        auth,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
		Metrics:     m,
		Gatherer:    registry,
	})

	return &app{
		cfg:     cfg,
		store:   st,
		router:  router,
		outbox:  outbox,
		trigger: services.NewRecurrenceTrigger(recurrence, cfg.RecurrenceInterval, logger),
		logger:  logger,
	}, nil
}

// serve runs the HTTP server and the background workers until ctx is
// cancelled or one of them fails.
func (a *app) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server is running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.outbox.Run(ctx)
	})
	g.Go(func() error {
		return a.trigger.Run(ctx)
	})

	return g.Wait()
}

// authMiddleware validates Auth0 tokens. Without an Auth0 tenant (local
// development) every authenticated route answers 401.
func authMiddleware(cfg *config.Config) (gin.HandlerFunc, error) {
	if cfg.Auth0Domain == "" {
		slog.Warn("AUTH0_DOMAIN not set, authenticated routes are disabled")
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUTH_NOT_CONFIGURED",
					"message": "Authentication is not configured",
				},
			})
		}, nil
	}
	return middleware.EnsureValidToken(cfg.Auth0Domain, cfg.Auth0Audience)
}
