package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carebridge/portal/internal/config"
	"github.com/carebridge/portal/internal/domain/analytics"
	"github.com/carebridge/portal/internal/domain/appointment"
	"github.com/carebridge/portal/internal/domain/metrics"
	"github.com/carebridge/portal/internal/domain/notification"
	"github.com/carebridge/portal/internal/domain/patient"
	"github.com/carebridge/portal/internal/domain/prediction"
	"github.com/carebridge/portal/internal/domain/record"
	"github.com/carebridge/portal/internal/domain/staff"
	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/blobstore"
	"github.com/carebridge/portal/internal/platform/db"
	"github.com/carebridge/portal/internal/platform/httpx"
	"github.com/carebridge/portal/internal/platform/middleware"
	"github.com/carebridge/portal/internal/platform/model"
)

func main() {
	root := &cobra.Command{
		Use:   "portal-server",
		Short: "CareBridge patient portal API server",
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpx.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))

	// Auth
	provider := auth.NewJWTProvider(auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		JWKSURL:    cfg.AuthJWKSURL,
		SigningKey: []byte(cfg.JWTSigningKey),
	})

	// Signed lab uploads
	signer := blobstore.NewSigner(cfg.UploadSigningKey, 10*time.Minute)
	store := blobstore.NewDiskStore(cfg.UploadDir)
	blobstore.NewHandler(signer, store).RegisterRoutes(e)

	// Repositories
	patientRepo := patient.NewRepo(pool)
	staffRepo := staff.NewRepo(pool)
	appointmentRepo := appointment.NewRepo(pool)
	recordRepo := record.NewRepo(pool)
	metricsRepo := metrics.NewRepo(pool)
	predictionRepo := prediction.NewRepo(pool)
	notificationRepo := notification.NewRepo(pool)

	// Services
	patientSvc := patient.NewService(patientRepo)
	staffSvc := staff.NewService(staffRepo)
	appointmentSvc := appointment.NewService(appointmentRepo)
	recordSvc := record.NewService(recordRepo, signer)
	metricsSvc := metrics.NewService(metricsRepo)
	predictionSvc := prediction.NewService(predictionRepo)
	notificationSvc := notification.NewService(notificationRepo)
	analyticsSvc := analytics.NewService(patientSvc, appointmentSvc, predictionSvc, recordSvc, metricsSvc)

	mlProvider := model.NewHTTPProvider(cfg.MLModelURL, cfg.MLAPIKey, cfg.MLTimeout())
	orchestrator := prediction.NewOrchestrator(
		predictionSvc,
		metricsSvc,
		patientRepo,
		mlProvider,
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		logger,
	)

	scopes := auth.NewResolver(patientRepo)

	// API routes
	rlCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rlCfg.RequestsPerSecond <= 0 || rlCfg.BurstSize <= 0 {
		rlCfg = middleware.DefaultRateLimitConfig()
	}

	api := e.Group("", middleware.RateLimit(rlCfg), auth.Middleware(provider))

	patient.NewHandler(patientSvc, scopes).RegisterRoutes(api)
	staff.NewHandler(staffSvc).RegisterRoutes(api)
	appointment.NewHandler(appointmentSvc, scopes).RegisterRoutes(api)
	record.NewHandler(recordSvc, scopes).RegisterRoutes(api)
	metrics.NewHandler(metricsSvc, scopes).RegisterRoutes(api)
	prediction.NewHandler(predictionSvc, orchestrator).RegisterRoutes(api)
	notification.NewHandler(notificationSvc).RegisterRoutes(api)
	analytics.NewHandler(analyticsSvc, scopes).RegisterRoutes(api)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
