package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hearcare/hearcare/internal/config"
	"github.com/hearcare/hearcare/internal/domain/archival"
	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/domain/dashboard"
	"github.com/hearcare/hearcare/internal/domain/documents"
	"github.com/hearcare/hearcare/internal/domain/identity"
	"github.com/hearcare/hearcare/internal/domain/importer"
	"github.com/hearcare/hearcare/internal/domain/inventory"
	"github.com/hearcare/hearcare/internal/domain/location"
	"github.com/hearcare/hearcare/internal/domain/patient"
	"github.com/hearcare/hearcare/internal/domain/phase1"
	"github.com/hearcare/hearcare/internal/domain/phase2"
	"github.com/hearcare/hearcare/internal/domain/phase3"
	"github.com/hearcare/hearcare/internal/domain/registration"
	"github.com/hearcare/hearcare/internal/domain/reports"
	"github.com/hearcare/hearcare/internal/domain/schedule"
	"github.com/hearcare/hearcare/internal/platform/auth"
	"github.com/hearcare/hearcare/internal/platform/db"
	"github.com/hearcare/hearcare/internal/platform/geo"
	"github.com/hearcare/hearcare/internal/platform/middleware"
	"github.com/hearcare/hearcare/internal/platform/sms"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hearcare-server",
		Short: "Hearing programme patient tracking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(archiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				applied, err := db.NewMigrator(pool, dir).Up(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("applied %d migration(s)\n", applied)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "migrations", "Directory with migration SQL files")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				statuses, err := db.NewMigrator(pool, dir).Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, state)
				}
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "migrations", "Directory with migration SQL files")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage patient archival",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one auto-archive pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				logger := newLogger(cfg)
				svc := buildArchival(cfg, pool, logger)
				result, err := svc.RunAutoArchive(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("eligible=%d archived=%d failed=%d\n",
					result.Eligible, result.Archived, result.Failed)
				return nil
			})
		},
	}

	cmd.AddCommand(runCmd)
	return cmd
}

// withPool loads config, opens the pool and runs fn against it.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error) error {
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
	return fn(ctx, cfg, pool)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// buildArchival wires the archival service with its full snapshot sources;
// shared between the serve loop and the one-shot archive command.
func buildArchival(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *archival.Service {
	auditSvc := auditlog.NewService(auditlog.NewRepo(pool), logger)
	patientSvc := patient.NewService(patient.NewRepo(pool), pool, auditSvc)

	resolver := registration.NewResolver(pool)
	ledger := inventory.NewLedger(inventory.NewRepo(pool), auditSvc, logger)

	p1 := phase1.NewService(phase1.NewRepo(pool), resolver, ledger, auditSvc, pool)
	p2 := phase2.NewService(phase2.NewRepo(pool), resolver, ledger, auditSvc, pool)
	p3 := phase3.NewService(phase3.NewRepo(pool), resolver, ledger, auditSvc, pool)

	return archival.NewService(archival.NewRepo(pool), patientSvc, p1, p2, p3,
		auditSvc, pool, cfg.ArchiveInactivityYears, logger)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	geoLookup, err := geo.NewLookup(cfg.GeoDataFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.GeoDataFile).Msg("failed to load geo data")
	}

	var sender sms.Sender
	if cfg.HTTPSMSAPIKey != "" {
		sender = sms.NewClient(cfg.HTTPSMSAPIURL, cfg.HTTPSMSAPIKey, cfg.HTTPSMSFrom, logger)
	} else {
		logger.Warn().Msg("no SMS credentials configured, outgoing messages are discarded")
		sender = &sms.MockSender{}
	}
	templates := sms.NewTemplateEngine()
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL())

	// Services
	auditSvc := auditlog.NewService(auditlog.NewRepo(pool), logger)
	patientSvc := patient.NewService(patient.NewRepo(pool), pool, auditSvc)
	resolver := registration.NewResolver(pool)
	inventoryLedger := inventory.NewLedger(inventory.NewRepo(pool), auditSvc, logger)
	inventorySvc := inventory.NewService(inventory.NewRepo(pool), inventoryLedger, auditSvc, pool)
	phase1Svc := phase1.NewService(phase1.NewRepo(pool), resolver, inventoryLedger, auditSvc, pool)
	phase2Svc := phase2.NewService(phase2.NewRepo(pool), resolver, inventoryLedger, auditSvc, pool)
	phase3Svc := phase3.NewService(phase3.NewRepo(pool), resolver, inventoryLedger, auditSvc, pool)
	identitySvc := identity.NewService(identity.NewRepo(pool), issuer, sender, templates,
		auditSvc, cfg.OTPTTL(), logger)
	locationSvc := location.NewService(location.NewRepo(pool), geoLookup, auditSvc)
	archivalSvc := archival.NewService(archival.NewRepo(pool), patientSvc,
		phase1Svc, phase2Svc, phase3Svc, auditSvc, pool, cfg.ArchiveInactivityYears, logger)
	dashboardSvc := dashboard.NewService(dashboard.NewRepo(pool), geoLookup)
	reportsSvc := reports.NewService(reports.NewRepo(pool))
	scheduleSvc := schedule.NewService(schedule.NewRepo(pool), locationSvc, sender,
		templates, auditSvc, logger)
	documentsSvc, err := documents.NewService(documents.NewRepo(pool), cfg.UploadDir,
		cfg.MaxUploadBytes(), auditSvc, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up document storage")
	}
	importerSvc := importer.NewService(patientSvc, phase1Svc, pool, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", db.HealthHandler(pool))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Login and password reset stay outside the auth middleware.
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterAuthRoutes(public)

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimitCfg))
	if cfg.IsDev() && cfg.JWTSecret == "" {
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.Middleware(issuer))
	}
	api.Use(middleware.Audit(logger))

	identityHandler.RegisterUserRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	phase1.NewHandler(phase1Svc).RegisterRoutes(api)
	phase2.NewHandler(phase2Svc).RegisterRoutes(api)
	phase3.NewHandler(phase3Svc).RegisterRoutes(api)
	inventory.NewHandler(inventorySvc).RegisterRoutes(api)
	location.NewHandler(locationSvc).RegisterRoutes(api)
	archival.NewHandler(archivalSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)
	reports.NewHandler(reportsSvc).RegisterRoutes(api)
	schedule.NewHandler(scheduleSvc).RegisterRoutes(api)
	documents.NewHandler(documentsSvc).RegisterRoutes(api)
	importer.NewHandler(importerSvc).RegisterRoutes(api)
	auditlog.NewHandler(auditSvc).RegisterRoutes(api)

	// In-process auto-archive timer.
	archiveCtx, stopArchiver := context.WithCancel(context.Background())
	defer stopArchiver()
	go runArchiveLoop(archiveCtx, archivalSvc, cfg.AutoArchiveInterval(), logger)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
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

func runArchiveLoop(ctx context.Context, svc *archival.Service, interval time.Duration,
	logger zerolog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := svc.RunAutoArchive(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("scheduled auto-archive failed")
				continue
			}
			logger.Info().
				Int("eligible", result.Eligible).
				Int("archived", result.Archived).
				Msg("scheduled auto-archive finished")
		}
	}
}
