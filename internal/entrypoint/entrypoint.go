package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/database/accounts"
	auditRepo "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/borrowed"
	http_controllers "github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/loans"
	"github.com/mrlokans/librarian/internal/logger"
	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the wired services behind the HTTP router.
type App struct {
	Router *gin.Engine
	DB     *database.Database
	Audit  *audit.Service

	authController *auth.AuthController
	taskClient     *tasks.Client
	taskCancel     context.CancelFunc
	scheduler      *scheduler.AuditCleanupScheduler
	log            *zap.Logger
}

// NewApp opens the database, seeds it when configured, and wires every
// service into a router. Close releases what NewApp started.
func NewApp(cfg *config.Config, version string, log *zap.Logger) (*App, error) {
	db, err := database.NewSilentDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app := &App{DB: db, log: log}

	sqlDB, err := db.DB.DB()
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}

	authService := auth.NewService(accounts.NewRepository(db.DB), cfg.Auth)
	if cfg.Seed.OnStart {
		result, err := db.Seed(context.Background(), authService.HashPassword)
		if err != nil {
			app.closeDB()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
		if result.Accounts > 0 || result.Books > 0 {
			log.Info("seeded database", zap.Int("accounts", result.Accounts), zap.Int("books", result.Books))
		}
	}
	if hasAccounts, err := authService.HasAccounts(context.Background()); err == nil && !hasAccounts {
		log.Warn("no accounts found, create one with the create-account command")
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := csrfSecretFromConfig(cfg.Auth.SessionSecret)
	if err != nil {
		app.closeDB()
		return nil, err
	}
	if cfg.Auth.SessionSecret == "" {
		log.Info("generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	app.Audit = audit.NewService(auditRepo.NewRepository(db.DB), log.Named("audit"))

	bookRepo := books.NewRepository(db.DB)
	catalogService := catalog.NewService(bookRepo, app.Audit)
	loanManager := loans.NewManager(borrowed.NewRepository(db.DB), bookRepo, app.Audit, cfg.Loans.LoanPeriod())

	app.authController = auth.NewAuthController(authService, sessionManager, app.Audit, log.Named("auth"), cfg.Auth)

	app.startBackground(cfg)

	app.Router, err = http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:           db,
		Catalog:            catalogService,
		Loans:              loanManager,
		Audit:              app.Audit,
		Logger:             log,
		AuthService:        authService,
		SessionManager:     sessionManager,
		AuthMiddleware:     auth.NewMiddleware(authService, sessionManager),
		AuthController:     app.authController,
		CSRFSecret:         csrfSecret,
		SecureCookies:      cfg.Auth.SecureCookies,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		Version:            version,
	})
	if err != nil {
		app.Close(context.Background())
		return nil, err
	}

	return app, nil
}

// startBackground starts the task queue and the audit retention schedule.
// The queue needs its own database file, so in-memory runs skip both.
func (a *App) startBackground(cfg *config.Config) {
	if !cfg.Tasks.Enabled {
		a.log.Info("task queue disabled")
		return
	}

	client, err := tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), a.log.Named("tasks"))
	if err != nil {
		if errors.Is(err, tasks.ErrInMemoryDatabase) {
			a.log.Info("task queue disabled for in-memory database")
		} else {
			a.log.Error("failed to initialize task queue", zap.Error(err))
		}
		return
	}
	client.Register(tasks.NewCleanupAuditEventsQueue(a.Audit, a.log.Named("tasks")))

	var ctx context.Context
	ctx, a.taskCancel = context.WithCancel(context.Background())
	client.Start(ctx)
	a.taskClient = client

	retention := cfg.Audit.RetentionDays
	if retention <= 0 {
		retention = tasks.DefaultAuditRetentionDays
	}
	a.scheduler = scheduler.NewAuditCleanupScheduler(client, cfg.Audit.CleanupSchedule, retention, a.log.Named("scheduler"))
	if err := a.scheduler.Start(ctx); err != nil {
		a.log.Error("failed to start audit cleanup scheduler", zap.Error(err))
		a.scheduler = nil
	}
}

// Close stops background work, flushes pending audit writes and closes the database.
func (a *App) Close(ctx context.Context) {
	if a.authController != nil {
		a.authController.Stop()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil {
		if !a.taskClient.Stop(ctx) {
			a.log.Warn("task queue did not drain before the shutdown deadline")
		}
		a.taskCancel()
		if err := a.taskClient.Close(); err != nil {
			a.log.Warn("error closing task client", zap.Error(err))
		}
	}
	if a.Audit != nil {
		a.Audit.Wait()
	}
	a.closeDB()
}

func (a *App) closeDB() {
	if err := a.DB.Close(); err != nil {
		a.log.Warn("error closing database", zap.Error(err))
	}
}

// csrfSecretFromConfig decodes a hex secret, falls back to the raw bytes,
// and generates a fresh one when none is configured.
func csrfSecretFromConfig(secret string) ([]byte, error) {
	if secret != "" {
		if decoded, err := hex.DecodeString(secret); err == nil {
			return decoded, nil
		}
		return []byte(secret), nil
	}

	generated, err := auth.GenerateCSRFKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	return hex.DecodeString(generated)
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router http.Handler, cfg *config.Config, log *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(ctx)

	// Requests are drained first so their audit writes land before the flush.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server exiting")
	return nil
}

// Run builds the application from cfg and serves it until interrupted.
func Run(cfg *config.Config, version string) error {
	log := logger.Must(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("starting librarian", zap.String("version", version), zap.String("database", cfg.Database.Path))

	app, err := NewApp(cfg, version, log)
	if err != nil {
		return err
	}

	return Serve(app.Router, cfg, log, app.Close)
}
