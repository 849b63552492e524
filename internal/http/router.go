package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/logger"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(logger.RequestID())
	router.Use(logger.Middleware(log.Named("http")))
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	if cfg.RateLimitPerMinute > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	router.Use(cfg.SessionManager.LoadAndSave())
	router.Use(cfg.AuthMiddleware.Handler())

	// Inject auth data for templates
	router.Use(AuthContextMiddleware())

	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Login, logout and the root redirect
	cfg.AuthController.RegisterRoutes(router)

	admin := NewAdminController(cfg.Catalog, cfg.Loans, cfg.AuthService, log)
	patron := NewPatronController(cfg.Catalog, cfg.Loans, cfg.AuthService, log)
	auditLog := NewAuditController(cfg.Audit, log)

	adminOnly := router.Group("/", cfg.AuthMiddleware.RequireRole(entities.RoleAdmin))
	{
		adminOnly.GET("/admin", admin.Dashboard)
		adminOnly.GET("/admin/profile", admin.Profile)
		adminOnly.GET("/add_book_page", admin.AddBookPage)
		adminOnly.POST("/add_book", admin.AddBook)
		adminOnly.GET("/view_books", admin.ViewBooks)
		adminOnly.GET("/edit_book/:id", admin.EditBookPage)
		adminOnly.POST("/edit_book/:id", admin.EditBook)
		adminOnly.GET("/delete_book/:id", admin.DeleteBook)
		adminOnly.GET("/manage_borrowed_books", admin.ManageBorrowed)
		adminOnly.GET("/return_book/:id", admin.ReturnBook)
		adminOnly.GET("/admin/audit", auditLog.AuditLogPage)
		adminOnly.GET("/admin/audit/book/:id", auditLog.BookHistory)
	}

	userOnly := router.Group("/", cfg.AuthMiddleware.RequireRole(entities.RoleUser))
	{
		userOnly.GET("/user", patron.Dashboard)
		userOnly.GET("/borrow/:id", patron.Borrow)
		userOnly.GET("/view_borrowed_books", patron.ViewBorrowed)
		userOnly.GET("/profile", patron.Profile)
	}

	router.GET("/available_books", cfg.AuthMiddleware.RequireAuth(), patron.AvailableBooks)

	return router, nil
}
