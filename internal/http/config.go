package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/loans"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Catalog  *catalog.Service
	Loans    *loans.Manager
	Audit    *audit.Service
	Logger   *zap.Logger

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthController *auth.AuthController

	// HTTP hardening
	CSRFSecret         []byte // CSRF protection is off when empty
	SecureCookies      bool
	RateLimitPerMinute int // Per-IP request budget, 0 disables it

	// Application info
	Version string
}
