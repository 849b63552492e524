package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/entities"
)

// ContextKeyPrincipal is the gin context key holding the request's *Principal.
const ContextKeyPrincipal = "auth_principal"

// LoginPath is where unauthenticated and unauthorized requests are sent.
const LoginPath = "/login"

// Principal is the authenticated identity of a single request.
type Principal struct {
	AccountID string
	Username  string
	Role      entities.Role
}

func (p *Principal) IsAdmin() bool {
	return p.Role == entities.RoleAdmin
}

// HomePath returns the landing page for a role.
func HomePath(role entities.Role) string {
	if role == entities.RoleAdmin {
		return "/admin"
	}
	return "/user"
}

// Middleware resolves sessions into principals and enforces roles.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	publicPaths := map[string]bool{
		"/health":      true,
		"/ping":        true,
		"/favicon.ico": true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths:    publicPaths,
	}
}

// Handler attaches a Principal to the context when the session belongs to an
// existing account. It never aborts; RequireAuth and RequireRole do.
// The role is read from the stored account so a stale session cannot keep
// privileges the account no longer has.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if p := m.trySessionAuth(c); p != nil {
			c.Set(ContextKeyPrincipal, p)
		}
		c.Next()
	}
}

func (m *Middleware) trySessionAuth(c *gin.Context) *Principal {
	if m.sessionManager == nil || m.service == nil {
		return nil
	}

	accountID := m.sessionManager.GetAccountID(c.Request)
	if accountID == "" {
		return nil
	}

	account, err := m.service.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		return nil
	}

	return &Principal{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
	}
}

// isPublicPath checks if a path should be accessible without authentication.
func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// RequireAuth redirects to the login page unless a principal is present.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole admits only principals holding one of roles. Everyone else,
// including anonymous requests, is redirected to the login page before the
// handler runs.
func (m *Middleware) RequireRole(roles ...entities.Role) gin.HandlerFunc {
	roleSet := make(map[entities.Role]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || !roleSet[p.Role] {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the request's principal, if any.
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	if v, exists := c.Get(ContextKeyPrincipal); exists {
		if p, ok := v.(*Principal); ok && p != nil {
			return p, true
		}
	}
	return nil, false
}

// GetUsername retrieves the authenticated username from the context.
func GetUsername(c *gin.Context) string {
	if p, ok := GetPrincipal(c); ok {
		return p.Username
	}
	return ""
}
