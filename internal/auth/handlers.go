package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/entities"
)

// LoginTemplate is the template name the login form is rendered with.
const LoginTemplate = "login.html"

// LoginFailedMessage is shown inline for any rejected credential set.
const LoginFailedMessage = "Invalid username, password, or role."

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	audit          *audit.Service
	log            *zap.Logger
}

// NewAuthController creates a new authentication controller. auditService may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, auditService *audit.Service, log *zap.Logger, cfg config.Auth) *AuthController {
	if log == nil {
		log = zap.NewNop()
	}

	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		audit:          auditService,
		log:            log,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/", ac.Root)
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// Root sends everyone to the login page.
func (ac *AuthController) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath)
}

// LoginPage renders the login form. A signed-in user goes straight to their
// home page instead.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		if p, ok := GetPrincipal(c); ok {
			c.Redirect(http.StatusFound, HomePath(p.Role))
			return
		}
	}

	ac.renderLogin(c, http.StatusOK, gin.H{
		"Error": c.Query("error"),
	})
}

// Login checks username, password and claimed role together. On success the
// session is bound to the stored account and the browser is sent to the
// role's home page; on failure the form is re-rendered with one message.
func (ac *AuthController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	role := entities.Role(c.PostForm("role"))
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		ac.renderLogin(c, http.StatusTooManyRequests, gin.H{
			"Username": username,
			"Error":    "Too many login attempts. Please try again later.",
		})
		return
	}

	account, err := ac.service.Authenticate(c.Request.Context(), username, password, role)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			ac.log.Error("login failed", zap.String("username", username), zap.Error(err))
			ac.renderLogin(c, http.StatusInternalServerError, gin.H{
				"Username": username,
				"Error":    "Something went wrong. Please try again.",
			})
			return
		}

		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.logAuth(c, username, audit.ActionLogin, false)
		ac.renderLogin(c, http.StatusOK, gin.H{
			"Username": username,
			"Error":    LoginFailedMessage,
		})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if err := ac.sessionManager.CreateSession(c.Request, account); err != nil {
		ac.log.Error("failed to create session", zap.String("username", username), zap.Error(err))
		ac.renderLogin(c, http.StatusInternalServerError, gin.H{
			"Username": username,
			"Error":    "Failed to create session",
		})
		return
	}

	ac.logAuth(c, account.Username, audit.ActionLogin, true)
	c.Redirect(http.StatusFound, HomePath(account.Role))
}

// Logout destroys the session and redirects to login. Repeating it is harmless.
func (ac *AuthController) Logout(c *gin.Context) {
	username := GetUsername(c)
	if username == "" {
		username = ac.sessionManager.GetString(c.Request.Context(), SessionKeyUsername)
	}

	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		ac.log.Warn("failed to destroy session", zap.Error(err))
	}
	if username != "" {
		ac.logAuth(c, username, audit.ActionLogout, true)
	}
	c.Redirect(http.StatusFound, LoginPath)
}

func (ac *AuthController) renderLogin(c *gin.Context, status int, data gin.H) {
	data["Title"] = "Login"
	data["CSRFToken"] = GetCSRFToken(c)
	data["CSRFField"] = CSRFFieldName
	data["Roles"] = []entities.Role{entities.RoleUser, entities.RoleAdmin}
	c.HTML(status, LoginTemplate, data)
}

func (ac *AuthController) logAuth(c *gin.Context, username, action string, success bool) {
	if ac.audit == nil {
		return
	}
	ac.audit.LogAuth(username, action, c.ClientIP(), c.Request.UserAgent(), success)
}
