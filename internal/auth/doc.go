// Package auth gates every page behind a server-side session and a role.
//
// Accounts log in with username, password and the role they claim to hold;
// all three must match the stored account. The session then carries the
// account ID, and each request gets a Principal resolved from the stored
// account by Middleware.Handler:
//
//	router.Use(sessionManager.LoadAndSave())
//	router.Use(authMiddleware.Handler())
//	admin := router.Group("/", authMiddleware.RequireRole(entities.RoleAdmin))
//
// Handlers read the caller with GetPrincipal. A request whose principal does
// not hold the route's role is redirected to /login before the handler runs.
//
// # Configuration
//
//	AUTH_SESSION_LIFETIME=24h    # Session duration
//	AUTH_BCRYPT_COST=12          # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true     # HTTPS-only cookies
//	AUTH_SESSION_SECRET=<hex>    # CSRF signing key, generated when empty
//	AUTH_MAX_LOGIN_ATTEMPTS=5    # Failed logins per IP+username before lockout
package auth
