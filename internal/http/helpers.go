package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/logger"
)

const (
	internalErrorMessage = "internal server error"
	bookNotAvailable     = "Book not available"
	bookNotFound         = "Book not found"
)

// render adds the auth data every page layout expects and renders the template.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Auth"] = GetAuthTemplateData(c)
	c.HTML(status, name, data)
}

// respondInternalError logs the error and sends a plain 500.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, log *zap.Logger, err error, context string) {
	log.Error("internal error",
		zap.String("context", context),
		zap.String("request_id", logger.GetRequestID(c)),
		zap.Error(err),
	)
	c.String(http.StatusInternalServerError, internalErrorMessage)
}

// actorContext returns the request context tagged with the caller's username
// so catalog and loan changes are attributed in the audit trail.
func actorContext(c *gin.Context) context.Context {
	return audit.WithActor(c.Request.Context(), auth.GetUsername(c))
}
