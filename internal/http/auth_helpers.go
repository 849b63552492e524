package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/entities"
)

const contextKeyAuthTemplateData = "auth_template_data"

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	LoggedIn  bool
	Username  string
	Role      entities.Role
	IsAdmin   bool
	CSRFToken string // Empty when CSRF protection is off
	CSRFField string
}

// AuthContextMiddleware injects authentication data into the Gin context.
// Pages read it as .Auth.
func AuthContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		data := AuthTemplateData{
			CSRFToken: auth.GetCSRFToken(c),
			CSRFField: auth.CSRFFieldName,
		}
		if p, ok := auth.GetPrincipal(c); ok {
			data.LoggedIn = true
			data.Username = p.Username
			data.Role = p.Role
			data.IsAdmin = p.IsAdmin()
		}

		c.Set(contextKeyAuthTemplateData, data)
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get(contextKeyAuthTemplateData); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{}
}
