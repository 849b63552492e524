package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
)

// RateLimitMiddleware caps requests per client IP per minute. Requests over
// the budget get 429 from httprate and never reach the route.
func RateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	limiter := httprate.LimitByIP(requestsPerMinute, time.Minute)

	return func(c *gin.Context) {
		passed := false
		handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}
