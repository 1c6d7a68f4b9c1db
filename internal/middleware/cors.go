package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Preflight answers cover the API's verbs and the headers the client gateway sends.
const (
	corsAllowMethods  = "GET, POST, PUT, DELETE"
	corsAllowHeaders  = "Accept, Authorization, Content-Type, " + HeaderXRequestID
	corsExposeHeaders = HeaderXRequestID
	corsMaxAge        = "86400"
)

// CORS lets a browser build of the client reach the sandbox. "*" admits any
// origin. The token travels in the Authorization header, so credentials are
// never allowed. A preflight from an unlisted origin is refused with 403;
// other requests from it pass through without CORS headers.
func CORS(origins ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimSpace(o)] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		preflight := c.Request.Method == http.MethodOptions &&
			c.GetHeader("Access-Control-Request-Method") != ""

		c.Header("Vary", "Origin")
		switch {
		case allowed["*"]:
			c.Header("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
		default:
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}
		c.Header("Access-Control-Expose-Headers", corsExposeHeaders)

		if preflight {
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
