package middleware

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS adds CORS headers. ALLOWED_ORIGINS is a comma-separated origin
// allowlist; when unset every origin is echoed back, which suits local
// frontend development against the chat widget.
func CORS() gin.HandlerFunc {
	allowed := parseOrigins(os.Getenv("ALLOWED_ORIGINS"))

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case origin == "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case len(allowed) == 0 || allowed[strings.ToLower(origin)]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		default:
			// Disallowed origin gets no CORS headers; the browser blocks it
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func parseOrigins(raw string) map[string]bool {
	origins := make(map[string]bool)
	for _, o := range strings.Split(raw, ",") {
		o = strings.ToLower(strings.TrimSpace(o))
		if o != "" {
			origins[o] = true
		}
	}
	return origins
}
