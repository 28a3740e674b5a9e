package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger writes one access line per request to the standard logger.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		log.Printf("[http] %s %s %d %s %s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start).Round(time.Microsecond), c.ClientIP())
		for _, e := range c.Errors {
			log.Printf("[http] error: %v", e.Err)
		}
	}
}
