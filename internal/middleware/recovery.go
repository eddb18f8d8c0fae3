package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"calendar-autobot/pkg/response"
)

// Recovery turns a handler panic into a 500 and reports it.
func (m Middleware) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		ctx := c.Request.Context()
		err := fmt.Errorf("panic: %v", recovered)

		m.l.Errorf(ctx, "middleware.Recovery: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		m.reporter.Report(ctx, err, map[string]string{
			"stage":  "http",
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})

		response.InternalError(c, err)
		c.Abort()
	})
}
