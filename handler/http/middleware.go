package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"askdoc/src/infrastructure/log"
)

// BearerAuth rejects requests whose Authorization header does not carry the
// configured token. An empty configured token disables the check.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		value, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || value != token {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "invalid or missing API token",
			})
			return
		}

		c.Next()
	}
}

// timingWriter injects the X-Process-Time header just before the first byte
// of the response is written.
type timingWriter struct {
	gin.ResponseWriter
	start       time.Time
	wroteHeader bool
}

func (w *timingWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.Header().Set("X-Process-Time", fmt.Sprintf("%.4f sec", time.Since(w.start).Seconds()))
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(w.Status())
	}
	return w.ResponseWriter.Write(b)
}

// ProcessTime reports request handling time in the X-Process-Time response
// header and logs one completion line per request.
func ProcessTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		tw := &timingWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Writer = tw

		c.Next()

		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(tw.start).String(),
		)
	}
}
