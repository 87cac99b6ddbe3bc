// Package proxy forwards gateway requests to the backing services.
package proxy

import (
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/common/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailers":            true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

type Forwarder struct {
	client *http.Client
	logger *zap.Logger
}

func NewForwarder(timeout time.Duration, logger *zap.Logger) *Forwarder {
	return &Forwarder{client: &http.Client{Timeout: timeout}, logger: logger}
}

// To returns a handler that sends the request to base + the "any" wildcard,
// keeping method, query, headers and body.
func (f *Forwarder) To(base string) gin.HandlerFunc {
	base = strings.TrimRight(base, "/")
	return func(c *gin.Context) {
		target := base + c.Param("any")
		if c.Request.URL.RawQuery != "" {
			target += "?" + c.Request.URL.RawQuery
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
		if err != nil {
			apperrors.Respond(c, apperrors.Internal("failed to create request", err))
			return
		}
		for k, v := range c.Request.Header {
			if !hopByHop[strings.ToLower(k)] {
				req.Header[k] = v
			}
		}
		if id := middleware.RequestIDFrom(c.Request.Context()); id != "" {
			req.Header.Set(middleware.RequestIDHeader, id)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			f.logger.Warn("upstream unreachable",
				zap.String("method", c.Request.Method),
				zap.String("url", target),
				zap.Error(err),
			)
			apperrors.Respond(c, apperrors.Unavailable("service unreachable", err))
			return
		}
		defer resp.Body.Close()

		for k, v := range resp.Header {
			lower := strings.ToLower(k)
			// CORS is answered by the gateway itself.
			if hopByHop[lower] || strings.HasPrefix(lower, "access-control-") {
				continue
			}
			c.Writer.Header()[k] = v
		}
		c.Status(resp.StatusCode)
		if _, err := io.Copy(c.Writer, resp.Body); err != nil {
			f.logger.Error("failed to copy response body", zap.Error(err))
		}
	}
}
