package middleware

import (
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/labstack/echo/v4"
)

// Logger writes one access log line per request and records the HTTP metrics.
// Errors are rendered before logging so the logged status is the one sent.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			elapsed := time.Since(start)

			req := c.Request()
			res := c.Response()
			metrics.RecordHTTPRequest(req.Method, c.Path(), strconv.Itoa(res.Status), elapsed.Seconds())

			fields := context.RequestFrom(req.Context()).Fields()
			fields["status"] = res.Status
			fields["uri"] = req.RequestURI
			fields["user_agent"] = req.UserAgent()
			fields["response_time"] = elapsed
			fields["response_size"] = res.Size

			logger.WithContext(req.Context()).WithFields(fields).Info("Request")
			return nil
		}
	}
}
