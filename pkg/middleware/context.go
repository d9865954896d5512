package middleware

import (
	"github.com/Ramsey-B/fern/pkg/context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context attaches request metadata to the request context. The request id
// comes from X-Request-Id when the caller sent one and is echoed back.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			ctx := context.WithRequest(req.Context(), context.Request{
				ID:       id,
				Method:   req.Method,
				Route:    c.Path(),
				RemoteIP: c.RealIP(),
			})
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
