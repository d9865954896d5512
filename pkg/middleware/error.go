package middleware

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/context"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

// Error renders handler errors as ErrorResponse. Domain errors carry their
// own status and meta; anything unrecognized becomes an opaque 500.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		logger.WithContext(ctx).WithError(err).WithFields(context.RequestFrom(ctx).Fields()).Error("api is returning an error")
		if c.Response().Committed {
			return
		}

		code, message, meta := describe(err)
		_ = c.JSON(code, ErrorResponse{
			Message:   message,
			RequestID: context.RequestID(ctx),
			TraceID:   tracing.TraceID(ctx),
			Meta:      meta,
		})
	}
}

func describe(err error) (int, string, map[string]any) {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message, ok := echoErr.Message.(string)
		if !ok {
			message = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, message, map[string]any{}
	}

	if domainErr, ok := apperrors.ToHTTPError(err); ok {
		err = domainErr
	}
	if !httperror.IsHTTPError(err) {
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), map[string]any{}
	}

	httpErr := httperror.ToHTTPError(err)
	meta := httpErr.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	return httperror.GetStatusCode(err), httpErr.Error(), meta
}
