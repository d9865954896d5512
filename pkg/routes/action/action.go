package action

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/labstack/echo/v4"
)

type ActionService interface {
	Document(ctx context.Context) ([]byte, error)
}

// Handler serves the assembled action catalog
type Handler struct {
	service ActionService
	logger  ectologger.Logger
}

func NewHandler(service ActionService, logger ectologger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register registers the action routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
}

// List returns every action with its inputs, outputs and sources
// @Summary List actions
// @Description Assemble every action with its inputs, outputs and sources
// @Tags Action
// @Produce json
// @Success 200 {array} object
// @Failure 500 {object} httperror.HTTPError
// @Router /action [get]
func (h *Handler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "action.List")
	defer span.End()

	h.logger.WithContext(ctx).Info("GET /action")

	doc, err := h.service.Document(ctx)
	if err != nil {
		return err
	}

	return c.JSONBlob(http.StatusOK, doc)
}
