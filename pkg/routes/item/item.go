package item

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/labstack/echo/v4"
)

type ItemService interface {
	Items(ctx context.Context) ([]models.Row, error)
}

// Handler serves the raw item table
type Handler struct {
	service ItemService
	logger  ectologger.Logger
}

func NewHandler(service ItemService, logger ectologger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
}

// List returns every item row unfiltered
// @Summary List items
// @Tags Item
// @Produce json
// @Success 200 {array} object
// @Failure 500 {object} httperror.HTTPError
// @Router /item [get]
func (h *Handler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "item.List")
	defer span.End()

	h.logger.WithContext(ctx).Info("GET /item")

	items, err := h.service.Items(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}
