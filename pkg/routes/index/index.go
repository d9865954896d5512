package index

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Response struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Links   []string `json:"links"`
}

func Register(e *echo.Echo) {
	e.GET("/", Index)
}

// Index reports that the API is up and lists the main resources
// @Summary API index
// @Tags Index
// @Produce json
// @Success 200 {object} Response
// @Router / [get]
func Index(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{
		Status:  "ok",
		Message: "API alive",
		Links:   []string{"/health", "/item", "/action"},
	})
}
