package search

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for track search.
type Handlers struct {
	service *Service
}

// NewHandlers creates new search handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the search routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
}

// Search handles GET /search?query=...&offset=...
// Validation failures are the client's fault and surface as 400;
// provider failures surface as 500 with a generic message.
func (h *Handlers) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Missing or empty 'query' parameter",
		})
	}

	offsetParam := c.QueryParam("offset")
	offset, err := strconv.Atoi(offsetParam)
	if err != nil || offset < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Missing or faulty 'offset' parameter",
		})
	}

	result, err := h.service.Search(c.Request().Context(), query, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to process search",
		})
	}

	return c.JSON(http.StatusOK, result)
}
