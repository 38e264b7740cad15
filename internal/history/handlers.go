package history

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for room download history.
type Handlers struct {
	service *Service
}

// NewHandlers creates new history handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the history routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/rooms/:roomId/history", h.ListByRoom)
}

// ListByRoom handles GET /rooms/:roomId/history?page=&pageSize=
func (h *Handlers) ListByRoom(c echo.Context) error {
	roomID := c.Param("roomId")
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Missing 'roomId' parameter",
		})
	}

	opts := ListOptions{}
	if v := c.QueryParam("page"); v != "" {
		opts.Page, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		opts.PageSize, _ = strconv.Atoi(v)
	}

	result, err := h.service.ListByRoom(c.Request().Context(), roomID, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to list room history",
		})
	}

	return c.JSON(http.StatusOK, result)
}
