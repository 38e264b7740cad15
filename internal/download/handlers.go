package download

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for track downloads.
type Handlers struct {
	service *Service
}

// NewHandlers creates new download handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the download routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/download", h.Download)
}

// Request is the POST /download payload.
type Request struct {
	Name    string `json:"name"`
	TrackID int    `json:"trackId"`
	RoomID  string `json:"roomId"`
}

// Download handles POST /download. The success response is returned
// after the broadcast has been issued, not after delivery.
func (h *Handlers) Download(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "name is required",
		})
	}
	if req.TrackID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "trackId is required",
		})
	}
	if req.RoomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "roomId is required",
		})
	}

	if _, err := h.service.Download(c.Request().Context(), req.TrackID, req.Name, req.RoomID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to process track download",
		})
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}
