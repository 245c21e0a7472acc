package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListPublications lists publication records.
// GET /api/publications?category=
func (h *Handler) ListPublications(c echo.Context) error {
	pubs, err := h.service.ListPublications(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"publications": pubs,
	})
}

// GetPublication gets one publication record.
// GET /api/publications/:id
func (h *Handler) GetPublication(c echo.Context) error {
	pub, err := h.service.GetPublication(c.Request().Context(), c.Param("id"))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, pub)
}
