package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Search matches publication file names.
// GET /api/search?q=
func (h *Handler) Search(c echo.Context) error {
	results, err := h.service.SearchPublications(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(http.StatusOK, results)
}
