package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// SendEmail delivers a transactional email.
// POST /api/email
func (h *Handler) SendEmail(c echo.Context) error {
	var req domain.EmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.SendEmail(c.Request().Context(), &req)
	if err != nil {
		return Error(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
