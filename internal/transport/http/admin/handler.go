// Package admin provides the authenticated admin API handlers.
package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/auth"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/service"
	v1 "github.com/2014Akamanzi/kiul-app-sub001/internal/transport/http/v1"
)

// Handler handles admin HTTP requests.
type Handler struct {
	service *service.Service
	log     zerolog.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(svc *service.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: svc,
		log:     log.With().Str("component", "admin").Logger(),
	}
}

// RegisterRoutes registers admin routes behind mw.
func (h *Handler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api/admin", mw...)

	g.GET("/publications", h.ListPublications)
	g.POST("/publications", h.CreatePublication)
	g.GET("/publications/:id", h.GetPublication)
	g.PUT("/publications/:id", h.UpdatePublication)
	g.DELETE("/publications/:id", h.DeletePublication)

	g.GET("/assistant/events/:request_id", h.GetAssistantEvents)
}

// ListPublications lists publications.
// GET /api/admin/publications?category=
func (h *Handler) ListPublications(c echo.Context) error {
	pubs, err := h.service.ListPublications(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return v1.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"publications": pubs,
	})
}

// CreatePublication creates a publication record.
// POST /api/admin/publications
func (h *Handler) CreatePublication(c echo.Context) error {
	var in domain.PublicationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	pub, err := h.service.CreatePublication(c.Request().Context(), &in)
	if err != nil {
		return v1.Error(c, err)
	}

	h.log.Info().Str("id", pub.ID).Str("by", actor(c)).Msg("publication created")
	return c.JSON(http.StatusCreated, pub)
}

// GetPublication gets a publication record.
// GET /api/admin/publications/:id
func (h *Handler) GetPublication(c echo.Context) error {
	pub, err := h.service.GetPublication(c.Request().Context(), c.Param("id"))
	if err != nil {
		return v1.Error(c, err)
	}
	return c.JSON(http.StatusOK, pub)
}

// UpdatePublication replaces a publication record.
// PUT /api/admin/publications/:id
func (h *Handler) UpdatePublication(c echo.Context) error {
	var in domain.PublicationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	pub, err := h.service.UpdatePublication(c.Request().Context(), c.Param("id"), &in)
	if err != nil {
		return v1.Error(c, err)
	}

	h.log.Info().Str("id", pub.ID).Str("by", actor(c)).Msg("publication updated")
	return c.JSON(http.StatusOK, pub)
}

// DeletePublication deletes a publication record.
// DELETE /api/admin/publications/:id
func (h *Handler) DeletePublication(c echo.Context) error {
	id := c.Param("id")
	if err := h.service.DeletePublication(c.Request().Context(), id); err != nil {
		return v1.Error(c, err)
	}

	h.log.Info().Str("id", id).Str("by", actor(c)).Msg("publication deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetAssistantEvents returns the recorded events of one relay request.
// GET /api/admin/assistant/events/:request_id
func (h *Handler) GetAssistantEvents(c echo.Context) error {
	requestID := c.Param("request_id")
	events, err := h.service.ListAssistantEvents(c.Request().Context(), requestID)
	if err != nil {
		return v1.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"request_id": requestID,
		"events":     events,
	})
}

func actor(c echo.Context) string {
	email, _ := c.Get(auth.ContextKeyEmail).(string)
	return email
}
