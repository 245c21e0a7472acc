// Package http provides the HTTP server for the site backend.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/metrics"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/service"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/transport/http/admin"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/transport/http/assistant"
	v1 "github.com/2014Akamanzi/kiul-app-sub001/internal/transport/http/v1"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/transport/ws"
)

// NewServer creates and configures the site HTTP server.
// adminMiddleware guards the /api/admin group.
func NewServer(svc *service.Service, cfg *config.Config, log zerolog.Logger, adminMiddleware ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())

	// Handlers
	v1Handler := v1.NewHandler(svc, log)
	assistantHandler := assistant.NewHandler(svc, log)
	adminHandler := admin.NewHandler(svc, log)
	wsServer := ws.NewServer(svc, cfg, log)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	assistantHandler.RegisterRoutes(e)
	adminHandler.RegisterRoutes(e, adminMiddleware...)
	wsServer.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", c.Response().Header().Get(assistant.HeaderRequestID)).
				Msg("request")
			return nil
		},
	})
}
