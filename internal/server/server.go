package server

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/handlers"
	"github.com/nfrund/intake/internal/logging"
	appmiddleware "github.com/nfrund/intake/internal/middleware"
	"github.com/nfrund/intake/internal/pubsub"
)

// Dependencies holds the services the HTTP server is built from.
type Dependencies struct {
	Config     *config.Config
	Dispatcher handlers.Dispatcher
	// Bus is closed after the HTTP server stops. Optional.
	Bus pubsub.Subscriber
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E            *echo.Echo
	Cfg          *config.Config
	bus          pubsub.Subscriber
	inputHandler *handlers.InputHandler
}

// New creates a new Server instance with middleware and error handling
// configured. Routes are added by RegisterRoutes.
func New(deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logging.FromContext(c.Request().Context()).LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))

	setupErrorHandling(e)

	return &Server{
		E:            e,
		Cfg:          deps.Config,
		bus:          deps.Bus,
		inputHandler: handlers.NewInputHandler(deps.Dispatcher),
	}
}

// Shutdown stops the HTTP server and closes the message bus.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.E.Shutdown(ctx)
	if s.bus != nil {
		if cerr := s.bus.Close(); cerr != nil {
			slog.Error("Failed to close message bus", "error", cerr)
		}
	}
	return err
}
