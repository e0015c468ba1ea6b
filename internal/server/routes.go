package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/intake/internal/handlers"
	"github.com/nfrund/intake/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	var inputMiddleware []echo.MiddlewareFunc
	if s.Cfg != nil && s.Cfg.RateLimit > 0 {
		inputMiddleware = append(inputMiddleware, middleware.RateLimiter(s.Cfg.RateLimit))
	}
	if s.Cfg != nil && s.Cfg.BodyLimit != "" {
		inputMiddleware = append(inputMiddleware, echomw.BodyLimit(s.Cfg.BodyLimit))
	}

	s.E.POST(handlers.InputPath, s.inputHandler.InputPost, inputMiddleware...)
	s.E.POST("/input", s.inputHandler.InputRedirect)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
