package server

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/intake/internal/handlers"
	"github.com/nfrund/intake/internal/logging"
)

// setupErrorHandling installs the error handler that renders every failure as
// {"detail": ...}. Domain errors get their mapped status; echo errors keep
// theirs; anything else is a 500 logged with a stack trace.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		logger := logging.FromContext(c.Request().Context())

		if status, body, ok := handlers.StatusFor(err); ok {
			logger.Info("Request rejected", "status", status, "error", err)
			respond(c, status, body)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			detail, ok := he.Message.(string)
			if !ok {
				detail = http.StatusText(he.Code)
			}
			respond(c, he.Code, handlers.ErrorResponse{Detail: detail})
			return
		}

		logger.Error("Internal Server Error (Unhandled)",
			"error", err,
			"stack_trace", string(debug.Stack()),
		)
		respond(c, http.StatusInternalServerError, handlers.ErrorResponse{Detail: http.StatusText(http.StatusInternalServerError)})
	}
}

func respond(c echo.Context, status int, body handlers.ErrorResponse) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("Failed to write error response", "error", err)
	}
}
