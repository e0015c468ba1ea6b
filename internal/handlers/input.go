package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/intake/internal/dispatch"
	"github.com/nfrund/intake/internal/domain"
)

// CSRFTokenParam is the query parameter carrying the caller's shared secret.
const CSRFTokenParam = "csrf_token"

// InputPath is the intake endpoint.
const InputPath = "/input/"

// Dispatcher runs an intake request end to end.
type Dispatcher interface {
	Handle(ctx context.Context, token string, raw []byte) (*dispatch.Result, error)
}

// InputHandler handles message submissions.
type InputHandler struct {
	dispatcher Dispatcher
}

// NewInputHandler creates a new InputHandler.
func NewInputHandler(dispatcher Dispatcher) *InputHandler {
	return &InputHandler{dispatcher: dispatcher}
}

// InputPost accepts a topic-tagged message (POST /input/?csrf_token=...).
// Errors are returned to echo and rendered by the server's error handler.
func (h *InputHandler) InputPost(c echo.Context) error {
	tokens, ok := c.QueryParams()[CSRFTokenParam]
	if !ok || len(tokens) == 0 {
		return domain.MissingField("query", CSRFTokenParam)
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	// A repeated parameter resolves to its last value.
	token := tokens[len(tokens)-1]
	if _, err := h.dispatcher.Handle(c.Request().Context(), token, raw); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// InputRedirect sends clients that dropped the trailing slash to InputPath,
// keeping the method, body and query string.
func (h *InputHandler) InputRedirect(c echo.Context) error {
	target := InputPath
	if q := c.QueryString(); q != "" {
		target += "?" + q
	}
	return c.Redirect(http.StatusTemporaryRedirect, target)
}
