package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/server"
)

func TestNew_ServesIntake(t *testing.T) {
	cfg := &config.Config{
		CSRFToken: "VALID",
		Email:     config.Email{Provider: "log"},
	}
	injector := New(cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	srv, err := do.Invoke[*server.Server](injector)
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"any topic", "/input/?csrf_token=VALID", `{"topic":"any","description":"Hi"}`, http.StatusOK},
		{"wrong token", "/input/?csrf_token=nope", `{"topic":"any","description":"Hi"}`, http.StatusForbidden},
		{"unknown topic", "/input/?csrf_token=VALID", `{"topic":"delivery","description":"Hi"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.E.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestNew_RejectsUnknownEmailProvider(t *testing.T) {
	cfg := &config.Config{Email: config.Email{Provider: "carrier-pigeon"}}
	injector := New(cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := do.Invoke[*server.Server](injector)
	assert.Error(t, err)
}
