package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/intake/internal/auth"
	"github.com/nfrund/intake/internal/channels"
	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/dispatch"
	"github.com/nfrund/intake/internal/domain"
	"github.com/nfrund/intake/internal/email"
	"github.com/nfrund/intake/internal/intake"
	"github.com/nfrund/intake/internal/pubsub"
	"github.com/nfrund/intake/internal/server"
	"github.com/nfrund/intake/internal/topics"
)

const (
	validToken   = "VALID"
	invalidToken = "123def"
)

// countingChannel wraps a real channel and records each send in order.
type countingChannel struct {
	channels.Channel
	log *sendLog
}

func (c *countingChannel) Send(ctx context.Context, msg domain.Message) error {
	c.log.add(c.Name())
	return c.Channel.Send(ctx, msg)
}

type sendLog struct {
	mu    sync.Mutex
	names []string
}

func (l *sendLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

func (l *sendLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

// countingBuilder builds real channels through the factory and wraps them.
type countingBuilder struct {
	factory *channels.Factory
	log     *sendLog
}

func (b *countingBuilder) New(kind channels.Kind) (channels.Channel, error) {
	ch, err := b.factory.New(kind)
	if err != nil {
		return nil, err
	}
	return &countingChannel{Channel: ch, log: b.log}, nil
}

type testEnv struct {
	srv   *server.Server
	sends *sendLog
	bus   *pubsub.WatermillBridge
	cfg   *config.Config
}

func setupIntakeTest(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		CSRFToken: validToken,
		Email:     config.Email{Provider: "log", To: "team@example.com"},
	}
	registry, err := topics.Default()
	require.NoError(t, err)
	emailer, err := email.NewEmailService(cfg.Email, nil)
	require.NoError(t, err)
	bus := pubsub.NewWatermillBridge()

	sends := &sendLog{}
	builder := &countingBuilder{factory: channels.NewFactory(cfg, emailer, bus, nil), log: sends}
	dispatcher := dispatch.New(auth.New(cfg.CSRFToken), intake.NewParser(registry), registry, builder)

	srv := server.New(server.Dependencies{Config: cfg, Dispatcher: dispatcher, Bus: bus})
	srv.RegisterRoutes()
	t.Cleanup(func() { _ = bus.Close() })

	return &testEnv{srv: srv, sends: sends, bus: bus, cfg: cfg}
}

func (env *testEnv) post(t *testing.T, token *string, body string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/input/"
	if token != nil {
		target += "?" + url.Values{"csrf_token": {*token}}.Encode()
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.srv.E.ServeHTTP(rec, req)
	return rec
}

func ptr(s string) *string { return &s }

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func TestInput_ValidMessage(t *testing.T) {
	env := setupIntakeTest(t)

	rec := env.post(t, ptr(validToken), `{"topic":"sales","description":"Hi there!"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, []string{"chat"}, env.sends.get())
}

func TestInput_AnyTopicReachesEveryChannelInOrder(t *testing.T) {
	env := setupIntakeTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queued := make(chan domain.Message, 1)
	require.NoError(t, pubsub.Subscribe(ctx, env.bus, channels.MessageEvent(env.cfg.PubSub),
		func(ctx context.Context, msg domain.Message, _ pubsub.Message) error {
			queued <- msg
			return nil
		}))

	rec := env.post(t, ptr(validToken), `{"topic":"ANY","description":"x"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"chat", "email", "queue"}, env.sends.get())

	select {
	case msg := <-queued:
		assert.Equal(t, domain.Message{Topic: "ANY", Description: "x"}, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("queue channel did not publish")
	}
}

func TestInput_PricingGoesByEmail(t *testing.T) {
	env := setupIntakeTest(t)

	rec := env.post(t, ptr(validToken), `{"topic":"Pricing","description":"How much?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"email"}, env.sends.get())
}

func TestInput_RepeatedRequestsAreIndependent(t *testing.T) {
	env := setupIntakeTest(t)

	for i := 0; i < 3; i++ {
		rec := env.post(t, ptr(validToken), `{"topic":"sales","description":"Hi there!"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, []string{"chat", "chat", "chat"}, env.sends.get())
}

func TestInput_UnknownTopic(t *testing.T) {
	env := setupIntakeTest(t)

	for _, topic := range []string{"delivery", "Delivery", "SALES!"} {
		rec := env.post(t, ptr(validToken), `{"topic":"`+topic+`","description":"Hi there!"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, `Malformed. Invalid topic "`+topic+`".`, detailOf(t, rec))
	}
	assert.Empty(t, env.sends.get())
}

func TestInput_EmptyDescription(t *testing.T) {
	env := setupIntakeTest(t)

	for _, desc := range []string{"", "   ", `\n\t`} {
		rec := env.post(t, ptr(validToken), `{"topic":"sales","description":"`+desc+`"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed. No description.", detailOf(t, rec))
	}
	assert.Empty(t, env.sends.get())
}

func TestInput_MalformedInput(t *testing.T) {
	env := setupIntakeTest(t)

	bodies := map[string]string{
		"wrong schema":     `{"wrong_topic_fieldname":"sales","description":"Hi there!"}`,
		"no topic":         `{"description":"Hi there!"}`,
		"no description":   `{"topic":"sales"}`,
		"mistyped topic":   `{"topic":1,"description":"Hi there!"}`,
		"not json":         `topic=sales`,
		"empty body":       ``,
		"capitalised keys": `{"Topic":"sales","Description":"Hi there!"}`,
		"upper-case keys":  `{"TOPIC":"sales","DESCRIPTION":"Hi there!"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := env.post(t, ptr(validToken), body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			detail, ok := detailOf(t, rec).([]any)
			require.True(t, ok, "422 detail should be a list of field errors")
			assert.NotEmpty(t, detail)
		})
	}
	assert.Empty(t, env.sends.get())
}

func TestInput_NonASCIICaseFolding(t *testing.T) {
	env := setupIntakeTest(t)

	rec := env.post(t, ptr(validToken), `{"topic":"PR\u0130C\u0130NG","description":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Malformed. Invalid topic \"PR\u0130C\u0130NG\".", detailOf(t, rec))
	assert.Empty(t, env.sends.get())
}

func TestInput_SeparatorOnlyDescription(t *testing.T) {
	env := setupIntakeTest(t)

	rec := env.post(t, ptr(validToken), `{"topic":"sales","description":"\u001f"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Malformed. No description.", detailOf(t, rec))
}

func TestInput_RepeatedTokenUsesLastValue(t *testing.T) {
	env := setupIntakeTest(t)

	req := httptest.NewRequest(http.MethodPost, "/input/?csrf_token=123def&csrf_token=VALID",
		strings.NewReader(`{"topic":"sales","description":"Hi there!"}`))
	rec := httptest.NewRecorder()
	env.srv.E.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInput_BodyLimit(t *testing.T) {
	env := setupIntakeTest(t)
	env.cfg.BodyLimit = "1K"
	limited := server.New(server.Dependencies{Config: env.cfg, Dispatcher: dispatchStub{}})
	limited.RegisterRoutes()

	body := `{"topic":"sales","description":"` + strings.Repeat("x", 2048) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/input/?csrf_token=VALID", strings.NewReader(body))
	rec := httptest.NewRecorder()
	limited.E.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"detail":"Request Entity Too Large"}`, rec.Body.String())
}

func TestInput_NoToken(t *testing.T) {
	env := setupIntakeTest(t)

	rec := env.post(t, nil, `{"topic":"sales","description":"Hi there!"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t,
		`{"detail":[{"loc":["query","csrf_token"],"msg":"field required","type":"value_error.missing"}]}`,
		rec.Body.String())
	assert.Empty(t, env.sends.get())
}

func TestInput_WrongToken(t *testing.T) {
	env := setupIntakeTest(t)

	// The body is malformed too; authentication is checked first.
	rec := env.post(t, ptr(invalidToken), `{"topic":{"topic":"sales","description":"Hi there!"}}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"Unauthorised. Invalid CSRF Token."}`, rec.Body.String())
	assert.Empty(t, env.sends.get())
}

func TestInput_EmptyToken(t *testing.T) {
	env := setupIntakeTest(t)

	rec := env.post(t, ptr(""), `{"topic":"sales","description":"Hi there!"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInput_TrailingSlashRedirect(t *testing.T) {
	env := setupIntakeTest(t)

	req := httptest.NewRequest(http.MethodPost, "/input?csrf_token=VALID", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	env.srv.E.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/input/?csrf_token=VALID", rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	env := setupIntakeTest(t)

	rec := httptest.NewRecorder()
	env.srv.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestInput_RateLimit(t *testing.T) {
	env := setupIntakeTest(t)
	env.cfg.RateLimit = 2
	limited := server.New(server.Dependencies{Config: env.cfg, Dispatcher: dispatchStub{}})
	limited.RegisterRoutes()

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/input/?csrf_token=VALID", strings.NewReader(`{}`))
		req.RemoteAddr = "192.0.2.10:1234"
		rec := httptest.NewRecorder()
		limited.E.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type dispatchStub struct{}

func (dispatchStub) Handle(ctx context.Context, token string, raw []byte) (*dispatch.Result, error) {
	return &dispatch.Result{}, nil
}
