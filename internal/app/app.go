package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/trace"

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

// outboundTimeout bounds calls to Slack and the email API.
const outboundTimeout = 10 * time.Second

// New builds the injector holding every service of the application.
// Services are constructed lazily on first invoke.
func New(cfg *config.Config) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, &http.Client{Timeout: outboundTimeout})

	do.Provide(injector, provideTopics)
	do.Provide(injector, provideTelemetry)
	do.Provide(injector, provideBus)
	do.Provide(injector, provideEmailSender)
	do.Provide(injector, provideChannelFactory)
	do.Provide(injector, provideDispatcher)
	do.Provide(injector, provideServer)

	return injector
}

func provideTopics(i do.Injector) (*topics.Registry, error) {
	return topics.Default()
}

// telemetry owns the bus tracer and flushes it when the injector shuts down.
type telemetry struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

func (t *telemetry) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}

func provideTelemetry(i do.Injector) (*telemetry, error) {
	cfg := do.MustInvoke[*config.Config](i)
	tracer, shutdown, err := pubsub.SetupOTel(context.Background(), cfg.Tracing)
	if err != nil {
		return nil, err
	}
	return &telemetry{tracer: tracer, shutdown: shutdown}, nil
}

func provideBus(i do.Injector) (*pubsub.WatermillBridge, error) {
	t, err := do.Invoke[*telemetry](i)
	if err != nil {
		return nil, err
	}
	return pubsub.NewWatermillBridgeWithTracer(t.tracer), nil
}

func provideEmailSender(i do.Injector) (domain.EmailSender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*http.Client](i)
	return email.NewEmailService(cfg.Email, client)
}

func provideChannelFactory(i do.Injector) (*channels.Factory, error) {
	cfg := do.MustInvoke[*config.Config](i)
	emailer, err := do.Invoke[domain.EmailSender](i)
	if err != nil {
		return nil, fmt.Errorf("email sender: %w", err)
	}
	bus, err := do.Invoke[*pubsub.WatermillBridge](i)
	if err != nil {
		return nil, fmt.Errorf("message bus: %w", err)
	}
	client := do.MustInvoke[*http.Client](i)
	return channels.NewFactory(cfg, emailer, bus, client), nil
}

func provideDispatcher(i do.Injector) (*dispatch.Dispatcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	registry, err := do.Invoke[*topics.Registry](i)
	if err != nil {
		return nil, fmt.Errorf("topic registry: %w", err)
	}
	factory, err := do.Invoke[*channels.Factory](i)
	if err != nil {
		return nil, err
	}
	return dispatch.New(auth.New(cfg.CSRFToken), intake.NewParser(registry), registry, factory), nil
}

func provideServer(i do.Injector) (*server.Server, error) {
	dispatcher, err := do.Invoke[*dispatch.Dispatcher](i)
	if err != nil {
		return nil, err
	}
	bus, err := do.Invoke[*pubsub.WatermillBridge](i)
	if err != nil {
		return nil, err
	}
	s := server.New(server.Dependencies{
		Config:     do.MustInvoke[*config.Config](i),
		Dispatcher: dispatcher,
		Bus:        bus,
	})
	s.RegisterRoutes()
	return s, nil
}

// Run wires the application, starts the queue consumer and serves HTTP on
// addr until ctx is canceled or the process is signalled.
func Run(ctx context.Context, cfg *config.Config, addr string) error {
	injector := New(cfg)
	defer func() { _ = injector.Shutdown() }()

	srv, err := do.Invoke[*server.Server](injector)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	bus, err := do.Invoke[*pubsub.WatermillBridge](injector)
	if err != nil {
		return err
	}
	if err := channels.ConsumeQueue(consumerCtx, bus, cfg.PubSub); err != nil {
		return err
	}

	return srv.Start(ctx, addr)
}
