package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It is built once at startup and passed down to the components that need it.
type Config struct {
	Addr      string `env:"HTTP_ADDR" envDefault:":8000"`
	CSRFToken string `env:"VALID_CSRF_TOKEN"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	// RateLimit is the number of requests per minute allowed per client IP on
	// the intake endpoint. Zero disables the limiter.
	RateLimit int `env:"RATE_LIMIT" envDefault:"0"`
	// BodyLimit caps the intake request body, in echo's size notation
	// ("64K", "1M"). Empty disables the cap.
	BodyLimit string `env:"BODY_LIMIT" envDefault:"1M"`

	Slack   Slack
	Email   Email
	PubSub  PubSub
	Tracing Tracing
}

// Slack configures the chat channel.
type Slack struct {
	APIKey  string `env:"SLACK_API_KEY"`
	Channel string `env:"SLACK_CHANNEL"`
	// APIURL overrides the Slack API base URL. Must end with a slash.
	APIURL string `env:"SLACK_API_URL"`
}

// Email configures the email channel and its underlying sender.
type Email struct {
	Provider string `env:"EMAIL_PROVIDER" envDefault:"log"`
	Host     string `env:"IMAP_SERVER"`
	Port     int    `env:"IMAP_PORT" envDefault:"0"`
	TLS      bool   `env:"IMAP_TLS" envDefault:"false"`
	From     string `env:"EMAIL_FROM"`
	To       string `env:"EMAIL_TO"`
	Username string `env:"EMAIL_USERNAME"`
	Password string `env:"EMAIL_PASSWORD"`
	APIKey   string `env:"EMAIL_API_KEY"`
}

// PubSub configures the queue channel.
type PubSub struct {
	ProjectID      string `env:"PUBSUB_PROJECT_ID"`
	SubscriptionID string `env:"PUBSUB_SUBSCRIPTION_ID"`
}

// Tracing configures OpenTelemetry spans for the message bus.
type Tracing struct {
	Enabled     bool   `env:"TRACING_ENABLED" envDefault:"false"`
	ServiceName string `env:"TRACING_SERVICE_NAME" envDefault:"intake"`
	ZipkinURL   string `env:"TRACING_ZIPKIN_URL" envDefault:"http://localhost:9411/api/v2/spans"`
}

// DefaultQueueTopic is used when no project or subscription is configured.
const DefaultQueueTopic = "intake.messages"

// Topic returns the bus topic the queue channel publishes on.
func (p PubSub) Topic() string {
	if p.ProjectID == "" && p.SubscriptionID == "" {
		return DefaultQueueTopic
	}
	return fmt.Sprintf("projects/%s/subscriptions/%s", p.ProjectID, p.SubscriptionID)
}

// New loads a .env file if one exists and parses the environment into a Config.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet at this point.
		log.Println("No .env file found, relying on environment variables")
	}
	return Parse()
}

// Parse reads the configuration from the current process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}
