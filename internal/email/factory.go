package email

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/domain"
)

// NewEmailService creates and returns an email sender based on the configuration.
func NewEmailService(cfg config.Email, client *http.Client) (domain.EmailSender, error) {
	switch cfg.Provider {
	case "", "log":
		return &LogSender{senderAddress: cfg.From}, nil
	case "smtp":
		port := cfg.Port
		if port == 0 {
			port = 587
			if cfg.TLS {
				port = 465
			}
		}
		return &SMTPSender{
			host:          cfg.Host,
			port:          port,
			implicitTLS:   cfg.TLS,
			username:      cfg.Username,
			password:      cfg.Password,
			senderAddress: cfg.From,
			dialTimeout:   10 * time.Second,
			sendTimeout:   defaultSendTimeout,
		}, nil
	case "resend":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
		return &ResendSender{apiKey: cfg.APIKey, senderAddress: cfg.From, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}
