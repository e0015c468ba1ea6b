package email

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/intake/internal/config"
)

func TestNewEmailService(t *testing.T) {
	t.Run("defaults to the log sender", func(t *testing.T) {
		sender, err := NewEmailService(config.Email{}, nil)
		require.NoError(t, err)
		assert.IsType(t, &LogSender{}, sender)
	})

	t.Run("smtp picks a port from the TLS flag", func(t *testing.T) {
		sender, err := NewEmailService(config.Email{Provider: "smtp", Host: "mail.example.com", TLS: true}, nil)
		require.NoError(t, err)
		smtpSender, ok := sender.(*SMTPSender)
		require.True(t, ok)
		assert.Equal(t, 465, smtpSender.port)
		assert.True(t, smtpSender.implicitTLS)
	})

	t.Run("smtp keeps an explicit port", func(t *testing.T) {
		sender, err := NewEmailService(config.Email{Provider: "smtp", Host: "mail.example.com", Port: 2525}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2525, sender.(*SMTPSender).port)
	})

	t.Run("resend requires an api key", func(t *testing.T) {
		_, err := NewEmailService(config.Email{Provider: "resend"}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewEmailService(config.Email{Provider: "pigeon"}, nil)
		assert.ErrorContains(t, err, "unknown email provider")
	})
}

func TestLogSender_Send(t *testing.T) {
	s := &LogSender{senderAddress: "intake@example.com"}
	assert.NoError(t, s.Send(context.Background(), "sales@example.com", "[sales] new message", "Hi there!"))
}

func TestResendSender_Send(t *testing.T) {
	var got resendPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	s := &ResendSender{apiKey: "re_test", senderAddress: "intake@example.com", endpoint: srv.URL, client: srv.Client()}
	err := s.Send(context.Background(), "sales@example.com", "subject", "body")
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, "intake@example.com", got.From)
	assert.Equal(t, "sales@example.com", got.To)
	assert.Equal(t, "body", got.Text)
}

func TestResendSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := &ResendSender{apiKey: "bad", endpoint: srv.URL, client: srv.Client()}
	err := s.Send(context.Background(), "to@example.com", "s", "b")
	assert.ErrorContains(t, err, "status 401")
}

func TestSMTPSender_MissingHost(t *testing.T) {
	s := &SMTPSender{}
	assert.ErrorContains(t, s.Send(context.Background(), "to@example.com", "s", "b"), "not configured")
}

func TestSMTPSender_SilentServerTimesOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	// Accept connections but never send the 220 greeting.
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()
	t.Cleanup(func() {
		select {
		case conn := <-accepted:
			_ = conn.Close()
		default:
		}
	})

	port := ln.Addr().(*net.TCPAddr).Port
	s := &SMTPSender{
		host:        "127.0.0.1",
		port:        port,
		dialTimeout: time.Second,
		sendTimeout: 200 * time.Millisecond,
	}

	start := time.Now()
	err = s.Send(context.Background(), "to@example.com", "s", "b")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "a stalled server must not block the sender")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("from@example.com", "to@example.com", "Hello", "line one\nline two"))

	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "\r\n\r\nline one\r\nline two\r\n")
}
