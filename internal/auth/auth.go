// Package auth verifies the shared-secret token callers present with each
// intake request.
package auth

import (
	"crypto/subtle"

	"github.com/nfrund/intake/internal/domain"
)

// Authenticator compares caller tokens against the configured secret.
type Authenticator struct {
	secret string
}

// New creates an Authenticator for the given secret. An empty secret rejects
// every token.
func New(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// Check returns domain.ErrUnauthorized unless token equals the secret exactly.
func (a *Authenticator) Check(token string) error {
	if a.secret == "" {
		return domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.secret)) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}
