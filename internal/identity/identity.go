// Package identity integrates with the credential verification
// provider. The rest of the application depends only on the Verifier
// and Authenticator ports, never on a concrete provider.
package identity

import (
	"context"
	"errors"
)

// Claims are the verified subject claims returned by the provider.
type Claims struct {
	Subject string
	Email   string
}

// Verifier checks an opaque access token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Authenticator exchanges email/password credentials for an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
}

var (
	// ErrInvalidCredential indicates the provider rejected the credential.
	ErrInvalidCredential = errors.New("identity: invalid credential")
	// ErrProvider indicates the verification call itself failed.
	ErrProvider = errors.New("identity: provider error")
)
