package auth

import (
	"context"
	"errors"

	"github.com/telaris-erp/telaris/internal/identity"
	"github.com/telaris-erp/telaris/internal/shared"
)

// TokenRevoker is implemented by providers that can invalidate issued
// tokens on logout.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string) error
}

// Service wraps the login and logout flows.
type Service struct {
	authenticator identity.Authenticator
	resolver      *Resolver
	notifier      *StateNotifier
}

// NewService constructs a Service.
func NewService(authenticator identity.Authenticator, resolver *Resolver, notifier *StateNotifier) *Service {
	return &Service{authenticator: authenticator, resolver: resolver, notifier: notifier}
}

// ErrInactiveAccount indicates the profile exists but may not sign in.
var ErrInactiveAccount = errors.New("auth: inactive account")

// Login exchanges credentials for a token and resolves the identity
// behind it. Missing profiles and provider failures surface as invalid
// credentials so login never reveals account existence.
func (s *Service) Login(ctx context.Context, email, password string) (*Identity, string, error) {
	token, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}

	res := s.resolver.ResolveToken(ctx, token)
	if res.Identity == nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !res.Identity.Active() {
		return nil, "", ErrInactiveAccount
	}

	if s.notifier != nil {
		s.notifier.Notify(Event{Type: EventLogin, UserID: res.Identity.ID, Email: res.Identity.Email})
	}
	return res.Identity, token, nil
}

// Logout revokes the token when the provider supports revocation and
// notifies subscribers.
func (s *Service) Logout(ctx context.Context, token string, id *Identity) error {
	if revoker, ok := s.authenticator.(TokenRevoker); ok && token != "" {
		if err := revoker.Revoke(ctx, token); err != nil {
			return err
		}
	}
	if s.notifier != nil && id != nil {
		s.notifier.Notify(Event{Type: EventLogout, UserID: id.ID, Email: id.Email})
	}
	return nil
}
